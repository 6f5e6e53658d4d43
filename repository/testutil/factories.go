package testutil

import (
	"randpredict/models"
)

// CreateTestGameRun creates a legacy run whose draw hits exactly score of the predictions
func CreateTestGameRun(email string, score int) *models.GameRun {
	predictions := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	drawn := make([]int, 0, 10)
	for i := 0; i < 10; i++ {
		if i < score {
			drawn = append(drawn, predictions[i])
		} else {
			drawn = append(drawn, 50+i)
		}
	}

	return &models.GameRun{
		UserName:      "Test Player",
		Email:         email,
		Predictions:   predictions,
		RandomNumbers: drawn,
		Score:         score,
		GameType:      models.DefaultGameType,
	}
}

// CreateTestGameRunForUser creates a run owned by an authenticated user
func CreateTestGameRunForUser(userID, email string, score int) *models.GameRun {
	run := CreateTestGameRun(email, score)
	run.UserID = &userID
	return run
}

// CreateTestLeaderboardEntry creates a legacy leaderboard row
func CreateTestLeaderboardEntry(email string, bestScore, played int) *models.LeaderboardEntry {
	return &models.LeaderboardEntry{
		Name:             "Test Player",
		Email:            email,
		BestScore:        bestScore,
		TotalGamesPlayed: played,
		GameType:         models.DefaultGameType,
	}
}
