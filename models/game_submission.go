package models

// GameSubmission is a finished game posted by the UI
type GameSubmission struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Predictions   []int  `json:"predictions"`
	RandomNumbers []int  `json:"randomNumbers"`
	Score         *int   `json:"score"`
	GameType      string `json:"gameType,omitempty"`
}

// GameRunResult is returned after a run was recorded
type GameRunResult struct {
	Success          bool              `json:"success"`
	NewHighScore     bool              `json:"newHighScore"`
	Score            int               `json:"score"`
	Matches          []int             `json:"matches"`
	LeaderboardEntry *LeaderboardEntry `json:"leaderboardEntry"`
}
