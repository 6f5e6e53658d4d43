package service

import (
	"context"
	"fmt"
	"strings"

	"randpredict/events"
	"randpredict/game"
	"randpredict/models"

	log "github.com/sirupsen/logrus"
)

const maxNameLength = 80

type gameService struct {
	uowFactory UnitOfWorkFactory
}

// NewGameService creates a new game service
func NewGameService(uowFactory UnitOfWorkFactory) GameService {
	return &gameService{
		uowFactory: uowFactory,
	}
}

// RecordRun validates a finished game, stores it and updates the leaderboard
func (s *gameService) RecordRun(ctx context.Context, submission *models.GameSubmission, user *models.AuthUser) (*models.GameRunResult, error) {
	run, err := buildRun(submission, user)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := uow.LeaderboardRepository().LockIdentity(ctx, runIdentity(run)); err != nil {
		return nil, err
	}

	if err := uow.GameRunRepository().Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to store game run: %w", err)
	}

	entry, err := s.findLeaderboardEntry(ctx, uow, run)
	if err != nil {
		return nil, err
	}

	newHighScore := false
	previousBest := 0
	firstEntry := entry == nil

	if entry == nil {
		entry = &models.LeaderboardEntry{
			UserID:           run.UserID,
			Name:             run.UserName,
			Email:            run.Email,
			BestScore:        run.Score,
			TotalGamesPlayed: 1,
			GameType:         run.GameType,
		}
		if err := uow.LeaderboardRepository().Create(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to create leaderboard entry: %w", err)
		}
		newHighScore = true
	} else {
		previousBest = entry.BestScore
		newHighScore = run.Score > entry.BestScore
		if newHighScore {
			entry.BestScore = run.Score
		}
		entry.Name = run.UserName
		entry.TotalGamesPlayed++
		if err := uow.LeaderboardRepository().Update(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to update leaderboard entry: %w", err)
		}
	}

	userID := ""
	if run.UserID != nil {
		userID = *run.UserID
	}
	uow.EventBus().Publish(events.GameRunRecordedEvent{
		RunID:    run.ID,
		UserID:   userID,
		Email:    run.Email,
		Score:    run.Score,
		GameType: run.GameType,
	})
	if newHighScore {
		uow.EventBus().Publish(events.HighScoreEvent{
			Email:         run.Email,
			UserID:        userID,
			PreviousBest:  previousBest,
			NewBest:       run.Score,
			GameType:      run.GameType,
			FirstRunEntry: firstEntry,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit game run: %w", err)
	}

	log.WithFields(log.Fields{
		"runID":        run.ID,
		"email":        run.Email,
		"score":        run.Score,
		"newHighScore": newHighScore,
		"gameType":     run.GameType,
	}).Info("Game run recorded")

	return &models.GameRunResult{
		Success:          true,
		NewHighScore:     newHighScore,
		Score:            run.Score,
		Matches:          game.CalculateMatches(run.Predictions, run.RandomNumbers),
		LeaderboardEntry: entry,
	}, nil
}

// UserIdentity is the lock name of a signed-in player's leaderboard row
func UserIdentity(userID string) string { return "user:" + userID }

// EmailIdentity is the lock name of an anonymous player's leaderboard row
func EmailIdentity(email string) string { return "email:" + email }

func runIdentity(run *models.GameRun) string {
	if run.UserID != nil {
		return UserIdentity(*run.UserID)
	}
	return EmailIdentity(run.Email)
}

// findLeaderboardEntry looks up the row of the run's identity: the user ID when
// signed in, otherwise the legacy email row
func (s *gameService) findLeaderboardEntry(ctx context.Context, uow UnitOfWork, run *models.GameRun) (*models.LeaderboardEntry, error) {
	if run.UserID != nil {
		entry, err := uow.LeaderboardRepository().GetByUser(ctx, *run.UserID, run.GameType)
		if err != nil {
			return nil, fmt.Errorf("failed to get leaderboard entry: %w", err)
		}
		return entry, nil
	}

	entry, err := uow.LeaderboardRepository().GetLegacyByEmail(ctx, run.Email, run.GameType)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard entry: %w", err)
	}
	return entry, nil
}

// buildRun validates a submission and turns it into a run ready to insert
func buildRun(submission *models.GameSubmission, user *models.AuthUser) (*models.GameRun, error) {
	if submission == nil {
		return nil, NewValidationError("Invalid JSON payload")
	}

	name := strings.TrimSpace(submission.Name)
	email := game.NormaliseEmail(submission.Email)
	if user != nil && user.Email != "" {
		// A signed-in player always plays under their account email
		email = game.NormaliseEmail(user.Email)
	}
	if name == "" || email == "" {
		return nil, NewValidationError("Name and email are required")
	}
	if len([]rune(name)) > maxNameLength {
		return nil, NewValidationError(fmt.Sprintf("Name must be at most %d characters", maxNameLength))
	}

	if len(submission.Predictions) != game.NumbersPerGame {
		return nil, NewValidationError("Ten predictions are required")
	}
	if !game.IsValidPredictionSet(submission.Predictions) {
		return nil, NewValidationError("Predictions must be ten unique numbers between 1 and 99")
	}
	if len(submission.RandomNumbers) != game.NumbersPerGame {
		return nil, NewValidationError("Ten random numbers are required")
	}
	if !game.IsValidDrawSet(submission.RandomNumbers) {
		return nil, NewValidationError("Random numbers must be between 1 and 99")
	}

	score := game.CalculateScore(submission.Predictions, submission.RandomNumbers)
	if submission.Score != nil && *submission.Score != score {
		return nil, NewValidationError("Score does not match predictions")
	}

	gameType := strings.TrimSpace(submission.GameType)
	if gameType == "" {
		gameType = models.DefaultGameType
	}

	run := &models.GameRun{
		UserName:      name,
		Email:         email,
		Predictions:   append([]int(nil), submission.Predictions...),
		RandomNumbers: append([]int(nil), submission.RandomNumbers...),
		Score:         score,
		GameType:      gameType,
	}
	if user != nil && user.ID != "" {
		userID := user.ID
		run.UserID = &userID
	}

	return run, nil
}
