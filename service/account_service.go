package service

import (
	"context"
	"fmt"

	"randpredict/events"
	"randpredict/game"
	"randpredict/models"

	log "github.com/sirupsen/logrus"
)

// accountService implements the AccountService interface
type accountService struct {
	uowFactory UnitOfWorkFactory
}

// NewAccountService creates a new account service
func NewAccountService(uowFactory UnitOfWorkFactory) AccountService {
	return &accountService{
		uowFactory: uowFactory,
	}
}

// CheckLegacyEmail reports whether an email still owns runs or a leaderboard row without user ID
func (s *accountService) CheckLegacyEmail(ctx context.Context, email string) (*models.LegacyEmailCheck, error) {
	email = game.NormaliseEmail(email)
	if email == "" {
		return nil, NewValidationError("Email is required")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	gameCount, err := uow.GameRunRepository().CountLegacyByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to count legacy games: %w", err)
	}

	entry, err := uow.LeaderboardRepository().GetLegacyByEmail(ctx, email, models.DefaultGameType)
	if err != nil {
		return nil, fmt.Errorf("failed to get legacy leaderboard entry: %w", err)
	}

	check := &models.LegacyEmailCheck{
		HasLegacyData: gameCount > 0,
		GameCount:     gameCount,
	}
	if entry != nil {
		check.LeaderboardEntry = &models.LegacyLeaderboardSummary{
			BestScore:        entry.BestScore,
			TotalGamesPlayed: entry.TotalGamesPlayed,
		}
	}

	return check, nil
}

// MigrationStatus counts the runs of the user's email that are migrated and still legacy
func (s *accountService) MigrationStatus(ctx context.Context, user *models.AuthUser) (*models.MigrationStatus, error) {
	if user == nil || user.ID == "" {
		return nil, ErrUnauthorized
	}
	email := game.NormaliseEmail(user.Email)
	if email == "" {
		return nil, NewValidationError("User email not found")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	migrated, err := uow.GameRunRepository().CountByEmailAndUser(ctx, email, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count migrated games: %w", err)
	}

	legacy, err := uow.GameRunRepository().CountLegacyByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to count legacy games: %w", err)
	}

	return &models.MigrationStatus{
		MigratedGames:   migrated,
		LegacyGames:     legacy,
		NeedsMigration:  legacy > 0,
		AlreadyMigrated: migrated > 0,
	}, nil
}

// MigrateAccount moves the legacy runs and leaderboard rows of the user's email to the user.
// Running it again once nothing is left migrates zero games.
func (s *accountService) MigrateAccount(ctx context.Context, user *models.AuthUser) (*models.MigrationResult, error) {
	if user == nil || user.ID == "" {
		return nil, ErrUnauthorized
	}
	email := game.NormaliseEmail(user.Email)
	if email == "" {
		return nil, NewValidationError("Authenticated user is missing an email address")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Always email before user; a game run only ever holds one of the two
	if err := uow.LeaderboardRepository().LockIdentity(ctx, EmailIdentity(email)); err != nil {
		return nil, err
	}
	if err := uow.LeaderboardRepository().LockIdentity(ctx, UserIdentity(user.ID)); err != nil {
		return nil, err
	}

	migrated, err := uow.GameRunRepository().AssignUserToLegacyRuns(ctx, email, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate game runs: %w", err)
	}

	legacyEntries, err := uow.LeaderboardRepository().ListLegacyByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list legacy leaderboard entries: %w", err)
	}

	merged := false
	for _, legacy := range legacyEntries {
		wasMerged, err := s.migrateLeaderboardEntry(ctx, uow, legacy, user.ID)
		if err != nil {
			return nil, err
		}
		merged = merged || wasMerged
	}

	if migrated > 0 || len(legacyEntries) > 0 {
		uow.EventBus().Publish(events.AccountMigratedEvent{
			UserID:            user.ID,
			Email:             email,
			MigratedGames:     migrated,
			LeaderboardMerged: merged,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit migration: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":            user.ID,
		"email":             email,
		"migratedGames":     migrated,
		"leaderboardRows":   len(legacyEntries),
		"leaderboardMerged": merged,
	}).Info("Account migrated")

	return &models.MigrationResult{
		Success:           true,
		MigratedGames:     migrated,
		LeaderboardMerged: merged,
	}, nil
}

// migrateLeaderboardEntry hands a legacy row to the user, or folds it into the
// row the user already has for that game type. Returns true when it merged.
func (s *accountService) migrateLeaderboardEntry(ctx context.Context, uow UnitOfWork, legacy *models.LeaderboardEntry, userID string) (bool, error) {
	existing, err := uow.LeaderboardRepository().GetByUser(ctx, userID, legacy.GameType)
	if err != nil {
		return false, fmt.Errorf("failed to get leaderboard entry of user: %w", err)
	}

	if existing == nil {
		legacy.UserID = &userID
		if err := uow.LeaderboardRepository().Update(ctx, legacy); err != nil {
			return false, fmt.Errorf("failed to reassign leaderboard entry: %w", err)
		}
		return false, nil
	}

	if legacy.BestScore > existing.BestScore {
		existing.BestScore = legacy.BestScore
	}
	existing.TotalGamesPlayed += legacy.TotalGamesPlayed

	// Delete first so the partial unique indexes never see two rows of one identity
	if err := uow.LeaderboardRepository().Delete(ctx, legacy.ID); err != nil {
		return false, fmt.Errorf("failed to delete legacy leaderboard entry: %w", err)
	}
	if err := uow.LeaderboardRepository().Update(ctx, existing); err != nil {
		return false, fmt.Errorf("failed to merge leaderboard entry: %w", err)
	}

	return true, nil
}
