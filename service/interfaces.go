package service

import (
	"context"

	"randpredict/events"
	"randpredict/models"
)

// GameRunRepository defines the interface for game run data access
type GameRunRepository interface {
	// Create inserts a run and fills in its ID and CreatedAt
	Create(ctx context.Context, run *models.GameRun) error

	// ListByGameType returns every run of a game type, newest first
	ListByGameType(ctx context.Context, gameType string) ([]*models.GameRun, error)

	// ListByEmail returns the runs of an email for a game type, newest first
	ListByEmail(ctx context.Context, email string, gameType string) ([]*models.GameRun, error)

	// CountLegacyByEmail counts runs of an email that have no user ID yet
	CountLegacyByEmail(ctx context.Context, email string) (int, error)

	// CountByEmailAndUser counts runs of an email that already belong to userID
	CountByEmailAndUser(ctx context.Context, email string, userID string) (int, error)

	// AssignUserToLegacyRuns sets user_id on every legacy run of an email and returns how many moved
	AssignUserToLegacyRuns(ctx context.Context, email string, userID string) (int, error)
}

// LeaderboardRepository defines the interface for leaderboard data access
type LeaderboardRepository interface {
	// LockIdentity holds a transaction-scoped lock on one leaderboard identity
	// (see UserIdentity and EmailIdentity) until commit or rollback
	LockIdentity(ctx context.Context, identity string) error

	// GetByUser returns the row of an authenticated user, or nil
	GetByUser(ctx context.Context, userID string, gameType string) (*models.LeaderboardEntry, error)

	// GetLegacyByEmail returns the email-keyed row without user ID, or nil
	GetLegacyByEmail(ctx context.Context, email string, gameType string) (*models.LeaderboardEntry, error)

	// ListLegacyByEmail returns every legacy row of an email across game types
	ListLegacyByEmail(ctx context.Context, email string) ([]*models.LeaderboardEntry, error)

	// Create inserts a row and fills in its ID
	Create(ctx context.Context, entry *models.LeaderboardEntry) error

	// Update writes name, best score, play count and user ID of an existing row
	Update(ctx context.Context, entry *models.LeaderboardEntry) error

	// Delete removes a row
	Delete(ctx context.Context, id string) error

	// Top returns the best rows of a game type ordered by best score
	Top(ctx context.Context, gameType string, limit int) ([]*models.LeaderboardRow, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and releases pending events
	Commit() error

	// Rollback rolls back the transaction; it is a no-op after Commit
	Rollback() error

	// Repository getters
	GameRunRepository() GameRunRepository
	LeaderboardRepository() LeaderboardRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// AnalyticsCache stores computed global analytics between game runs.
// Documents live under the generation that was current when their runs were
// read; Invalidate moves to a new generation.
type AnalyticsCache interface {
	Generation(ctx context.Context) (int64, error)
	GetGlobal(ctx context.Context, generation int64, gameType string) (*models.GlobalAnalytics, bool, error)
	SetGlobal(ctx context.Context, generation int64, gameType string, doc *models.GlobalAnalytics) error
	Invalidate(ctx context.Context) error
}

// RandomNumberGenerator draws true-random integers
type RandomNumberGenerator interface {
	GenerateIntegers(ctx context.Context, n, min, max int, replacement bool) ([]int, error)
}

// GameService defines the interface for recording finished games
type GameService interface {
	// RecordRun stores a run and updates the leaderboard row of its identity.
	// user is nil for anonymous submissions.
	RecordRun(ctx context.Context, submission *models.GameSubmission, user *models.AuthUser) (*models.GameRunResult, error)
}

// LeaderboardService defines the interface for leaderboard queries
type LeaderboardService interface {
	// Top returns the best players of a game type
	Top(ctx context.Context, gameType string, limit int) ([]*models.LeaderboardRow, error)
}

// AnalyticsService defines the interface for analytics queries
type AnalyticsService interface {
	// Global aggregates every run of a game type
	Global(ctx context.Context, gameType string) (*models.GlobalAnalytics, error)

	// ForUser returns the runs and stats of one email
	ForUser(ctx context.Context, email string, gameType string) (*models.UserAnalytics, error)
}

// AccountService defines the interface for the anonymous-to-authenticated migration
type AccountService interface {
	// CheckLegacyEmail reports whether an email still owns runs without user ID
	CheckLegacyEmail(ctx context.Context, email string) (*models.LegacyEmailCheck, error)

	// MigrationStatus reports migrated and legacy run counts of a user
	MigrationStatus(ctx context.Context, user *models.AuthUser) (*models.MigrationStatus, error)

	// MigrateAccount moves legacy runs and leaderboard rows of the user's email to the user
	MigrateAccount(ctx context.Context, user *models.AuthUser) (*models.MigrationResult, error)
}

// RandomService defines the interface for drawing numbers
type RandomService interface {
	// Configured reports whether draws can reach a random number source
	Configured() bool
	// Draw returns count unique integers in [min, max] for an authenticated user
	Draw(ctx context.Context, user *models.AuthUser, req DrawRequest) ([]int, error)
}

// DrawRequest holds the optional parameters of a random draw; nil fields take the game defaults
type DrawRequest struct {
	Count *int `json:"count"`
	Min   *int `json:"min"`
	Max   *int `json:"max"`
}
