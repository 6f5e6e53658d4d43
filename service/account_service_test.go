package service

import (
	"context"
	"errors"
	"testing"

	"randpredict/events"
	"randpredict/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func createTestAccountService() (AccountService, *gameServiceMocks) {
	m := &gameServiceMocks{
		factory:     new(MockUnitOfWorkFactory),
		uow:         new(MockUnitOfWork),
		runs:        new(MockGameRunRepository),
		leaderboard: new(MockLeaderboardRepository),
		publisher:   new(MockEventPublisher),
	}
	m.uow.SetRepositories(m.runs, m.leaderboard, m.publisher)
	return NewAccountService(m.factory), m
}

func strPtr(s string) *string {
	return &s
}

func TestAccountService_CheckLegacyEmail(t *testing.T) {
	ctx := context.Background()
	service, m := createTestAccountService()
	m.factory.On("Create").Return(m.uow)
	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)

	m.runs.On("CountLegacyByEmail", ctx, "old@example.com").Return(4, nil)
	m.leaderboard.On("GetLegacyByEmail", ctx, "old@example.com", models.DefaultGameType).
		Return(&models.LeaderboardEntry{BestScore: 5, TotalGamesPlayed: 4}, nil)

	check, err := service.CheckLegacyEmail(ctx, " Old@Example.com")

	require.NoError(t, err)
	assert.True(t, check.HasLegacyData)
	assert.Equal(t, 4, check.GameCount)
	require.NotNil(t, check.LeaderboardEntry)
	assert.Equal(t, 5, check.LeaderboardEntry.BestScore)
	assert.Equal(t, 4, check.LeaderboardEntry.TotalGamesPlayed)
}

func TestAccountService_CheckLegacyEmail_NoData(t *testing.T) {
	ctx := context.Background()
	service, m := createTestAccountService()
	m.factory.On("Create").Return(m.uow)
	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)

	m.runs.On("CountLegacyByEmail", ctx, "new@example.com").Return(0, nil)
	m.leaderboard.On("GetLegacyByEmail", ctx, "new@example.com", models.DefaultGameType).Return(nil, nil)

	check, err := service.CheckLegacyEmail(ctx, "new@example.com")

	require.NoError(t, err)
	assert.False(t, check.HasLegacyData)
	assert.Zero(t, check.GameCount)
	assert.Nil(t, check.LeaderboardEntry)
}

func TestAccountService_CheckLegacyEmail_Required(t *testing.T) {
	service, m := createTestAccountService()

	check, err := service.CheckLegacyEmail(context.Background(), "")

	assert.Nil(t, check)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, "Email is required", err.Error())
	m.factory.AssertNotCalled(t, "Create")
}

func TestAccountService_MigrationStatus(t *testing.T) {
	ctx := context.Background()
	service, m := createTestAccountService()
	m.factory.On("Create").Return(m.uow)
	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)

	m.runs.On("CountByEmailAndUser", ctx, "ada@example.com", "user-1").Return(2, nil)
	m.runs.On("CountLegacyByEmail", ctx, "ada@example.com").Return(3, nil)

	status, err := service.MigrationStatus(ctx, &models.AuthUser{ID: "user-1", Email: "ada@example.com"})

	require.NoError(t, err)
	assert.Equal(t, &models.MigrationStatus{
		MigratedGames:   2,
		LegacyGames:     3,
		NeedsMigration:  true,
		AlreadyMigrated: true,
	}, status)
}

func TestAccountService_MigrationStatus_RequiresUser(t *testing.T) {
	service, _ := createTestAccountService()

	status, err := service.MigrationStatus(context.Background(), nil)

	assert.Nil(t, status)
	assert.ErrorIs(t, err, ErrUnauthorized)

	status, err = service.MigrationStatus(context.Background(), &models.AuthUser{ID: "user-1"})
	assert.Nil(t, status)
	assert.Equal(t, "User email not found", err.Error())
}

func TestAccountService_MigrateAccount_ReassignsLegacyRow(t *testing.T) {
	ctx := context.Background()
	service, m := createTestAccountService()
	setupBasicTransactionMocks(ctx, m.factory, m.uow)

	legacy := &models.LeaderboardEntry{ID: "lb-legacy", Email: "ada@example.com", BestScore: 6, TotalGamesPlayed: 3, GameType: models.DefaultGameType}

	m.leaderboard.On("LockIdentity", ctx, "email:ada@example.com").Return(nil)
	m.leaderboard.On("LockIdentity", ctx, "user:user-1").Return(nil)
	m.runs.On("AssignUserToLegacyRuns", ctx, "ada@example.com", "user-1").Return(3, nil)
	m.leaderboard.On("ListLegacyByEmail", ctx, "ada@example.com").Return([]*models.LeaderboardEntry{legacy}, nil)
	m.leaderboard.On("GetByUser", ctx, "user-1", models.DefaultGameType).Return(nil, nil)
	m.leaderboard.On("Update", ctx, mock.MatchedBy(func(e *models.LeaderboardEntry) bool {
		return e.ID == "lb-legacy" && e.UserID != nil && *e.UserID == "user-1" && e.BestScore == 6
	})).Return(nil)
	m.publisher.On("Publish", events.AccountMigratedEvent{
		UserID:        "user-1",
		Email:         "ada@example.com",
		MigratedGames: 3,
	}).Return()

	result, err := service.MigrateAccount(ctx, &models.AuthUser{ID: "user-1", Email: "Ada@example.com"})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.MigratedGames)
	assert.False(t, result.LeaderboardMerged)
	m.leaderboard.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	m.assertAll(t)
}

func TestAccountService_MigrateAccount_MergesIntoExistingRow(t *testing.T) {
	ctx := context.Background()
	service, m := createTestAccountService()
	setupBasicTransactionMocks(ctx, m.factory, m.uow)

	legacy := &models.LeaderboardEntry{ID: "lb-legacy", BestScore: 8, TotalGamesPlayed: 5, GameType: models.DefaultGameType}
	existing := &models.LeaderboardEntry{ID: "lb-user", UserID: strPtr("user-1"), BestScore: 4, TotalGamesPlayed: 2, GameType: models.DefaultGameType}

	m.leaderboard.On("LockIdentity", ctx, "email:ada@example.com").Return(nil)
	m.leaderboard.On("LockIdentity", ctx, "user:user-1").Return(nil)
	m.runs.On("AssignUserToLegacyRuns", ctx, "ada@example.com", "user-1").Return(5, nil)
	m.leaderboard.On("ListLegacyByEmail", ctx, "ada@example.com").Return([]*models.LeaderboardEntry{legacy}, nil)
	m.leaderboard.On("GetByUser", ctx, "user-1", models.DefaultGameType).Return(existing, nil)
	m.leaderboard.On("Delete", ctx, "lb-legacy").Return(nil)
	m.leaderboard.On("Update", ctx, mock.MatchedBy(func(e *models.LeaderboardEntry) bool {
		return e.ID == "lb-user" && e.BestScore == 8 && e.TotalGamesPlayed == 7
	})).Return(nil)
	m.publisher.On("Publish", mock.MatchedBy(func(e events.AccountMigratedEvent) bool {
		return e.LeaderboardMerged && e.MigratedGames == 5
	})).Return()

	result, err := service.MigrateAccount(ctx, &models.AuthUser{ID: "user-1", Email: "ada@example.com"})

	require.NoError(t, err)
	assert.True(t, result.LeaderboardMerged)
	assert.Equal(t, 5, result.MigratedGames)
	m.assertAll(t)
}

func TestAccountService_MigrateAccount_NothingLeft(t *testing.T) {
	ctx := context.Background()
	service, m := createTestAccountService()
	setupBasicTransactionMocks(ctx, m.factory, m.uow)

	m.leaderboard.On("LockIdentity", ctx, "email:ada@example.com").Return(nil)
	m.leaderboard.On("LockIdentity", ctx, "user:user-1").Return(nil)
	m.runs.On("AssignUserToLegacyRuns", ctx, "ada@example.com", "user-1").Return(0, nil)
	m.leaderboard.On("ListLegacyByEmail", ctx, "ada@example.com").Return([]*models.LeaderboardEntry{}, nil)

	result, err := service.MigrateAccount(ctx, &models.AuthUser{ID: "user-1", Email: "ada@example.com"})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Zero(t, result.MigratedGames)
	m.publisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestAccountService_MigrateAccount_FailureDoesNotCommit(t *testing.T) {
	ctx := context.Background()
	service, m := createTestAccountService()
	m.factory.On("Create").Return(m.uow)
	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)

	m.leaderboard.On("LockIdentity", ctx, "email:ada@example.com").Return(nil)
	m.leaderboard.On("LockIdentity", ctx, "user:user-1").Return(nil)
	m.runs.On("AssignUserToLegacyRuns", ctx, "ada@example.com", "user-1").Return(2, nil)
	m.leaderboard.On("ListLegacyByEmail", ctx, "ada@example.com").Return(nil, errors.New("timeout"))

	result, err := service.MigrateAccount(ctx, &models.AuthUser{ID: "user-1", Email: "ada@example.com"})

	assert.Nil(t, result)
	assert.ErrorContains(t, err, "failed to list legacy leaderboard entries")
	m.uow.AssertNotCalled(t, "Commit")
}

func TestAccountService_MigrateAccount_RequiresEmail(t *testing.T) {
	service, m := createTestAccountService()

	result, err := service.MigrateAccount(context.Background(), &models.AuthUser{ID: "user-1"})

	assert.Nil(t, result)
	assert.Equal(t, "Authenticated user is missing an email address", err.Error())
	m.factory.AssertNotCalled(t, "Create")
}
