package repository

import (
	"context"
	"sync"
	"testing"

	"randpredict/events"
	"randpredict/models"
	"randpredict/repository/testutil"
	"randpredict/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_RollbackDiscardsWritesAndEvents(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()
	var mu sync.Mutex
	received := 0
	bus.Subscribe(events.EventTypeGameRunRecorded, func(ctx context.Context, e events.Event) {
		mu.Lock()
		received++
		mu.Unlock()
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.GameRunRepository().Create(ctx, testutil.CreateTestGameRun("ada@example.com", 2)))
	uow.EventBus().Publish(events.GameRunRecordedEvent{Email: "ada@example.com"})
	require.NoError(t, uow.Rollback())

	bus.Wait()
	count, err := NewGameRunRepository(testDB.DB).CountLegacyByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, received)

	uow = factory.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.GameRunRepository().Create(ctx, testutil.CreateTestGameRun("ada@example.com", 2)))
	uow.EventBus().Publish(events.GameRunRecordedEvent{Email: "ada@example.com"})
	require.NoError(t, uow.Commit())
	require.NoError(t, uow.Rollback()) // no-op after commit

	bus.Wait()
	count, err = NewGameRunRepository(testDB.DB).CountLegacyByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	mu.Lock()
	assert.Equal(t, 1, received)
	mu.Unlock()
}

func TestAccountMigration_Integration(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	games := service.NewGameService(factory)
	accounts := service.NewAccountService(factory)

	submit := func(user *models.AuthUser, predictions, drawn []int) *models.GameRunResult {
		result, err := games.RecordRun(ctx, &models.GameSubmission{
			Name:          "Ada",
			Email:         "ada@example.com",
			Predictions:   predictions,
			RandomNumbers: drawn,
		}, user)
		require.NoError(t, err)
		return result
	}

	predictions := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	// Two anonymous runs: score 5 then 2
	first := submit(nil, predictions, []int{1, 2, 3, 4, 5, 90, 91, 92, 93, 94})
	assert.True(t, first.NewHighScore)
	second := submit(nil, predictions, []int{1, 2, 80, 81, 82, 83, 84, 85, 86, 87})
	assert.False(t, second.NewHighScore)
	assert.Equal(t, 2, second.LeaderboardEntry.TotalGamesPlayed)
	assert.Equal(t, 5, second.LeaderboardEntry.BestScore)

	user := &models.AuthUser{ID: "user-1", Email: "ADA@example.com"}

	// One signed-in run before migrating: score 3 on its own row
	signedIn := submit(user, predictions, []int{1, 2, 3, 70, 71, 72, 73, 74, 75, 76})
	assert.True(t, signedIn.NewHighScore)

	check, err := accounts.CheckLegacyEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.True(t, check.HasLegacyData)
	assert.Equal(t, 2, check.GameCount)

	status, err := accounts.MigrationStatus(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 2, status.LegacyGames)
	assert.Equal(t, 1, status.MigratedGames)
	assert.True(t, status.NeedsMigration)

	result, err := accounts.MigrateAccount(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 2, result.MigratedGames)
	assert.True(t, result.LeaderboardMerged)

	leaderboard := NewLeaderboardRepository(testDB.DB)
	owned, err := leaderboard.GetByUser(ctx, "user-1", models.DefaultGameType)
	require.NoError(t, err)
	require.NotNil(t, owned)
	assert.Equal(t, 5, owned.BestScore)
	assert.Equal(t, 3, owned.TotalGamesPlayed)

	legacy, err := leaderboard.GetLegacyByEmail(ctx, "ada@example.com", models.DefaultGameType)
	require.NoError(t, err)
	assert.Nil(t, legacy)

	// Running the migration again moves nothing
	again, err := accounts.MigrateAccount(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, again.MigratedGames)
	assert.False(t, again.LeaderboardMerged)

	status, err = accounts.MigrationStatus(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 3, status.MigratedGames)
	assert.Zero(t, status.LegacyGames)
	assert.False(t, status.NeedsMigration)
}

func TestRecordRun_ConcurrentFirstRunsShareOneRow(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	games := service.NewGameService(NewUnitOfWorkFactory(testDB.DB, events.NewBus()))
	predictions := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	const runs = 6
	var wg sync.WaitGroup
	errs := make(chan error, runs)
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(hits int) {
			defer wg.Done()
			drawn := append(append([]int{}, predictions[:hits]...), 90, 91, 92, 93, 94, 95, 96, 97, 98, 99)[:10]
			_, err := games.RecordRun(ctx, &models.GameSubmission{
				Name:          "Ada",
				Email:         "ada@example.com",
				Predictions:   predictions,
				RandomNumbers: drawn,
			}, nil)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	count, err := NewGameRunRepository(testDB.DB).CountLegacyByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, runs, count)

	entry, err := NewLeaderboardRepository(testDB.DB).GetLegacyByEmail(ctx, "ada@example.com", models.DefaultGameType)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, runs, entry.TotalGamesPlayed)
	assert.Equal(t, runs-1, entry.BestScore)
}

func TestMigrateAccount_ConcurrentWithSignedInFirstRun(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())
	games := service.NewGameService(factory)
	accounts := service.NewAccountService(factory)

	predictions := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	submission := func() *models.GameSubmission {
		return &models.GameSubmission{
			Name:          "Ada",
			Email:         "ada@example.com",
			Predictions:   predictions,
			RandomNumbers: []int{1, 2, 60, 61, 62, 63, 64, 65, 66, 67},
		}
	}

	_, err := games.RecordRun(ctx, submission(), nil)
	require.NoError(t, err)

	user := &models.AuthUser{ID: "user-1", Email: "ada@example.com"}
	var wg sync.WaitGroup
	var runErr, migrateErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, runErr = games.RecordRun(ctx, submission(), user)
	}()
	go func() {
		defer wg.Done()
		_, migrateErr = accounts.MigrateAccount(ctx, user)
	}()
	wg.Wait()

	require.NoError(t, runErr)
	require.NoError(t, migrateErr)

	entry, err := NewLeaderboardRepository(testDB.DB).GetByUser(ctx, "user-1", models.DefaultGameType)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 2, entry.TotalGamesPlayed)

	legacy, err := NewLeaderboardRepository(testDB.DB).GetLegacyByEmail(ctx, "ada@example.com", models.DefaultGameType)
	require.NoError(t, err)
	assert.Nil(t, legacy)
}
