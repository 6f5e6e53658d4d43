package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"randpredict/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func analyticsTestRuns() []*models.GameRun {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	return []*models.GameRun{
		{
			ID:            "b",
			CreatedAt:     now,
			Email:         "ada@example.com",
			Predictions:   []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			RandomNumbers: []int{1, 2, 40, 41, 42, 43, 44, 45, 46, 47},
			Score:         2,
			GameType:      models.DefaultGameType,
		},
		{
			ID:            "a",
			CreatedAt:     now.Add(-48 * time.Hour),
			Email:         "ada@example.com",
			Predictions:   []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			RandomNumbers: []int{1, 60, 61, 62, 63, 64, 65, 66, 67, 68},
			Score:         1,
			GameType:      models.DefaultGameType,
		},
	}
}

func newAnalyticsMocks(ctx context.Context) (*MockUnitOfWorkFactory, *MockUnitOfWork, *MockGameRunRepository) {
	mockFactory := new(MockUnitOfWorkFactory)
	mockUoW := new(MockUnitOfWork)
	mockGameRunRepo := new(MockGameRunRepository)
	mockUoW.SetRepositories(mockGameRunRepo, nil, nil)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return mockFactory, mockUoW, mockGameRunRepo
}

func TestAnalyticsService_Global_WithoutCache(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockGameRunRepo := newAnalyticsMocks(ctx)
	mockGameRunRepo.On("ListByGameType", ctx, models.DefaultGameType).Return(analyticsTestRuns(), nil)

	service := NewAnalyticsService(mockFactory, nil)
	doc, err := service.Global(ctx, "")

	require.NoError(t, err)
	assert.Equal(t, 2, doc.Stats.TotalGames)
	assert.Equal(t, 1, doc.Stats.TotalPlayers)
	assert.Equal(t, 2, doc.Stats.BestScore)
	assert.Equal(t, 2, doc.Frequencies.Predictions[1])
	mockGameRunRepo.AssertExpectations(t)
}

func TestAnalyticsService_Global_CacheHitSkipsDatabase(t *testing.T) {
	ctx := context.Background()
	mockFactory := new(MockUnitOfWorkFactory)
	mockCache := new(MockAnalyticsCache)

	cached := &models.GlobalAnalytics{Stats: models.GlobalStats{TotalGames: 42}}
	mockCache.On("Generation", ctx).Return(int64(3), nil)
	mockCache.On("GetGlobal", ctx, int64(3), models.DefaultGameType).Return(cached, true, nil)

	service := NewAnalyticsService(mockFactory, mockCache)
	doc, err := service.Global(ctx, models.DefaultGameType)

	require.NoError(t, err)
	assert.Same(t, cached, doc)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestAnalyticsService_Global_CacheMissStoresDocument(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockGameRunRepo := newAnalyticsMocks(ctx)
	mockCache := new(MockAnalyticsCache)

	mockCache.On("Generation", ctx).Return(int64(3), nil).Once()
	mockCache.On("GetGlobal", ctx, int64(3), models.DefaultGameType).Return(nil, false, nil)
	mockGameRunRepo.On("ListByGameType", ctx, models.DefaultGameType).Return(analyticsTestRuns(), nil)
	// Stored under the generation read before the runs, whatever the generation is now
	mockCache.On("SetGlobal", ctx, int64(3), models.DefaultGameType, mock.AnythingOfType("*models.GlobalAnalytics")).Return(nil)

	service := NewAnalyticsService(mockFactory, mockCache)
	doc, err := service.Global(ctx, "")

	require.NoError(t, err)
	assert.Equal(t, 2, doc.Stats.TotalGames)
	mockCache.AssertExpectations(t)
}

func TestAnalyticsService_Global_CacheErrorsAreIgnored(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockGameRunRepo := newAnalyticsMocks(ctx)
	mockCache := new(MockAnalyticsCache)

	mockCache.On("Generation", ctx).Return(int64(0), nil)
	mockCache.On("GetGlobal", ctx, int64(0), models.DefaultGameType).Return(nil, false, errors.New("redis down"))
	mockGameRunRepo.On("ListByGameType", ctx, models.DefaultGameType).Return([]*models.GameRun{}, nil)
	mockCache.On("SetGlobal", ctx, int64(0), models.DefaultGameType, mock.Anything).Return(errors.New("redis down"))

	service := NewAnalyticsService(mockFactory, mockCache)
	doc, err := service.Global(ctx, "")

	require.NoError(t, err)
	assert.Equal(t, 0, doc.Stats.TotalGames)
}

func TestAnalyticsService_Global_GenerationErrorBypassesCache(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockGameRunRepo := newAnalyticsMocks(ctx)
	mockCache := new(MockAnalyticsCache)

	mockCache.On("Generation", ctx).Return(int64(0), errors.New("redis down"))
	mockGameRunRepo.On("ListByGameType", ctx, models.DefaultGameType).Return(analyticsTestRuns(), nil)

	service := NewAnalyticsService(mockFactory, mockCache)
	doc, err := service.Global(ctx, "")

	require.NoError(t, err)
	assert.Equal(t, 2, doc.Stats.TotalGames)
	mockCache.AssertNotCalled(t, "GetGlobal", mock.Anything, mock.Anything, mock.Anything)
	mockCache.AssertNotCalled(t, "SetGlobal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyticsService_Global_RepositoryError(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockGameRunRepo := newAnalyticsMocks(ctx)
	mockGameRunRepo.On("ListByGameType", ctx, models.DefaultGameType).Return(nil, errors.New("boom"))

	service := NewAnalyticsService(mockFactory, nil)
	doc, err := service.Global(ctx, "")

	assert.Nil(t, doc)
	assert.ErrorContains(t, err, "failed to list game runs")
}

func TestAnalyticsService_ForUser(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockGameRunRepo := newAnalyticsMocks(ctx)
	runs := analyticsTestRuns()
	mockGameRunRepo.On("ListByEmail", ctx, "ada@example.com", models.DefaultGameType).Return(runs, nil)

	service := NewAnalyticsService(mockFactory, nil).(*analyticsService)
	service.now = func() time.Time { return time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC) }

	result, err := service.ForUser(ctx, " ADA@example.com ", "")

	require.NoError(t, err)
	assert.Len(t, result.Runs, 2)
	require.NotNil(t, result.Stats)
	assert.Equal(t, 2, result.Stats.TotalGames)
	assert.Equal(t, 2, result.Stats.LatestScore)
	assert.Equal(t, 2, result.Stats.GamesLastWeek)
	assert.Equal(t, []int{1, 2}, result.Stats.ScoreTrend)
}

func TestAnalyticsService_ForUser_NoRuns(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockGameRunRepo := newAnalyticsMocks(ctx)
	mockGameRunRepo.On("ListByEmail", ctx, "new@example.com", models.DefaultGameType).Return(nil, nil)

	service := NewAnalyticsService(mockFactory, nil)
	result, err := service.ForUser(ctx, "new@example.com", "")

	require.NoError(t, err)
	assert.NotNil(t, result.Runs)
	assert.Empty(t, result.Runs)
	assert.Nil(t, result.Stats)
}

func TestAnalyticsService_ForUser_MissingEmail(t *testing.T) {
	mockFactory := new(MockUnitOfWorkFactory)
	service := NewAnalyticsService(mockFactory, nil)

	result, err := service.ForUser(context.Background(), "   ", "")

	assert.Nil(t, result)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, "Missing email parameter", err.Error())
	mockFactory.AssertNotCalled(t, "Create")
}
