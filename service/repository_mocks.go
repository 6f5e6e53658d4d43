package service

import (
	"context"

	"randpredict/events"
	"randpredict/models"

	"github.com/stretchr/testify/mock"
)

// MockGameRunRepository is a mock implementation of GameRunRepository
type MockGameRunRepository struct {
	mock.Mock
}

func (m *MockGameRunRepository) Create(ctx context.Context, run *models.GameRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockGameRunRepository) ListByGameType(ctx context.Context, gameType string) ([]*models.GameRun, error) {
	args := m.Called(ctx, gameType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GameRun), args.Error(1)
}

func (m *MockGameRunRepository) ListByEmail(ctx context.Context, email string, gameType string) ([]*models.GameRun, error) {
	args := m.Called(ctx, email, gameType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GameRun), args.Error(1)
}

func (m *MockGameRunRepository) CountLegacyByEmail(ctx context.Context, email string) (int, error) {
	args := m.Called(ctx, email)
	return args.Int(0), args.Error(1)
}

func (m *MockGameRunRepository) CountByEmailAndUser(ctx context.Context, email string, userID string) (int, error) {
	args := m.Called(ctx, email, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockGameRunRepository) AssignUserToLegacyRuns(ctx context.Context, email string, userID string) (int, error) {
	args := m.Called(ctx, email, userID)
	return args.Int(0), args.Error(1)
}

// MockLeaderboardRepository is a mock implementation of LeaderboardRepository
type MockLeaderboardRepository struct {
	mock.Mock
}

func (m *MockLeaderboardRepository) LockIdentity(ctx context.Context, identity string) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *MockLeaderboardRepository) GetByUser(ctx context.Context, userID string, gameType string) (*models.LeaderboardEntry, error) {
	args := m.Called(ctx, userID, gameType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LeaderboardEntry), args.Error(1)
}

func (m *MockLeaderboardRepository) GetLegacyByEmail(ctx context.Context, email string, gameType string) (*models.LeaderboardEntry, error) {
	args := m.Called(ctx, email, gameType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LeaderboardEntry), args.Error(1)
}

func (m *MockLeaderboardRepository) ListLegacyByEmail(ctx context.Context, email string) ([]*models.LeaderboardEntry, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Error(1)
}

func (m *MockLeaderboardRepository) Create(ctx context.Context, entry *models.LeaderboardEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLeaderboardRepository) Update(ctx context.Context, entry *models.LeaderboardEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLeaderboardRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLeaderboardRepository) Top(ctx context.Context, gameType string, limit int) ([]*models.LeaderboardRow, error) {
	args := m.Called(ctx, gameType, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardRow), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	gameRunRepo     GameRunRepository
	leaderboardRepo LeaderboardRepository
	eventBus        EventPublisher
}

// SetRepositories wires the repositories returned by the getters
func (m *MockUnitOfWork) SetRepositories(gameRunRepo GameRunRepository, leaderboardRepo LeaderboardRepository, eventBus EventPublisher) {
	m.gameRunRepo = gameRunRepo
	m.leaderboardRepo = leaderboardRepo
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) GameRunRepository() GameRunRepository {
	return m.gameRunRepo
}

func (m *MockUnitOfWork) LeaderboardRepository() LeaderboardRepository {
	return m.leaderboardRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockAnalyticsCache is a mock implementation of AnalyticsCache
type MockAnalyticsCache struct {
	mock.Mock
}

func (m *MockAnalyticsCache) Generation(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAnalyticsCache) GetGlobal(ctx context.Context, generation int64, gameType string) (*models.GlobalAnalytics, bool, error) {
	args := m.Called(ctx, generation, gameType)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.GlobalAnalytics), args.Bool(1), args.Error(2)
}

func (m *MockAnalyticsCache) SetGlobal(ctx context.Context, generation int64, gameType string, doc *models.GlobalAnalytics) error {
	args := m.Called(ctx, generation, gameType, doc)
	return args.Error(0)
}

func (m *MockAnalyticsCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockRandomNumberGenerator is a mock implementation of RandomNumberGenerator
type MockRandomNumberGenerator struct {
	mock.Mock
}

func (m *MockRandomNumberGenerator) GenerateIntegers(ctx context.Context, n, min, max int, replacement bool) ([]int, error) {
	args := m.Called(ctx, n, min, max, replacement)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}
