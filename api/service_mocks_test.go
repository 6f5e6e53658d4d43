package api

import (
	"context"

	"randpredict/models"
	"randpredict/service"

	"github.com/stretchr/testify/mock"
)

type mockGameService struct{ mock.Mock }

func (m *mockGameService) RecordRun(ctx context.Context, submission *models.GameSubmission, user *models.AuthUser) (*models.GameRunResult, error) {
	args := m.Called(ctx, submission, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameRunResult), args.Error(1)
}

type mockLeaderboardService struct{ mock.Mock }

func (m *mockLeaderboardService) Top(ctx context.Context, gameType string, limit int) ([]*models.LeaderboardRow, error) {
	args := m.Called(ctx, gameType, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardRow), args.Error(1)
}

type mockAnalyticsService struct{ mock.Mock }

func (m *mockAnalyticsService) Global(ctx context.Context, gameType string) (*models.GlobalAnalytics, error) {
	args := m.Called(ctx, gameType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GlobalAnalytics), args.Error(1)
}

func (m *mockAnalyticsService) ForUser(ctx context.Context, email string, gameType string) (*models.UserAnalytics, error) {
	args := m.Called(ctx, email, gameType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserAnalytics), args.Error(1)
}

type mockAccountService struct{ mock.Mock }

func (m *mockAccountService) CheckLegacyEmail(ctx context.Context, email string) (*models.LegacyEmailCheck, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LegacyEmailCheck), args.Error(1)
}

func (m *mockAccountService) MigrationStatus(ctx context.Context, user *models.AuthUser) (*models.MigrationStatus, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MigrationStatus), args.Error(1)
}

func (m *mockAccountService) MigrateAccount(ctx context.Context, user *models.AuthUser) (*models.MigrationResult, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MigrationResult), args.Error(1)
}

type mockRandomService struct{ mock.Mock }

func (m *mockRandomService) Configured() bool {
	return m.Called().Bool(0)
}

func (m *mockRandomService) Draw(ctx context.Context, user *models.AuthUser, req service.DrawRequest) ([]int, error) {
	args := m.Called(ctx, user, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

type mockPinger struct{ mock.Mock }

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
