package service

import (
	"context"
	"fmt"

	"randpredict/models"
)

// DefaultLeaderboardLimit is the number of rows shown when no limit is given
const DefaultLeaderboardLimit = 10

const maxLeaderboardLimit = 100

// leaderboardService implements the LeaderboardService interface
type leaderboardService struct {
	uowFactory UnitOfWorkFactory
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(uowFactory UnitOfWorkFactory) LeaderboardService {
	return &leaderboardService{
		uowFactory: uowFactory,
	}
}

// Top returns the best players of a game type ordered by best score
func (s *leaderboardService) Top(ctx context.Context, gameType string, limit int) ([]*models.LeaderboardRow, error) {
	if gameType == "" {
		gameType = models.DefaultGameType
	}
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	rows, err := uow.LeaderboardRepository().Top(ctx, gameType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	if rows == nil {
		rows = []*models.LeaderboardRow{}
	}

	return rows, nil
}
