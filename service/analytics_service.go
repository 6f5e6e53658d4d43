package service

import (
	"context"
	"fmt"
	"time"

	"randpredict/analytics"
	"randpredict/game"
	"randpredict/models"

	log "github.com/sirupsen/logrus"
)

// analyticsService implements the AnalyticsService interface
type analyticsService struct {
	uowFactory UnitOfWorkFactory
	cache      AnalyticsCache
	now        func() time.Time
}

// NewAnalyticsService creates a new analytics service. cache may be nil.
func NewAnalyticsService(uowFactory UnitOfWorkFactory, cache AnalyticsCache) AnalyticsService {
	return &analyticsService{
		uowFactory: uowFactory,
		cache:      cache,
		now:        time.Now,
	}
}

// Global aggregates every run of a game type into the global analytics document
func (s *analyticsService) Global(ctx context.Context, gameType string) (*models.GlobalAnalytics, error) {
	if gameType == "" {
		gameType = models.DefaultGameType
	}

	// The generation is read before the runs so a commit landing in between
	// leaves the document under a generation nobody reads any more
	generation, cached := s.cacheGeneration(ctx)
	if cached {
		doc, ok, err := s.cache.GetGlobal(ctx, generation, gameType)
		if err != nil {
			// A broken cache must not take analytics down
			log.WithError(err).WithField("gameType", gameType).Warn("Failed to read analytics cache")
		} else if ok {
			return doc, nil
		}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	runs, err := uow.GameRunRepository().ListByGameType(ctx, gameType)
	if err != nil {
		return nil, fmt.Errorf("failed to list game runs: %w", err)
	}

	doc := analytics.BuildGlobalAnalytics(runs)

	if cached {
		if err := s.cache.SetGlobal(ctx, generation, gameType, doc); err != nil {
			log.WithError(err).WithField("gameType", gameType).Warn("Failed to write analytics cache")
		}
	}

	return doc, nil
}

func (s *analyticsService) cacheGeneration(ctx context.Context) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	generation, err := s.cache.Generation(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to read analytics cache generation")
		return 0, false
	}
	return generation, true
}

// ForUser returns the runs of an email, newest first, with their summary stats
func (s *analyticsService) ForUser(ctx context.Context, email string, gameType string) (*models.UserAnalytics, error) {
	email = game.NormaliseEmail(email)
	if email == "" {
		return nil, NewValidationError("Missing email parameter")
	}
	if gameType == "" {
		gameType = models.DefaultGameType
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	runs, err := uow.GameRunRepository().ListByEmail(ctx, email, gameType)
	if err != nil {
		return nil, fmt.Errorf("failed to list game runs for %s: %w", email, err)
	}
	if runs == nil {
		runs = []*models.GameRun{}
	}

	return &models.UserAnalytics{
		Runs:  runs,
		Stats: analytics.ComputeUserStats(runs, s.now()),
	}, nil
}
