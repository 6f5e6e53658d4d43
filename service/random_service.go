package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"randpredict/game"
	"randpredict/models"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Random.org bounds for generateIntegers
const (
	maxDrawCount = 10000
	minDrawValue = -1000000000
	maxDrawValue = 1000000000
)

// limiterSweepInterval is how often idle per-user limiters are dropped
const limiterSweepInterval = 5 * time.Minute

// randomService implements the RandomService interface
type randomService struct {
	generator RandomNumberGenerator
	perMinute int

	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	lastSweep time.Time
	now       func() time.Time
}

// NewRandomService creates a random service. generator is nil when no API key is configured.
// perMinute limits the draws of each user; the burst equals the per-minute allowance.
func NewRandomService(generator RandomNumberGenerator, perMinute int) RandomService {
	if perMinute <= 0 {
		perMinute = 10
	}
	return &randomService{
		generator: generator,
		perMinute: perMinute,
		limiters:  make(map[string]*rate.Limiter),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Configured is false when no API key was supplied
func (s *randomService) Configured() bool {
	return s.generator != nil
}

// Draw returns count unique integers in [min, max] for a signed-in user
func (s *randomService) Draw(ctx context.Context, user *models.AuthUser, req DrawRequest) ([]int, error) {
	if user == nil || user.ID == "" {
		return nil, ErrUnauthorized
	}
	if s.generator == nil {
		return nil, ErrRandomNotConfigured
	}

	count, min, max := game.NumbersPerGame, game.MinNumber, game.MaxNumber
	if req.Count != nil {
		count = *req.Count
	}
	if req.Min != nil {
		min = *req.Min
	}
	if req.Max != nil {
		max = *req.Max
	}
	if err := validateDraw(count, min, max); err != nil {
		return nil, err
	}

	if !s.limiter(user.ID).AllowN(s.now(), 1) {
		log.WithFields(log.Fields{
			"userID":    user.ID,
			"perMinute": s.perMinute,
		}).Warn("Random draw rate limit exceeded")
		return nil, ErrRateLimited
	}

	numbers, err := s.generator.GenerateIntegers(ctx, count, min, max, false)
	if err != nil {
		return nil, fmt.Errorf("failed to draw random numbers: %w", err)
	}

	log.WithFields(log.Fields{
		"userID": user.ID,
		"count":  count,
		"min":    min,
		"max":    max,
	}).Debug("Random numbers drawn")

	return numbers, nil
}

// limiter returns the token bucket of a user, creating it on first use
func (s *randomService) limiter(userID string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= limiterSweepInterval {
		s.sweepLimiters(now)
	}

	limiter, exists := s.limiters[userID]
	if !exists {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMinute)), s.perMinute)
		s.limiters[userID] = limiter
	}

	return limiter
}

// sweepLimiters drops buckets that have refilled completely. A full bucket
// behaves exactly like a new one, so forgetting it loses nothing.
func (s *randomService) sweepLimiters(now time.Time) {
	for userID, limiter := range s.limiters {
		if limiter.TokensAt(now) >= float64(limiter.Burst()) {
			delete(s.limiters, userID)
		}
	}
	s.lastSweep = now
}

func validateDraw(count, min, max int) error {
	if count < 1 || count > maxDrawCount {
		return NewValidationError(fmt.Sprintf("Count must be between 1 and %d", maxDrawCount))
	}
	if min < minDrawValue || max > maxDrawValue {
		return NewValidationError("Min and max must be between -1000000000 and 1000000000")
	}
	if min > max {
		return NewValidationError("Min must not be greater than max")
	}
	if count > max-min+1 {
		return NewValidationError("Count exceeds the number of unique values in range")
	}
	return nil
}
