// Package cache keeps computed global analytics between game runs.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"randpredict/events"
	"randpredict/models"
	"randpredict/service"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	globalKeyPrefix = "randpredict:analytics:global:"
	generationKey   = "randpredict:analytics:generation"
)

// Noop never stores anything
type Noop struct{}

func (Noop) Generation(context.Context) (int64, error) {
	return 0, nil
}

func (Noop) GetGlobal(context.Context, int64, string) (*models.GlobalAnalytics, bool, error) {
	return nil, false, nil
}

func (Noop) SetGlobal(context.Context, int64, string, *models.GlobalAnalytics) error {
	return nil
}

func (Noop) Invalidate(context.Context) error {
	return nil
}

// Redis stores analytics documents as JSON with a TTL, keyed by generation.
// Invalidate bumps the generation; documents of older generations expire on their own.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to redisURL and checks the connection
func NewRedis(ctx context.Context, redisURL string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Redis{client: client, ttl: ttl}, nil
}

// Generation returns the current cache generation, 0 before the first invalidation
func (c *Redis) Generation(ctx context.Context) (int64, error) {
	generation, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cache generation: %w", err)
	}
	return generation, nil
}

// GetGlobal returns the cached document of a game type
func (c *Redis) GetGlobal(ctx context.Context, generation int64, gameType string) (*models.GlobalAnalytics, bool, error) {
	raw, err := c.client.Get(ctx, globalKey(generation, gameType)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached analytics: %w", err)
	}

	var doc models.GlobalAnalytics
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached analytics: %w", err)
	}

	return &doc, true, nil
}

// SetGlobal stores the document of a game type under generation
func (c *Redis) SetGlobal(ctx context.Context, generation int64, gameType string, doc *models.GlobalAnalytics) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode analytics: %w", err)
	}

	if err := c.client.Set(ctx, globalKey(generation, gameType), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache analytics: %w", err)
	}

	return nil
}

// Invalidate moves to a new generation, hiding every cached document
func (c *Redis) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate analytics: %w", err)
	}
	return nil
}

func globalKey(generation int64, gameType string) string {
	return fmt.Sprintf("%s%d:%s", globalKeyPrefix, generation, gameType)
}

// Close closes the redis connection
func (c *Redis) Close() error {
	return c.client.Close()
}

// SubscribeInvalidation drops cached analytics whenever runs are recorded or migrated
func SubscribeInvalidation(bus *events.Bus, cache service.AnalyticsCache) {
	invalidate := func(ctx context.Context, e events.Event) {
		if err := cache.Invalidate(ctx); err != nil {
			log.WithError(err).WithField("eventType", e.Type()).Warn("Failed to invalidate analytics cache")
		}
	}

	bus.Subscribe(events.EventTypeGameRunRecorded, invalidate)
	bus.Subscribe(events.EventTypeAccountMigrated, invalidate)
}
