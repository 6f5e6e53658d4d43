package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"randpredict/api"
	"randpredict/auth"
	"randpredict/cache"
	"randpredict/config"
	"randpredict/database"
	"randpredict/events"
	"randpredict/metrics"
	"randpredict/randomorg"
	"randpredict/repository"
	"randpredict/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	// Load configuration
	cfg := config.Get()
	configureLogging(cfg)

	log.WithField("environment", cfg.Environment).Info("Starting randpredict...")

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	report, err := db.CheckStructure(ctx)
	if err != nil {
		return fmt.Errorf("failed to check database structure: %w", err)
	}
	if !report.OK() {
		log.WithField("report", report.String()).Warn("Database structure is incomplete, run 'randpredict migrate up'")
	}
	log.Println("Database connection established successfully")

	// Initialize event bus and subscribers
	eventBus := events.NewBus()
	m := metrics.New()
	m.Subscribe(eventBus)

	analyticsCache, closeCache := newAnalyticsCache(ctx, cfg)
	defer closeCache()
	cache.SubscribeInvalidation(eventBus, analyticsCache)

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services
	var generator service.RandomNumberGenerator
	if cfg.RandomAPIKey != "" {
		generator = randomorg.NewClient(cfg.RandomAPIURL, cfg.RandomAPIKey)
	} else {
		log.Warn("RANDOM_API_KEY is not set, /api/random will fail")
	}

	services := api.Services{
		Games:       service.NewGameService(uowFactory),
		Leaderboard: service.NewLeaderboardService(uowFactory),
		Analytics:   service.NewAnalyticsService(uowFactory, analyticsCache),
		Accounts:    service.NewAccountService(uowFactory),
		Random:      service.NewRandomService(generator, cfg.RandomDrawsPerMinute),
	}
	log.Println("Services initialized successfully")

	authenticator := auth.NewAuthenticator(auth.NewVerifier(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseJWTSecret))
	if cfg.SupabaseJWTSecret != "" {
		log.Info("Verifying sessions with the Supabase JWT secret")
	} else {
		log.Info("Verifying sessions against the Supabase auth API")
	}

	server := api.NewServer(cfg.HTTPAddr, api.NewHandler(services, m, db), authenticator, m)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()

	// Wait for context cancellation or a server failure
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}

	log.Println("Shutting down...")

	// Give in-flight requests time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		log.WithError(err).Warn("Error shutting down HTTP server")
	}

	// Let event handlers finish before the cache and database close
	done := make(chan struct{})
	go func() {
		eventBus.Wait()
		close(done)
	}()
	select {
	case <-done:
		log.Println("Shutdown completed")
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	}

	return nil
}

// newAnalyticsCache connects to Redis when configured and falls back to no caching
func newAnalyticsCache(ctx context.Context, cfg *config.Config) (service.AnalyticsCache, func()) {
	if cfg.RedisURL == "" {
		return cache.Noop{}, func() {}
	}

	redisCache, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.AnalyticsCacheTTL)
	if err != nil {
		log.WithError(err).Warn("Analytics cache unavailable, serving uncached analytics")
		return cache.Noop{}, func() {}
	}

	log.WithField("ttl", cfg.AnalyticsCacheTTL).Info("Analytics cache connected")
	return redisCache, func() {
		if err := redisCache.Close(); err != nil {
			log.WithError(err).Warn("Error closing analytics cache")
		}
	}
}

func configureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown LOG_LEVEL, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
