package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"randpredict/database"
)

const defaultRandomAPIURL = "https://api.random.org/json-rpc/4/invoke"

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Supabase configuration
	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string // Enables local token verification when set

	// Random.org configuration
	RandomAPIKey         string
	RandomAPIURL         string
	RandomDrawsPerMinute int // Per-user limit on /api/random

	// Analytics cache configuration
	RedisURL          string
	AnalyticsCacheTTL time.Duration

	// HTTP configuration
	HTTPAddr string

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// Load reads the configuration from the environment without touching the global instance
func Load() (*Config, error) {
	return load()
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// Supabase
		SupabaseURL:       strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
		SupabaseAnonKey:   os.Getenv("SUPABASE_ANON_KEY"),
		SupabaseJWTSecret: os.Getenv("SUPABASE_JWT_SECRET"),

		// Random.org
		RandomAPIKey:         os.Getenv("RANDOM_API_KEY"),
		RandomAPIURL:         getEnvWithDefault("RANDOM_API_URL", defaultRandomAPIURL),
		RandomDrawsPerMinute: 10,

		// Cache
		RedisURL:          os.Getenv("REDIS_URL"),
		AnalyticsCacheTTL: 60 * time.Second,

		// HTTP
		HTTPAddr: getEnvWithDefault("HTTP_ADDR", ":8080"),

		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if draws := os.Getenv("RANDOM_DRAWS_PER_MINUTE"); draws != "" {
		parsed, err := strconv.Atoi(draws)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("RANDOM_DRAWS_PER_MINUTE must be a positive integer, got %q", draws)
		}
		config.RandomDrawsPerMinute = parsed
	}
	if ttl := os.Getenv("ANALYTICS_CACHE_TTL"); ttl != "" {
		parsed, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("ANALYTICS_CACHE_TTL is not a valid duration: %w", err)
		}
		config.AnalyticsCacheTTL = parsed
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
		if config.SupabaseURL == "" {
			return nil, fmt.Errorf("SUPABASE_URL is required")
		}
		if config.SupabaseJWTSecret == "" && config.SupabaseAnonKey == "" {
			return nil, fmt.Errorf("SUPABASE_ANON_KEY is required when SUPABASE_JWT_SECRET is not set")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:          "test",
		RandomAPIURL:         defaultRandomAPIURL,
		RandomDrawsPerMinute: 10,
		AnalyticsCacheTTL:    time.Minute,
		HTTPAddr:             ":8080",
		LogLevel:             "info",
	}
}
