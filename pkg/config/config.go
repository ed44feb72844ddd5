// Package config loads application configuration from environment
// variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/envboard/envboard/pkg/observability"
	"github.com/envboard/envboard/pkg/storage"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Storage configuration
	Storage storage.Config

	// Observability configuration
	Observability ObservabilityConfig

	// RateLimit configuration
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for probes)
	HealthPort string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// RateLimitConfig selects the rate limiting backend.
type RateLimitConfig struct {
	Enabled bool
	// Distributed switches to the Redis-backed limiter so limits are
	// shared across instances.
	Distributed bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Storage:       loadStorageConfig(),
		Observability: loadObservabilityConfig(),
		RateLimit:     loadRateLimitConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("ENVBOARD_HOST", "0.0.0.0"),
		Port:            getEnv("ENVBOARD_PORT", "8080"),
		ReadTimeout:     getEnvDuration("ENVBOARD_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("ENVBOARD_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("ENVBOARD_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("ENVBOARD_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("ENVBOARD_HEALTH_PORT", "9090"),
	}
}

func loadStorageConfig() storage.Config {
	cfg := storage.DefaultConfig()

	if pgURL := getEnv("ENVBOARD_POSTGRES_URL", ""); pgURL != "" {
		cfg.PostgresURL = pgURL
	}
	if maxConns := getEnvInt("ENVBOARD_POSTGRES_MAX_CONNS", 0); maxConns > 0 {
		cfg.PostgresMaxConns = maxConns
	}
	if minConns := getEnvInt("ENVBOARD_POSTGRES_MIN_CONNS", 0); minConns > 0 {
		cfg.PostgresMinConns = minConns
	}
	if timeout := getEnvDuration("ENVBOARD_POSTGRES_TIMEOUT", 0); timeout > 0 {
		cfg.PostgresTimeout = timeout
	}

	if redisURL := getEnv("ENVBOARD_REDIS_URL", ""); redisURL != "" {
		cfg.RedisURL = redisURL
	}
	if redisPassword := getEnv("ENVBOARD_REDIS_PASSWORD", ""); redisPassword != "" {
		cfg.RedisPassword = redisPassword
	}
	if redisDB := getEnvInt("ENVBOARD_REDIS_DB", -1); redisDB >= 0 {
		cfg.RedisDB = redisDB
	}
	if maxRetries := getEnvInt("ENVBOARD_REDIS_MAX_RETRIES", 0); maxRetries > 0 {
		cfg.RedisMaxRetries = maxRetries
	}
	if poolSize := getEnvInt("ENVBOARD_REDIS_POOL_SIZE", 0); poolSize > 0 {
		cfg.RedisPoolSize = poolSize
	}

	return cfg
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       observability.ParseLogLevel(getEnv("ENVBOARD_LOG_LEVEL", "info")),
		MetricsEnabled: getEnvBool("ENVBOARD_METRICS_ENABLED", true),
	}
}

func loadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:     getEnvBool("ENVBOARD_RATELIMIT_ENABLED", true),
		Distributed: getEnvBool("ENVBOARD_RATELIMIT_DISTRIBUTED", false),
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must differ")
	}
	if c.Storage.PostgresURL == "" {
		return fmt.Errorf("postgres URL is required")
	}
	if c.RateLimit.Distributed && c.Storage.RedisURL == "" {
		return fmt.Errorf("distributed rate limiting requires a redis URL")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
