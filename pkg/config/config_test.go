package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envboard/envboard/pkg/observability"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.HealthPort)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, observability.InfoLevel, cfg.Observability.LogLevel)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.False(t, cfg.RateLimit.Distributed)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("ENVBOARD_PORT", "8888")
	t.Setenv("ENVBOARD_LOG_LEVEL", "debug")
	t.Setenv("ENVBOARD_POSTGRES_MAX_CONNS", "50")
	t.Setenv("ENVBOARD_READ_TIMEOUT", "30s")
	t.Setenv("ENVBOARD_RATELIMIT_ENABLED", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8888", cfg.Server.Port)
	assert.Equal(t, observability.DebugLevel, cfg.Observability.LogLevel)
	assert.Equal(t, 50, cfg.Storage.PostgresMaxConns)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadConfig_PortClash(t *testing.T) {
	t.Setenv("ENVBOARD_PORT", "9090")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestLoadConfig_DistributedRateLimitNeedsRedis(t *testing.T) {
	t.Setenv("ENVBOARD_RATELIMIT_DISTRIBUTED", "true")
	t.Setenv("ENVBOARD_REDIS_URL", "")

	cfg, err := LoadConfig()
	if err == nil {
		// Default config carries a redis URL; clearing it must fail.
		cfg.Storage.RedisURL = ""
		err = cfg.Validate()
	}
	assert.Error(t, err)
}
