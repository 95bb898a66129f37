package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cuts?sslmode=disable")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6379", cfg.RedisAddr)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "@daily", cfg.IngestSchedule)
	assert.False(t, cfg.LogQueries)
	assert.Equal(t, "https://www.youtube.com", cfg.Source.BaseURL)
	assert.Equal(t, "@olgaenvivo_", cfg.Source.Channel)
	assert.Equal(t, 1.0, cfg.Source.RatePerSecond)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db/cuts")
	t.Setenv("SOURCE_RATE_PER_SECOND", "0.5")
	t.Setenv("SOURCE_BURST", "3")
	t.Setenv("DB_LOG_QUERIES", "true")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.LogQueries)

	limiter := cfg.Source.Limiter()
	require.NotNil(t, limiter)
	assert.Equal(t, rate.Limit(0.5), limiter.Limit())
	assert.Equal(t, 3, limiter.Burst())
}

func TestFromEnvRequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestLimiterDisabled(t *testing.T) {
	assert.Nil(t, SourceConfig{RatePerSecond: 0}.Limiter())
}
