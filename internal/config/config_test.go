package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "migrations", cfg.MigrationsPath)
	require.Equal(t, 30*time.Second, cfg.CacheTTL)
	require.Equal(t, 10.0, cfg.RateLimitRPS)
	require.Equal(t, 20, cfg.RateLimitBurst)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "5")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, 2*time.Minute, cfg.CacheTTL)
	require.Equal(t, 2.5, cfg.RateLimitRPS)
	require.Equal(t, 5, cfg.RateLimitBurst)
}

func TestInvalidEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("CACHE_TTL", "soon")
	t.Setenv("RATE_LIMIT_BURST", "lots")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 30*time.Second, cfg.CacheTTL)
	require.Equal(t, 20, cfg.RateLimitBurst)
}
