package config_test

import (
	"testing"
	"time"

	"github.com/dom/squad-dashboard/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := config.Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, 120*time.Second, cfg.FinalizationLockTTL)
	assert.False(t, cfg.StrictMeritCatalog)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("FINALIZATION_LOCK_TTL_SECONDS", "15")
	t.Setenv("MERIT_STRICT_CATALOG", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://dash.example.com, ,https://admin.example.com")

	cfg, err := config.Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 15*time.Second, cfg.FinalizationLockTTL)
	assert.True(t, cfg.StrictMeritCatalog)
	assert.Equal(t, []string{"https://dash.example.com", "https://admin.example.com"}, cfg.AllowedOrigins)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("FINALIZATION_LOCK_TTL_SECONDS", "soon")
	t.Setenv("MERIT_STRICT_CATALOG", "maybe")

	cfg, err := config.Load(zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 120*time.Second, cfg.FinalizationLockTTL)
	assert.False(t, cfg.StrictMeritCatalog)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")

		_, err := config.Load(zerolog.Nop())
		assert.Error(t, err)
	})

	t.Run("non-positive lock ttl", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("FINALIZATION_LOCK_TTL_SECONDS", "0")

		_, err := config.Load(zerolog.Nop())
		assert.Error(t, err)
	})
}
