package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "segredo")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "stockroom.db", cfg.DatabaseURL)
	assert.Equal(t, 5*time.Second, cfg.DBTimeout)
	assert.Equal(t, uint64(3), cfg.TxMaxRetries)
	assert.Equal(t, time.Hour, cfg.TokenExpiry)
	assert.Equal(t, "10-M", cfg.LoginRateLimit)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "segredo")
	t.Setenv("DATABASE_URL", "postgres://user:pw@localhost/stock?sslmode=disable")
	t.Setenv("DB_TIMEOUT", "2s")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://user:pw@localhost/stock?sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, 2*time.Second, cfg.DBTimeout)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := config.Load()
	assert.Error(t, err)
}
