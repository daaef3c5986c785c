package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("BIZDIR_ADDR", ":9999")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("REDIS_POOL_SIZE", "25")
	t.Setenv("IDENTITY_SERVICE_URL", "https://sso.internal")

	cfg := FromEnv()
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 25, cfg.Redis.PoolSize)
	assert.Equal(t, "https://sso.internal", cfg.IdentityURL)
}

func TestFromEnvEmptyRedisURLDisablesBackend(t *testing.T) {
	t.Setenv("REDIS_URL", "")

	cfg := FromEnv()
	assert.Empty(t, cfg.Redis.URL)
}

func TestFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SESSION_TTL", "not-a-duration")
	t.Setenv("REDIS_POOL_SIZE", "lots")

	cfg := FromEnv()
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
}
