package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration. All business data lives behind
// remote services, so the only stateful dependency configured here is the
// session backend.
type Server struct {
	Addr string

	IdentityURL  string
	RegistryURL  string
	DirectoryURL string
	NotifyURL    string

	// AdminEmail receives collaboration-request notifications.
	AdminEmail string

	// FlagsFile points at the YAML feature-flag file. Empty means all flags
	// default on.
	FlagsFile string

	SessionTTL time.Duration

	Redis RedisConfig
}

// RedisConfig holds connection settings for the session backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:         envOr("BIZDIR_ADDR", ":8080"),
		IdentityURL:  envOr("IDENTITY_SERVICE_URL", "http://localhost:8001"),
		RegistryURL:  envOr("REGISTRY_SERVICE_URL", "http://localhost:8002"),
		DirectoryURL: envOr("DIRECTORY_SERVICE_URL", "http://localhost:8003"),
		NotifyURL:    envOr("NOTIFY_SERVICE_URL", "http://localhost:8004"),
		AdminEmail:   envOr("ADMIN_NOTIFY_EMAIL", "directory-admin@example.com"),
		FlagsFile:    os.Getenv("FEATURE_FLAGS_FILE"),
		SessionTTL:   envDuration("SESSION_TTL", 2*time.Hour),
		Redis: RedisConfig{
			URL:          envAllowEmpty("REDIS_URL", "redis://localhost:6379/0"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envAllowEmpty treats a set-but-empty variable as an explicit empty value
// rather than substituting the fallback; used to disable optional backends.
func envAllowEmpty(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
