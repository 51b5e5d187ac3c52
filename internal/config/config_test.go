package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTER_BASE_URL", "")
	t.Setenv("KAFKA_ENABLED", "")

	cfg := Load()

	assert.Equal(t, ":3000", cfg.Server.Port)
	assert.Equal(t, "data.sqlite", cfg.Database.Path)
	assert.Equal(t, "https://joinposter.com/api", cfg.Providers.PosterBaseURL)
	assert.Equal(t, "https://api.telegram.org", cfg.Providers.TelegramBaseURL)
	assert.Equal(t, 8*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.ClientTokenTTL)
	assert.Equal(t, 120, cfg.RateLimit.Public)
	assert.Equal(t, 20, cfg.RateLimit.Login)
	assert.Equal(t, 10, cfg.RateLimit.Signup)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, "Asia/Tashkent", cfg.Server.ScheduleZone)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", ":9090")
	t.Setenv("POSTER_BASE_URL", "http://poster.local/api/")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("ADMIN_LOGIN", "  root ")
	t.Setenv("RATE_LIMIT_PUBLIC", "5")
	t.Setenv("ADMIN_SESSION_TTL", "1h")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "http://poster.local/api", cfg.Providers.PosterBaseURL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, "root", cfg.Auth.AdminLogin)
	assert.Equal(t, 5, cfg.RateLimit.Public)
	assert.Equal(t, time.Hour, cfg.Auth.SessionTTL)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Path: "x.sqlite"}, RateLimit: RateLimitConfig{Backend: "redis"}}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_SESSION_SECRET")
	assert.Contains(t, err.Error(), "CLIENT_JWT_SECRET")
	assert.Contains(t, err.Error(), "REDIS_ADDR")

	cfg.Auth.SessionSecret = "s"
	cfg.Auth.ClientJWTSecret = "c"
	cfg.Redis.Addr = "localhost:6379"
	assert.NoError(t, cfg.Validate())
}
