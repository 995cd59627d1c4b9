package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"REDHOPE_ADDR", "DATABASE_URL", "REDIS_URL", "KAFKA_BROKERS", "JWT_SIGNING_KEY", "TOKEN_TTL", "HTTP_SHUTDOWN_TIMEOUT", "HTTP_READ_HEADER_TIMEOUT", "REDIS_CONNECT_ATTEMPTS"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.Redis.URL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "redhope.audit", cfg.Kafka.AuditTopic)
	assert.Equal(t, time.Second, cfg.Kafka.RelayInterval)
	assert.Equal(t, 100, cfg.Kafka.RelayBatch)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ReadHeaderTimeout)
	assert.Equal(t, 3, cfg.Redis.ConnectAttempts)
	assert.True(t, cfg.UsesDevSigningKey())
	assert.False(t, cfg.IsProduction())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("REDHOPE_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", " broker-1:9092, broker-2:9092,broker-1:9092,")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("REDIS_POOL_SIZE", "not-a-number")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("HTTP_WRITE_TIMEOUT", "45s")
	t.Setenv("HTTP_SHUTDOWN_TIMEOUT", "-1s")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Equal(t, 45*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout, "non-positive durations fall back")
	assert.True(t, cfg.IsProduction())
}
