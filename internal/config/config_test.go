package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, BackendFile, cfg.StoreBackend)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 720, cfg.CollectionTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.CollectionTTLDuration())
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "storefront", cfg.Tracing.ServiceName)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoad_KafkaBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	t.Setenv("STOREFRONT_HTTP_PORT", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "STORE_BACKEND must be one of")
}

func TestLoad_AuthPairMustBeComplete(t *testing.T) {
	t.Setenv("AUTH_EMAIL", "admin@example.com")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "AUTH_EMAIL and AUTH_PASSWORD")
}

func TestLoad_InvalidOTELSampleRate(t *testing.T) {
	t.Setenv("OTEL_SAMPLE_RATE", "2.0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "OTEL_SAMPLE_RATE must be between 0.0 and 1.0")
}

func TestLoad_RateLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "5")
	t.Setenv("RATE_LIMIT_BURST", "0")

	_, err := Load()
	assert.ErrorContains(t, err, "RATE_LIMIT_BURST must be positive")

	t.Setenv("RATE_LIMIT_RPS", "0")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.RateLimitRPS)
}

func TestLoad_RedisBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis.prod:6380")
	t.Setenv("COLLECTION_TTL_HOURS", "24")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "redis.prod:6380", cfg.RedisAddr)
	assert.Equal(t, 24*time.Hour, cfg.CollectionTTLDuration())
}
