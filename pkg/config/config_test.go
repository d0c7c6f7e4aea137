package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncSettings struct {
	BaseURL      string        `env:"SF_TEST_BASE_URL" envDefault:"http://localhost:8080"`
	PollInterval time.Duration `env:"SF_TEST_POLL_INTERVAL" envDefault:"30s"`
	Retries      int           `env:"SF_TEST_RETRIES" envDefault:"3"`
	Brokers      []string      `env:"SF_TEST_BROKERS" envSeparator:","`
	Session      string        `env:"SF_TEST_SESSION"`
}

type secretSettings struct {
	Secret string `env:"SF_TEST_SECRET,required"`
}

func TestLoad(t *testing.T) {
	var cfg syncSettings
	require.NoError(t, Load(&cfg))
	assert.Equal(t, syncSettings{BaseURL: "http://localhost:8080", PollInterval: 30 * time.Second, Retries: 3}, cfg)

	t.Setenv("SF_TEST_POLL_INTERVAL", "5s")
	t.Setenv("SF_TEST_BROKERS", "kafka-1:9092,kafka-2:9092")
	cfg = syncSettings{}
	require.NoError(t, Load(&cfg))
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("required missing", func(t *testing.T) {
		err := Load(&secretSettings{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config")
	})
	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("SF_TEST_POLL_INTERVAL", "soon")
		require.Error(t, Load(&syncSettings{}))
	})
	t.Run("bad int", func(t *testing.T) {
		t.Setenv("SF_TEST_RETRIES", "three")
		require.Error(t, Load(&syncSettings{}))
	})
}

func TestLoadFrom_IgnoresProcessEnvironment(t *testing.T) {
	t.Setenv("SF_TEST_RETRIES", "9")

	var cfg syncSettings
	require.NoError(t, LoadFrom(&cfg, map[string]string{"SF_TEST_SECRET": "x", "SF_TEST_BASE_URL": "https://shop.example"}))
	assert.Equal(t, "https://shop.example", cfg.BaseURL)
	assert.Equal(t, 3, cfg.Retries)

	var secret secretSettings
	require.NoError(t, LoadFrom(&secret, map[string]string{"SF_TEST_SECRET": "s3cret"}))
	assert.Equal(t, "s3cret", secret.Secret)
}

func TestLoadFrom_KeepsValuesWithoutDefault(t *testing.T) {
	cfg := syncSettings{Session: "from-profile"}
	require.NoError(t, LoadFrom(&cfg, map[string]string{}))
	assert.Equal(t, "from-profile", cfg.Session)

	require.NoError(t, LoadFrom(&cfg, map[string]string{"SF_TEST_SESSION": "from-env"}))
	assert.Equal(t, "from-env", cfg.Session)
}
