package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var configKeys = []string{
	"OPENAI_API_KEY", "OPEN_API_KEY", "OPENAI_BASE_URL", "AWS_REGION",
	"CONNECTIONS_TABLE", "CONNECTION_TTL", "WEBSOCKET_ENDPOINT",
	"FLUSH_INTERVAL", "FLUSH_BYTES", "PUSH_RATE", "LOG_LEVEL", "PROFILES_FILE",
}

// clearEnv unsets keys for the duration of the test.
func clearEnv(t *testing.T) {
	for _, k := range configKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()

	assert.NoError(t, err)
	assert.Equal(t, "", cfg.APIKey())
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAIBaseURL)
	assert.Equal(t, "us-west-2", cfg.Region)
	assert.Equal(t, "ConnectionTable", cfg.ConnectionsTable)
	assert.Equal(t, int64(7200), cfg.ConnectionTTL)
	assert.Equal(t, "", cfg.WebsocketEndpoint)
	assert.Equal(t, time.Duration(0), cfg.FlushInterval)
	assert.Equal(t, 0, cfg.FlushBytes)
	assert.Equal(t, 0.0, cfg.PushRate)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ErrMissingAPIKey, cfg.RequireAPIKey())
}

func TestLoad_environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CONNECTIONS_TABLE", "Connections-prod")
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("CONNECTION_TTL", "600")
	t.Setenv("FLUSH_INTERVAL", "50ms")
	t.Setenv("FLUSH_BYTES", "64")
	t.Setenv("PUSH_RATE", "20")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()

	assert.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.APIKey())
	assert.NoError(t, cfg.RequireAPIKey())
	assert.Equal(t, "Connections-prod", cfg.ConnectionsTable)
	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, int64(600), cfg.ConnectionTTL)
	assert.Equal(t, 50*time.Millisecond, cfg.FlushInterval)
	assert.Equal(t, 64, cfg.FlushBytes)
	assert.Equal(t, 20.0, cfg.PushRate)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestConfig_APIKey_legacy(t *testing.T) {
	cases := []struct {
		key      string
		legacy   string
		expected string
	}{
		{"", "sk-legacy", "sk-legacy"},
		{"sk-new", "sk-legacy", "sk-new"},
		{"sk-new", "", "sk-new"},
	}

	for _, c := range cases {
		cfg := &Config{OpenAIAPIKey: c.key, LegacyOpenAIAPIKey: c.legacy}
		assert.Equal(t, c.expected, cfg.APIKey())
	}
}

func TestLoad_errors(t *testing.T) {
	cases := []struct {
		key   string
		value string
	}{
		{"CONNECTION_TTL", "forever"},
		{"CONNECTION_TTL", "-1"},
		{"FLUSH_INTERVAL", "soon"},
		{"FLUSH_BYTES", "-5"},
		{"PUSH_RATE", "-1"},
	}

	for _, c := range cases {
		clearEnv(t)
		t.Setenv(c.key, c.value)

		_, err := Load()
		assert.Error(t, err, c.key+"="+c.value)
	}
}
