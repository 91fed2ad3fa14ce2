// Package config loads the lambda configuration from the environment and the
// prompt profiles from yaml.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// ErrMissingAPIKey is returned by RequireAPIKey when neither OPENAI_API_KEY
// nor OPEN_API_KEY is set.
var ErrMissingAPIKey = errors.New("OPENAI_API_KEY is not set")

// Config is the environment of every chat lambda. Not every lambda needs
// every value: the connect handlers never talk to the llm provider.
type Config struct {
	OpenAIAPIKey       string `envconfig:"OPENAI_API_KEY"`
	LegacyOpenAIAPIKey string `envconfig:"OPEN_API_KEY"`
	OpenAIBaseURL      string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`

	Region            string `envconfig:"AWS_REGION" default:"us-west-2"`
	ConnectionsTable  string `envconfig:"CONNECTIONS_TABLE" default:"ConnectionTable"`
	ConnectionTTL     int64  `envconfig:"CONNECTION_TTL" default:"7200"`
	WebsocketEndpoint string `envconfig:"WEBSOCKET_ENDPOINT"`

	FlushInterval time.Duration `envconfig:"FLUSH_INTERVAL" default:"0s"`
	FlushBytes    int           `envconfig:"FLUSH_BYTES" default:"0"`
	PushRate      float64       `envconfig:"PUSH_RATE" default:"0"`

	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	ProfilesFile string `envconfig:"PROFILES_FILE"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process environment")
	}

	if cfg.ConnectionTTL < 0 {
		return nil, errors.Errorf("CONNECTION_TTL must not be negative, got %d", cfg.ConnectionTTL)
	}

	if cfg.FlushBytes < 0 || cfg.FlushInterval < 0 || cfg.PushRate < 0 {
		return nil, errors.New("FLUSH_BYTES, FLUSH_INTERVAL and PUSH_RATE must not be negative")
	}

	return cfg, nil
}

// APIKey returns the provider key. OPEN_API_KEY is the name older
// deployments used.
func (cfg *Config) APIKey() string {
	if cfg.OpenAIAPIKey != "" {
		return cfg.OpenAIAPIKey
	}

	return cfg.LegacyOpenAIAPIKey
}

// RequireAPIKey fails when no provider key is configured.
func (cfg *Config) RequireAPIKey() error {
	if cfg.APIKey() == "" {
		return ErrMissingAPIKey
	}

	return nil
}
