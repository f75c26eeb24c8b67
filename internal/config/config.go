// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port     string `env:"TICKLIST_PORT" envDefault:"8080"`
	DBPath   string `env:"TICKLIST_DB_PATH" envDefault:"ticklist.db"`
	LogLevel string `env:"TICKLIST_LOG_LEVEL" envDefault:"info"`

	// JWTSecret signs bearer tokens. The server refuses to start without it.
	JWTSecret string `env:"TICKLIST_JWT_SECRET,notEmpty"`

	// TokenTTL is how long issued tokens remain valid.
	TokenTTL time.Duration `env:"TICKLIST_TOKEN_TTL" envDefault:"30m"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
