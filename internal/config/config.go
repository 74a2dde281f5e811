// Package config loads settings from LEETGRADE_* environment variables.
// Command-line flags override these values.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the environment-provided defaults.
type Config struct {
	// DBPath is the history file. Empty disables history.
	DBPath   string        `env:"LEETGRADE_DB"`
	Addr     string        `env:"LEETGRADE_ADDR" envDefault:"127.0.0.1:8080"`
	Model    string        `env:"LEETGRADE_MODEL"`
	Rubric   string        `env:"LEETGRADE_RUBRIC" envDefault:"general"`
	Timeout  time.Duration `env:"LEETGRADE_TIMEOUT" envDefault:"60s"`
	LogLevel string        `env:"LEETGRADE_LOG_LEVEL" envDefault:"info"`
	Debug    bool          `env:"LEETGRADE_DEBUG"`
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
