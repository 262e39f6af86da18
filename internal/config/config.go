package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds application configuration
type Config struct {
	DBPath   string
	LogLevel string
	// Debounce is the quiet period after a bar mutation before auto-save.
	Debounce time.Duration
	// Cooldown is how long a toggle suppresses auto-saves after rewriting
	// the bar.
	Cooldown time.Duration
}

// NewConfig creates a new configuration with defaults, letting environment
// variables override them (BARSWITCH_DB, BARSWITCH_LOG_LEVEL,
// BARSWITCH_DEBOUNCE, BARSWITCH_COOLDOWN).
func NewConfig() *Config {
	cfg := &Config{
		DBPath:   getDefaultDBPath(),
		LogLevel: "info",
		Debounce: 500 * time.Millisecond,
		Cooldown: time.Second,
	}

	if v := os.Getenv("BARSWITCH_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("BARSWITCH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v, err := time.ParseDuration(os.Getenv("BARSWITCH_DEBOUNCE")); err == nil && v > 0 {
		cfg.Debounce = v
	}
	if v, err := time.ParseDuration(os.Getenv("BARSWITCH_COOLDOWN")); err == nil && v > 0 {
		cfg.Cooldown = v
	}
	// Self-triggered saves are only suppressed while the toggle gate
	// outlives the debounce window.
	if cfg.Cooldown < cfg.Debounce {
		cfg.Cooldown = cfg.Debounce
	}
	return cfg
}

// WithDBPath sets a custom database path
func (c *Config) WithDBPath(path string) *Config {
	c.DBPath = path
	return c
}

func getDefaultDBPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "barswitch.db"
	}
	return filepath.Join(homeDir, ".barswitch", "barswitch.db")
}
