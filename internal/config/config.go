// Package config loads the demo CLI's environment-driven configuration,
// the same os.Getenv/strconv shape as the teacher's
// internal/config.LoadConfig, with a QDB_ prefix in place of MORFX_.
package config

import (
	"os"
	"strconv"
)

// Config holds the demo CLI's runtime configuration.
type Config struct {
	DatabasePath string
	Debug        bool
	DefaultLevDistance int
}

// Load reads configuration from environment variables, falling back to
// defaults suited to local demo runs.
func Load() *Config {
	cfg := &Config{
		DatabasePath:       os.Getenv("QDB_DATABASE_PATH"),
		DefaultLevDistance: 2,
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "queryalgebra.db"
	}

	if debugStr := os.Getenv("QDB_DEBUG"); debugStr != "" {
		if debug, err := strconv.ParseBool(debugStr); err == nil {
			cfg.Debug = debug
		}
	}

	if levStr := os.Getenv("QDB_DEFAULT_LEV_DISTANCE"); levStr != "" {
		if lev, err := strconv.Atoi(levStr); err == nil && lev >= 0 {
			cfg.DefaultLevDistance = lev
		}
	}

	return cfg
}
