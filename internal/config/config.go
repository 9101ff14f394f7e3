// Package config resolves process-wide settings from defaults, an optional
// YAML file, and command-line flags (flags win).
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/agentic-research/sqlite-helper/internal/apperr"
)

// Config carries the settings shared by both protocol front ends.
type Config struct {
	// MaxRows is the process-wide ceiling on rows returned per query.
	MaxRows int
	// Timeout is the soft per-request deadline applied by the front
	// ends. Zero disables it. The core never times out on its own.
	Timeout time.Duration
	// BusyTimeout bounds SQLite's busy-wait on cross-process lock
	// contention.
	BusyTimeout time.Duration
	// AllowedDirs is the database path allow-list; empty disables
	// sandboxing.
	AllowedDirs []string
	// LogLevel for stderr logging: debug, info, warn, error.
	LogLevel string
}

// Default returns the built-in settings, matching the flag defaults.
func Default() Config {
	return Config{
		MaxRows:     1000,
		Timeout:     30 * time.Second,
		BusyTimeout: 2 * time.Second,
		LogLevel:    "info",
	}
}

type fileConfig struct {
	MaxRows       *int     `yaml:"max_rows"`
	TimeoutMS     *int     `yaml:"timeout_ms"`
	BusyTimeoutMS *int     `yaml:"busy_timeout_ms"`
	AllowedDirs   []string `yaml:"allowed_dirs"`
	LogLevel      string   `yaml:"log_level"`
}

// Load reads a YAML config file over the defaults. Only keys present in the
// file override; absent keys keep their default.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, apperr.IO(err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, apperr.InvalidRequest("parse config %s: %v", path, err)
	}
	if fc.MaxRows != nil {
		cfg.MaxRows = *fc.MaxRows
	}
	if fc.TimeoutMS != nil {
		cfg.Timeout = time.Duration(*fc.TimeoutMS) * time.Millisecond
	}
	if fc.BusyTimeoutMS != nil {
		cfg.BusyTimeout = time.Duration(*fc.BusyTimeoutMS) * time.Millisecond
	}
	if len(fc.AllowedDirs) > 0 {
		cfg.AllowedDirs = fc.AllowedDirs
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	return cfg, nil
}
