package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/sqlite-helper/internal/apperr"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1000, cfg.MaxRows)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 2*time.Second, cfg.BusyTimeout)
	assert.Empty(t, cfg.AllowedDirs)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverridesPresentKeysOnly(t *testing.T) {
	path := writeConfig(t, `
max_rows: 250
timeout_ms: 5000
allowed_dirs:
  - /srv/data
  - /tmp/scratch
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.MaxRows)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"/srv/data", "/tmp/scratch"}, cfg.AllowedDirs)

	// Keys absent from the file keep their defaults.
	assert.Equal(t, 2*time.Second, cfg.BusyTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadZeroTimeoutDisables(t *testing.T) {
	// An explicit zero is an override, not an absent key.
	cfg, err := Load(writeConfig(t, "timeout_ms: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.Timeout)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, apperr.CodeIO, apperr.CodeOf(err))
}

func TestLoadMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "max_rows: [not an int\n"))
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidRequest, apperr.CodeOf(err))
}

func TestParseLevel(t *testing.T) {
	for input, want := range map[string]string{
		"debug": "DEBUG",
		"info":  "INFO",
		"warn":  "WARN",
		"error": "ERROR",
		"bogus": "INFO",
		"":      "INFO",
	} {
		assert.Equal(t, want, parseLevel(input).String(), "input %q", input)
	}
}
