package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codimo/promptdiff/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "promptdiff.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = ":9000"
token = "abc"

[diff]
max_lines = 100
context = 1

[log]
level = "debug"
format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "abc", cfg.Server.Token)
	assert.Equal(t, 100, cfg.Diff.MaxLines)
	assert.Equal(t, 1, cfg.Diff.Context)
	assert.Equal(t, "json", cfg.Log.Format)

	// Unset keys keep their defaults.
	assert.Equal(t, Default().Store.Dir, cfg.Store.Dir)
	assert.Equal(t, Default().Diff.CacheSize, cfg.Diff.CacheSize)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "[diff]\nmax_line = 10\n")
	_, err := Load(path)
	require.ErrorIs(t, err, core.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "diff.max_line")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PROMPTDIFF_STORE", "/tmp/prompts")
	t.Setenv("PROMPTDIFF_MAX_LINES", "42")
	t.Setenv("PROMPTDIFF_RATE_LIMIT", "2.5")
	t.Setenv("PROMPTDIFF_TOKEN", "env-token")

	cfg, err := Load(writeConfig(t, "[store]\ndir = \"file-dir\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/prompts", cfg.Store.Dir)
	assert.Equal(t, 42, cfg.Diff.MaxLines)
	assert.Equal(t, 2.5, cfg.Server.RateLimit)
	assert.Equal(t, "env-token", cfg.Server.Token)
}

func TestEnvOverridesInvalid(t *testing.T) {
	t.Setenv("PROMPTDIFF_CONTEXT", "three")
	_, err := Load(writeConfig(t, ""))
	require.ErrorIs(t, err, core.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "PROMPTDIFF_CONTEXT")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Diff.MaxLines = -1
	cfg.Diff.Width = 2
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.ErrorIs(t, err, core.ErrInvalidConfig)
	for _, field := range []string{"diff.max_lines", "diff.width", "log.level", "log.format"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "version", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, float64(3), entry["version"])
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toml")
	cfg := Default()
	cfg.Server.Token = "round-trip"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
