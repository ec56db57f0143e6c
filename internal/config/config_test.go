package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	assert.Equal(t, float64(15), cfg.Map.DefaultZoom)
	assert.False(t, cfg.Map.Debug)

	assert.Equal(t, 5000, cfg.Sandbox.TimeoutMS)
	assert.Equal(t, 1024, cfg.Sandbox.MaxCallStack)
	assert.True(t, cfg.Sandbox.EnableConsole)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadMatchesDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":               "9000",
		"MAP_DEFAULT_ZOOM":   "4",
		"MAP_DEBUG":          "true",
		"LOG_LEVEL":          "debug",
		"SANDBOX_TIMEOUT_MS": "250",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, float64(4), cfg.Map.DefaultZoom)
	assert.True(t, cfg.Map.Debug)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 250, cfg.Sandbox.TimeoutMS)
}

func TestLoadWithFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  port: \"7777\"\nmap:\n  debug: true\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	// File values win over env/defaults.
	assert.Equal(t, "7777", cfg.Server.Port)
	assert.True(t, cfg.Map.Debug)
	// Untouched sections keep their defaults.
	assert.Equal(t, float64(15), cfg.Map.DefaultZoom)
}

func TestLoadWithFileMissing(t *testing.T) {
	_, err := LoadWithFile("/does/not/exist.yaml")
	assert.Error(t, err)
}

func TestLoadWithFileEmptyPath(t *testing.T) {
	cfg, err := LoadWithFile("")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}
