package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Greater(t, cfg.Render.Workers, 0)
	assert.Equal(t, 3, cfg.Render.MaxRetries)
	assert.Equal(t, 250, cfg.Render.RetryDelayMS)
	assert.GreaterOrEqual(t, cfg.Render.MaxBuffered, cfg.Render.Workers)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Render.MaxRetries, cfg.Render.MaxRetries)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "framecast.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[render]
workers = 2
max_retries = 7

[encode]
codec = "libx264"
quality = 18
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Render.Workers)
	assert.Equal(t, 7, cfg.Render.MaxRetries)
	// Unset keys keep their defaults.
	assert.Equal(t, 250, cfg.Render.RetryDelayMS)
	assert.Equal(t, "libx264", cfg.Encode.Codec)
	assert.Equal(t, 18, cfg.Encode.Quality)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestSchedulerOptions(t *testing.T) {
	cfg := Default()
	cfg.Render.Workers = 3
	cfg.Render.RetryDelayMS = 100
	cfg.Render.MaxBuffered = 6

	opts := cfg.SchedulerOptions(1280 * 720 * 4)
	assert.Equal(t, 3, opts.Workers)
	assert.Equal(t, int64(100), opts.RetryDelay.Milliseconds())
	assert.GreaterOrEqual(t, opts.MaxBuffered, 1)
	assert.LessOrEqual(t, opts.MaxBuffered, 6)
}
