// Package config loads tool configuration from a TOML file and fills in
// host-derived defaults for anything unset.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/framecast/framecast/internal/render"
	"github.com/framecast/framecast/internal/system"
)

// Config is the on-disk tool configuration.
type Config struct {
	Render RenderConfig `toml:"render"`
	Encode EncodeConfig `toml:"encode"`
}

type RenderConfig struct {
	// Workers is the parallel render worker count; 0 sizes it from the
	// physical core count.
	Workers      int `toml:"workers"`
	MaxRetries   int `toml:"max_retries"`
	RetryDelayMS int `toml:"retry_delay_ms"`
	// MaxBuffered caps out-of-order frames held by the reordering buffer.
	// Clamped against available memory at job start.
	MaxBuffered int `toml:"max_buffered"`
}

type EncodeConfig struct {
	Codec   string `toml:"codec"`
	Quality int    `toml:"quality"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	workers := system.DefaultWorkers()
	return &Config{
		Render: RenderConfig{
			Workers:      workers,
			MaxRetries:   3,
			RetryDelayMS: 250,
			MaxBuffered:  workers * 4,
		},
	}
}

// Load reads a TOML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// SchedulerOptions derives scheduler tuning for a job rendering frames of
// the given byte size.
func (c *Config) SchedulerOptions(frameBytes int) render.Options {
	return render.Options{
		Workers:     c.Render.Workers,
		MaxRetries:  c.Render.MaxRetries,
		RetryDelay:  time.Duration(c.Render.RetryDelayMS) * time.Millisecond,
		MaxBuffered: system.ClampFrameBuffer(c.Render.MaxBuffered, frameBytes),
	}
}
