// Package config holds the job configuration for the bundle pipeline.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Columns names the required logical columns in the tabular source.
type Columns struct {
	ID        string `yaml:"id"`
	Recipient string `yaml:"recipient"`
}

// ZoneLayout holds the vertical fractions that partition a support page
// into three overlapping sections. Values are fractions of page height,
// measured from the top of the page.
type ZoneLayout struct {
	TopEnd      float64 `yaml:"topEnd"`
	MiddleStart float64 `yaml:"middleStart"`
	MiddleEnd   float64 `yaml:"middleEnd"`
	BottomStart float64 `yaml:"bottomStart"`
}

// Upload configures the optional post-run upload of finished bundles.
type Upload struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

// Config is the full job configuration.
type Config struct {
	Columns Columns    `yaml:"columns"`
	Zones   ZoneLayout `yaml:"zones"`
	Upload  Upload     `yaml:"upload"`
}

// Default returns the configuration used when no config file is given.
// The zone fractions overlap on purpose: sections are not clean thirds, and
// the 0.02 overlap keeps content at section boundaries from being clipped.
func Default() Config {
	return Config{
		Columns: Columns{
			ID:        "Voucher No",
			Recipient: "Paid To",
		},
		Zones: ZoneLayout{
			TopEnd:      0.34,
			MiddleStart: 0.32,
			MiddleEnd:   0.68,
			BottomStart: 0.64,
		},
	}
}

// Load reads a YAML config file and merges it over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration describes a usable job.
func (c Config) Validate() error {
	if c.Columns.ID == "" || c.Columns.Recipient == "" {
		return fmt.Errorf("both column names must be set (id=%q, recipient=%q)", c.Columns.ID, c.Columns.Recipient)
	}
	z := c.Zones
	bounds := []struct {
		name  string
		value float64
	}{
		{"topEnd", z.TopEnd},
		{"middleStart", z.MiddleStart},
		{"middleEnd", z.MiddleEnd},
		{"bottomStart", z.BottomStart},
	}
	for _, b := range bounds {
		if b.value <= 0 || b.value >= 1 {
			return fmt.Errorf("zone fraction %s=%v must be in (0,1)", b.name, b.value)
		}
	}
	if z.MiddleStart > z.TopEnd {
		return fmt.Errorf("middle zone must start at or above the top zone's end (middleStart=%v, topEnd=%v)", z.MiddleStart, z.TopEnd)
	}
	if z.BottomStart > z.MiddleEnd {
		return fmt.Errorf("bottom zone must start at or above the middle zone's end (bottomStart=%v, middleEnd=%v)", z.BottomStart, z.MiddleEnd)
	}
	if z.MiddleEnd <= z.MiddleStart {
		return fmt.Errorf("middle zone is empty (middleStart=%v, middleEnd=%v)", z.MiddleStart, z.MiddleEnd)
	}
	return nil
}
