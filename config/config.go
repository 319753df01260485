// Package config loads the engine's tunables from a YAML file. Every field
// has a default matching the engine's documented constants, so an empty or
// missing section is fine.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bandroom/schedule/recurrence"
)

// Options holds the engine tunables an embedding application may override.
type Options struct {
	// CacheTTL is how long a fetched month stays servable from cache.
	CacheTTL time.Duration `yaml:"-"`
	// HorizonDays bounds open-ended series expansion.
	HorizonDays int `yaml:"horizon_days"`

	// CacheTTLSeconds is the YAML representation of CacheTTL.
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

// Default returns the options the engine uses when nothing is configured.
func Default() Options {
	return Options{
		CacheTTL:        5 * time.Minute,
		CacheTTLSeconds: 300,
		HorizonDays:     recurrence.DefaultHorizonDays,
	}
}

// Load reads options from a YAML file, filling unset fields with defaults.
func Load(path string) (Options, error) {
	opts := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read config %s: %w", path, err)
	}
	var raw Options
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return opts, fmt.Errorf("parse config %s: %w", path, err)
	}
	if raw.CacheTTLSeconds > 0 {
		opts.CacheTTLSeconds = raw.CacheTTLSeconds
		opts.CacheTTL = time.Duration(raw.CacheTTLSeconds) * time.Second
	}
	if raw.HorizonDays > 0 {
		opts.HorizonDays = raw.HorizonDays
	}
	return opts, nil
}
