// Package config defines the simulator's tunable parameters and the TOML
// file format used to override them, in the style of tinykv's kv/config
// package: a plain struct with a Validate method and a documented default
// constructor.
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config holds every knob the simulator accepts. NSites and NVars default to
// the spec's fixed constants (10 and 20); a config file may raise them for
// stress-testing a larger deployment, which the base spec does not require
// but does not forbid either.
type Config struct {
	NSites   int    `toml:"n_sites"`
	NVars    int    `toml:"n_vars"`
	LogLevel string `toml:"log_level"`
}

// NewDefaultConfig returns the spec's baseline configuration: 10 sites, 20
// variables, info-level tracing.
func NewDefaultConfig() *Config {
	return &Config{
		NSites:   10,
		NVars:    20,
		LogLevel: "info",
	}
}

// Validate reports whether the configuration is usable.
func (c *Config) Validate() error {
	if c.NSites <= 0 {
		return errors.New("config: n_sites must be greater than 0")
	}
	if c.NVars <= 0 {
		return errors.New("config: n_vars must be greater than 0")
	}
	return nil
}

// LoadFile decodes a TOML config file over the defaults. A missing field in
// the file keeps its default value.
func LoadFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, errors.Wrapf(err, "config: loading %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
