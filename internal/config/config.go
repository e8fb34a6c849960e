// Package config resolves the CLI's flags, optionally seeded with
// defaults from a YAML file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the resolved settings for a single cleaning run.
type Config struct {
	Sources        []string `yaml:"sources"`
	Dest           string   `yaml:"dest"`
	Timeout        int      `yaml:"timeout"`
	Concurrency    int      `yaml:"concurrency"`
	Dedup          bool     `yaml:"dedup"`
	SkipValidation bool     `yaml:"skip_validation"`
	Merge          bool     `yaml:"merge"`
	Split          bool     `yaml:"split"`
	Verbose        bool     `yaml:"verbose"`

	OverridesFile string `yaml:"overrides_file"`

	Resilience ResilienceConfig `yaml:"resilience"`
}

// Default returns a Config matching the CLI's documented flag defaults.
func Default() *Config {
	return &Config{
		Timeout:     10,
		Concurrency: 10,
		Dedup:       true,
		Resilience:  DefaultResilience(),
	}
}

// LoadFile reads defaults from a YAML file. Fields left unset in the file
// keep their Default() value, since callers apply LoadFile's result
// before overlaying explicit CLI flags.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// ClampConcurrency enforces the [1, 50] bound on max concurrent probes.
func (c *Config) ClampConcurrency() {
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	if c.Concurrency > 50 {
		c.Concurrency = 50
	}
}

// RequestTimeout returns Timeout as a time.Duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// ParseBoolFlag matches the CLI's documented -rd false-value vocabulary:
// "false", "f", "0", "no" (case-insensitive) all mean false; anything else
// means true.
func ParseBoolFlag(s string) bool {
	switch strings.ToLower(s) {
	case "false", "f", "0", "no":
		return false
	default:
		return true
	}
}
