package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Options is the complete engine configuration as read from a YAML file.
type Options struct {
	Engine      EngineOptions      `yaml:"engine"`
	Log         LogOptions         `yaml:"log"`
	Conformance ConformanceOptions `yaml:"conformance"`
}

// EngineOptions tune the interpreter core.
type EngineOptions struct {
	// MaxCallDepth is the stack guard limit. Zero or less makes every
	// non-tail call fail with a RangeError.
	MaxCallDepth int `yaml:"max_call_depth"`
	// Simplify enables the tree simplification pass.
	Simplify bool `yaml:"simplify"`
	// Strict runs every script in strict mode.
	Strict bool `yaml:"strict"`
}

type LogOptions struct {
	Verbosity int    `yaml:"verbosity"`
	File      string `yaml:"file"`
}

type ConformanceOptions struct {
	Database string        `yaml:"database"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when no file is given.
func Default() Options {
	return Options{
		Engine: EngineOptions{
			MaxCallDepth: DefaultMaxCallDepth,
			Simplify:     true,
		},
		Log: LogOptions{Verbosity: 0},
		Conformance: ConformanceOptions{
			Database: "conformance.db",
			Timeout:  10 * time.Second,
		},
	}
}

// Load reads a YAML configuration file. Keys missing from the file keep
// their default values.
func Load(path string) (Options, error) {
	opts := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parse config %s: %w", path, err)
	}
	return opts, nil
}
