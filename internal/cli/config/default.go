// Package config defines the run configuration structure.
package config

import (
	"os"
	"path/filepath"
)

// Default values.
const (
	DefaultMode        = "partition"
	DefaultWorkers     = 1
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultCarveOutput = "output"
	DefaultMergeOutput = "output.bin"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		KeepRaw: false,
		Merge:   false,
		Mode:    DefaultMode,
		Workers: DefaultWorkers,
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".imgcarve", "config.yaml")
}

// ResolveOutput returns the output path for a carve (directory) or a merge
// (file). An empty Output resolves under the working directory.
func (c *Config) ResolveOutput(merge bool) (string, error) {
	out := c.Output
	if out == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		if merge {
			out = filepath.Join(wd, DefaultMergeOutput)
		} else {
			out = filepath.Join(wd, DefaultCarveOutput)
		}
	}
	return filepath.Abs(out)
}
