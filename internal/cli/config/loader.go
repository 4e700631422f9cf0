// Package config defines the run configuration structure.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/imgcarve/internal/core/domain"
	"github.com/yndnr/imgcarve/internal/infra/confloader"
)

// Load builds the effective configuration.
//
// Sources, lowest priority first: Default(), the config file, IMGCARVE_*
// environment variables, then overrides (explicitly set flags, keyed by
// koanf path). An empty path falls back to DefaultConfigPath when that
// file exists; an explicit path that does not exist is an error.
func Load(path string, overrides map[string]any) (*Config, error) {
	cfg := Default()

	if path == "" {
		if def := DefaultConfigPath(); def != "" {
			if _, err := os.Stat(def); err == nil {
				path = def
			}
		}
	} else if _, err := os.Stat(path); err != nil {
		return nil, domain.ErrInvalidConfig.At(path, err)
	}

	if err := confloader.Load(cfg,
		confloader.File(path),
		confloader.Env(confloader.EnvPrefix),
		confloader.Values(overrides),
	); err != nil {
		return nil, domain.ErrInvalidConfig.At(path, err)
	}

	if err := Verify(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML. Parent directories are created.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	if path == "" {
		return errors.New("no config path and no home directory")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
