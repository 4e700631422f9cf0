// Package config defines the run configuration structure.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yndnr/imgcarve/internal/core/domain"
	"github.com/yndnr/imgcarve/internal/telemetry/logger"
	"github.com/yndnr/imgcarve/pkg/carve"
)

// Verify validates the configuration.
func Verify(cfg *Config) error {
	if err := verifyRun(cfg); err != nil {
		return domain.ErrInvalidConfig.WithCause(err)
	}
	if err := verifyLog(&cfg.Log); err != nil {
		return domain.ErrInvalidConfig.WithCause(err)
	}
	return nil
}

func verifyRun(cfg *Config) error {
	if _, ok := carve.ParseMode(cfg.Mode); !ok {
		return fmt.Errorf("mode %q: must be partition or single", cfg.Mode)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	if cfg.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %d", cfg.RateLimit)
	}
	if cfg.Merge && cfg.Watch {
		return errors.New("watch is not supported together with merge")
	}
	if cfg.Merge {
		return nil
	}

	// Side files inside the output directory would be swept into a later
	// merge and break the round trip.
	out, err := cfg.ResolveOutput(false)
	if err != nil {
		return fmt.Errorf("resolve output: %w", err)
	}
	for name, p := range map[string]string{"manifest": cfg.Manifest, "metrics_file": cfg.MetricsFile} {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if within(out, abs) {
			return fmt.Errorf("%s %s must not be inside the output directory %s", name, p, out)
		}
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if !logger.ValidLevel(cfg.Level) {
		return fmt.Errorf("log.level %q: must be debug, info, warn or error", cfg.Level)
	}
	switch cfg.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q: must be text or json", cfg.Format)
	}
	return nil
}

// within reports whether path lies in dir or below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && rel != "."
}
