// Package config provides run configuration for imgcarve.
//
// This package defines the configuration shared by all commands:
//
//   - spec.go: Config struct (~/.imgcarve/config.yaml)
//   - default.go: Default values
//   - loader.go: Loading from file, environment and flags
//   - verify.go: Validation
//
// Configuration includes:
//
//   - Output location and carving mode
//   - Raw or re-encoded artifacts
//   - Worker count and write throttle
//   - Manifest and metrics destinations
//   - Log level and format
package config
