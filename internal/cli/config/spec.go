// Package config defines the run configuration structure.
package config

// Config is the configuration for one imgcarve run.
//
// Zero-valued Output means the per-command default, see ResolveOutput.
type Config struct {
	Output        string `koanf:"output" yaml:"output,omitempty"`
	KeepRaw       bool   `koanf:"keep_raw" yaml:"keep_raw"`
	Merge         bool   `koanf:"merge" yaml:"merge"`
	Mode          string `koanf:"mode" yaml:"mode"` // partition, single
	AlignedStride bool   `koanf:"aligned_stride" yaml:"aligned_stride"`
	Workers       int    `koanf:"workers" yaml:"workers"`
	RateLimit     int64  `koanf:"rate_limit" yaml:"rate_limit"` // bytes per second, 0 = unlimited
	Manifest      string `koanf:"manifest" yaml:"manifest,omitempty"`
	MetricsFile   string `koanf:"metrics_file" yaml:"metrics_file,omitempty"`
	Watch         bool   `koanf:"watch" yaml:"watch"`

	Log LogSection `koanf:"log" yaml:"log"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level"`   // debug, info, warn, error
	Format string `koanf:"format" yaml:"format"` // text, json
}

// TriState is a boolean flag that may be absent, given bare, or given an
// explicit value.
type TriState struct {
	Set   bool
	Value bool
}

// Or returns the flag value when set and def otherwise.
func (t TriState) Or(def bool) bool {
	if t.Set {
		return t.Value
	}
	return def
}
