package confloader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of the environment variables Env reads by default.
const EnvPrefix = "IMGCARVE_"

const nestSep = "__"

// Source is one configuration layer. Later layers win.
type Source struct {
	name string
	load func(k *koanf.Koanf) error
}

func (s Source) String() string { return s.name }

// File reads a YAML document. An empty path contributes nothing.
func File(path string) Source {
	return Source{
		name: "file " + path,
		load: func(k *koanf.Koanf) error {
			if path == "" {
				return nil
			}
			return k.Load(file.Provider(path), yaml.Parser())
		},
	}
}

// Env reads variables named prefix + KEY, where a double underscore marks
// a nesting level: IMGCARVE_LOG__LEVEL is log.level and IMGCARVE_KEEP_RAW
// is keep_raw.
func Env(prefix string) Source {
	return Source{
		name: "env " + prefix + "*",
		load: func(k *koanf.Koanf) error {
			return k.Load(env.Provider(prefix, ".", func(s string) string {
				return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, prefix)), nestSep, ".")
			}), nil)
		},
	}
}

// Values applies a map keyed by dotted path, such as the flags a user set
// on the command line.
func Values(values map[string]any) Source {
	return Source{
		name: "values",
		load: func(k *koanf.Koanf) error {
			if len(values) == 0 {
				return nil
			}
			return k.Load(flatMap(values), nil)
		},
	}
}

// Load applies sources in order on top of whatever target already holds
// and decodes the result into target through its koanf tags.
func Load(target any, sources ...Source) error {
	k, err := merge(sources...)
	if err != nil {
		return err
	}
	return k.Unmarshal("", target)
}

// Keys lists the dotted keys the sources set, sorted.
func Keys(sources ...Source) ([]string, error) {
	k, err := merge(sources...)
	if err != nil {
		return nil, err
	}
	return k.Keys(), nil
}

func merge(sources ...Source) (*koanf.Koanf, error) {
	k := koanf.New(".")
	for _, s := range sources {
		if err := s.load(k); err != nil {
			return nil, fmt.Errorf("%s: %w", s, err)
		}
	}
	return k, nil
}

var errNoBytes = errors.New("confloader: map source has no byte form")

// flatMap is a koanf provider over dotted keys.
type flatMap map[string]any

func (m flatMap) ReadBytes() ([]byte, error) { return nil, errNoBytes }

func (m flatMap) Read() (map[string]any, error) {
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return maps.Unflatten(cp, "."), nil
}
