// Package confloader provides configuration loading mechanism.
package confloader

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read as configuration.
const EnvPrefix = "POOLD_"

// envSectionSeparator separates nesting levels in environment variable
// names, so that single underscores can stay inside key names:
// POOLD_SERVER__MAX_CONNECTIONS -> server.max_connections.
const envSectionSeparator = "__"

// Loader loads configuration from multiple sources.
type Loader struct {
	k         *koanf.Koanf
	filePath  string
	overrides map[string]any
}

// Option is a function that configures the Loader.
type Option func(*Loader)

// WithConfigFile sets the configuration file path.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithOverrides sets values that take precedence over every other source.
// Keys are dotted paths. Empty string values are skipped so that unset
// flags do not clobber file or environment values.
func WithOverrides(values map[string]any) Option {
	return func(l *Loader) {
		for k, v := range values {
			if s, ok := v.(string); ok && s == "" {
				continue
			}
			l.overrides[k] = v
		}
	}
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		overrides: make(map[string]any),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load loads configuration from all sources and unmarshals into target.
// Loading order (later sources override earlier):
//  1. Values already set in target (defaults)
//  2. Configuration file (YAML), if one was given
//  3. Environment variables
//  4. Overrides
func (l *Loader) Load(target any) error {
	if l.filePath != "" {
		if err := l.LoadFile(l.filePath); err != nil {
			return fmt.Errorf("load config file: %w", err)
		}
	}

	if err := l.LoadEnv(); err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	if len(l.overrides) > 0 {
		if err := l.LoadMap(l.overrides); err != nil {
			return fmt.Errorf("load overrides: %w", err)
		}
	}

	if err := l.Unmarshal(target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	return nil
}

// LoadFile loads configuration from a YAML file.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}

	if err := l.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("load file %s: %w", path, err)
	}

	return nil
}

// LoadEnv loads configuration from environment variables.
// Example: POOLD_LOG__LEVEL=debug sets log.level. Variables without a
// "__" section separator are ignored.
func (l *Loader) LoadEnv() error {
	envTransformer := func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		// Variables without a section (POOLD_CONFIG, POOLD_SOCKET) belong
		// to the command line, not to the document.
		if !strings.Contains(s, envSectionSeparator) {
			return ""
		}
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, envSectionSeparator, ".")
	}

	provider := env.Provider(EnvPrefix, ".", envTransformer)
	if err := l.k.Load(provider, nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	return nil
}

// LoadMap loads configuration from a map (useful for flags or testing).
func (l *Loader) LoadMap(data map[string]any) error {
	if err := l.k.Load(mapProvider(data), nil); err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	return nil
}

// Unmarshal unmarshals the loaded configuration into the target struct.
// Uses koanf tags for struct field mapping. Durations are accepted in
// time.ParseDuration form ("30s", "5m"). Keys that match no field are an
// error.
func (l *Loader) Unmarshal(target any) error {
	return l.k.UnmarshalWithConf("", target, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
			Result:           target,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		},
	})
}
