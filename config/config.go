// Package config loads the settings for the dereference demo from a YAML or
// TOML file. A missing file is not an error: defaults are used so the demo
// works without any configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config is the resolved configuration.
type Config struct {
	Elements []string
	Cache    CacheConfig
	Log      LogConfig
}

// CacheConfig describes the cache screen.
type CacheConfig struct {
	Keys         []string
	Initial      string
	Endpoint     string
	Timeout      time.Duration
	InitialFetch bool
}

// LogConfig describes structured logging.
type LogConfig struct {
	Level  string
	Format string
	File   string
}

const (
	defaultConfigPath = "~/.config/dereference/config.yaml"
	defaultLogFile    = "~/.local/state/dereference/dereference.log"
	defaultLogLevel   = "info"
	defaultLogFormat  = "text"
	defaultTimeout    = 5 * time.Second
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Elements: []string{},
		Cache: CacheConfig{
			Keys:    []string{"1", "2", "3"},
			Initial: "1",
			Timeout: defaultTimeout,
		},
		Log: LogConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
			File:   mustExpand(defaultLogFile),
		},
	}
}

type rawConfig struct {
	Elements []string `yaml:"elements" toml:"elements"`
	Cache    struct {
		Keys         []string `yaml:"keys" toml:"keys"`
		Initial      string   `yaml:"initial" toml:"initial"`
		Endpoint     string   `yaml:"endpoint" toml:"endpoint"`
		Timeout      string   `yaml:"timeout" toml:"timeout"`
		InitialFetch *bool    `yaml:"initial_fetch" toml:"initial_fetch"`
	} `yaml:"cache" toml:"cache"`
	Log struct {
		Level  string `yaml:"level" toml:"level"`
		Format string `yaml:"format" toml:"format"`
		File   string `yaml:"file" toml:"file"`
	} `yaml:"log" toml:"log"`
}

// Load reads the file at path, or the default location when path is empty,
// and merges it over Default. The format is chosen by extension.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	override, err := Parse(data, filepath.Ext(resolved))
	if err != nil {
		return Config{}, err
	}
	cfg := Merge(Default(), override)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes data in the format named by ext (".yaml", ".yml" or
// ".toml"). Fields absent from data are left zero.
func Parse(data []byte, ext string) (Config, error) {
	var raw rawConfig
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parse yaml config: %w", err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&raw); err != nil {
			return Config{}, fmt.Errorf("parse toml config: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return raw.resolve()
}

func (raw rawConfig) resolve() (Config, error) {
	cfg := Config{
		Elements: trimAll(raw.Elements),
		Cache: CacheConfig{
			Keys:     trimAll(raw.Cache.Keys),
			Initial:  strings.TrimSpace(raw.Cache.Initial),
			Endpoint: strings.TrimSpace(raw.Cache.Endpoint),
		},
		Log: LogConfig{
			Level:  strings.ToLower(strings.TrimSpace(raw.Log.Level)),
			Format: strings.ToLower(strings.TrimSpace(raw.Log.Format)),
			File:   strings.TrimSpace(raw.Log.File),
		},
	}
	if raw.Cache.InitialFetch != nil {
		cfg.Cache.InitialFetch = *raw.Cache.InitialFetch
	}
	if timeout := strings.TrimSpace(raw.Cache.Timeout); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return Config{}, fmt.Errorf("%w: cache.timeout: %v", ErrInvalid, err)
		}
		cfg.Cache.Timeout = d
	}
	if cfg.Log.File != "" {
		expanded, err := expandPath(cfg.Log.File)
		if err != nil {
			return Config{}, fmt.Errorf("log.file: %w", err)
		}
		cfg.Log.File = expanded
	}
	return cfg, nil
}

// Merge returns base with every non-zero field of override applied. The
// result shares no slices with either argument.
func Merge(base, override Config) Config {
	out := base
	out.Elements = slices.Clone(base.Elements)
	out.Cache.Keys = slices.Clone(base.Cache.Keys)
	if override.Elements != nil {
		out.Elements = slices.Clone(override.Elements)
	}
	if override.Cache.Keys != nil {
		out.Cache.Keys = slices.Clone(override.Cache.Keys)
	}
	if override.Cache.Initial != "" {
		out.Cache.Initial = override.Cache.Initial
	}
	if override.Cache.Endpoint != "" {
		out.Cache.Endpoint = override.Cache.Endpoint
	}
	if override.Cache.Timeout != 0 {
		out.Cache.Timeout = override.Cache.Timeout
	}
	if override.Cache.InitialFetch {
		out.Cache.InitialFetch = true
	}
	if override.Log.Level != "" {
		out.Log.Level = override.Log.Level
	}
	if override.Log.Format != "" {
		out.Log.Format = override.Log.Format
	}
	if override.Log.File != "" {
		out.Log.File = override.Log.File
	}
	return out
}

// Validate reports the first problem found in c.
func (c Config) Validate() error {
	switch c.Log.Level {
	case "debug", "verbose", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, c.Log.Format)
	}
	if c.Cache.Timeout < 0 {
		return fmt.Errorf("%w: negative cache timeout %s", ErrInvalid, c.Cache.Timeout)
	}
	for _, k := range c.Cache.Keys {
		if k == "" {
			return fmt.Errorf("%w: empty cache key", ErrInvalid)
		}
	}
	return nil
}

func trimAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", ErrEmptyPath
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
