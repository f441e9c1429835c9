package config

import "errors"

var (
	// ErrUnsupportedFormat is returned for config files that are neither YAML nor TOML.
	ErrUnsupportedFormat = errors.New("config: unsupported format")
	// ErrInvalid wraps values that parse but cannot be used.
	ErrInvalid = errors.New("config: invalid value")
	// ErrEmptyPath is returned when a path setting is blank.
	ErrEmptyPath = errors.New("config: path is empty")
)
