// Package config loads the optional twins configuration file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config represents the optional twins configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
	Filter   FilterConfig   `toml:"filter"`
}

// DefaultsConfig holds persistent flag defaults. A nil field was not set.
type DefaultsConfig struct {
	Mode           *string `toml:"mode"`
	FollowSymlinks *bool   `toml:"follow_symlinks"`
	SampleWindow   *int    `toml:"sample_window"`
	MinSize        *string `toml:"min_size"`
	MaxSize        *string `toml:"max_size"`
	OnError        *string `toml:"on_error"`
	Paranoid       *bool   `toml:"paranoid"`
	DeleteCommand  *string `toml:"delete_command"`
	BWLimit        *string `toml:"bwlimit"`
}

// FilterConfig holds rules checked after any given on the command line.
type FilterConfig struct {
	File    *string  `toml:"file"`
	Exclude []string `toml:"exclude"`
	Include []string `toml:"include"`
}

// OnError values.
const (
	OnErrorSkip  = "skip"
	OnErrorAbort = "abort"
)

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "twins", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist. Config is always optional.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}
	cfg, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	return cfg, err
}

// LoadFile reads the config file at path, which must exist. Keys twins
// does not know are logged and otherwise ignored.
func LoadFile(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slog.Warn("unknown config keys", "path", path, "keys", strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if v := c.Defaults.OnError; v != nil && *v != OnErrorSkip && *v != OnErrorAbort {
		return fmt.Errorf("on_error must be %q or %q, got %q", OnErrorSkip, OnErrorAbort, *v)
	}
	if v := c.Defaults.SampleWindow; v != nil && *v <= 0 {
		return fmt.Errorf("sample_window must be positive, got %d", *v)
	}
	return nil
}
