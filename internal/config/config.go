// Package config persists the tool's single user preference, the
// default schema specifier.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the persisted settings. Keys this tool does not
// recognize round-trip through load and save untouched.
type Config struct {
	DefaultSchema string         `yaml:"default_schema,omitempty"`
	Extra         map[string]any `yaml:",inline"`
}

// DefaultPath returns the config file location: $P6SCHEMA_CONFIG when
// set, otherwise p6schema/config.yaml under the user config directory.
func DefaultPath() string {
	if p := os.Getenv("P6SCHEMA_CONFIG"); p != "" {
		return p
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return ".p6schema.yaml"
	}
	return filepath.Join(base, "p6schema", "config.yaml")
}

// Load reads the config file at path. A missing file is an empty
// config, not an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the config to path, creating parent directories as
// needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Empty reports whether the config carries no settings at all.
func (c *Config) Empty() bool {
	return c.DefaultSchema == "" && len(c.Extra) == 0
}

// SetDefault persists specifier as the default schema.
func SetDefault(path, specifier string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	cfg.DefaultSchema = specifier
	return cfg.Save(path)
}

// ClearDefault removes the default schema setting and reports whether
// one was set. When nothing else remains the file itself is removed,
// keeping an absent file and an empty config interchangeable.
func ClearDefault(path string) (bool, error) {
	cfg, err := Load(path)
	if err != nil {
		return false, err
	}
	if cfg.DefaultSchema == "" {
		return false, nil
	}
	cfg.DefaultSchema = ""
	if cfg.Empty() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return false, fmt.Errorf("failed to remove config: %w", err)
		}
		return true, nil
	}
	return true, cfg.Save(path)
}
