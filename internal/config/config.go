// Package config loads and saves the refsync tool configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/refsync/refsync/internal/storage"
)

// Config holds user-tunable settings. Zero values fall back to defaults at
// read time so an absent or partial file always works.
type Config struct {
	// CacheDir overrides where clones are stored.
	CacheDir string `yaml:"cacheDir,omitempty"`
	// LoadDir is the default workspace directory references are loaded
	// under when no explicit path is given.
	LoadDir string `yaml:"loadDir,omitempty"`
	// AutoIgnore controls whether load/unload maintain the workspace
	// ignore file. Defaults to true.
	AutoIgnore *bool `yaml:"autoIgnore,omitempty"`
}

// FileName is the config file kept in the refsync state directory.
const FileName = "config.yaml"

// DefaultLoadDir is where load places references when no path is given.
const DefaultLoadDir = "refs"

// Path returns the config file location.
func Path() (string, error) {
	dir, err := storage.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// Load reads the config file, returning defaults when it does not exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the config file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// EffectiveCacheDir returns the configured cache directory or the default
// under the state directory.
func (c *Config) EffectiveCacheDir() (string, error) {
	if c.CacheDir != "" {
		return c.CacheDir, nil
	}
	dir, err := storage.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache"), nil
}

// EffectiveLoadDir returns the configured default load directory.
func (c *Config) EffectiveLoadDir() string {
	if c.LoadDir != "" {
		return c.LoadDir
	}
	return DefaultLoadDir
}

// IgnoreEnabled reports whether ignore-file maintenance is on.
func (c *Config) IgnoreEnabled() bool {
	return c.AutoIgnore == nil || *c.AutoIgnore
}

// Get returns the value of a settable key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "cacheDir":
		return c.CacheDir, nil
	case "loadDir":
		return c.LoadDir, nil
	case "autoIgnore":
		return fmt.Sprintf("%v", c.IgnoreEnabled()), nil
	default:
		return "", fmt.Errorf("unknown config key '%s'", key)
	}
}

// Set assigns a settable key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "cacheDir":
		c.CacheDir = value
	case "loadDir":
		c.LoadDir = value
	case "autoIgnore":
		switch value {
		case "true", "false":
			b := value == "true"
			c.AutoIgnore = &b
		default:
			return fmt.Errorf("autoIgnore must be true or false, got '%s'", value)
		}
	default:
		return fmt.Errorf("unknown config key '%s'", key)
	}
	return nil
}
