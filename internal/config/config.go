// Package config manages the YAML configuration file and its defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/macoscontainers/fsdump/internal/filesystem"
	"github.com/macoscontainers/fsdump/internal/marshal"
)

// Holds all configuration options for a dump
type Config struct {
	// Attribute views to collect; empty means every view the platform supports
	Views []string `yaml:"views,omitempty"`

	// Base-name glob patterns of files and directories to skip
	Exclude []string `yaml:"exclude,omitempty"`

	// Log level name (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level,omitempty"`

	// Optional path of a JSON report written after each run
	Report string `yaml:"report,omitempty"`
}

// Returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
	}
}

// Returns the path of the per-user config file
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "fsdump", "config.yaml")
	}
	return filepath.Join(home, ".config", "fsdump", "config.yaml")
}

// Reads the config file at the specified path over the defaults.
// An empty path falls back to the per-user config file if one exists and is readable.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = GetConfigPath()
		if !filesystem.Exists(path) {
			return cfg, nil
		}
	}

	if err := marshal.UnmarshalYamlFile(path, cfg); err != nil {

		// A per-user config that cannot be read is treated as absent
		if !explicit && errors.Is(err, fs.ErrPermission) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// Checks that the exclude patterns are well formed
func (c *Config) Validate() error {
	for _, pattern := range c.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}
	return nil
}

// Replaces the view list from a comma separated flag value
func (c *Config) SetViews(list string) {
	c.Views = nil
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			c.Views = append(c.Views, name)
		}
	}
}
