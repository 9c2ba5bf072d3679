// Package config loads ganttly settings: built-in defaults, then an optional
// YAML file, then GANTTLY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "GANTTLY"

// Config holds all application settings. Fields carry no envconfig defaults
// so that unset variables keep the value from the file or Default.
type Config struct {
	DBPath            string        `yaml:"db" envconfig:"DB"`
	HistoryPath       string        `yaml:"shell_history" envconfig:"SHELL_HISTORY"`
	AutosaveInterval  time.Duration `yaml:"autosave_interval" envconfig:"AUTOSAVE_INTERVAL"`
	AutosaveEnabled   bool          `yaml:"autosave_enabled" envconfig:"AUTOSAVE_ENABLED"`
	UndoLimit         int           `yaml:"undo_limit" envconfig:"UNDO_LIMIT"`
	SnapshotRetention int           `yaml:"snapshot_retention" envconfig:"SNAPSHOT_RETENTION"`
	Platform          string        `yaml:"platform" envconfig:"PLATFORM"`
	LogUseCases       bool          `yaml:"log_usecases" envconfig:"LOG_USECASES"`

	// File is the config file that was read, empty when none was.
	File string `yaml:"-" ignored:"true"`
}

// Dir returns ~/.ganttly.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".ganttly"), nil
}

// Default returns the built-in settings rooted at dir.
func Default(dir string) Config {
	return Config{
		DBPath:            filepath.Join(dir, "ganttly.db"),
		HistoryPath:       filepath.Join(dir, "shell_history"),
		AutosaveInterval:  30 * time.Second,
		AutosaveEnabled:   true,
		UndoLimit:         50,
		SnapshotRetention: 20,
		Platform:          "cli",
	}
}

// Load resolves the full configuration. The file named by GANTTLY_CONFIG
// must exist; the default ~/.ganttly/config.yaml is optional.
func Load() (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}
	cfg := Default(dir)

	path, explicit := os.LookupEnv(EnvPrefix + "_CONFIG")
	if !explicit || path == "" {
		path, explicit = filepath.Join(dir, "config.yaml"), false
	}
	if err := cfg.mergeFile(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			err = nil
		} else {
			return Config{}, err
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("loading config from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	c.File = path
	return nil
}

// Validate rejects settings the store cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, fmt.Errorf("db path is required"))
	}
	if c.UndoLimit < 1 {
		errs = append(errs, fmt.Errorf("undo_limit must be at least 1, got %d", c.UndoLimit))
	}
	if c.AutosaveInterval < 0 {
		errs = append(errs, fmt.Errorf("autosave_interval must not be negative, got %s", c.AutosaveInterval))
	}
	if c.SnapshotRetention < 0 {
		errs = append(errs, fmt.Errorf("snapshot_retention must not be negative, got %d", c.SnapshotRetention))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
