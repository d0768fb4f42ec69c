// Package config holds the optional daemon configuration for backupd.
// The three positional CLI arguments remain the source of truth for the
// backup tuple; the config file only adds scheduling, logging and reload
// behavior on top.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Backup       BackupConfig  `yaml:"backup"`
	Logging      LoggingConfig `yaml:"logging"`
	ConfigReload ReloadConfig  `yaml:"configReload"`
}

type BackupConfig struct {
	// Schedule is an optional standard cron expression. When set, cycles
	// run on a fixed cadence instead of interval-after-completion.
	Schedule string `yaml:"schedule"`

	// Prefix is the archive name prefix. Defaults to "backup".
	Prefix string `yaml:"prefix"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // "info", "debug", etc.
	Format string `yaml:"format"` // "json", "text"
}

type ReloadConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Method       string        `yaml:"method"`       // "auto", "poll", "fsnotify"
	PollInterval time.Duration `yaml:"pollInterval"` // e.g. 5s
}

// UnmarshalYAML accepts pollInterval as a duration string ("5s", "1m").
func (r *ReloadConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Enabled      bool   `yaml:"enabled"`
		Method       string `yaml:"method"`
		PollInterval string `yaml:"pollInterval"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	r.Enabled = raw.Enabled
	r.Method = raw.Method

	if raw.PollInterval != "" {
		d, err := time.ParseDuration(raw.PollInterval)
		if err != nil {
			return fmt.Errorf("parsing pollInterval: %w", err)
		}
		r.PollInterval = d
	}
	return nil
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		Backup: BackupConfig{
			Prefix: "backup",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		ConfigReload: ReloadConfig{
			Enabled:      false,
			Method:       "auto",
			PollInterval: 5 * time.Second,
		},
	}
}

func (c *Config) validate() error {
	switch c.ConfigReload.Method {
	case "", "auto", "poll", "fsnotify":
	default:
		return fmt.Errorf("unknown configReload method %q", c.ConfigReload.Method)
	}
	if c.ConfigReload.PollInterval < 0 {
		return fmt.Errorf("configReload pollInterval must not be negative")
	}
	return nil
}
