// Package config handles reading and writing .ragline/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for .ragline/config.yaml.
type Config struct {
	Version   int             `yaml:"version"`
	API       APIConfig       `yaml:"api"`
	Polling   PollingConfig   `yaml:"polling"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// APIConfig points the client at the backend.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"` // seconds, per request
}

// PollingConfig controls how query jobs are polled to completion.
type PollingConfig struct {
	Interval    int `yaml:"interval"`     // seconds between polls
	MaxAttempts int `yaml:"max_attempts"` // 0 = poll until the job terminates
}

// DashboardConfig controls the periodic dashboard refresh.
type DashboardConfig struct {
	RefreshInterval  int `yaml:"refresh_interval"`  // seconds
	TransactionLimit int `yaml:"transaction_limit"` // recent transactions shown
}

// The duration accessors treat zero and negative values as unset and fall
// back to the defaults: a config written before a section existed must not
// produce a zero-delay poll loop or a zero-interval refresh tick.

// APITimeout returns the per-request HTTP timeout.
func (c *Config) APITimeout() time.Duration {
	if c.API.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.API.Timeout) * time.Second
}

// PollInterval returns the delay between job status polls.
func (c *Config) PollInterval() time.Duration {
	if c.Polling.Interval <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.Polling.Interval) * time.Second
}

// RefreshInterval returns the dashboard refresh cadence.
func (c *Config) RefreshInterval() time.Duration {
	if c.Dashboard.RefreshInterval <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.Dashboard.RefreshInterval) * time.Second
}

// configFileName is the path relative to the base directory.
const configDir = ".ragline"
const configFile = "config.yaml"

// Dir returns the .ragline directory under base, creating it if needed.
func Dir(base string) (string, error) {
	dir := filepath.Join(base, configDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return dir, nil
}

// HomeDir returns the .ragline directory under the user's home directory,
// creating it if needed.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return Dir(home)
}

// ReadConfig reads .ragline/config.yaml from the given base directory.
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(base string) (*Config, error) {
	path := filepath.Join(base, configDir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// WriteConfig writes cfg to .ragline/config.yaml in the given base
// directory. Creates the .ragline/ directory if it does not exist.
func WriteConfig(base string, cfg *Config) error {
	dir, err := Dir(base)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dir, configFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 30,
		},
		Polling: PollingConfig{
			Interval:    2,
			MaxAttempts: 150,
		},
		Dashboard: DashboardConfig{
			RefreshInterval:  3,
			TransactionLimit: 5,
		},
	}
}
