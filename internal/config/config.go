// Package config loads client settings from a YAML file and BIZDESK_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/iudanet/bizdesk/internal/client/data"
	"github.com/iudanet/bizdesk/internal/validation"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "BIZDESK_"

// Storage drivers
const (
	DriverBolt   = "bolt"
	DriverSQLite = "sqlite"
)

const (
	defaultServerURL      = "http://localhost:8080"
	defaultStorageKey     = "bizdesk-local-store"
	defaultStalenessPoll  = 30 * time.Second
	defaultMaxConcurrent  = 3
	defaultRequestTimeout = 30 * time.Second
)

// StorageConfig holds local persistence settings
type StorageConfig struct {
	Driver string `yaml:"driver" env:"DRIVER"`
	Path   string `yaml:"path" env:"PATH"`
	Key    string `yaml:"key" env:"KEY"`
}

// SyncConfig holds background synchronization settings
type SyncConfig struct {
	ConflictPolicy string        `yaml:"conflict_policy" env:"CONFLICT_POLICY"`
	StalenessPoll  time.Duration `yaml:"staleness_poll" env:"STALENESS_POLL"`
	// IntervalMinutes overrides the stored interval when set; 0 keeps it.
	IntervalMinutes      int `yaml:"interval_minutes" env:"INTERVAL_MINUTES"`
	MaxConcurrentFetches int `yaml:"max_concurrent_fetches" env:"MAX_CONCURRENT_FETCHES"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" env:"FORMAT"` // text, json
}

// Config represents the client configuration
type Config struct {
	ServerURL      string        `yaml:"server_url" env:"SERVER_URL"`
	AccessToken    string        `yaml:"access_token" env:"ACCESS_TOKEN"`
	Storage        StorageConfig `yaml:"storage" envPrefix:"STORAGE_"`
	Log            LogConfig     `yaml:"log" envPrefix:"LOG_"`
	Sync           SyncConfig    `yaml:"sync" envPrefix:"SYNC_"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		ServerURL:      defaultServerURL,
		RequestTimeout: defaultRequestTimeout,
		Storage: StorageConfig{
			Driver: DriverBolt,
			Path:   filepath.Join(GetDataDir(), "local.db"),
			Key:    defaultStorageKey,
		},
		Sync: SyncConfig{
			StalenessPoll:        defaultStalenessPoll,
			MaxConcurrentFetches: defaultMaxConcurrent,
			ConflictPolicy:       data.KeepLocalOnFailure.String(),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from the specified path, or the default XDG path
// if empty, then applies environment overrides. A missing file means defaults.
func Load(configPath string) (*Config, error) {
	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigPath()
	}

	cfg := DefaultConfig()

	raw, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("invalid YAML in config file %s: %w", configPath, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// Файла по умолчанию может не быть
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.Storage.Path = ExpandPath(cfg.Storage.Path)

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return errors.New("server_url is required")
	}
	if !strings.HasPrefix(c.ServerURL, "http://") && !strings.HasPrefix(c.ServerURL, "https://") {
		return fmt.Errorf("invalid server_url: %q (must start with http:// or https://)", c.ServerURL)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}

	switch c.Storage.Driver {
	case DriverBolt, DriverSQLite:
	default:
		return fmt.Errorf("unknown storage.driver: %q (must be '%s' or '%s')", c.Storage.Driver, DriverBolt, DriverSQLite)
	}
	if c.Storage.Path == "" {
		return errors.New("storage.path is required")
	}
	if c.Storage.Key == "" {
		return errors.New("storage.key is required")
	}

	if c.Sync.IntervalMinutes != 0 {
		if err := validation.ValidateSyncInterval(c.Sync.IntervalMinutes); err != nil {
			return fmt.Errorf("sync.interval_minutes: %w", err)
		}
	}
	if c.Sync.StalenessPoll < time.Second {
		return fmt.Errorf("sync.staleness_poll must be at least 1s, got %s", c.Sync.StalenessPoll)
	}
	if c.Sync.MaxConcurrentFetches < 1 {
		return fmt.Errorf("sync.max_concurrent_fetches must be at least 1, got %d", c.Sync.MaxConcurrentFetches)
	}
	if _, err := data.ParseConflictPolicy(c.Sync.ConflictPolicy); err != nil {
		return fmt.Errorf("sync.conflict_policy: %w", err)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log.format: %q (must be 'text' or 'json')", c.Log.Format)
	}

	return nil
}

// ConflictPolicy returns the parsed sync.conflict_policy.
func (c *Config) ConflictPolicy() data.ConflictPolicy {
	policy, _ := data.ParseConflictPolicy(c.Sync.ConflictPolicy)
	return policy
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/bizdesk/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// getXDGDir returns a directory path following the XDG base directory layout
func getXDGDir(envVar, fallbackPath string) string {
	if xdgDir := os.Getenv(envVar); xdgDir != "" {
		return filepath.Join(xdgDir, "bizdesk")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", fallbackPath, "bizdesk")
	}
	return filepath.Join(home, fallbackPath, "bizdesk")
}

// GetConfigDir returns the configuration directory following the XDG base directory layout
func GetConfigDir() string {
	return getXDGDir("XDG_CONFIG_HOME", ".config")
}

// GetDataDir returns the data directory following the XDG base directory layout
func GetDataDir() string {
	return getXDGDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// ExpandPath expands ~ and environment variables in a path
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return os.ExpandEnv(path)
}
