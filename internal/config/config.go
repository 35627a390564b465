// Package config handles the XDG configuration directory, stored file
// paths, and client settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "taskdeck"

	// TokenFile is the stored credential filename.
	TokenFile = "token.json"

	// SettingsFile is the optional settings filename.
	SettingsFile = "config.yaml"

	// DefaultAPIURL is used when no base URL is configured.
	DefaultAPIURL = "http://localhost:8000"

	// DefaultTimeout is the fixed per-request timeout when none is
	// configured.
	DefaultTimeout = 10 * time.Second
)

// Settings holds the values read from config.yaml.
type Settings struct {
	API struct {
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"api"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Settings are the merged file + environment settings.
	Settings Settings

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a Config rooted at the default or specified config
// directory, loading config.yaml and environment overrides. A missing
// settings file is not an error.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}

	cfg := &Config{Dir: dir}

	// A .env alongside the working directory is honored before reading
	// environment overrides. Missing files are fine.
	_ = godotenv.Load()

	if err := cfg.loadSettings(); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

func (c *Config) loadSettings() error {
	data, err := os.ReadFile(c.SettingsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", SettingsFile, err)
	}
	if err := yaml.Unmarshal(data, &c.Settings); err != nil {
		return fmt.Errorf("invalid %s: %w", SettingsFile, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TASKDECK_API_URL"); v != "" {
		c.Settings.API.BaseURL = v
	}
	if v := os.Getenv("TASKDECK_LOG_LEVEL"); v != "" {
		c.Settings.Log.Level = v
	}
	if v := os.Getenv("TASKDECK_LOG_FORMAT"); v != "" {
		c.Settings.Log.Format = v
	}
}

// APIURL returns the configured backend base URL.
func (c *Config) APIURL() string {
	if c.Settings.API.BaseURL != "" {
		return c.Settings.API.BaseURL
	}
	return DefaultAPIURL
}

// APITimeout returns the fixed per-request timeout.
func (c *Config) APITimeout() time.Duration {
	if c.Settings.API.TimeoutSeconds > 0 {
		return time.Duration(c.Settings.API.TimeoutSeconds) * time.Second
	}
	return DefaultTimeout
}

// TokenPath returns the path to the stored credential file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// SettingsPath returns the path to the settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasToken checks if the credential file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}
