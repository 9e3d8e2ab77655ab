package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".confsync"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the on-disk YAML configuration. All fields are optional;
// anything unset falls back to environment variables, flags, or
// defaults.
type File struct {
	// Server is the wiki base URL.
	Server string `yaml:"server"`

	// Email is the account email for basic authentication.
	Email string `yaml:"email"`

	// APIToken is the API token paired with Email. Keeping it in the
	// config file is convenient; CONFSYNC_API_TOKEN is the alternative
	// for people who don't want credentials on disk.
	APIToken string `yaml:"api_token"`

	// Space is the default space key for created top-level pages.
	Space string `yaml:"space"`

	// ImageDir overrides the directory for pulled images.
	ImageDir string `yaml:"image_dir"`

	// BatchSize overrides the sync concurrency.
	BatchSize int `yaml:"batch_size"`

	// Timeout overrides the per-request timeout, e.g. "45s".
	Timeout string `yaml:"timeout"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. .confsync in the current directory
//  3. .confsync in the user's home directory
//  4. config.yml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string
// if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	candidate := filepath.Join(XDGConfigDir(), "config.yml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}

	return ""
}

// ApplyFile overlays file settings onto the config. Callers apply the
// file before environment variables and flag overrides, so those win.
// Empty file fields are ignored.
func (c *Config) ApplyFile(cf *File) error {
	if cf == nil {
		return nil
	}
	if cf.Server != "" {
		c.Server = cf.Server
	}
	if cf.Email != "" {
		c.Email = cf.Email
	}
	if cf.APIToken != "" {
		c.APIToken = cf.APIToken
	}
	if cf.Space != "" {
		c.Space = cf.Space
	}
	if cf.ImageDir != "" {
		c.ImageDir = cf.ImageDir
	}
	if cf.BatchSize > 0 {
		c.BatchSize = cf.BatchSize
	}
	if cf.Timeout != "" {
		d, err := time.ParseDuration(cf.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q in config file: %w", cf.Timeout, err)
		}
		c.Timeout = d
	}
	return nil
}

// ApplyEnv overlays CONFSYNC_* environment variables. Environment
// values win over the config file but lose to explicit flags, so this
// runs after ApplyFile and before flag overrides.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("CONFSYNC_SERVER"); v != "" {
		c.Server = v
	}
	if v := os.Getenv("CONFSYNC_EMAIL"); v != "" {
		c.Email = v
	}
	if v := os.Getenv("CONFSYNC_API_TOKEN"); v != "" {
		c.APIToken = v
	}
	if v := os.Getenv("CONFSYNC_SPACE"); v != "" {
		c.Space = v
	}
}
