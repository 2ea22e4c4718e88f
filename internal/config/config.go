// Package config loads the client's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const baseURLEnv = "FUNDTRACKER_API_URL"

// Config holds the client's settings.
type Config struct {
	API struct {
		BaseURL        string  `yaml:"base_url"`
		TimeoutSeconds int64   `yaml:"timeout_seconds"`
		RateLimit      float64 `yaml:"rate_limit_per_second"`
		RateBurst      int     `yaml:"rate_burst"`
	} `yaml:"api"`
	State struct {
		Path string `yaml:"path"`
	} `yaml:"state"`
	Log struct {
		Verbose bool `yaml:"verbose"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.API.BaseURL = "http://localhost:8000/api"
	cfg.API.TimeoutSeconds = 10
	cfg.API.RateLimit = 5
	cfg.API.RateBurst = 10
	cfg.State.Path = defaultStatePath()
	return cfg
}

// Load reads configuration from path, falling back to defaults when the
// file is absent. FUNDTRACKER_API_URL overrides the base URL either way.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults apply.
	case err != nil:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	if url := os.Getenv(baseURLEnv); url != "" {
		cfg.API.BaseURL = url
	}
	if cfg.API.BaseURL == "" {
		return nil, errors.New("config: api.base_url is required")
	}
	if cfg.API.TimeoutSeconds <= 0 {
		cfg.API.TimeoutSeconds = 10
	}
	if cfg.State.Path == "" {
		cfg.State.Path = defaultStatePath()
	}
	return cfg, nil
}

// DefaultPath is where the CLI looks for its config file.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "fundtracker.yaml"
	}
	return filepath.Join(home, ".fundtracker", "config.yaml")
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "session.json"
	}
	return filepath.Join(home, ".fundtracker", "session.json")
}
