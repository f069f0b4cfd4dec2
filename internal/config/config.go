// Package config resolves client configuration: defaults, then the YAML
// config file, then environment (with .env autoload), then flags on top.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is the API host used when nothing overrides it.
const DefaultBaseURL = "http://localhost:3000"

// EnvBaseURL is the single environment override the client honors.
const EnvBaseURL = "SHOP_API_URL"

// Config is the resolved client configuration.
type Config struct {
	BaseURL string `yaml:"base_url"`
}

// Dir returns the client config directory (XDG aware).
func Dir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "shopctl")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "shopctl")
}

// Load resolves the configuration. A missing .env or config file is not an
// error; a malformed config file is.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{BaseURL: DefaultBaseURL}
	if b, err := os.ReadFile(filepath.Join(Dir(), "config.yaml")); err == nil {
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, err
		}
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return cfg, nil
}
