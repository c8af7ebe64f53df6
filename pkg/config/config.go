// Package config loads and persists the prdpilot client configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DefaultServerURL    = "http://localhost:8420"
	DefaultMaxQuestions = 10
	DefaultTimeoutSecs  = 60
)

// Config is the persisted client configuration. Environment variables
// override file values; a .env file in the working directory is honored.
type Config struct {
	ServerURL    string `json:"server_url" validate:"required,url"`
	APIKey       string `json:"api_key"`
	ProjectID    string `json:"project_id"`
	MaxQuestions int    `json:"max_questions" validate:"gte=1,lte=50"`
	TimeoutSecs  int    `json:"timeout_secs" validate:"gte=1,lte=600"`
	SkipPrompt   bool   `json:"-"` // command-scoped, never saved
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Path returns the config file location.
func Path() string {
	return filepath.Join(os.Getenv("HOME"), ".prdpilot", "config.json")
}

func defaults() *Config {
	return &Config{
		ServerURL:    DefaultServerURL,
		MaxQuestions: DefaultMaxQuestions,
		TimeoutSecs:  DefaultTimeoutSecs,
	}
}

// Load reads the config file, applies .env and environment overrides, and
// validates the result. A missing file yields the defaults.
func Load() (*Config, error) {
	return loadFrom(Path())
}

func loadFrom(path string) (*Config, error) {
	_ = godotenv.Load() // a missing .env is not an error

	cfg := defaults()
	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PRDPILOT_SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("PRDPILOT_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("PRDPILOT_PROJECT_ID"); v != "" {
		cfg.ProjectID = v
	}
	if v := os.Getenv("PRDPILOT_MAX_QUESTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxQuestions = n
		}
	}
}

// Save writes the config to its default location.
func (c *Config) Save() error {
	return c.saveTo(Path())
}

func (c *Config) saveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// LoadOrInit loads the config, writing the defaults to disk first when no
// file exists yet.
func LoadOrInit() (*Config, error) {
	if _, err := os.Stat(Path()); os.IsNotExist(err) {
		if err := defaults().Save(); err != nil {
			return nil, err
		}
	}
	return Load()
}
