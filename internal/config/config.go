// Package config provides configuration loading and validation for the
// screener server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Defaults applied when neither the config file nor the environment sets a value.
const (
	DefaultPort = 8080

	// DefaultRateLimitCalls and DefaultRateLimitWindow bound outbound AI
	// calls during batch runs: 30 analyses per minute, one every 2 seconds.
	DefaultRateLimitCalls  = 30
	DefaultRateLimitWindow = time.Minute
)

// Config represents the application configuration. All fields are optional
// in the file; missing values are filled from the environment or defaults.
type Config struct {
	// Server
	Port int `json:"port,omitempty"` // HTTP listen port

	// Persistence
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// AI provider
	Provider     string `json:"provider,omitempty"`       // "gemini" or "groq"
	APIKey       string `json:"api_key,omitempty"`        // Provider API key
	ExtractModel string `json:"extract_model,omitempty"`  // Override for the extraction model
	ScoringModel string `json:"scoring_model,omitempty"`  // Override for the scoring model
	RateLimitRPM int    `json:"rate_limit_rpm,omitempty"` // Batch analyses per minute
	Verbose      bool   `json:"verbose,omitempty"`        // Debug logging
	LogJSON      bool   `json:"log_json,omitempty"`       // JSON log encoding
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from environment variables. GEMINI_API_KEY and
// GROQ_API_KEY select their provider when LLM_PROVIDER is unset.
func FromEnv() Config {
	cfg := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Provider:    os.Getenv("LLM_PROVIDER"),
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.APIKey = key
		if cfg.Provider == "" {
			cfg.Provider = "gemini"
		}
	}
	if key := os.Getenv("GROQ_API_KEY"); key != "" && cfg.APIKey == "" {
		cfg.APIKey = key
		if cfg.Provider == "" {
			cfg.Provider = "groq"
		}
	}
	return cfg
}

// Validate checks that the configuration has valid values
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.RateLimitRPM < 0 {
		return fmt.Errorf("config error: 'rate_limit_rpm' must be non-negative")
	}
	switch c.Provider {
	case "", "gemini", "groq":
	default:
		return fmt.Errorf("config error: unknown provider %q", c.Provider)
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. File values win over environment values, which win over the
// built-in defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.ExtractModel == "" {
		result.ExtractModel = defaults.ExtractModel
	}
	if result.ScoringModel == "" {
		result.ScoringModel = defaults.ScoringModel
	}

	if result.Port == 0 {
		if defaults.Port > 0 {
			result.Port = defaults.Port
		} else {
			result.Port = DefaultPort
		}
	}
	if result.RateLimitRPM == 0 {
		if defaults.RateLimitRPM > 0 {
			result.RateLimitRPM = defaults.RateLimitRPM
		} else {
			result.RateLimitRPM = DefaultRateLimitCalls
		}
	}

	// Bool fields: cannot distinguish unset from false, so flags win

	return result
}
