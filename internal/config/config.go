// Package config provides configuration loading and validation for the
// service and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config represents settings that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided
// via CLI flags and environment variables.
type Config struct {
	// Server
	Port        int    `json:"port,omitempty"`         // HTTP listen port
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL, empty disables persistence

	// AI
	AIProvider      string `json:"ai_provider,omitempty"`       // "gemini" or "openai"
	AITier          string `json:"ai_tier,omitempty"`           // "lite", "standard", or "advanced"
	AIMaxConcurrent int    `json:"ai_max_concurrent,omitempty"` // Cap on in-flight model calls

	// Pipeline
	RequestTimeoutSecs int  `json:"request_timeout_secs,omitempty"` // Whole-request budget in seconds
	FetchTimeoutMs     int  `json:"fetch_timeout_ms,omitempty"`     // Per-page fetch budget in milliseconds
	MaxRedirects       int  `json:"max_redirects,omitempty"`        // Redirect cap per fetch
	AllowPartialResult bool `json:"allow_partial_result,omitempty"` // Serve results without AI fields on model failure
	AllowPrivateHosts  bool `json:"allow_private_hosts,omitempty"`  // Admit loopback and private hosts (local testing)

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// DefaultConfig returns the settings used when nothing else is provided.
func DefaultConfig() Config {
	return Config{
		Port:               8080,
		AIProvider:         "gemini",
		AITier:             "standard",
		AIMaxConcurrent:    8,
		RequestTimeoutSecs: 45,
		FetchTimeoutMs:     10000,
		MaxRedirects:       5,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
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

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	switch c.AIProvider {
	case "", "gemini", "openai":
	default:
		return fmt.Errorf("config error: 'ai_provider' must be 'gemini' or 'openai', got %q", c.AIProvider)
	}

	switch c.AITier {
	case "", "lite", "standard", "advanced":
	default:
		return fmt.Errorf("config error: 'ai_tier' must be 'lite', 'standard', or 'advanced', got %q", c.AITier)
	}

	if c.RequestTimeoutSecs < 0 {
		return fmt.Errorf("config error: 'request_timeout_secs' must be non-negative")
	}
	if c.FetchTimeoutMs < 0 {
		return fmt.Errorf("config error: 'fetch_timeout_ms' must be non-negative")
	}
	if c.MaxRedirects < 0 {
		return fmt.Errorf("config error: 'max_redirects' must be non-negative")
	}
	if c.AIMaxConcurrent < 0 {
		return fmt.Errorf("config error: 'ai_max_concurrent' must be non-negative")
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled
// from defaults. CLI flags should still win over the merged result.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.AIProvider == "" {
		result.AIProvider = defaults.AIProvider
	}
	if result.AITier == "" {
		result.AITier = defaults.AITier
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.AIMaxConcurrent == 0 {
		result.AIMaxConcurrent = defaults.AIMaxConcurrent
	}
	if result.RequestTimeoutSecs == 0 {
		result.RequestTimeoutSecs = defaults.RequestTimeoutSecs
	}
	if result.FetchTimeoutMs == 0 {
		result.FetchTimeoutMs = defaults.FetchTimeoutMs
	}
	if result.MaxRedirects == 0 {
		result.MaxRedirects = defaults.MaxRedirects
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// RequestTimeout converts the configured budget to a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

// FetchTimeout converts the configured fetch budget to a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMs) * time.Millisecond
}
