package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	// Create temp config file
	content := `{
		"port": 9090,
		"ai_provider": "openai",
		"request_timeout_secs": 30,
		"allow_partial_result": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "openai", cfg.AIProvider)
	assert.Equal(t, 30, cfg.RequestTimeoutSecs)
	assert.True(t, cfg.AllowPartialResult)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg := &Config{AIProvider: "watson"}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ai_provider")
}

func TestValidate_UnknownTier(t *testing.T) {
	cfg := &Config{AITier: "turbo"}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ai_tier")
}

func TestValidate_NegativeValues(t *testing.T) {
	cfg := &Config{FetchTimeoutMs: -1}

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "fetch_timeout_ms")
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := &Config{
		Port:               8080,
		AIProvider:         "gemini",
		AITier:             "standard",
		RequestTimeoutSecs: 45,
	}

	err := cfg.Validate()
	assert.NoError(t, err)
}

func TestMergeWithDefaults(t *testing.T) {
	defaults := DefaultConfig()

	partial := Config{
		Port:       9090,
		AIProvider: "openai",
	}

	merged := partial.MergeWithDefaults(defaults)

	// Custom values should be preserved
	assert.Equal(t, 9090, merged.Port)
	assert.Equal(t, "openai", merged.AIProvider)

	// Default values should fill in empty fields
	assert.Equal(t, "standard", merged.AITier)
	assert.Equal(t, 45, merged.RequestTimeoutSecs)
	assert.Equal(t, 10000, merged.FetchTimeoutMs)
	assert.Equal(t, 5, merged.MaxRedirects)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := Config{
		Port:   3000,
		AITier: "lite",
	}

	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, 3000, merged.Port)
	assert.Equal(t, "lite", merged.AITier)
}

func TestDurationHelpers(t *testing.T) {
	cfg := Config{RequestTimeoutSecs: 45, FetchTimeoutMs: 1500}

	assert.Equal(t, 45*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 1500*time.Millisecond, cfg.FetchTimeout())
}
