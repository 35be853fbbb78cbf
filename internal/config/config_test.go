package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `{
		"port": 9090,
		"database_url": "postgres://localhost/screener",
		"provider": "groq",
		"rate_limit_rpm": 15
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres://localhost/screener", cfg.DatabaseURL)
	assert.Equal(t, "groq", cfg.Provider)
	assert.Equal(t, 15, cfg.RateLimitRPM)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeConfigFile(t, `{not json`)
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestValidate(t *testing.T) {
	valid := Config{Port: 8080, Provider: "gemini", RateLimitRPM: 30}
	assert.NoError(t, valid.Validate())

	badPort := Config{Port: 70000}
	assert.Error(t, badPort.Validate())

	badProvider := Config{Provider: "openai"}
	assert.Error(t, badProvider.Validate())

	badRate := Config{RateLimitRPM: -1}
	assert.Error(t, badRate.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Provider: "groq"}
	defaults := Config{
		DatabaseURL: "postgres://localhost/screener",
		Provider:    "gemini",
		APIKey:      "env-key",
	}

	merged := cfg.MergeWithDefaults(defaults)

	// Explicit values win
	assert.Equal(t, "groq", merged.Provider)
	// Empty values are filled from defaults
	assert.Equal(t, "postgres://localhost/screener", merged.DatabaseURL)
	assert.Equal(t, "env-key", merged.APIKey)
	// Built-in fallbacks apply last
	assert.Equal(t, DefaultPort, merged.Port)
	assert.Equal(t, DefaultRateLimitCalls, merged.RateLimitRPM)
}

func TestFromEnv_ProviderSelection(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "groq-key")

	cfg := FromEnv()
	assert.Equal(t, "postgres://env/db", cfg.DatabaseURL)
	assert.Equal(t, "groq", cfg.Provider)
	assert.Equal(t, "groq-key", cfg.APIKey)
}

func TestFromEnv_GeminiWins(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("GROQ_API_KEY", "groq-key")

	cfg := FromEnv()
	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "gem-key", cfg.APIKey)
}
