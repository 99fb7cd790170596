package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY"`
	ElevenLabsAPIKey string `env:"ELEVENLABS_API_KEY"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"120s"`
	BatchCount     int           `env:"BATCH_COUNT" envDefault:"4"`
}

// Overrides holds CLI flag values that take priority over env vars.
type Overrides struct {
	EnvFile          string
	OpenAIAPIKey     string
	GeminiAPIKey     string
	AnthropicAPIKey  string
	ElevenLabsAPIKey string
	RequestTimeout   time.Duration
	BatchCount       int
}

// Load reads configuration from .env file, environment variables, and CLI overrides.
// Priority: CLI flags > environment variables > .env file > struct defaults.
func Load(overrides Overrides) (*Config, error) {
	// Load .env file (silent if missing)
	envFile := overrides.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	// Parse environment variables into config struct
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Apply CLI overrides (non-empty values win)
	if overrides.OpenAIAPIKey != "" {
		cfg.OpenAIAPIKey = overrides.OpenAIAPIKey
	}
	if overrides.GeminiAPIKey != "" {
		cfg.GeminiAPIKey = overrides.GeminiAPIKey
	}
	if overrides.AnthropicAPIKey != "" {
		cfg.AnthropicAPIKey = overrides.AnthropicAPIKey
	}
	if overrides.ElevenLabsAPIKey != "" {
		cfg.ElevenLabsAPIKey = overrides.ElevenLabsAPIKey
	}
	if overrides.RequestTimeout > 0 {
		cfg.RequestTimeout = overrides.RequestTimeout
	}
	if overrides.BatchCount > 0 {
		cfg.BatchCount = overrides.BatchCount
	}

	return cfg, nil
}

// KeyFor returns the configured API key for the named provider.
func (c *Config) KeyFor(provider string) string {
	switch provider {
	case "openai":
		return c.OpenAIAPIKey
	case "gemini":
		return c.GeminiAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	case "elevenlabs":
		return c.ElevenLabsAPIKey
	}
	return ""
}
