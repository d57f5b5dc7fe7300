// ABOUTME: Environment-driven configuration for the voice note client
// ABOUTME: Loads .env, applies defaults and validates the API key
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds service settings. CLI switches live in main.
type Config struct {
	// Generative Language API
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL" default:"https://generativelanguage.googleapis.com/"`

	ChatModel string `envconfig:"CHAT_MODEL" default:"gemini-2.5-flash"`
	TTSModel  string `envconfig:"TTS_MODEL" default:"gemini-2.5-flash-preview-tts"`
	TTSVoice  string `envconfig:"TTS_VOICE" default:"Fenrir"`

	// Optional file replacing the built-in persona prompt
	PersonaFile string `envconfig:"PERSONA_FILE"`

	RequestTimeout      time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`
	RetryMaxAttempts    int           `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`
	RetryInitialBackoff time.Duration `envconfig:"RETRY_INITIAL_BACKOFF" default:"500ms"`

	// Rate of every playback context; headerless speech arrives at 24 kHz
	PlaybackSampleRate int `envconfig:"PLAYBACK_SAMPLE_RATE" default:"24000"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"false"`

	// Empty disables the metrics server
	MetricsAddr string `envconfig:"METRICS_ADDR"`
}

// Load reads configuration from a .env file, if present, then the environment
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv reads configuration from the environment only
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and ranges
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY (or API_KEY) is required")
	}
	if c.PlaybackSampleRate <= 0 {
		return fmt.Errorf("PLAYBACK_SAMPLE_RATE must be positive, got %d", c.PlaybackSampleRate)
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1, got %d", c.RetryMaxAttempts)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

// Persona returns the system instruction override, or fallback when no
// PERSONA_FILE is configured
func (c *Config) Persona(fallback string) (string, error) {
	if c.PersonaFile == "" {
		return fallback, nil
	}
	data, err := os.ReadFile(c.PersonaFile)
	if err != nil {
		return "", fmt.Errorf("failed to read persona file: %w", err)
	}
	return string(data), nil
}
