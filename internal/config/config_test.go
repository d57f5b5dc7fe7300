// ABOUTME: Tests for environment configuration
// ABOUTME: Covers defaults, API key fallback and validation errors
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GEMINI_API_KEY", "API_KEY", "GEMINI_BASE_URL", "CHAT_MODEL", "TTS_MODEL",
		"TTS_VOICE", "PERSONA_FILE", "REQUEST_TIMEOUT", "RETRY_MAX_ATTEMPTS",
		"RETRY_INITIAL_BACKOFF", "PLAYBACK_SAMPLE_RATE", "LOG_LEVEL", "LOG_PRETTY",
		"METRICS_ADDR",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "secret")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}

	if cfg.ChatModel != "gemini-2.5-flash" {
		t.Errorf("expected default chat model, got %q", cfg.ChatModel)
	}
	if cfg.TTSModel != "gemini-2.5-flash-preview-tts" {
		t.Errorf("expected default TTS model, got %q", cfg.TTSModel)
	}
	if cfg.TTSVoice != "Fenrir" {
		t.Errorf("expected voice Fenrir, got %q", cfg.TTSVoice)
	}
	if cfg.PlaybackSampleRate != 24000 {
		t.Errorf("expected 24000 Hz, got %d", cfg.PlaybackSampleRate)
	}
	if cfg.RequestTimeout != 60*time.Second {
		t.Errorf("expected 60s timeout, got %v", cfg.RequestTimeout)
	}
	if cfg.RetryMaxAttempts != 3 || cfg.RetryInitialBackoff != 500*time.Millisecond {
		t.Errorf("unexpected retry defaults %d/%v", cfg.RetryMaxAttempts, cfg.RetryInitialBackoff)
	}
	if cfg.LogLevel != "info" || cfg.LogPretty {
		t.Errorf("unexpected log defaults %q/%v", cfg.LogLevel, cfg.LogPretty)
	}
	if cfg.MetricsAddr != "" {
		t.Errorf("expected metrics disabled, got %q", cfg.MetricsAddr)
	}
}

func TestLoadAPIKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "legacy")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	if cfg.APIKey != "legacy" {
		t.Errorf("expected API_KEY fallback, got %q", cfg.APIKey)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("TTS_VOICE", "Kore")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("PLAYBACK_SAMPLE_RATE", "48000")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv failed: %v", err)
	}
	if cfg.TTSVoice != "Kore" || cfg.RequestTimeout != 5*time.Second || cfg.PlaybackSampleRate != 48000 || !cfg.LogPretty {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing key",
			env:     map[string]string{},
			wantErr: "GEMINI_API_KEY",
		},
		{
			name:    "bad sample rate",
			env:     map[string]string{"GEMINI_API_KEY": "k", "PLAYBACK_SAMPLE_RATE": "0"},
			wantErr: "PLAYBACK_SAMPLE_RATE",
		},
		{
			name:    "bad retry attempts",
			env:     map[string]string{"GEMINI_API_KEY": "k", "RETRY_MAX_ATTEMPTS": "0"},
			wantErr: "RETRY_MAX_ATTEMPTS",
		},
		{
			name:    "unparseable timeout",
			env:     map[string]string{"GEMINI_API_KEY": "k", "REQUEST_TIMEOUT": "soon"},
			wantErr: "failed to load config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadFromEnv()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestPersona(t *testing.T) {
	cfg := &Config{}
	got, err := cfg.Persona("default persona")
	if err != nil || got != "default persona" {
		t.Errorf("expected fallback persona, got %q, %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "persona.txt")
	if err := os.WriteFile(path, []byte("custom persona"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg.PersonaFile = path
	got, err = cfg.Persona("default persona")
	if err != nil || got != "custom persona" {
		t.Errorf("expected file persona, got %q, %v", got, err)
	}

	cfg.PersonaFile = filepath.Join(t.TempDir(), "missing.txt")
	if _, err := cfg.Persona("x"); err == nil {
		t.Error("expected error for missing persona file")
	}
}
