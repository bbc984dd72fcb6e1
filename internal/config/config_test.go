package config

import (
	"errors"
	"testing"

	"github.com/danarifki/temani/domain"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATA_DIR", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.DataDir != "./data" {
		t.Errorf("Expected default data dir, got %s", cfg.DataDir)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("DATA_DIR", "/tmp/temani")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg := Load()

	if cfg.Port != "9999" {
		t.Errorf("Expected port 9999, got %s", cfg.Port)
	}
	if cfg.DataDir != "/tmp/temani" {
		t.Errorf("Expected /tmp/temani, got %s", cfg.DataDir)
	}
	if cfg.GeminiAPIKey != "test-key" {
		t.Errorf("Expected test-key, got %s", cfg.GeminiAPIKey)
	}
}

func TestValidateRequiresCredential(t *testing.T) {
	cfg := Config{Port: "8080", DataDir: "./data"}
	if err := cfg.Validate(); !errors.Is(err, domain.ErrMissingCredential) {
		t.Errorf("Expected missing credential error, got %v", err)
	}

	cfg.GeminiAPIKey = "key"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}
