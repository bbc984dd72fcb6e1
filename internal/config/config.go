// Package config reads environment configuration for the server.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/danarifki/temani/domain"
)

// Config holds application configuration.
type Config struct {
	Port         string
	GeminiAPIKey string
	DataDir      string
}

// Load reads a .env file when present, then the environment, applying sane
// defaults. The credential is not validated here; call Validate before
// opening any connection.
func Load() Config {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}

	return Config{
		Port:         port,
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		DataDir:      dataDir,
	}
}

// Validate surfaces the missing-credential configuration error before any
// network attempt is made.
func (c Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY is not set", domain.ErrMissingCredential)
	}
	return nil
}
