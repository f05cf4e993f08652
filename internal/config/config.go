package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port           string
	Env            string
	DatabaseURL    string // PostgreSQL; empty means SQLite/in-memory
	RedisURL       string // optional message-plane backend + rate limiting
	SQLitePath     string
	EncryptionKey  string
	JWTSecret      string
	GoogleClientID string
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required secrets.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		SQLitePath:     os.Getenv("SQLITE_PATH"),
		EncryptionKey:  getEnv("ENCRYPTION_KEY", "chatlogger-dev-secret"),
		JWTSecret:      getEnv("JWT_SECRET", "chatlogger-dev-jwt-secret"),
		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),
	}

	if cfg.Env == "production" {
		if os.Getenv("ENCRYPTION_KEY") == "" {
			panic("ENCRYPTION_KEY is required in production")
		}
		if os.Getenv("JWT_SECRET") == "" {
			panic("JWT_SECRET is required in production")
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
