package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string
}

// LoadConfig creates a new Config instance. Every value is looked up in the
// environment first and falls back to a Docker secret of the lower-cased
// name, so the same binary runs in CI (env vars) and in compose/production
// (secrets mounted under /run/secrets).
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerPort:    lookup("SERVER_PORT", "8000"),
		ServerHost:    lookup("SERVER_HOST", "0.0.0.0"),
		DBHost:        lookup("DB_HOST", "localhost"),
		DBPort:        lookup("DB_PORT", "5432"),
		DBUser:        lookup("DB_USER", ""),
		DBPassword:    lookup("DB_PASSWORD", ""),
		DBName:        lookup("DB_NAME", "foodgram"),
		DBSSLMode:     lookup("DB_SSL_MODE", "disable"),
		RedisHost:     lookup("REDIS_HOST", ""),
		RedisPort:     lookup("REDIS_PORT", "6379"),
		RedisPassword: lookup("REDIS_PASSWORD", ""),
		RedisDB:       0,
		RedisURL:      lookup("REDIS_URL", ""),
		JWTSecret:     lookup("JWT_SECRET", ""),
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// lookup resolves a configuration value from the environment, then from a
// Docker secret named after the lower-cased key, then from the default.
func lookup(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if value := readSecret(strings.ToLower(key)); value != "" {
		return value
	}
	return fallback
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
