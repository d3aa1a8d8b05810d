package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the values the server cannot run without are
// present. Redis is optional (the rate limiter is skipped when unset), the
// database and the JWT secret are not.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.DBUser == "" {
		errors = append(errors, "DB_USER (or the db_user secret) is required")
	}
	if cfg.DBPassword == "" {
		errors = append(errors, "DB_PASSWORD (or the db_password secret) is required")
	}
	if cfg.DBName == "" {
		errors = append(errors, "DB_NAME (or the db_name secret) is required")
	}
	if cfg.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET (or the jwt_secret secret) is required")
	}
	if cfg.ServerPort == "" {
		errors = append(errors, "SERVER_PORT is required")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
