// Package config provides configuration for the evaluator.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the evaluator configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// Timeouts
	DiscoveryTimeout time.Duration
	TurnTimeout      time.Duration

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:         getEnvInt("HTTP_PORT", 9009),
		DatabaseURL:      getEnv("DATABASE_URL", "file:evaluator.db?cache=shared&mode=rwc"),
		DiscoveryTimeout: time.Duration(getEnvInt("DISCOVERY_TIMEOUT_MS", 10000)) * time.Millisecond,
		TurnTimeout:      time.Duration(getEnvInt("TURN_TIMEOUT_MS", 120000)) * time.Millisecond,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
