package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"poker-platform/client/internal/connection"
)

// Config holds all configuration values for the client.
type Config struct {
	// Platform endpoints
	APIBaseURL string
	WSBaseURL  string

	// Reconnect policy
	ReconnectDelay time.Duration
	MaxReconnects  int
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() Config {
	// Load .env file if it exists
	godotenv.Load()

	return Config{
		APIBaseURL:     getEnv("POKER_API_URL", "http://localhost:8000"),
		WSBaseURL:      getEnv("POKER_WS_URL", "ws://localhost:8000"),
		ReconnectDelay: time.Duration(getEnvInt("POKER_RECONNECT_DELAY_SECONDS", 3)) * time.Second,
		MaxReconnects:  getEnvInt("POKER_RECONNECT_LIMIT", connection.DefaultMaxRetries),
	}
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable or returns a fallback.
func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
