package config

import (
	"os"
	"strconv"
	"time"
)

// DefaultSecret is the development-only signing key. Operators must set
// SECRET_KEY in any real deployment.
const DefaultSecret = "dev-insecure-secret"

// Config holds the application configuration.
type Config struct {
	ServerPort    int
	DatabasePath  string
	UploadDir     string
	SecretKey     string
	TokenTTL      time.Duration
	SweepSchedule string
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "2h"))
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:    port,
		DatabasePath:  getEnv("DATABASE_PATH", "./storage.db"),
		UploadDir:     getEnv("UPLOAD_DIR", "./uploads"),
		SecretKey:     getEnv("SECRET_KEY", DefaultSecret),
		TokenTTL:      ttl,
		SweepSchedule: getEnv("SWEEP_SCHEDULE", "@hourly"),
	}, nil
}

// InsecureSecret reports whether the process is running on the built-in
// development signing key.
func (c *Config) InsecureSecret() bool {
	return c.SecretKey == DefaultSecret
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
