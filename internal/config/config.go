// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingURI is returned when no MongoDB connection string is configured.
var ErrMissingURI = errors.New("MONGO_URI must be set")

// Config holds everything the query runner reads from its environment.
type Config struct {
	// Database Configuration
	MongoURI       string
	Database       string
	ConnectTimeout time.Duration

	// CommentID targets the single-comment delete; empty means "any comment"
	CommentID string

	// QueryRate paces database calls per collection; 0 disables pacing
	QueryRate float64

	// LogLevel is the zap level name; see LogLevel()
	LogLevel string
}

// LogLevel returns override when set, else LOG_LEVEL, else "info". The logger
// is built before the rest of the configuration is loaded, so the level is
// resolved on its own.
func LogLevel(override string) string {
	if override != "" {
		return override
	}
	return getEnvOrDefault("LOG_LEVEL", "info")
}

// LoadEnvFile loads variables from path into the process environment without
// overriding ones already set. A missing default .env file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil
		}
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading env file %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	uri := getEnvOrDefault("MONGO_URI", os.Getenv("MONGODB_URI"))
	if uri == "" {
		return nil, ErrMissingURI
	}

	timeout, err := time.ParseDuration(getEnvOrDefault("CONNECT_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CONNECT_TIMEOUT: %w", err)
	}

	var queryRate float64
	if v := os.Getenv("QUERY_RATE"); v != "" {
		queryRate, err = strconv.ParseFloat(v, 64)
		if err != nil || queryRate < 0 {
			return nil, fmt.Errorf("invalid QUERY_RATE %q", v)
		}
	}

	return &Config{
		MongoURI:       uri,
		Database:       os.Getenv("MONGO_DATABASE"),
		ConnectTimeout: timeout,
		CommentID:      os.Getenv("COMMENT_ID"),
		QueryRate:      queryRate,
		LogLevel:       LogLevel(""),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
