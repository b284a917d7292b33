package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                string
	DBPath              string
	BucketName          string
	CredentialsPath     string
	CredentialsJSON     string // Raw service-account JSON, takes precedence over the path
	SignedLinkTTL       time.Duration
	AllowedOrigins      []string
	RateLimitPerSecond  float64
	RateLimitBurst      int
	RateLimitCleanup    time.Duration
}

// Load reads configuration from environment variables and .env file.
// It loads the .env file if present, then populates the Config struct.
// Returns an error if required configuration is missing.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DBPath:             getEnv("DB_PATH", "stayfinder.db"),
		BucketName:         getEnv("STORAGE_BUCKET_NAME", ""),
		CredentialsPath:    getEnv("STORAGE_CREDENTIALS_PATH", "service-account.json"),
		CredentialsJSON:    getEnv("STORAGE_CREDENTIALS_JSON", ""),
		SignedLinkTTL:      getDurationEnv("SIGNED_LINK_TTL", time.Hour),
		AllowedOrigins:     getList("ALLOWED_ORIGINS", []string{"*"}),
		RateLimitPerSecond: getFloatEnv("RATE_LIMIT_PER_SECOND", 10),
		RateLimitBurst:     getIntEnv("RATE_LIMIT_BURST", 20),
		RateLimitCleanup:   getDurationEnv("RATE_LIMIT_CLEANUP_INTERVAL", 3*time.Minute),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.BucketName == "" {
		return fmt.Errorf("STORAGE_BUCKET_NAME is required")
	}
	if c.CredentialsJSON == "" && c.CredentialsPath == "" {
		return fmt.Errorf("either STORAGE_CREDENTIALS_JSON or STORAGE_CREDENTIALS_PATH must be set")
	}
	if c.SignedLinkTTL <= 0 {
		return fmt.Errorf("SIGNED_LINK_TTL must be positive")
	}
	if c.RateLimitPerSecond <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_SECOND must be positive")
	}
	if c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be positive")
	}
	if c.RateLimitCleanup <= 0 {
		return fmt.Errorf("RATE_LIMIT_CLEANUP_INTERVAL must be positive")
	}
	return nil
}

// Retrieves an environment variable or returns a default value if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// Retrieves a duration from environment variable or returns a default value.
// It supports both time.Duration format (e.g., "30m", "1h") and integer seconds.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

// Retrieves a comma-separated list from environment variable or returns a default value.
func getList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// Retrieves a float from environment variable or returns a default value.
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// Retrieves an integer from environment variable or returns a default value.
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
