package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Crawl
	SourceRootURL string
	SourceSite    string
	RespectRobots bool
	MinDelay      time.Duration
	RetryAttempts int
	RetryBase     time.Duration
	NavTimeout    time.Duration
	ExportDir     string

	// Rate limiting for direct HTTP fetches (images, robots.txt)
	RatePerSecond float64
	RateBurst     int

	// Catalog
	DatabaseDSN string

	// Storage for mirrored images
	StorageRoot   string
	PublicBaseURL string

	// HTTP server
	HTTPPort string
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		SourceSite:    "boutik",
		RespectRobots: true,
		MinDelay:      time.Second,
		RetryAttempts: 3,
		RetryBase:     500 * time.Millisecond,
		NavTimeout:    60 * time.Second,
		ExportDir:     "exports",
		RatePerSecond: 2.0,
		RateBurst:     3,
		StorageRoot:   "storage",
		PublicBaseURL: "/storage",
		HTTPPort:      "8080",
	}
}

// LoadFromEnv loads .env (if present) then overrides config from environment
// variables.
func (c *Config) LoadFromEnv() {
	// Auto-load .env file; silently ignored if missing
	_ = godotenv.Load()

	if v := os.Getenv("BOUTIK_ROOT_URL"); v != "" {
		c.SourceRootURL = v
	}
	if v := os.Getenv("BOUTIK_SOURCE_SITE"); v != "" {
		c.SourceSite = v
	}
	if v := os.Getenv("BOUTIK_RESPECT_ROBOTS"); v == "false" {
		c.RespectRobots = false
	}
	if v := os.Getenv("BOUTIK_MIN_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.MinDelay = d
		}
	}
	if v := os.Getenv("BOUTIK_RETRY_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RetryAttempts = n
		}
	}
	if v := os.Getenv("BOUTIK_RETRY_BASE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RetryBase = d
		}
	}
	if v := os.Getenv("BOUTIK_NAV_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.NavTimeout = d
		}
	}
	if v := os.Getenv("BOUTIK_EXPORT_DIR"); v != "" {
		c.ExportDir = v
	}
	if v := os.Getenv("BOUTIK_RATE_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RatePerSecond = f
		}
	}
	if v := os.Getenv("BOUTIK_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateBurst = n
		}
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		c.DatabaseDSN = v
	}
	if v := os.Getenv("BOUTIK_STORAGE_ROOT"); v != "" {
		c.StorageRoot = v
	}
	if v := os.Getenv("BOUTIK_PUBLIC_BASE_URL"); v != "" {
		c.PublicBaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.HTTPPort = v
	}
}
