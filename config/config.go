package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Upstream API
	APIKey      string        // default ScrapingBee API key (stdio/CLI mode)
	BaseURL     string        // upstream endpoint, overridable for testing
	CallTimeout time.Duration // budget for one upstream call

	// Client-side throttling (disabled when RatePerSecond is 0)
	RatePerSecond float64
	RateBurst     int
	MaxConcurrent int // CLI multi-URL fan-out bound

	// HTTP server
	HTTPPort     string
	ServerAPIKey string // bearer token protecting the HTTP transport
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       "https://app.scrapingbee.com/api/v1/",
		CallTimeout:   120 * time.Second,
		RateBurst:     1,
		MaxConcurrent: 5,
		HTTPPort:      "8080",
	}
}

// LoadFromEnv loads .env file (if present) then overrides config from environment variables.
func (c *Config) LoadFromEnv() {
	// Auto-load .env file; silently ignored if missing
	_ = godotenv.Load()

	if v := os.Getenv("SCRAPINGBEE_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("SCRAPINGBEE_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("SB_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.CallTimeout = d
		}
	}
	if v := os.Getenv("SB_RATE_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RatePerSecond = f
		}
	}
	if v := os.Getenv("SB_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateBurst = n
		}
	}
	if v := os.Getenv("SB_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxConcurrent = n
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		c.HTTPPort = v
	}
	if v := os.Getenv("SB_SERVER_API_KEY"); v != "" {
		c.ServerAPIKey = v
	}
}
