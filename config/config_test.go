package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	assert.Equal(t, "https://app.scrapingbee.com/api/v1/", c.BaseURL)
	assert.Equal(t, 120*time.Second, c.CallTimeout)
	assert.Equal(t, "8080", c.HTTPPort)
	assert.Zero(t, c.RatePerSecond, "throttling is off by default")
	assert.Empty(t, c.APIKey)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SCRAPINGBEE_API_KEY", "env-key")
	t.Setenv("SB_HTTP_TIMEOUT", "90s")
	t.Setenv("SB_RATE_PER_SECOND", "2.5")
	t.Setenv("SB_MAX_CONCURRENT", "3")
	t.Setenv("PORT", "9090")
	t.Setenv("SB_SERVER_API_KEY", "bearer-token")

	c := DefaultConfig()
	c.LoadFromEnv()

	assert.Equal(t, "env-key", c.APIKey)
	assert.Equal(t, 90*time.Second, c.CallTimeout)
	assert.Equal(t, 2.5, c.RatePerSecond)
	assert.Equal(t, 3, c.MaxConcurrent)
	assert.Equal(t, "9090", c.HTTPPort)
	assert.Equal(t, "bearer-token", c.ServerAPIKey)
}

func TestLoadFromEnvIgnoresInvalid(t *testing.T) {
	t.Setenv("SB_HTTP_TIMEOUT", "not-a-duration")
	t.Setenv("SB_RATE_PER_SECOND", "many")

	c := DefaultConfig()
	c.LoadFromEnv()

	assert.Equal(t, 120*time.Second, c.CallTimeout)
	assert.Zero(t, c.RatePerSecond)
}
