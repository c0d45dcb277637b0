package cmd

import (
	"fmt"
	"os"

	"github.com/lukman83/scrapingbee-mcp/config"
	"github.com/lukman83/scrapingbee-mcp/internal/gateway"
	"github.com/lukman83/scrapingbee-mcp/internal/scrapingbee"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "scrapingbee-mcp",
	Short: "ScrapingBee MCP adapter - CLI & MCP server",
	Long:  "Exposes the ScrapingBee web-scraping API as MCP tools over stdio and HTTP, and as direct CLI commands.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("api-key", "", "ScrapingBee API key (overrides $SCRAPINGBEE_API_KEY)")
	rootCmd.PersistentFlags().String("base-url", "", "Upstream API base URL (testing only)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Upstream call budget (default 120s)")
	rootCmd.PersistentFlags().Float64("rate-per-second", 0, "Client-side outbound rate limit (0 = off)")
}

func initConfig() {
	cfg = config.DefaultConfig()
	cfg.LoadFromEnv()

	// Override from flags
	if v, _ := rootCmd.PersistentFlags().GetString("api-key"); v != "" {
		cfg.APIKey = v
	}
	if v, _ := rootCmd.PersistentFlags().GetString("base-url"); v != "" {
		cfg.BaseURL = v
	}
	if v, _ := rootCmd.PersistentFlags().GetDuration("timeout"); v > 0 {
		cfg.CallTimeout = v
	}
	if v, _ := rootCmd.PersistentFlags().GetFloat64("rate-per-second"); v > 0 {
		cfg.RatePerSecond = v
	}
}

// buildClient creates the upstream client from config.
func buildClient() *scrapingbee.Client {
	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst)
	}
	return scrapingbee.NewClient(cfg.BaseURL, cfg.CallTimeout, limiter)
}

// newGateway creates a gateway in the given key mode.
func newGateway(mode gateway.KeyMode) *gateway.Gateway {
	return gateway.New(buildClient(), cfg.APIKey, mode)
}
