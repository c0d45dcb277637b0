package cmd

import (
	"fmt"

	"github.com/lukman83/scrapingbee-mcp/internal/gateway"
	mcpserver "github.com/lukman83/scrapingbee-mcp/mcp"
	"github.com/spf13/cobra"
)

var serveHTTPCmd = &cobra.Command{
	Use:   "serve-http",
	Short: "Start MCP HTTP server",
	Long: "Start the MCP server over HTTP for remote access. In this mode every tool call\n" +
		"must carry its own api_key argument; the process-wide key is not consulted.",
	RunE: runServeHTTP,
}

func init() {
	serveHTTPCmd.Flags().String("port", "", "HTTP port (default from $PORT or 8080)")
	rootCmd.AddCommand(serveHTTPCmd)
}

func runServeHTTP(cmd *cobra.Command, args []string) error {
	port := cfg.HTTPPort
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
	}

	addr := fmt.Sprintf(":%s", port)
	return mcpserver.ServeHTTP(addr, cfg.ServerAPIKey, newGateway(gateway.KeyPerCall))
}
