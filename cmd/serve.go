package cmd

import (
	"fmt"
	"log"

	"github.com/lukman83/scrapingbee-mcp/internal/gateway"
	mcpserver "github.com/lukman83/scrapingbee-mcp/mcp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP stdio server",
	Long:  "Start the MCP server on stdio. The API key is read from $SCRAPINGBEE_API_KEY.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if cfg.APIKey == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: SCRAPINGBEE_API_KEY is not set; every tool call will fail with AUTH")
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting ScrapingBee MCP server on stdio...")

	if err := mcpserver.Serve(newGateway(gateway.KeyAmbient)); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
	return nil
}
