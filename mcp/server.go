package mcp

import (
	"github.com/lukman83/scrapingbee-mcp/internal/gateway"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "scrapingbee-mcp"
	serverVersion = "1.0.0"
)

// Serve starts the MCP stdio server. The gateway runs in ambient-key mode:
// the API key comes from process configuration, never from the caller.
func Serve(gw *gateway.Gateway) error {
	s := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)

	registerTools(s, gw, false)

	return server.ServeStdio(s)
}
