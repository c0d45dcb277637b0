package mcp

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/lukman83/scrapingbee-mcp/internal/gateway"
	"github.com/mark3labs/mcp-go/server"
)

// ServeHTTP starts the MCP server over HTTP with optional Bearer token auth.
// The gateway runs in per-call key mode: every tool call must carry its own
// api_key argument. Endpoints:
//
//	GET  /health               liveness
//	POST /mcp                  streamable HTTP transport (stateless)
//	GET  /sse, POST /messages  legacy SSE transport
func ServeHTTP(addr, serverKey string, gw *gateway.Gateway) error {
	s := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)

	registerTools(s, gw, true)

	httpServer := server.NewStreamableHTTPServer(s, server.WithStateLess(true))
	sseServer := server.NewSSEServer(s,
		server.WithSSEEndpoint("/sse"),
		server.WithMessageEndpoint("/messages"),
	)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","server":"` + serverName + `","version":"` + serverVersion + `"}`))
	})

	mux.Handle("/mcp", guard(serverKey, httpServer))
	mux.Handle("/sse", guard(serverKey, sseServer.SSEHandler()))
	mux.Handle("/messages", guard(serverKey, sseServer.MessageHandler()))

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("ScrapingBee MCP HTTP server listening on %s", addr)
	return srv.ListenAndServe()
}

// guard wraps a handler with bearer auth when a server key is configured.
func guard(serverKey string, next http.Handler) http.Handler {
	if serverKey == "" {
		return next
	}
	return bearerAuth(serverKey, next)
}

func bearerAuth(serverKey string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="mcp"`)
			http.Error(w, `{"error":"missing Authorization header"}`, http.StatusUnauthorized)
			return
		}
		token, found := strings.CutPrefix(auth, "Bearer ")
		if !found || subtle.ConstantTimeCompare([]byte(token), []byte(serverKey)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="mcp", error="invalid_token"`)
			http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
