package mcp

import (
	"context"
	"encoding/json"

	"github.com/lukman83/scrapingbee-mcp/internal/gateway"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// registerTools declares the tool surface once, for every transport.
// perCallKey selects the HTTP-served variant where api_key is a required
// argument instead of process configuration; the two variants are
// otherwise identical and must not drift.
func registerTools(s *server.MCPServer, gw *gateway.Gateway, perCallKey bool) {
	keyOpts := func() []mcp.ToolOption {
		if !perCallKey {
			return nil
		}
		return []mcp.ToolOption{
			mcp.WithString("api_key",
				mcp.Required(),
				mcp.Description("Your ScrapingBee API key"),
			),
		}
	}

	// test_extract_rules
	extractOpts := []mcp.ToolOption{
		mcp.WithDescription("Test ScrapingBee extraction rules against a live page. " +
			"Fails loudly when every extracted value is empty, so no-op selectors are never mistaken for validated rules."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("URL of the page to scrape"),
		),
		mcp.WithString("extract_rules",
			mcp.Required(),
			mcp.Description("JSON object of CSS/XPath extraction rules, forwarded verbatim"),
		),
		mcp.WithString("js_scenario",
			mcp.Description("JSON object with an \"instructions\" array of browser actions to run before extraction"),
		),
		mcp.WithBoolean("render_js",
			mcp.Description("Render the page with a headless browser before extracting"),
		),
		mcp.WithNumber("wait",
			mcp.Description("Fixed wait in ms before extraction (0-35000)"),
		),
		mcp.WithString("wait_for",
			mcp.Description("CSS selector to wait for before extraction"),
		),
		mcp.WithString("wait_browser",
			mcp.Description("Browser event to wait for"),
			mcp.Enum("load", "domcontentloaded", "networkidle0", "networkidle2"),
		),
		mcp.WithBoolean("premium_proxy",
			mcp.Description("Use the premium residential proxy pool"),
		),
		mcp.WithBoolean("stealth_proxy",
			mcp.Description("Use the stealth proxy pool for heavily protected sites"),
		),
		mcp.WithString("country_code",
			mcp.Description("Two-letter lowercase proxy country code, e.g. \"us\""),
		),
		mcp.WithNumber("session_id",
			mcp.Description("Sticky session id to reuse the same proxy IP across calls"),
		),
		mcp.WithBoolean("custom_google",
			mcp.Description("Required for scraping Google domains"),
		),
		mcp.WithBoolean("block_resources",
			mcp.Description("Block images and CSS to speed up rendering"),
		),
		mcp.WithBoolean("block_ads",
			mcp.Description("Block ads during rendering"),
		),
	}
	s.AddTool(
		mcp.NewTool(gateway.ToolTestExtractRules, append(extractOpts, keyOpts()...)...),
		toolHandler(gw, gateway.ToolTestExtractRules),
	)

	// get_page_html
	htmlOpts := []mcp.ToolOption{
		mcp.WithDescription("Fetch a page's HTML through ScrapingBee. " +
			"Long documents are truncated to a fixed budget with the original length reported."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("URL of the page to fetch"),
		),
		mcp.WithBoolean("render_js",
			mcp.Description("Render the page with a headless browser first"),
		),
		mcp.WithNumber("wait",
			mcp.Description("Fixed wait in ms before returning (0-35000)"),
		),
		mcp.WithString("wait_for",
			mcp.Description("CSS selector to wait for before returning"),
		),
		mcp.WithBoolean("premium_proxy",
			mcp.Description("Use the premium residential proxy pool"),
		),
		mcp.WithBoolean("return_page_source",
			mcp.Description("Return the pre-rendering page source instead of the rendered DOM"),
		),
	}
	s.AddTool(
		mcp.NewTool(gateway.ToolGetPageHTML, append(htmlOpts, keyOpts()...)...),
		toolHandler(gw, gateway.ToolGetPageHTML),
	)

	// get_screenshot
	screenshotOpts := []mcp.ToolOption{
		mcp.WithDescription("Capture a screenshot of a page through ScrapingBee. " +
			"Returns a bounded base64 preview plus the full encoded length."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("URL of the page to capture"),
		),
		mcp.WithBoolean("screenshot_full_page",
			mcp.Description("Capture the full page height instead of the viewport"),
		),
		mcp.WithNumber("window_width",
			mcp.Description("Viewport width in px"),
		),
		mcp.WithNumber("window_height",
			mcp.Description("Viewport height in px"),
		),
		mcp.WithNumber("wait",
			mcp.Description("Fixed wait in ms before capturing (0-35000)"),
		),
		mcp.WithString("wait_for",
			mcp.Description("CSS selector to wait for before capturing"),
		),
		mcp.WithBoolean("premium_proxy",
			mcp.Description("Use the premium residential proxy pool"),
		),
	}
	s.AddTool(
		mcp.NewTool(gateway.ToolGetScreenshot, append(screenshotOpts, keyOpts()...)...),
		toolHandler(gw, gateway.ToolGetScreenshot),
	)
}

// toolHandler adapts a gateway tool to the MCP handler signature. Failures
// stay in-band: the envelope is returned as content with IsError set, never
// as a transport error.
func toolHandler(gw *gateway.Gateway, tool string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := gw.Dispatch(ctx, tool, request.GetArguments())

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return mcp.NewToolResultError("encode result: " + err.Error()), nil
		}

		out := mcp.NewToolResultText(string(data))
		out.IsError = !result.Success
		return out, nil
	}
}
