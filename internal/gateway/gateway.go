// Package gateway orchestrates one tool call end to end: validate the
// arguments, issue the single upstream request, classify failures and shape
// the result envelope. Every call is stateless and independent.
package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/lukman83/scrapingbee-mcp/internal/models"
	"github.com/lukman83/scrapingbee-mcp/internal/scrapingbee"
)

// Tool names exposed over every transport.
const (
	ToolTestExtractRules = "test_extract_rules"
	ToolGetPageHTML      = "get_page_html"
	ToolGetScreenshot    = "get_screenshot"
)

// KeyMode selects where the ScrapingBee API key comes from. The two modes
// are deployment-exclusive and never fall back to each other.
type KeyMode int

const (
	// KeyAmbient reads the key from process configuration (stdio/CLI mode).
	KeyAmbient KeyMode = iota
	// KeyPerCall requires an api_key argument on every call (HTTP mode).
	KeyPerCall
)

// htmlMaxChars bounds the HTML payload so it fits transport message limits.
const htmlMaxChars = 50000

// screenshotPreviewChars bounds the embedded base64 screenshot preview.
const screenshotPreviewChars = 1000

// Gateway is the transport-agnostic tool implementation.
type Gateway struct {
	client  *scrapingbee.Client
	apiKey  string
	keyMode KeyMode
}

// New creates a Gateway. apiKey is only consulted in KeyAmbient mode.
func New(client *scrapingbee.Client, apiKey string, mode KeyMode) *Gateway {
	return &Gateway{client: client, apiKey: apiKey, keyMode: mode}
}

// Dispatch routes a named tool call. Unknown names are a tool-level
// failure, not a transport fault.
func (g *Gateway) Dispatch(ctx context.Context, tool string, args map[string]interface{}) *models.ToolResult {
	switch tool {
	case ToolTestExtractRules:
		return g.TestExtractRules(ctx, args)
	case ToolGetPageHTML:
		return g.GetPageHTML(ctx, args)
	case ToolGetScreenshot:
		return g.GetScreenshot(ctx, args)
	default:
		return &models.ToolResult{
			Success: false,
			Error: &models.Diagnostic{
				Kind:    models.KindInvalidTool,
				Status:  models.StatusNone,
				Message: fmt.Sprintf("unknown tool %q", tool),
				Suggestions: []string{
					"Valid tools: test_extract_rules, get_page_html, get_screenshot",
				},
			},
		}
	}
}

// TestExtractRules runs extraction rules against a page and judges the
// result. An empty extraction fails by policy even on HTTP 200: a vacuous
// payload must never look like validated rules.
func (g *Gateway) TestExtractRules(ctx context.Context, args map[string]interface{}) *models.ToolResult {
	p, argErr := scrapingbee.ParseExtractParams(args, g.keyMode == KeyPerCall)
	if argErr != nil {
		return failArg(argErr)
	}

	resp, res := g.call(ctx, p)
	if res != nil {
		return res
	}

	var payload interface{}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		// Non-JSON body: keep the raw text so the caller sees what came back
		payload = string(resp.Body)
	}

	if isEmptyValue(payload) {
		return &models.ToolResult{
			Success: false,
			Data:    payload,
			Error: &models.Diagnostic{
				Kind:       models.KindExtractionEmpty,
				Status:     resp.StatusCode,
				StatusText: "OK",
				Message: "The extraction succeeded but every extracted value is empty. " +
					"Do not treat these rules as validated: the selectors most likely " +
					"match nothing on the page. Verify them against the page source, " +
					"or enable render_js if the content is rendered client-side.",
				CostCredits:       resp.CostCredits(),
				InitialStatusCode: resp.InitialStatusCode(),
				ResolvedURL:       resp.ResolvedURL(),
			},
		}
	}

	return &models.ToolResult{
		Success: true,
		Data:    payload,
		Message: "Extraction rules returned data",
		Meta:    metaFrom(resp),
	}
}

// GetPageHTML fetches a page and returns its HTML, truncated to a fixed
// character budget. The empty-extraction rule does not apply here.
func (g *Gateway) GetPageHTML(ctx context.Context, args map[string]interface{}) *models.ToolResult {
	p, argErr := scrapingbee.ParseHTMLParams(args, g.keyMode == KeyPerCall)
	if argErr != nil {
		return failArg(argErr)
	}

	resp, res := g.call(ctx, p)
	if res != nil {
		return res
	}

	html := string(resp.Body)
	payload := models.HTMLPayload{
		HTML:           html,
		OriginalLength: len(html),
	}
	if len(html) > htmlMaxChars {
		payload.HTML = html[:htmlMaxChars]
		payload.Truncated = true
	}

	return &models.ToolResult{
		Success: true,
		Data:    payload,
		Message: fmt.Sprintf("Fetched %d characters of HTML", payload.OriginalLength),
		Meta:    metaFrom(resp),
	}
}

// GetScreenshot captures a screenshot of a page. The body is base64-encoded
// and only a bounded preview is embedded alongside the full encoded length.
func (g *Gateway) GetScreenshot(ctx context.Context, args map[string]interface{}) *models.ToolResult {
	p, argErr := scrapingbee.ParseScreenshotParams(args, g.keyMode == KeyPerCall)
	if argErr != nil {
		return failArg(argErr)
	}

	resp, res := g.call(ctx, p)
	if res != nil {
		return res
	}

	encoded := base64.StdEncoding.EncodeToString(resp.Body)
	payload := models.ScreenshotPayload{
		Base64Preview: encoded,
		EncodedLength: len(encoded),
		ContentType:   resp.Header.Get("Content-Type"),
	}
	if len(encoded) > screenshotPreviewChars {
		payload.Base64Preview = encoded[:screenshotPreviewChars]
	}

	return &models.ToolResult{
		Success: true,
		Data:    payload,
		Message: fmt.Sprintf("Captured screenshot, %d base64 characters", payload.EncodedLength),
		Meta:    metaFrom(resp),
	}
}

// Screenshot fetches the raw screenshot bytes for file output (CLI use).
// The MCP surface goes through GetScreenshot instead.
func (g *Gateway) Screenshot(ctx context.Context, args map[string]interface{}) ([]byte, *models.ToolResult) {
	p, argErr := scrapingbee.ParseScreenshotParams(args, g.keyMode == KeyPerCall)
	if argErr != nil {
		return nil, failArg(argErr)
	}
	resp, res := g.call(ctx, p)
	if res != nil {
		return nil, res
	}
	return resp.Body, nil
}

// call resolves the API key and performs the one upstream attempt. It
// returns either a 2xx response or a terminal failure result.
func (g *Gateway) call(ctx context.Context, p *scrapingbee.Params) (*scrapingbee.Response, *models.ToolResult) {
	key, diag := g.resolveKey(p)
	if diag != nil {
		return nil, &models.ToolResult{Success: false, Error: diag}
	}

	resp, err := g.client.Fetch(ctx, p, key)
	if err != nil {
		return nil, &models.ToolResult{Success: false, Error: scrapingbee.ClassifyTransport(err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &models.ToolResult{Success: false, Error: scrapingbee.ClassifyResponse(resp, p.URL)}
	}
	return resp, nil
}

func (g *Gateway) resolveKey(p *scrapingbee.Params) (string, *models.Diagnostic) {
	if g.keyMode == KeyPerCall {
		// Presence already enforced by the validator
		return p.APIKey, nil
	}
	if g.apiKey == "" {
		return "", &models.Diagnostic{
			Kind:    models.KindAuth,
			Status:  models.StatusNone,
			Message: "no ScrapingBee API key configured",
			Suggestions: []string{
				"Set the SCRAPINGBEE_API_KEY environment variable",
			},
		}
	}
	return g.apiKey, nil
}

func failArg(argErr *scrapingbee.ArgError) *models.ToolResult {
	return &models.ToolResult{
		Success: false,
		Error: &models.Diagnostic{
			Kind:    argErr.Kind,
			Status:  models.StatusNone,
			Message: argErr.Message,
		},
	}
}

func metaFrom(resp *scrapingbee.Response) *models.Meta {
	m := &models.Meta{
		CostCredits:       resp.CostCredits(),
		InitialStatusCode: resp.InitialStatusCode(),
		ResolvedURL:       resp.ResolvedURL(),
	}
	if m.CostCredits == "" && m.InitialStatusCode == "" && m.ResolvedURL == "" {
		return nil
	}
	return m
}
