package scrapingbee

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/lukman83/scrapingbee-mcp/internal/models"
)

// bodySnippetMax caps how much raw upstream body a diagnostic carries.
const bodySnippetMax = 1000

// ClassifyResponse builds a diagnostic for a non-2xx upstream response.
// targetURL is the page the caller asked to scrape, used for host-specific
// hints. The classification is advisory only; it never triggers retries.
func ClassifyResponse(resp *Response, targetURL string) *models.Diagnostic {
	d := &models.Diagnostic{
		Kind:              models.KindAPIError,
		Status:            resp.StatusCode,
		StatusText:        statusLabel(resp.StatusCode),
		Message:           fmt.Sprintf("ScrapingBee API returned %d (%s)", resp.StatusCode, statusLabel(resp.StatusCode)),
		Body:              snippet(resp.Body),
		CostCredits:       resp.CostCredits(),
		InitialStatusCode: resp.InitialStatusCode(),
		ResolvedURL:       resp.ResolvedURL(),
	}

	switch resp.StatusCode {
	case 400:
		d.PossibleCauses = []string{
			"Malformed extract_rules or js_scenario",
			"A parameter has the wrong type or an unsupported value",
		}
		d.Suggestions = []string{
			"Validate the JSON syntax of extract_rules and js_scenario",
			"Check parameter types against the ScrapingBee documentation",
		}
	case 401:
		d.PossibleCauses = []string{
			"Missing or invalid API key",
		}
		d.Suggestions = []string{
			"Check that the API key is correct and active",
		}
	case 402:
		d.PossibleCauses = []string{
			"Account out of credits",
		}
		d.Suggestions = []string{
			"Check the credit balance on your ScrapingBee dashboard",
		}
	case 403:
		d.PossibleCauses = []string{
			"The target site is blocking the request",
			"The target is not reachable from the current proxy geolocation",
		}
		d.Suggestions = []string{
			"Retry with premium_proxy=true",
			"Retry with stealth_proxy=true for heavily protected sites",
			"Try a different country_code",
		}
	case 408, 504:
		d.PossibleCauses = []string{
			"The target page took too long to load",
		}
		d.Suggestions = []string{
			"Increase the wait parameter",
			"Use wait_for with a selector that appears when the page is ready",
		}
	case 429:
		d.PossibleCauses = []string{
			"Too many concurrent requests for your plan",
		}
		d.Suggestions = []string{
			"Slow down the request rate",
			"Reduce concurrency or upgrade the plan",
		}
	case 500:
		d.PossibleCauses = []string{
			"Upstream error while rendering or fetching the target page",
		}
		d.Suggestions = []string{
			"Retry the request once; transient upstream failures are common",
			"Simplify extract_rules to isolate the failing selector",
		}
		if hostContainsGoogle(targetURL) {
			d.Suggestions = append([]string{
				"Set custom_google=true: Google domains require the dedicated Google proxy pool",
			}, d.Suggestions...)
		}
	case 502, 503:
		d.PossibleCauses = []string{
			"ScrapingBee is temporarily unavailable",
		}
		d.Suggestions = []string{
			"Retry after a short delay",
		}
	default:
		d.PossibleCauses = []string{
			"Unexpected upstream status",
		}
		d.Suggestions = []string{
			"Inspect the response body for details",
			"Check the ScrapingBee status page",
		}
	}

	return d
}

// ClassifyTransport builds a diagnostic for a failure that never produced
// an HTTP response: timeouts, connection errors, local parse failures.
func ClassifyTransport(err error) *models.Diagnostic {
	d := &models.Diagnostic{
		Status:  models.StatusNone,
		Message: err.Error(),
	}

	switch {
	case isTimeout(err):
		d.Kind = models.KindTimeout
		d.StatusText = "Timeout"
		d.PossibleCauses = []string{
			"The upstream call exceeded its time budget (120s by default)",
			"The target page is extremely slow or stuck loading",
		}
		d.Suggestions = []string{
			"Lower the wait parameter",
			"Use wait_for instead of a fixed wait",
			"Retry later; the target may be temporarily slow",
		}
	case isNetwork(err):
		d.Kind = models.KindNetwork
		d.StatusText = "Network Error"
		d.PossibleCauses = []string{
			"No route to the ScrapingBee API",
			"DNS resolution or connection failure",
		}
		d.Suggestions = []string{
			"Check the machine's network connectivity",
			"Verify no proxy or firewall blocks app.scrapingbee.com",
		}
	case containsAny(err.Error(), "parse", "unmarshal", "invalid character", "unexpected end of JSON"):
		d.Kind = models.KindParseError
		d.StatusText = "Parse Error"
		d.PossibleCauses = []string{
			"The upstream body was not valid JSON",
		}
		d.Suggestions = []string{
			"Inspect the raw response body",
		}
	case containsAny(err.Error(), "api key", "api_key", "unauthorized", "auth"):
		d.Kind = models.KindAuth
		d.StatusText = "Authentication Error"
		d.PossibleCauses = []string{
			"Missing or invalid API key",
		}
		d.Suggestions = []string{
			"Set SCRAPINGBEE_API_KEY or pass api_key with the call",
		}
	default:
		d.Kind = models.KindUnknown
		d.StatusText = "Unknown Error"
		d.PossibleCauses = []string{
			"Unclassified failure before an HTTP response was received",
		}
		d.Suggestions = []string{
			"Check the error message for details",
		}
	}

	return d
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return containsAny(err.Error(), "timeout", "deadline exceeded", "timed out")
}

func isNetwork(err error) bool {
	var oe *net.OpError
	if errors.As(err, &oe) {
		return true
	}
	var de *net.DNSError
	if errors.As(err, &de) {
		return true
	}
	return containsAny(err.Error(), "connection refused", "connection reset", "no such host", "EOF", "broken pipe")
}

func containsAny(s string, subs ...string) bool {
	ls := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(ls, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

func hostContainsGoogle(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return strings.Contains(rawURL, "google.")
	}
	return strings.Contains(u.Host, "google.")
}

func snippet(body []byte) string {
	s := string(body)
	if len(s) > bodySnippetMax {
		return s[:bodySnippetMax]
	}
	return s
}

func statusLabel(code int) string {
	switch code {
	case 400:
		return "Bad Request"
	case 401:
		return "Unauthorized"
	case 402:
		return "Payment Required"
	case 403:
		return "Forbidden"
	case 408:
		return "Request Timeout"
	case 429:
		return "Too Many Requests"
	case 500:
		return "Internal Server Error"
	case 502:
		return "Bad Gateway"
	case 503:
		return "Service Unavailable"
	case 504:
		return "Gateway Timeout"
	default:
		return fmt.Sprintf("HTTP %d", code)
	}
}
