package scrapingbee

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/lukman83/scrapingbee-mcp/internal/models"
)

const (
	// WaitMax is the upstream's ceiling for the wait parameter, in ms.
	WaitMax = 35000
)

var countryCodeRe = regexp.MustCompile(`^[a-z]{2}$`)

// ArgError is a terminal validation failure: the call never goes upstream.
type ArgError struct {
	Kind    string
	Message string
}

func (e *ArgError) Error() string { return e.Message }

// Params is the validated view of a tool call's arguments. Pointer fields
// distinguish "absent" from zero values so that absent options are never
// forwarded upstream.
type Params struct {
	URL          string
	ExtractRules string
	JSScenario   string
	APIKey       string // per-call key, only in per-call key mode

	RenderJS       *bool
	PremiumProxy   *bool
	StealthProxy   *bool
	CustomGoogle   *bool
	BlockResources *bool
	BlockAds       *bool

	Wait        *int
	WaitFor     string
	WaitBrowser string
	CountryCode string
	SessionID   *int

	// get_page_html
	ReturnPageSource *bool

	// get_screenshot
	Screenshot         bool
	ScreenshotFullPage *bool
	WindowWidth        *int
	WindowHeight       *int
}

// ParseExtractParams validates arguments for test_extract_rules.
// Checks run in order and short-circuit on the first failure.
func ParseExtractParams(args map[string]interface{}, requireAPIKey bool) (*Params, *ArgError) {
	p := &Params{}

	required := []string{"url", "extract_rules"}
	if requireAPIKey {
		required = append(required, "api_key")
	}
	if err := requirePresent(args, required); err != nil {
		return nil, err
	}

	p.URL, _ = argString(args, "url")
	p.ExtractRules, _ = argString(args, "extract_rules")
	p.APIKey, _ = argString(args, "api_key")

	if err := json.Unmarshal([]byte(p.ExtractRules), new(interface{})); err != nil {
		return nil, &ArgError{
			Kind:    models.KindParseError,
			Message: fmt.Sprintf("extract_rules is not valid JSON: %v", err),
		}
	}

	if js, ok := argString(args, "js_scenario"); ok && strings.TrimSpace(js) != "" {
		if err := json.Unmarshal([]byte(js), new(interface{})); err != nil {
			return nil, &ArgError{
				Kind:    models.KindParseError,
				Message: fmt.Sprintf("js_scenario is not valid JSON: %v", err),
			}
		}
		p.JSScenario = js
	}

	if err := p.parseShared(args); err != nil {
		return nil, err
	}

	p.RenderJS = argBool(args, "render_js")
	p.StealthProxy = argBool(args, "stealth_proxy")
	p.CustomGoogle = argBool(args, "custom_google")
	p.BlockResources = argBool(args, "block_resources")
	p.BlockAds = argBool(args, "block_ads")
	p.WaitBrowser, _ = argString(args, "wait_browser")
	p.SessionID = argInt(args, "session_id")

	return p, nil
}

// ParseHTMLParams validates arguments for get_page_html.
func ParseHTMLParams(args map[string]interface{}, requireAPIKey bool) (*Params, *ArgError) {
	p := &Params{}

	required := []string{"url"}
	if requireAPIKey {
		required = append(required, "api_key")
	}
	if err := requirePresent(args, required); err != nil {
		return nil, err
	}

	p.URL, _ = argString(args, "url")
	p.APIKey, _ = argString(args, "api_key")

	if err := p.parseShared(args); err != nil {
		return nil, err
	}

	p.RenderJS = argBool(args, "render_js")
	p.ReturnPageSource = argBool(args, "return_page_source")

	return p, nil
}

// ParseScreenshotParams validates arguments for get_screenshot.
func ParseScreenshotParams(args map[string]interface{}, requireAPIKey bool) (*Params, *ArgError) {
	p := &Params{Screenshot: true}

	required := []string{"url"}
	if requireAPIKey {
		required = append(required, "api_key")
	}
	if err := requirePresent(args, required); err != nil {
		return nil, err
	}

	p.URL, _ = argString(args, "url")
	p.APIKey, _ = argString(args, "api_key")

	if err := p.parseShared(args); err != nil {
		return nil, err
	}

	p.ScreenshotFullPage = argBool(args, "screenshot_full_page")
	p.WindowWidth = argInt(args, "window_width")
	p.WindowHeight = argInt(args, "window_height")

	return p, nil
}

// parseShared handles the options common to all three tools: wait/wait_for,
// premium_proxy and country_code, with their range and format checks.
func (p *Params) parseShared(args map[string]interface{}) *ArgError {
	if w := argInt(args, "wait"); w != nil {
		if *w < 0 || *w > WaitMax {
			return &ArgError{
				Kind:    models.KindValidation,
				Message: fmt.Sprintf("wait must be between 0 and %d ms, got %d", WaitMax, *w),
			}
		}
		p.Wait = w
	}

	if cc, ok := argString(args, "country_code"); ok && cc != "" {
		if !countryCodeRe.MatchString(cc) {
			return &ArgError{
				Kind:    models.KindValidation,
				Message: fmt.Sprintf("country_code must be a two-letter lowercase code, got %q", cc),
			}
		}
		p.CountryCode = cc
	}

	p.WaitFor, _ = argString(args, "wait_for")
	p.PremiumProxy = argBool(args, "premium_proxy")
	return nil
}

// Query maps the validated parameters to the upstream query string.
// Only present fields emit a key; absent options are omitted entirely.
func (p *Params) Query(apiKey string) url.Values {
	q := url.Values{}
	q.Set("api_key", apiKey)
	q.Set("url", p.URL)

	if p.ExtractRules != "" {
		q.Set("extract_rules", p.ExtractRules)
	}
	if p.JSScenario != "" {
		q.Set("js_scenario", p.JSScenario)
	}
	setBool(q, "render_js", p.RenderJS)
	setBool(q, "premium_proxy", p.PremiumProxy)
	setBool(q, "stealth_proxy", p.StealthProxy)
	setBool(q, "custom_google", p.CustomGoogle)
	setBool(q, "block_resources", p.BlockResources)
	setBool(q, "block_ads", p.BlockAds)
	setInt(q, "wait", p.Wait)
	if p.WaitFor != "" {
		q.Set("wait_for", p.WaitFor)
	}
	if p.WaitBrowser != "" {
		q.Set("wait_browser", p.WaitBrowser)
	}
	if p.CountryCode != "" {
		q.Set("country_code", p.CountryCode)
	}
	setInt(q, "session_id", p.SessionID)

	setBool(q, "return_page_source", p.ReturnPageSource)

	if p.Screenshot {
		q.Set("screenshot", "true")
	}
	setBool(q, "screenshot_full_page", p.ScreenshotFullPage)
	setInt(q, "window_width", p.WindowWidth)
	setInt(q, "window_height", p.WindowHeight)

	return q
}

func requirePresent(args map[string]interface{}, fields []string) *ArgError {
	var missing []string
	for _, f := range fields {
		if s, ok := argString(args, f); !ok || strings.TrimSpace(s) == "" {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &ArgError{
			Kind:    models.KindValidation,
			Message: "missing required parameters: " + strings.Join(missing, ", "),
		}
	}
	return nil
}

func argString(args map[string]interface{}, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func argBool(args map[string]interface{}, key string) *bool {
	v, ok := args[key]
	if !ok {
		return nil
	}
	if b, ok := v.(bool); ok {
		return &b
	}
	return nil
}

// argInt accepts Go ints and JSON numbers (float64 after decoding).
func argInt(args map[string]interface{}, key string) *int {
	v, ok := args[key]
	if !ok {
		return nil
	}
	switch n := v.(type) {
	case int:
		return &n
	case int64:
		i := int(n)
		return &i
	case float64:
		i := int(n)
		return &i
	case json.Number:
		if x, err := n.Int64(); err == nil {
			i := int(x)
			return &i
		}
	}
	return nil
}

func setBool(q url.Values, key string, v *bool) {
	if v != nil {
		q.Set(key, strconv.FormatBool(*v))
	}
}

func setInt(q url.Values, key string, v *int) {
	if v != nil {
		q.Set(key, strconv.Itoa(*v))
	}
}
