package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lukman83/scrapingbee-mcp/internal/models"
	"github.com/lukman83/scrapingbee-mcp/internal/scrapingbee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upstream struct {
	srv   *httptest.Server
	calls atomic.Int64
	last  atomic.Value // url.Values of the last request
}

// newUpstream starts a mocked ScrapingBee that answers with the given
// status and body and records every request's query parameters.
func newUpstream(t *testing.T, status int, body string, headers map[string]string) *upstream {
	t.Helper()
	u := &upstream{}
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.calls.Add(1)
		u.last.Store(r.URL.Query())
		for k, v := range headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(u.srv.Close)
	return u
}

func newTestGateway(baseURL, apiKey string, mode KeyMode) *Gateway {
	return New(scrapingbee.NewClient(baseURL, 5*time.Second, nil), apiKey, mode)
}

func extractArgs() map[string]interface{} {
	return map[string]interface{}{
		"url":           "https://x.test",
		"extract_rules": `{"title":"h1"}`,
	}
}

func TestExtractRulesSuccess(t *testing.T) {
	up := newUpstream(t, 200, `{"title": "Example"}`, map[string]string{"Spb-Cost": "5"})
	gw := newTestGateway(up.srv.URL, "key", KeyAmbient)

	res := gw.TestExtractRules(context.Background(), extractArgs())

	require.True(t, res.Success)
	assert.Nil(t, res.Error)
	assert.Equal(t, map[string]interface{}{"title": "Example"}, res.Data)
	require.NotNil(t, res.Meta)
	assert.Equal(t, "5", res.Meta.CostCredits)
	assert.Equal(t, int64(1), up.calls.Load())
}

func TestExtractRulesEmptyExtraction(t *testing.T) {
	up := newUpstream(t, 200, `{"title": "", "items": []}`, nil)
	gw := newTestGateway(up.srv.URL, "key", KeyAmbient)

	res := gw.TestExtractRules(context.Background(), extractArgs())

	require.False(t, res.Success, "empty extraction must fail even on HTTP 200")
	require.NotNil(t, res.Error)
	assert.Equal(t, models.KindExtractionEmpty, res.Error.Kind)
	assert.Equal(t, 200, res.Error.Status)
	// Parsed body stays available to the caller
	assert.Equal(t, map[string]interface{}{"title": "", "items": []interface{}{}}, res.Data)
	assert.Contains(t, res.Error.Message, "not treat these rules as validated")
}

func TestExtractRulesValidationFailureSkipsUpstream(t *testing.T) {
	up := newUpstream(t, 200, `{}`, nil)
	gw := newTestGateway(up.srv.URL, "key", KeyAmbient)

	res := gw.TestExtractRules(context.Background(), map[string]interface{}{})

	require.False(t, res.Success)
	assert.Equal(t, models.KindValidation, res.Error.Kind)
	assert.Equal(t, int64(0), up.calls.Load(), "no upstream call on validation failure")
}

func TestExtractRulesParseErrorSkipsUpstream(t *testing.T) {
	up := newUpstream(t, 200, `{}`, nil)
	gw := newTestGateway(up.srv.URL, "key", KeyAmbient)

	args := extractArgs()
	args["extract_rules"] = "{broken"
	res := gw.TestExtractRules(context.Background(), args)

	require.False(t, res.Success)
	assert.Equal(t, models.KindParseError, res.Error.Kind)
	assert.Equal(t, int64(0), up.calls.Load())
}

func TestExtractRulesIdempotent(t *testing.T) {
	up := newUpstream(t, 200, `{"title": "Example"}`, map[string]string{"Spb-Cost": "5"})
	gw := newTestGateway(up.srv.URL, "key", KeyAmbient)

	a := gw.TestExtractRules(context.Background(), extractArgs())
	b := gw.TestExtractRules(context.Background(), extractArgs())

	aj, err := json.Marshal(a)
	require.NoError(t, err)
	bj, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, aj, bj, "identical requests must produce byte-identical results")
}

func TestExtractRulesUpstream403(t *testing.T) {
	up := newUpstream(t, 403, `{"error":"blocked"}`, nil)
	gw := newTestGateway(up.srv.URL, "key", KeyAmbient)

	res := gw.TestExtractRules(context.Background(), extractArgs())

	require.False(t, res.Success)
	require.NotNil(t, res.Error)
	assert.Equal(t, models.KindAPIError, res.Error.Kind)
	assert.Equal(t, 403, res.Error.Status)
	joined := strings.Join(append(res.Error.PossibleCauses, res.Error.Suggestions...), " ")
	assert.Contains(t, joined, "premium_proxy")
}

func TestExtractRulesTimeoutVsNetwork(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	t.Cleanup(slow.Close)

	gw := New(scrapingbee.NewClient(slow.URL, 50*time.Millisecond, nil), "key", KeyAmbient)
	res := gw.TestExtractRules(context.Background(), extractArgs())
	require.False(t, res.Success)
	assert.Equal(t, models.KindTimeout, res.Error.Kind)

	// Connection refused is a different category
	gw = New(scrapingbee.NewClient("http://127.0.0.1:1", time.Second, nil), "key", KeyAmbient)
	res = gw.TestExtractRules(context.Background(), extractArgs())
	require.False(t, res.Success)
	assert.Equal(t, models.KindNetwork, res.Error.Kind)
}

func TestExtractRulesNonJSONBodyKeptVerbatim(t *testing.T) {
	up := newUpstream(t, 200, "plain text answer", nil)
	gw := newTestGateway(up.srv.URL, "key", KeyAmbient)

	res := gw.TestExtractRules(context.Background(), extractArgs())

	require.True(t, res.Success)
	assert.Equal(t, "plain text answer", res.Data)
}

func TestAmbientKeyMissingIsAuth(t *testing.T) {
	up := newUpstream(t, 200, `{}`, nil)
	gw := newTestGateway(up.srv.URL, "", KeyAmbient)

	res := gw.TestExtractRules(context.Background(), extractArgs())

	require.False(t, res.Success)
	assert.Equal(t, models.KindAuth, res.Error.Kind)
	assert.Equal(t, int64(0), up.calls.Load())
}

func TestPerCallKeyRequired(t *testing.T) {
	up := newUpstream(t, 200, `{"title":"x"}`, nil)
	gw := newTestGateway(up.srv.URL, "ambient-ignored", KeyPerCall)

	// Missing api_key is a validation failure naming the field
	res := gw.TestExtractRules(context.Background(), extractArgs())
	require.False(t, res.Success)
	assert.Equal(t, models.KindValidation, res.Error.Kind)
	assert.Contains(t, res.Error.Message, "api_key")

	// The supplied key, not the ambient one, goes on the wire
	args := extractArgs()
	args["api_key"] = "per-call-key"
	res = gw.TestExtractRules(context.Background(), args)
	require.True(t, res.Success)
	q := up.last.Load().(url.Values)
	assert.Equal(t, "per-call-key", q.Get("api_key"))
}

func TestGetPageHTMLTruncation(t *testing.T) {
	long := strings.Repeat("a", htmlMaxChars+500)
	up := newUpstream(t, 200, long, nil)
	gw := newTestGateway(up.srv.URL, "key", KeyAmbient)

	res := gw.GetPageHTML(context.Background(), map[string]interface{}{"url": "https://x.test"})

	require.True(t, res.Success)
	payload, ok := res.Data.(models.HTMLPayload)
	require.True(t, ok)
	assert.True(t, payload.Truncated)
	assert.Len(t, payload.HTML, htmlMaxChars)
	assert.Equal(t, htmlMaxChars+500, payload.OriginalLength)
}

func TestGetPageHTMLNoEmptyCheck(t *testing.T) {
	// An empty body is still a success for the HTML tool
	up := newUpstream(t, 200, "", nil)
	gw := newTestGateway(up.srv.URL, "key", KeyAmbient)

	res := gw.GetPageHTML(context.Background(), map[string]interface{}{"url": "https://x.test"})

	require.True(t, res.Success)
	payload := res.Data.(models.HTMLPayload)
	assert.False(t, payload.Truncated)
	assert.Equal(t, 0, payload.OriginalLength)
}

func TestGetScreenshotPreviewBounded(t *testing.T) {
	raw := strings.Repeat("\x89PNG", 1000)
	up := newUpstream(t, 200, raw, map[string]string{"Content-Type": "image/png"})
	gw := newTestGateway(up.srv.URL, "key", KeyAmbient)

	res := gw.GetScreenshot(context.Background(), map[string]interface{}{"url": "https://x.test"})

	require.True(t, res.Success)
	payload, ok := res.Data.(models.ScreenshotPayload)
	require.True(t, ok)
	assert.Len(t, payload.Base64Preview, screenshotPreviewChars)
	assert.Greater(t, payload.EncodedLength, screenshotPreviewChars)
	assert.Equal(t, "image/png", payload.ContentType)

	// The query carried the screenshot marker
	q := up.last.Load().(url.Values)
	assert.Equal(t, "true", q.Get("screenshot"))
}

func TestDispatchInvalidTool(t *testing.T) {
	gw := newTestGateway("http://127.0.0.1:1", "key", KeyAmbient)

	res := gw.Dispatch(context.Background(), "no_such_tool", map[string]interface{}{})

	require.False(t, res.Success)
	assert.Equal(t, models.KindInvalidTool, res.Error.Kind)
	assert.Contains(t, res.Error.Message, "no_such_tool")
}

func TestDispatchRoutesKnownTools(t *testing.T) {
	up := newUpstream(t, 200, `{"title":"x"}`, nil)
	gw := newTestGateway(up.srv.URL, "key", KeyAmbient)

	res := gw.Dispatch(context.Background(), ToolTestExtractRules, extractArgs())
	assert.True(t, res.Success)

	res = gw.Dispatch(context.Background(), ToolGetPageHTML, map[string]interface{}{"url": "https://x.test"})
	assert.True(t, res.Success)

	res = gw.Dispatch(context.Background(), ToolGetScreenshot, map[string]interface{}{"url": "https://x.test"})
	assert.True(t, res.Success)
}
