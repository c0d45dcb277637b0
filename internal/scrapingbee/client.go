package scrapingbee

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the fixed ScrapingBee endpoint.
const DefaultBaseURL = "https://app.scrapingbee.com/api/v1/"

// Response is one upstream answer, body fully read and decompressed.
type Response struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// CostCredits returns the credits charged for the call, if reported.
func (r *Response) CostCredits() string { return r.Header.Get("Spb-Cost") }

// InitialStatusCode returns the status code of the resolved target page.
func (r *Response) InitialStatusCode() string { return r.Header.Get("Spb-Initial-Status-Code") }

// ResolvedURL returns the final URL after upstream-side redirects.
func (r *Response) ResolvedURL() string { return r.Header.Get("Spb-Resolved-Url") }

// Client issues single GET requests against the ScrapingBee API.
// Fire-once: no retry, no backoff.
type Client struct {
	http    *http.Client
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter // nil when throttling is disabled
}

// NewClient creates a Client. An optional rate limiter throttles outbound
// calls; the limiter waits under the same per-call deadline.
func NewClient(baseURL string, timeout time.Duration, limiter *rate.Limiter) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL: baseURL,
		timeout: timeout,
		limiter: limiter,
	}
}

// Fetch performs exactly one upstream attempt for the given parameters.
// apiKey is the resolved key (ambient or per-call, decided by the caller).
func (c *Client) Fetch(ctx context.Context, p *Params, apiKey string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.URL.RawQuery = p.Query(apiKey).Encode()
	req.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// readBody reads and decompresses an HTTP response body.
func readBody(resp *http.Response) ([]byte, error) {
	var reader io.ReadCloser
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		var err error
		reader, err = gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer reader.Close()
	case "br":
		reader = io.NopCloser(brotli.NewReader(resp.Body))
	default:
		reader = resp.Body
	}
	return io.ReadAll(reader)
}
