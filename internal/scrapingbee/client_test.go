package scrapingbee

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientFetchSendsQuery(t *testing.T) {
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query())
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, time.Second, nil)
	premium := true
	p := &Params{URL: "https://x.test", ExtractRules: `{"a":"h1"}`, PremiumProxy: &premium}

	resp, err := c.Fetch(context.Background(), p, "secret")
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	q := gotQuery.Load().(interface{ Get(string) string })
	assert.Equal(t, "secret", q.Get("api_key"))
	assert.Equal(t, "https://x.test", q.Get("url"))
	assert.Equal(t, "true", q.Get("premium_proxy"))
}

func TestClientFetchFireOnce(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(500)
		w.Write([]byte("boom"))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, time.Second, nil)
	resp, err := c.Fetch(context.Background(), &Params{URL: "https://x.test"}, "k")

	// A 500 is a response, not an error, and there is exactly one attempt
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	assert.Equal(t, int64(1), calls.Load())
}

func TestClientFetchDecodesGzip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		zw.Write([]byte(`{"title":"compressed"}`))
		zw.Close()
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, time.Second, nil)
	resp, err := c.Fetch(context.Background(), &Params{URL: "https://x.test"}, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"title":"compressed"}`, string(resp.Body))
}

func TestResponseHeaderAccessors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Spb-Cost", "10")
		w.Header().Set("Spb-Initial-Status-Code", "301")
		w.Header().Set("Spb-Resolved-Url", "https://x.test/home")
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, time.Second, nil)
	resp, err := c.Fetch(context.Background(), &Params{URL: "https://x.test"}, "k")
	require.NoError(t, err)

	assert.Equal(t, "10", resp.CostCredits())
	assert.Equal(t, "301", resp.InitialStatusCode())
	assert.Equal(t, "https://x.test/home", resp.ResolvedURL())
}

func TestClientFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, 30*time.Millisecond, nil)
	_, err := c.Fetch(context.Background(), &Params{URL: "https://x.test"}, "k")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
