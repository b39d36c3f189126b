package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// TestNew tests the Client constructor.
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("defaults create a client", func(t *testing.T) {
		t.Parallel()

		client, err := New()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.httpClient.Timeout != defaultTimeout {
			t.Errorf("expected default timeout, got %v", client.httpClient.Timeout)
		}
		if client.maxBodySize != defaultMaxBodySize {
			t.Errorf("expected default body size, got %d", client.maxBodySize)
		}
		if client.httpClient.Jar == nil {
			t.Error("expected cookie jar")
		}
	})

	t.Run("valid proxy address creates client", func(t *testing.T) {
		t.Parallel()

		if _, err := New(WithProxy("127.0.0.1:9050")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("invalid proxy address is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := New(WithProxy("not-a-proxy"))
		if !errors.Is(err, ErrInvalidProxyAddress) {
			t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
		}
	})

	t.Run("non-positive timeout is ignored", func(t *testing.T) {
		t.Parallel()

		client, err := New(WithTimeout(0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.httpClient.Timeout != defaultTimeout {
			t.Errorf("expected default timeout, got %v", client.httpClient.Timeout)
		}
	})

	t.Run("zero rate disables the limiter", func(t *testing.T) {
		t.Parallel()

		client, err := New(WithRateLimit(0, 5))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.limiter != nil {
			t.Error("expected nil limiter")
		}
	})
}

// TestIsValidProxyAddress tests proxy address validation.
func TestIsValidProxyAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		address string
		want    bool
	}{
		{"127.0.0.1:9050", true},
		{"localhost:1080", true},
		{"[::1]:9050", true},
		{"127.0.0.1", false},
		{":9050", false},
		{"127.0.0.1:", false},
		{"127.0.0.1:0", false},
		{"127.0.0.1:65536", false},
		{"127.0.0.1:abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			t.Parallel()
			if got := isValidProxyAddress(tt.address); got != tt.want {
				t.Errorf("isValidProxyAddress(%q) = %v, want %v", tt.address, got, tt.want)
			}
		})
	}
}

// TestClientGet tests fetching through a test server.
func TestClientGet(t *testing.T) {
	t.Parallel()

	t.Run("sends identity, cookie and headers", func(t *testing.T) {
		t.Parallel()

		var gotUA, gotCookie, gotReferer, gotAccept string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			gotCookie = r.Header.Get("Cookie")
			gotReferer = r.Header.Get("Referer")
			gotAccept = r.Header.Get("Accept")
			_, _ = w.Write([]byte("<html></html>"))
		}))
		defer server.Close()

		client, err := New(
			WithUserAgent("iloveck101-test"),
			WithCookie("auth=abc"),
			WithHeaders(map[string]string{"Referer": "http://ck101.com/"}),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		resp, err := client.Get(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !resp.OK() || resp.Err() != nil {
			t.Errorf("expected success, got %d", resp.StatusCode)
		}
		if string(resp.Body) != "<html></html>" {
			t.Errorf("unexpected body %q", resp.Body)
		}
		if gotUA != "iloveck101-test" {
			t.Errorf("expected user agent, got %q", gotUA)
		}
		if gotCookie != "auth=abc" {
			t.Errorf("expected cookie, got %q", gotCookie)
		}
		if gotReferer != "http://ck101.com/" {
			t.Errorf("expected referer, got %q", gotReferer)
		}
		if gotAccept == "" {
			t.Error("expected default Accept header")
		}
	})

	t.Run("non-success status is returned, not an error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer server.Close()

		client, err := New()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		resp, err := client.Get(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.OK() {
			t.Error("expected non-success response")
		}

		var statusErr *StatusError
		if !errors.As(resp.Err(), &statusErr) {
			t.Fatalf("expected *StatusError, got %v", resp.Err())
		}
		if statusErr.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", statusErr.StatusCode)
		}
		if !strings.Contains(statusErr.Error(), "400") {
			t.Errorf("expected status in message, got %q", statusErr.Error())
		}
	})

	t.Run("body over the limit is rejected", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		}))
		defer server.Close()

		client, err := New(WithMaxBodySize(16))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err = client.Get(context.Background(), server.URL)
		if !errors.Is(err, ErrBodyTooLarge) {
			t.Errorf("expected ErrBodyTooLarge, got %v", err)
		}
	})

	t.Run("body at the limit is accepted", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("x", 16)))
		}))
		defer server.Close()

		client, err := New(WithMaxBodySize(16))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		resp, err := client.Get(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(resp.Body) != 16 {
			t.Errorf("expected 16 bytes, got %d", len(resp.Body))
		}
	})

	t.Run("cancelled context returns context error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client, err := New()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = client.Get(ctx, server.URL)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("rate limit spaces requests", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client, err := New(WithRateLimit(20, 1))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		start := time.Now()
		for range 3 {
			if _, err := client.Get(context.Background(), server.URL); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		// burst 1 at 20 rps: the 2nd and 3rd request wait ~50ms each
		if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
			t.Errorf("expected limiter to delay requests, took %v", elapsed)
		}
		if hits.Load() != 3 {
			t.Errorf("expected 3 hits, got %d", hits.Load())
		}
	})
}

// TestHeaderInjectingTransport tests that the original request is not mutated.
func TestHeaderInjectingTransport(t *testing.T) {
	t.Parallel()

	var seen http.Header
	base := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		seen = req.Header.Clone()
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: req}, nil
	})

	transport := &headerInjectingTransport{
		base:      base,
		userAgent: "ua",
		cookie:    "b=2",
	}

	req := httptest.NewRequest(http.MethodGet, "http://ck101.com/", nil)
	req.Header.Set("Cookie", "a=1")

	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = resp.Body.Close()

	if seen.Get("Cookie") != "a=1; b=2" {
		t.Errorf("expected merged cookie, got %q", seen.Get("Cookie"))
	}
	if req.Header.Get("User-Agent") != "" {
		t.Error("expected original request to be untouched")
	}
}

// roundTripFunc adapts a function to http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
