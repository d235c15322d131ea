package scaledown

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(url string, timeout time.Duration) *Client {
	return NewClient(Config{
		APIKey:  "test-key",
		APIURL:  url,
		Rate:    "auto",
		Model:   "gemini-2.5-flash",
		Timeout: timeout,
	}, nil)
}

func TestCompressSuccess(t *testing.T) {
	var gotReq compressRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("expected x-api-key header, got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Write([]byte(`{
			"results": {"compressed_prompt": "X"},
			"total_original_tokens": 100,
			"total_compressed_tokens": 40,
			"successful": true
		}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 5*time.Second)
	result := c.Compress(context.Background(), "long university context", "What is tuition?", "")

	if !result.Successful {
		t.Fatalf("expected successful result, got error %q", result.Err)
	}
	if result.CompressedPrompt != "X" {
		t.Errorf("compressed prompt: got %q, want X", result.CompressedPrompt)
	}
	if result.OriginalTokens != 100 || result.CompressedTokens != 40 {
		t.Errorf("tokens: got %d/%d, want 100/40", result.OriginalTokens, result.CompressedTokens)
	}
	if result.Ratio != 2.5 {
		t.Errorf("ratio: got %f, want 2.5", result.Ratio)
	}
	if result.LatencyMS < 0 {
		t.Errorf("latency should be non-negative, got %d", result.LatencyMS)
	}

	if gotReq.Context != "long university context" {
		t.Errorf("request context: got %q", gotReq.Context)
	}
	if gotReq.Prompt != "What is tuition?" {
		t.Errorf("request prompt: got %q", gotReq.Prompt)
	}
	if gotReq.Model != "gemini-2.5-flash" {
		t.Errorf("request model: got %q", gotReq.Model)
	}
	if gotReq.ScaleDown.Rate != "auto" {
		t.Errorf("request rate: got %q", gotReq.ScaleDown.Rate)
	}
}

func TestCompressTimeoutFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 30*time.Millisecond)
	result := c.Compress(context.Background(), "the original context", "query", "")

	if result.Successful {
		t.Fatal("expected unsuccessful result on timeout")
	}
	if result.CompressedPrompt != "the original context" {
		t.Errorf("fallback must carry the uncompressed context, got %q", result.CompressedPrompt)
	}
	if result.Ratio != 1.0 {
		t.Errorf("fallback ratio: got %f, want 1.0", result.Ratio)
	}
	if result.OriginalTokens != result.CompressedTokens {
		t.Errorf("fallback token counts should match: %d vs %d", result.OriginalTokens, result.CompressedTokens)
	}
	if result.Err == "" {
		t.Error("expected a diagnostic reason")
	}
}

func TestCompressNon2xxFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, time.Second)
	result := c.Compress(context.Background(), "ctx", "q", "")

	if result.Successful {
		t.Fatal("expected unsuccessful result for 429")
	}
	if result.CompressedPrompt != "ctx" {
		t.Errorf("fallback prompt: got %q", result.CompressedPrompt)
	}
	if !strings.Contains(result.Err, "429") {
		t.Errorf("expected status in diagnostic, got %q", result.Err)
	}
}

func TestCompressMalformedResponseFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, time.Second)
	result := c.Compress(context.Background(), "ctx", "q", "")

	if result.Successful {
		t.Fatal("expected unsuccessful result for malformed response")
	}
	if result.CompressedPrompt != "ctx" {
		t.Errorf("fallback prompt: got %q", result.CompressedPrompt)
	}
}

func TestCompressZeroCompressedTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"results": {"compressed_prompt": "short"},
			"total_original_tokens": 100,
			"total_compressed_tokens": 0,
			"successful": true
		}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, time.Second)
	result := c.Compress(context.Background(), "a much longer original context string", "query", "")

	if !result.Successful {
		t.Fatalf("expected successful result, got %q", result.Err)
	}
	// Ratio falls back to the character-based estimate; must never divide by zero.
	if result.Ratio <= 0 {
		t.Errorf("ratio must stay positive, got %f", result.Ratio)
	}
}

func TestCompressWithoutAPIKey(t *testing.T) {
	c := NewClient(Config{APIURL: "http://unused.invalid", Timeout: time.Second}, nil)

	if c.IsConfigured() {
		t.Error("client without key should report unconfigured")
	}

	result := c.Compress(context.Background(), "ctx", "q", "")
	if result.Successful {
		t.Fatal("expected unsuccessful result without API key")
	}
	if result.CompressedPrompt != "ctx" {
		t.Errorf("fallback prompt: got %q", result.CompressedPrompt)
	}
	if result.Ratio != 1.0 {
		t.Errorf("fallback ratio: got %f, want 1.0", result.Ratio)
	}
}

func TestCompressModelOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req compressRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "gpt-4o-mini" {
			t.Errorf("expected model override, got %q", req.Model)
		}
		w.Write([]byte(`{"results":{"compressed_prompt":"ok"},"total_original_tokens":10,"total_compressed_tokens":5,"successful":true}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, time.Second)
	result := c.Compress(context.Background(), "ctx", "q", "gpt-4o-mini")
	if !result.Successful {
		t.Fatalf("unexpected failure: %q", result.Err)
	}
}
