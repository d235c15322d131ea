// Package scaledown wraps the ScaleDown prompt-compression API. Compression is
// an optimization, never a dependency: every failure mode degrades to the
// uncompressed input so the chat pipeline stays available.
package scaledown

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/evotyindia/chatbot-project-intel-hpe/internal/llm"
)

// Result is the tagged outcome of one compression attempt. When Successful is
// false, CompressedPrompt carries the original uncompressed context and the
// token counts are length-based estimates.
type Result struct {
	CompressedPrompt string
	OriginalTokens   int
	CompressedTokens int
	Ratio            float64
	Successful       bool
	LatencyMS        int64
	Err              string // diagnostic only, never surfaced to users
}

// Client calls the ScaleDown compression endpoint.
type Client struct {
	apiKey string
	apiURL string
	rate   string
	model  string
	client *http.Client
	logger *slog.Logger
}

// Config holds the client settings.
type Config struct {
	APIKey  string
	APIURL  string
	Rate    string // "auto" or a fixed rate
	Model   string // target model the prompt is compressed for
	Timeout time.Duration
}

// NewClient creates a ScaleDown client. A missing API key is tolerated: every
// Compress call will then take the uncompressed fallback path.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.APIKey == "" {
		logger.Warn("scaledown API key not configured, compression will be skipped")
	}
	return &Client{
		apiKey: cfg.APIKey,
		apiURL: cfg.APIURL,
		rate:   cfg.Rate,
		model:  cfg.Model,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// IsConfigured reports whether an API key is present.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

type compressRequest struct {
	Context   string          `json:"context"`
	Prompt    string          `json:"prompt"`
	Model     string          `json:"model"`
	ScaleDown scaleDownParams `json:"scaledown"`
}

type scaleDownParams struct {
	Rate string `json:"rate"`
}

type compressResponse struct {
	Results struct {
		CompressedPrompt string `json:"compressed_prompt"`
	} `json:"results"`
	TotalOriginalTokens   int `json:"total_original_tokens"`
	TotalCompressedTokens int `json:"total_compressed_tokens"`
}

// Compress sends the context and query to the compression service. It never
// returns an error: all failures produce a Result carrying the uncompressed
// context with Successful=false.
func (c *Client) Compress(ctx context.Context, contextText, query, targetModel string) Result {
	start := time.Now()

	if c.apiKey == "" {
		return c.fallback(contextText, start, "API key not configured")
	}

	model := targetModel
	if model == "" {
		model = c.model
	}

	body, err := json.Marshal(compressRequest{
		Context:   contextText,
		Prompt:    query,
		Model:     model,
		ScaleDown: scaleDownParams{Rate: c.rate},
	})
	if err != nil {
		return c.fallback(contextText, start, fmt.Sprintf("marshalling request: %v", err))
	}

	c.logger.Debug("compressing context",
		"context_chars", len(contextText), "query_chars", len(query), "model", model)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return c.fallback(contextText, start, fmt.Sprintf("creating request: %v", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return c.fallback(contextText, start, fmt.Sprintf("request failed: %v", err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return c.fallback(contextText, start, fmt.Sprintf("reading response: %v", err))
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return c.fallback(contextText, start,
			fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode, truncate(string(respBody), 200)))
	}

	var apiResp compressResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return c.fallback(contextText, start, fmt.Sprintf("parsing response: %v", err))
	}
	if apiResp.Results.CompressedPrompt == "" {
		return c.fallback(contextText, start, "empty compressed_prompt in response")
	}

	result := Result{
		CompressedPrompt: apiResp.Results.CompressedPrompt,
		OriginalTokens:   apiResp.TotalOriginalTokens,
		CompressedTokens: apiResp.TotalCompressedTokens,
		Ratio:            compressionRatio(apiResp, contextText, query),
		Successful:       true,
		LatencyMS:        time.Since(start).Milliseconds(),
	}

	c.logger.Info("scaledown compression completed",
		"original_tokens", result.OriginalTokens,
		"compressed_tokens", result.CompressedTokens,
		"ratio", result.Ratio,
		"latency_ms", result.LatencyMS)

	return result
}

// compressionRatio derives the original/compressed ratio, guarding against
// division by zero and falling back to a character-based estimate when the
// service omits token counts.
func compressionRatio(resp compressResponse, contextText, query string) float64 {
	if resp.TotalOriginalTokens > 0 && resp.TotalCompressedTokens > 0 {
		return float64(resp.TotalOriginalTokens) / float64(resp.TotalCompressedTokens)
	}
	originalLen := len(contextText) + len(query)
	compressedLen := len(resp.Results.CompressedPrompt)
	if originalLen > 0 && compressedLen > 0 {
		return float64(originalLen) / float64(compressedLen)
	}
	return 1.0
}

// fallback builds the degraded Result: the uncompressed context tagged as
// unsuccessful, with token counts estimated from its length.
func (c *Client) fallback(contextText string, start time.Time, reason string) Result {
	c.logger.Warn("scaledown compression failed, using uncompressed context", "reason", reason)
	estimated := llm.EstimateTokens(contextText)
	return Result{
		CompressedPrompt: contextText,
		OriginalTokens:   estimated,
		CompressedTokens: estimated,
		Ratio:            1.0,
		Successful:       false,
		LatencyMS:        time.Since(start).Milliseconds(),
		Err:              reason,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
