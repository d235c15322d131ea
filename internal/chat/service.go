package chat

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/evotyindia/chatbot-project-intel-hpe/internal/ingest"
	"github.com/evotyindia/chatbot-project-intel-hpe/internal/llm"
	"github.com/evotyindia/chatbot-project-intel-hpe/internal/scaledown"
)

// apologyReply is returned when generation fails or produces nothing usable.
const apologyReply = "Sorry, I encountered an error. Please try again."

// ContextLoader loads the knowledge context string.
type ContextLoader interface {
	Load(ctx context.Context) (string, ingest.Report, error)
}

// Compressor compresses the context for a query, degrading to the
// uncompressed input on any failure.
type Compressor interface {
	Compress(ctx context.Context, contextText, query, targetModel string) scaledown.Result
	IsConfigured() bool
}

// ChatError is an API-visible failure with its HTTP status and error code.
type ChatError struct {
	Status  int
	Code    string
	Message string
}

func (e *ChatError) Error() string {
	return e.Message
}

// Options configures answer generation.
type Options struct {
	SystemInstruction string
	Model             string
	Temperature       float64
	TopP              float64
	MaxTokens         int
}

// Service orchestrates a chat request: context, compression, generation.
//
// It keeps two pieces of state under one mutex: the loaded context string
// (with a version counter bumped on every reload) and the last successful
// compression result (tagged with the context version it was computed from).
// A reload therefore invalidates the compression cache atomically.
type Service struct {
	loader     ContextLoader
	compressor Compressor
	provider   llm.Provider
	opts       Options
	logger     *slog.Logger

	mu                sync.Mutex
	rawContext        string
	contextVersion    int
	contextLoaded     bool
	lastReport        ingest.Report
	compressed        *scaledown.Result
	compressedVersion int
}

// NewService creates a chat Service.
func NewService(loader ContextLoader, compressor Compressor, provider llm.Provider, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		loader:     loader,
		compressor: compressor,
		provider:   provider,
		opts:       opts,
		logger:     logger,
	}
}

// EnsureContext loads the context if it has not been loaded yet. Safe to call
// concurrently; only the first caller does the work.
func (s *Service) EnsureContext(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.contextLoaded {
		return nil
	}
	return s.loadLocked(ctx)
}

// Reload re-reads all knowledge sources and swaps the context in, dropping
// any cached compression result. It returns the new context size in
// characters.
func (s *Service) Reload(ctx context.Context) (int, ingest.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(ctx); err != nil {
		return 0, ingest.Report{}, err
	}
	return len(s.rawContext), s.lastReport, nil
}

// loadLocked loads the context. Caller holds s.mu.
func (s *Service) loadLocked(ctx context.Context) error {
	content, report, err := s.loader.Load(ctx)
	if err != nil {
		return err
	}
	s.rawContext = content
	s.contextVersion++
	s.contextLoaded = true
	s.lastReport = report
	s.compressed = nil
	s.logger.Info("context loaded",
		"version", s.contextVersion, "chars", len(content),
		"files", report.Loaded, "scraped_pages", report.ScrapedPages)
	return nil
}

// Chat answers one user message. Validation failures and upstream errors come
// back as *ChatError; compression failures never do, they degrade to the
// uncompressed context.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, &ChatError{Status: 400, Code: ErrCodeEmptyMessage, Message: "Message cannot be empty."}
	}
	if len(message) > maxMessageLen {
		return nil, &ChatError{Status: 400, Code: ErrCodeMessageTooLong,
			Message: "Message is too long. Please keep it under 500 characters."}
	}

	if err := s.EnsureContext(ctx); err != nil {
		s.logger.Error("context load failed", "error", err)
		return nil, &ChatError{Status: 500, Code: ErrCodeInternal, Message: "Failed to load knowledge sources."}
	}

	contextBlock, stats := s.compressContext(ctx, message)

	messages := BuildMessages(s.opts.SystemInstruction, contextBlock, req.History, message)
	completion, err := s.provider.Complete(ctx, llm.CompletionRequest{
		Model:       s.opts.Model,
		Messages:    messages,
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
		TopP:        s.opts.TopP,
	})
	if err != nil {
		s.logger.Error("generation failed", "provider", s.provider.Name(), "error", err)
		return nil, &ChatError{Status: 500, Code: ErrCodeGemini, Message: apologyReply}
	}

	answer := strings.TrimSpace(completion.Content)
	if answer == "" {
		s.logger.Warn("empty generation, substituting apology", "finish_reason", completion.FinishReason)
		answer = apologyReply
	}

	s.logger.Info("chat answered",
		"input_tokens", completion.InputTokens, "output_tokens", completion.OutputTokens,
		"compression_cached", stats.Cached, "compression_successful", stats.Successful)

	return &ChatResponse{Response: answer, CompressionStats: stats}, nil
}

// compressContext returns the context block to prompt with and the stats to
// report. With an empty context there is nothing to compress and the stats
// stay zeroed. Otherwise a cached result for the current context version is
// reused; a miss calls the gateway under the lock so concurrent requests
// cannot duplicate the work, and only successful results are cached.
func (s *Service) compressContext(ctx context.Context, query string) (string, CompressionStats) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rawContext == "" {
		return "", CompressionStats{}
	}

	if s.compressed != nil && s.compressedVersion == s.contextVersion {
		r := s.compressed
		return r.CompressedPrompt, CompressionStats{
			OriginalTokens:   r.OriginalTokens,
			CompressedTokens: r.CompressedTokens,
			CompressionRatio: r.Ratio,
			Successful:       r.Successful,
			LatencyMS:        r.LatencyMS,
			Cached:           true,
		}
	}

	result := s.compressor.Compress(ctx, s.rawContext, query, s.opts.Model)
	if result.Successful {
		s.compressed = &result
		s.compressedVersion = s.contextVersion
	}
	return result.CompressedPrompt, CompressionStats{
		OriginalTokens:   result.OriginalTokens,
		CompressedTokens: result.CompressedTokens,
		CompressionRatio: result.Ratio,
		Successful:       result.Successful,
		LatencyMS:        result.LatencyMS,
		Cached:           false,
	}
}

// Health is the /health payload.
type Health struct {
	Status              string `json:"status"`
	ContextLoaded       bool   `json:"context_loaded"`
	ContextSize         int    `json:"context_size"`
	GeminiConfigured    bool   `json:"gemini_configured"`
	ScaleDownConfigured bool   `json:"scaledown_configured"`
}

// HealthSnapshot reports current service status.
func (s *Service) HealthSnapshot() Health {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Health{
		Status:              "healthy",
		ContextLoaded:       s.contextLoaded && s.rawContext != "",
		ContextSize:         len(s.rawContext),
		GeminiConfigured:    s.provider != nil,
		ScaleDownConfigured: s.compressor.IsConfigured(),
	}
}
