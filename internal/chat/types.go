// Package chat implements the request orchestration behind the /chat
// endpoint: context loading, prompt compression with caching, and answer
// generation.
package chat

// Exchange is one completed question/answer turn of the conversation.
type Exchange struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// ChatRequest is the POST /chat payload.
type ChatRequest struct {
	Message string     `json:"message"`
	History []Exchange `json:"history,omitempty"`
}

// CompressionStats reports what the compression gateway did for a request.
type CompressionStats struct {
	OriginalTokens   int     `json:"original_tokens"`
	CompressedTokens int     `json:"compressed_tokens"`
	CompressionRatio float64 `json:"compression_ratio"`
	Successful       bool    `json:"successful"`
	LatencyMS        int64   `json:"latency_ms"`
	Cached           bool    `json:"cached"`
}

// ChatResponse is the successful POST /chat reply.
type ChatResponse struct {
	Response         string           `json:"response"`
	CompressionStats CompressionStats `json:"compression_stats"`
	Error            bool             `json:"error"`
}

// ErrorResponse is the JSON body for every error the API returns.
type ErrorResponse struct {
	Error     bool   `json:"error"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// Error codes returned by the API.
const (
	ErrCodeInvalidJSON    = "INVALID_JSON"
	ErrCodeEmptyMessage   = "EMPTY_MESSAGE"
	ErrCodeMessageTooLong = "MESSAGE_TOO_LONG"
	ErrCodeGemini         = "GEMINI_ERROR"
	ErrCodeReload         = "RELOAD_ERROR"
	ErrCodeInternal       = "INTERNAL_ERROR"
	ErrCodeNotFound       = "NOT_FOUND"
)

const (
	// maxMessageLen bounds a single user message, in characters after
	// trimming.
	maxMessageLen = 500
	// maxHistoryExchanges is how many trailing exchanges are kept from the
	// submitted history.
	maxHistoryExchanges = 5
	// maxPromptChars bounds the total prompt sent to the model. History is
	// dropped oldest-first to fit; the context block is never truncated.
	maxPromptChars = 60000
)
