package llm

import (
	"context"
	"fmt"
)

// Provider defines the interface for generation providers.
type Provider interface {
	// Complete sends a generation request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}

// APIError is returned when an upstream API responds with a non-2xx status.
// The status code is kept so callers can classify transient failures.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}
