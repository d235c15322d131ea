package llm

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// RetryProvider wraps a Provider with a single bounded retry for transient
// upstream failures (rate limits and 5xx responses). Validation and auth
// errors are never retried.
type RetryProvider struct {
	provider Provider
	backoff  time.Duration
}

// NewRetryProvider wraps the given provider with one retry after backoff.
func NewRetryProvider(provider Provider, backoff time.Duration) Provider {
	return &RetryProvider{
		provider: provider,
		backoff:  backoff,
	}
}

func (r *RetryProvider) Name() string {
	return r.provider.Name()
}

func (r *RetryProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	resp, err := r.provider.Complete(ctx, req)
	if err == nil || !isTransient(err) {
		return resp, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(r.backoff):
	}

	return r.provider.Complete(ctx, req)
}

// isTransient reports whether an upstream error is worth one retry.
func isTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return false
}
