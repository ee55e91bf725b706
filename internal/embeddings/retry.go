package embeddings

import (
	"context"
	"fmt"
	"time"
)

const (
	defaultBackoffBase = 500 * time.Millisecond
	maxBackoff         = 30 * time.Second
)

// RetryingEmbedder wraps an Embedder with a bounded exponential-backoff
// retry policy. Transient oracle failures are retried; once the budget is
// exhausted the error is returned and the caller (the index build) fails as
// a whole, so a partially embedded index is never persisted.
type RetryingEmbedder struct {
	inner      Embedder
	maxRetries int
	base       time.Duration
}

// WithRetry wraps the given embedder. maxRetries is the number of attempts
// after the first; 0 disables retrying.
func WithRetry(inner Embedder, maxRetries int) *RetryingEmbedder {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RetryingEmbedder{
		inner:      inner,
		maxRetries: maxRetries,
		base:       defaultBackoffBase,
	}
}

func (r *RetryingEmbedder) Name() string {
	return r.inner.Name()
}

func (r *RetryingEmbedder) Dimensions() int {
	return r.inner.Dimensions()
}

func (r *RetryingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			wait := r.base << (attempt - 1)
			if wait > maxBackoff {
				wait = maxBackoff
			}
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		vectors, err := r.inner.Embed(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err

		// Context cancellation is not a transient oracle error.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("embedding failed after %d attempts: %w", r.maxRetries+1, lastErr)
}
