package llm

import (
	"context"
	"sync"
	"time"
)

// RateLimitedGenerator wraps a Generator with a token bucket rate limiter.
type RateLimitedGenerator struct {
	generator Generator
	rpm       int
	mu        sync.Mutex
	tokens    int
	lastFill  time.Time
}

// NewRateLimitedGenerator wraps the given generator with a rate limiter
// that allows at most rpm requests per minute.
func NewRateLimitedGenerator(generator Generator, rpm int) Generator {
	return &RateLimitedGenerator{
		generator: generator,
		rpm:       rpm,
		tokens:    rpm,
		lastFill:  time.Now(),
	}
}

func (r *RateLimitedGenerator) Name() string {
	return r.generator.Name()
}

func (r *RateLimitedGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.generator.Generate(ctx, req)
}

func (r *RateLimitedGenerator) wait(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := time.Now()
		elapsed := now.Sub(r.lastFill)

		// Refill tokens based on elapsed time.
		refill := int(elapsed.Seconds() * float64(r.rpm) / 60.0)
		if refill > 0 {
			r.tokens += refill
			if r.tokens > r.rpm {
				r.tokens = r.rpm
			}
			r.lastFill = now
		}

		if r.tokens > 0 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}
