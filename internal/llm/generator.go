package llm

import (
	"context"
	"time"
)

// requestTimeout bounds every single call to a generation oracle, so a hung
// service surfaces as an error instead of blocking ask/chat forever.
// Generous because CPU-only local models produce long answers slowly.
const requestTimeout = 3 * time.Minute

// Generator defines the interface for the answer-generating language model.
type Generator interface {
	// Generate sends a completion request and returns the response.
	Generate(ctx context.Context, req Request) (*Response, error)
	// Name returns the name of this provider.
	Name() string
}
