package embeddings

import (
	"context"
	"time"
)

// requestTimeout bounds every single call to an embedding oracle. A hung
// service fails the request instead of blocking the run; the retry wrapper
// decides whether to try again.
const requestTimeout = 2 * time.Minute

// Embedder defines the interface for generating text embeddings.
// Implementations must be order-preserving: the i-th vector corresponds to
// the i-th input text.
type Embedder interface {
	// Embed generates embeddings for one or more texts.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the number of dimensions in the embedding vectors.
	Dimensions() int

	// Name returns the identity of the embedding model. Indexes record this
	// at build time so a reload can detect a model mismatch.
	Name() string
}
