package index

import (
	"fmt"
	"time"
)

// Metadata holds structured provenance for a chunk. These fields are the
// source of truth for attribution: the provenance header injected into the
// chunk text is best-effort and may be truncated by a chunk boundary.
type Metadata struct {
	StoreID    string    `json:"store_id"`
	SourcePath string    `json:"source_path"`
	Ordinal    int       `json:"ordinal"`
	Degraded   bool      `json:"degraded,omitempty"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Chunk is the atomic unit of indexing and retrieval: a bounded slice of
// one document's tagged text. Chunks are immutable once created.
type Chunk struct {
	ID   string   `json:"id"`
	Text string   `json:"text"`
	Meta Metadata `json:"meta"`
}

// ChunkID derives the stable identifier for a chunk. It is a pure function
// of source path and ordinal, so rebuilding unchanged input yields the same
// IDs; the zero-padded ordinal makes lexicographic ID order equal document
// order, which the retriever relies on for tie-breaking. The padding holds
// that invariant up to a million chunks per document, far beyond any
// brochure.
func ChunkID(sourcePath string, ordinal int) string {
	return fmt.Sprintf("chunk:%s:%06d", sourcePath, ordinal)
}

// SearchResult pairs a chunk with its similarity to a query.
type SearchResult struct {
	Chunk      Chunk
	Similarity float32
}
