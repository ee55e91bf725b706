// Package index owns construction, persistence, and similarity search over
// the chunk collection. An Index is an immutable build-then-publish value:
// a rebuild constructs a fresh Index and swaps it onto disk atomically, so
// in-flight readers of the previously loaded Index are never affected.
package index

import (
	"context"
	"fmt"
	"sort"

	chromem "github.com/philippgille/chromem-go"

	"prospekt/internal/embeddings"
)

const collectionName = "brochures"

// Index is the searchable collection of chunks and their embeddings, plus
// the identity of the model that produced them. It is read-only after
// construction and safe for concurrent queries.
type Index struct {
	embedder   embeddings.Embedder
	db         *chromem.DB
	collection *chromem.Collection
	chunks     []Chunk
	byID       map[string]Chunk
	manifest   Manifest
}

// Model returns the embedding model identity recorded at build time.
func (ix *Index) Model() string {
	return ix.manifest.EmbeddingModel
}

// Count returns the number of indexed chunks.
func (ix *Index) Count() int {
	return len(ix.chunks)
}

// Chunks returns the indexed chunks in document order. The returned slice
// must not be modified.
func (ix *Index) Chunks() []Chunk {
	return ix.chunks
}

// ChunksFor returns the chunks of one source document in ordinal order.
func (ix *Index) ChunksFor(sourcePath string) []Chunk {
	var out []Chunk
	for _, c := range ix.chunks {
		if c.Meta.SourcePath == sourcePath {
			out = append(out, c)
		}
	}
	return out
}

// Search embeds the query with the index's embedding model and returns the
// k most similar chunks, ordered by descending similarity with ties broken
// by ascending chunk ID. It never mutates the index.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("top-k must be positive, got %d", k)
	}
	if len(ix.chunks) == 0 {
		return nil, nil
	}

	vectors, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedding oracle returned %d vectors for one query", len(vectors))
	}
	if len(vectors[0]) != ix.manifest.Dimensions {
		return nil, fmt.Errorf("query embedding has %d dimensions, index has %d: embedding model configuration is inconsistent",
			len(vectors[0]), ix.manifest.Dimensions)
	}

	// chromem computes similarity against every stored vector regardless of
	// nResults, so asking for all of them costs nothing extra and lets us
	// apply a deterministic tie-break before truncating to k.
	results, err := ix.collection.QueryEmbedding(ctx, vectors[0], ix.collection.Count(), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > k {
		results = results[:k]
	}

	hits := make([]SearchResult, 0, len(results))
	for _, r := range results {
		chunk, ok := ix.byID[r.ID]
		if !ok {
			return nil, fmt.Errorf("query returned unknown chunk %q: index is corrupt", r.ID)
		}
		hits = append(hits, SearchResult{Chunk: chunk, Similarity: r.Similarity})
	}
	return hits, nil
}

func buildLookup(chunks []Chunk) map[string]Chunk {
	byID := make(map[string]Chunk, len(chunks))
	for _, c := range chunks {
		byID[c.ID] = c
	}
	return byID
}
