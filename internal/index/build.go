package index

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"prospekt/internal/embeddings"
)

// Builder constructs an Index by embedding chunks in batches against the
// embedding oracle.
type Builder struct {
	embedder    embeddings.Embedder
	batchSize   int
	concurrency int
	onProgress  func(done, total int)
}

// NewBuilder creates a Builder. batchSize bounds the number of texts per
// oracle call.
func NewBuilder(embedder embeddings.Embedder, batchSize int) *Builder {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Builder{
		embedder:    embedder,
		batchSize:   batchSize,
		concurrency: 4,
	}
}

// SetProgressFunc sets a callback invoked after each embedded batch with
// the number of chunks embedded so far.
func (b *Builder) SetProgressFunc(fn func(done, total int)) {
	b.onProgress = fn
}

// Build embeds every chunk and returns a fresh Index. Batches are issued
// concurrently but each vector is written back to its chunk's slot, so the
// stored embedding order always matches chunk ID order. Any embedding
// failure (after the embedder's own retries) fails the whole build: an
// index is never produced with fewer vectors than chunks.
func (b *Builder) Build(ctx context.Context, chunks []Chunk) (*Index, error) {
	chunks = append([]Chunk(nil), chunks...)
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].ID < chunks[j].ID })

	for i := 1; i < len(chunks); i++ {
		if chunks[i].ID == chunks[i-1].ID {
			return nil, fmt.Errorf("duplicate chunk ID %q", chunks[i].ID)
		}
	}

	vectors, err := b.embedAll(ctx, chunks)
	if err != nil {
		return nil, err
	}

	dims := b.embedder.Dimensions()
	for i, v := range vectors {
		if len(v) != dims {
			return nil, fmt.Errorf("chunk %s: embedding has %d dimensions, expected %d", chunks[i].ID, len(v), dims)
		}
	}

	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection(collectionName, nil, embeddings.ToChromemFunc(b.embedder))
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	if len(chunks) > 0 {
		docs := make([]chromem.Document, len(chunks))
		for i, c := range chunks {
			docs[i] = chromem.Document{
				ID:        c.ID,
				Content:   c.Text,
				Embedding: vectors[i],
				Metadata: map[string]string{
					"store_id":    c.Meta.StoreID,
					"source_path": c.Meta.SourcePath,
					"ordinal":     strconv.Itoa(c.Meta.Ordinal),
				},
			}
		}
		if err := collection.AddDocuments(ctx, docs, 1); err != nil {
			return nil, fmt.Errorf("adding documents: %w", err)
		}
	}

	return &Index{
		embedder:   b.embedder,
		db:         db,
		collection: collection,
		chunks:     chunks,
		byID:       buildLookup(chunks),
		manifest: Manifest{
			SchemaVersion:  schemaVersion,
			EmbeddingModel: b.embedder.Name(),
			Dimensions:     dims,
			ChunkCount:     len(chunks),
			BuiltAt:        time.Now().UTC(),
		},
	}, nil
}

// embedAll runs batched embedding with bounded concurrency and returns one
// vector per chunk, in chunk order.
func (b *Builder) embedAll(ctx context.Context, chunks []Chunk) ([][]float32, error) {
	total := len(chunks)
	vectors := make([][]float32, total)
	if total == 0 {
		return vectors, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, b.concurrency)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		done     int
	)

	for start := 0; start < total; start += b.batchSize {
		end := start + b.batchSize
		if end > total {
			end = total
		}

		select {
		case <-ctx.Done():
		case sem <- struct{}{}:
		}
		mu.Lock()
		failed := firstErr != nil
		mu.Unlock()
		if failed || ctx.Err() != nil {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			defer func() { <-sem }()

			texts := make([]string, end-start)
			for i := start; i < end; i++ {
				texts[i-start] = chunks[i].Text
			}

			batch, err := b.embedder.Embed(ctx, texts)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("embedding chunks %d-%d: %w", start, end-1, err)
					cancel()
				}
				return
			}
			if len(batch) != end-start {
				if firstErr == nil {
					firstErr = fmt.Errorf("embedding oracle returned %d vectors for %d texts", len(batch), end-start)
					cancel()
				}
				return
			}
			copy(vectors[start:end], batch)
			done += end - start
			if b.onProgress != nil {
				b.onProgress(done, total)
			}
		}(start, end)
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return vectors, nil
}
