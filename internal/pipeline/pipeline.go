// Package pipeline orchestrates an ingestion run: load -> tag -> chunk ->
// embed -> persist. Every run is a full rebuild published by an atomic
// directory swap, so re-ingesting unchanged input is idempotent and a
// rebuild never disturbs queries against the previously loaded index.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"prospekt/internal/chunker"
	"prospekt/internal/config"
	"prospekt/internal/embeddings"
	"prospekt/internal/index"
	"prospekt/internal/source"
	"prospekt/internal/tagger"
)

// ProgressFunc reports pipeline progress: done of total units, with a short
// description of the current phase.
type ProgressFunc func(done, total int, msg string)

// DocumentOutcome is the per-document line of the run report.
type DocumentOutcome struct {
	SourcePath string
	StoreID    string
	Chunks     int
	Degraded   bool
	Error      string
}

// Failed reports whether the document was skipped.
func (d DocumentOutcome) Failed() bool { return d.Error != "" }

// Report summarizes one ingestion run. Partial success is the normal
// outcome: failed documents appear here, they do not abort the run.
type Report struct {
	RunID         string
	StartedAt     time.Time
	Duration      time.Duration
	Documents     []DocumentOutcome
	ChunksIndexed int
}

// FailedCount returns the number of documents that could not be ingested.
func (r *Report) FailedCount() int {
	n := 0
	for _, d := range r.Documents {
		if d.Failed() {
			n++
		}
	}
	return n
}

// Loader produces the raw documents of one ingestion run.
type Loader interface {
	Load(ctx context.Context, dir string) ([]source.RawDocument, []source.LoadError, error)
}

// Pipeline runs ingestion.
type Pipeline struct {
	loader     Loader
	embedder   embeddings.Embedder
	cfg        *config.Config
	logger     *slog.Logger
	onProgress ProgressFunc
}

// New creates a Pipeline.
func New(loader Loader, embedder embeddings.Embedder, cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		loader:   loader,
		embedder: embedder,
		cfg:      cfg,
		logger:   logger,
	}
}

// SetProgressFunc sets the progress callback.
func (p *Pipeline) SetProgressFunc(fn ProgressFunc) {
	p.onProgress = fn
}

// Run executes a full ingestion: it builds a fresh index from the data
// directory, persists it over the published one, and returns it together
// with the run report. An empty data directory produces a valid empty
// index. Embedding or persistence failures abort the run (and leave the
// previously published index untouched); per-document extraction failures
// do not.
func (p *Pipeline) Run(ctx context.Context) (*index.Index, *Report, error) {
	start := time.Now()
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: start.UTC(),
	}

	docs, failures, err := p.loader.Load(ctx, p.cfg.DataDir)
	if err != nil {
		return nil, report, err
	}
	for _, f := range failures {
		report.Documents = append(report.Documents, DocumentOutcome{
			SourcePath: f.SourcePath,
			StoreID:    tagger.StoreID(f.SourcePath),
			Error:      f.Err.Error(),
		})
	}

	var chunks []index.Chunk
	for _, doc := range docs {
		tagged := tagger.Tag(doc.SourcePath, doc.Text, doc.Degraded, start.UTC())

		texts := chunker.Split(tagged.Text, chunker.Options{
			MaxSize:  p.cfg.Chunk.MaxSize,
			MinSize:  p.cfg.Chunk.MinSize,
			Overlap:  p.cfg.Chunk.Overlap,
			Markdown: doc.Markdown,
		})

		for ordinal, text := range texts {
			chunks = append(chunks, index.Chunk{
				ID:   index.ChunkID(doc.SourcePath, ordinal),
				Text: text,
				Meta: index.Metadata{
					StoreID:    tagged.StoreID,
					SourcePath: doc.SourcePath,
					Ordinal:    ordinal,
					Degraded:   doc.Degraded,
					IngestedAt: tagged.IngestedAt,
				},
			})
		}

		report.Documents = append(report.Documents, DocumentOutcome{
			SourcePath: doc.SourcePath,
			StoreID:    tagged.StoreID,
			Chunks:     len(texts),
			Degraded:   doc.Degraded,
		})
	}

	builder := index.NewBuilder(p.embedder, p.cfg.Embedding.BatchSize)
	if p.onProgress != nil {
		builder.SetProgressFunc(func(done, total int) {
			p.onProgress(done, total, "embedding chunks")
		})
	}

	idx, err := builder.Build(ctx, chunks)
	if err != nil {
		return nil, report, fmt.Errorf("building index: %w", err)
	}

	if err := idx.Persist(p.cfg.IndexPath); err != nil {
		return nil, report, fmt.Errorf("persisting index: %w", err)
	}

	report.ChunksIndexed = idx.Count()
	report.Duration = time.Since(start)

	p.logger.Info("ingestion complete",
		"run_id", report.RunID,
		"documents", len(report.Documents),
		"failed", report.FailedCount(),
		"chunks", report.ChunksIndexed,
		"duration", report.Duration.Round(time.Millisecond))

	return idx, report, nil
}
