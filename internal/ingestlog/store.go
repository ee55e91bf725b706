// Package ingestlog persists the per-document success/failure summary of
// each ingestion run, so past runs can be inspected after the fact.
package ingestlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"prospekt/internal/pipeline"
)

// Store wraps the SQLite ingestion log.
type Store struct {
	db *sql.DB
}

// Open creates or opens the log database at the given path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening ingestion log: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging ingestion log: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// OpenMemory creates an in-memory log (useful for testing).
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory log: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    started_at DATETIME NOT NULL,
    duration_ms INTEGER NOT NULL,
    documents INTEGER NOT NULL,
    failed INTEGER NOT NULL,
    chunks INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

CREATE TABLE IF NOT EXISTS run_documents (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    source_path TEXT NOT NULL,
    store_id TEXT NOT NULL,
    chunks INTEGER NOT NULL,
    degraded INTEGER NOT NULL DEFAULT 0,
    error TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_run_documents_run ON run_documents(run_id);
`

// Record stores a run report.
func (s *Store) Record(ctx context.Context, report *pipeline.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, duration_ms, documents, failed, chunks) VALUES (?, ?, ?, ?, ?, ?)`,
		report.RunID, report.StartedAt.Format(time.RFC3339), report.Duration.Milliseconds(),
		len(report.Documents), report.FailedCount(), report.ChunksIndexed,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, doc := range report.Documents {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_documents (run_id, source_path, store_id, chunks, degraded, error) VALUES (?, ?, ?, ?, ?, ?)`,
			report.RunID, doc.SourcePath, doc.StoreID, doc.Chunks, boolToInt(doc.Degraded), doc.Error,
		); err != nil {
			return fmt.Errorf("insert run document %s: %w", doc.SourcePath, err)
		}
	}

	return tx.Commit()
}

// RunSummary is one row of the run listing.
type RunSummary struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Documents int
	Failed    int
	Chunks    int
}

// List returns the most recent runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit < 1 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, duration_ms, documents, failed, chunks
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var startedAt string
		var durationMs int64
		if err := rows.Scan(&r.ID, &startedAt, &durationMs, &r.Documents, &r.Failed, &r.Chunks); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		r.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// Documents returns the per-document outcomes of one run.
func (s *Store) Documents(ctx context.Context, runID string) ([]pipeline.DocumentOutcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_path, store_id, chunks, degraded, error
		 FROM run_documents WHERE run_id = ? ORDER BY source_path`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run documents: %w", err)
	}
	defer rows.Close()

	var out []pipeline.DocumentOutcome
	for rows.Next() {
		var d pipeline.DocumentOutcome
		var degraded int
		if err := rows.Scan(&d.SourcePath, &d.StoreID, &d.Chunks, &degraded, &d.Error); err != nil {
			return nil, fmt.Errorf("scan run document: %w", err)
		}
		d.Degraded = degraded != 0
		out = append(out, d)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
