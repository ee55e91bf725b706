package ingestlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"prospekt/internal/pipeline"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleReport(id string, started time.Time) *pipeline.Report {
	return &pipeline.Report{
		RunID:     id,
		StartedAt: started,
		Duration:  1200 * time.Millisecond,
		Documents: []pipeline.DocumentOutcome{
			{SourcePath: "data/aldi.pdf", StoreID: "ALDI", Chunks: 12},
			{SourcePath: "data/lidl.pdf", StoreID: "LIDL", Chunks: 9, Degraded: true},
			{SourcePath: "data/broken.pdf", StoreID: "BROKEN", Error: "extract text: malformed xref"},
		},
		ChunksIndexed: 21,
	}
}

func TestRecordAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC)
	if err := store.Record(ctx, sampleReport("run-1", base)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx, sampleReport("run-2", base.Add(time.Hour))); err != nil {
		t.Fatalf("Record: %v", err)
	}

	runs, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != "run-2" || runs[1].ID != "run-1" {
		t.Errorf("runs not newest first: %q, %q", runs[0].ID, runs[1].ID)
	}

	got := runs[0]
	if got.Documents != 3 || got.Failed != 1 || got.Chunks != 21 {
		t.Errorf("summary = %+v", got)
	}
	if !got.StartedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("StartedAt = %v", got.StartedAt)
	}
	if got.Duration != 1200*time.Millisecond {
		t.Errorf("Duration = %v", got.Duration)
	}
}

func TestListLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		report := sampleReport("run-"+string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))
		if err := store.Record(ctx, report); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("got %d runs, want 2", len(runs))
	}
}

func TestDocuments(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	report := sampleReport("run-1", time.Now().UTC())
	if err := store.Record(ctx, report); err != nil {
		t.Fatalf("Record: %v", err)
	}

	docs, err := store.Documents(ctx, "run-1")
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("got %d documents, want 3", len(docs))
	}

	byPath := map[string]pipeline.DocumentOutcome{}
	for _, d := range docs {
		byPath[d.SourcePath] = d
	}
	if d := byPath["data/aldi.pdf"]; d.StoreID != "ALDI" || d.Chunks != 12 || d.Degraded || d.Failed() {
		t.Errorf("aldi outcome = %+v", d)
	}
	if d := byPath["data/lidl.pdf"]; !d.Degraded {
		t.Errorf("lidl outcome = %+v", d)
	}
	if d := byPath["data/broken.pdf"]; !d.Failed() || d.Error == "" {
		t.Errorf("broken outcome = %+v", d)
	}
}

func TestDocumentsUnknownRun(t *testing.T) {
	store := openTestStore(t)

	docs, err := store.Documents(context.Background(), "no-such-run")
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("got %d documents for unknown run", len(docs))
	}
}

func TestDuplicateRunIDRejected(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	report := sampleReport("run-1", time.Now().UTC())
	if err := store.Record(ctx, report); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Record(ctx, report); err == nil {
		t.Fatal("Record accepted a duplicate run ID")
	}
}

func TestOpenOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log", "ingest.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()
	if err := store.Record(ctx, sampleReport("run-1", time.Now().UTC())); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	runs, err := reopened.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-1" {
		t.Errorf("runs after reopen = %+v", runs)
	}
}
