package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"prospekt/internal/embeddings"
)

const (
	schemaVersion = 1

	manifestFile = "manifest.json"
	chunksFile   = "chunks.json"
	vectorsFile  = "vectors.gob.gz"
)

var (
	// ErrNotFound is returned by Load when no index exists at the path.
	ErrNotFound = errors.New("index not found")

	// ErrModelMismatch is returned by Load when the persisted index was
	// built with a different embedding model than the one configured.
	// Similarity scores across models are meaningless, so there is no
	// silent fallback; the caller recovers by rebuilding.
	ErrModelMismatch = errors.New("embedding model mismatch")
)

// Manifest makes a persisted index self-describing.
type Manifest struct {
	SchemaVersion  int       `json:"schema_version"`
	EmbeddingModel string    `json:"embedding_model"`
	Dimensions     int       `json:"dimensions"`
	ChunkCount     int       `json:"chunk_count"`
	BuiltAt        time.Time `json:"built_at"`
}

// Persist writes the index to dir. The write is all-or-nothing: everything
// goes into a staging directory first, which then replaces dir in a single
// rename, so a crash mid-write never leaves a half-written index where a
// loadable one used to be.
func (ix *Index) Persist(dir string) error {
	staging := dir + ".staging"
	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("clearing staging directory: %w", err)
	}
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := writeJSON(filepath.Join(staging, manifestFile), ix.manifest); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(staging, chunksFile), ix.chunks); err != nil {
		return err
	}
	if err := ix.db.ExportToFile(filepath.Join(staging, vectorsFile), true, ""); err != nil {
		return fmt.Errorf("exporting vectors: %w", err)
	}

	// Swap the staging directory into place.
	old := dir + ".old"
	if err := os.RemoveAll(old); err != nil {
		return fmt.Errorf("clearing previous index backup: %w", err)
	}
	if _, err := os.Stat(dir); err == nil {
		if err := os.Rename(dir, old); err != nil {
			return fmt.Errorf("moving previous index aside: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking index directory: %w", err)
	}
	if err := os.Rename(staging, dir); err != nil {
		return fmt.Errorf("publishing index: %w", err)
	}
	os.RemoveAll(old)
	return nil
}

// Load reads a persisted index from dir. It returns ErrNotFound when the
// directory holds no index, and ErrModelMismatch when the configured
// embedder differs from the one recorded at build time.
func Load(dir string, embedder embeddings.Embedder) (*Index, error) {
	var manifest Manifest
	if err := readJSON(filepath.Join(dir, manifestFile), &manifest); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, dir)
		}
		return nil, err
	}

	if manifest.SchemaVersion != schemaVersion {
		return nil, fmt.Errorf("index at %s has schema version %d, this build supports %d",
			dir, manifest.SchemaVersion, schemaVersion)
	}
	if manifest.EmbeddingModel != embedder.Name() {
		return nil, fmt.Errorf("%w: index built with %q, configured model is %q",
			ErrModelMismatch, manifest.EmbeddingModel, embedder.Name())
	}
	if manifest.Dimensions != embedder.Dimensions() {
		return nil, fmt.Errorf("%w: index has %d dimensions, configured model produces %d",
			ErrModelMismatch, manifest.Dimensions, embedder.Dimensions())
	}

	var chunks []Chunk
	if err := readJSON(filepath.Join(dir, chunksFile), &chunks); err != nil {
		return nil, err
	}
	if len(chunks) != manifest.ChunkCount {
		return nil, fmt.Errorf("index at %s is corrupt: manifest records %d chunks, found %d",
			dir, manifest.ChunkCount, len(chunks))
	}

	db := chromem.NewDB()
	if err := db.ImportFromFile(filepath.Join(dir, vectorsFile), ""); err != nil {
		return nil, fmt.Errorf("importing vectors: %w", err)
	}
	collection := db.GetCollection(collectionName, embeddings.ToChromemFunc(embedder))
	if collection == nil {
		return nil, fmt.Errorf("index at %s is corrupt: collection %q missing from vector file", dir, collectionName)
	}
	if collection.Count() != len(chunks) {
		return nil, fmt.Errorf("index at %s is corrupt: %d chunks but %d vectors",
			dir, len(chunks), collection.Count())
	}

	return &Index{
		embedder:   embedder,
		db:         db,
		collection: collection,
		chunks:     chunks,
		byID:       buildLookup(chunks),
		manifest:   manifest,
	}, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}
