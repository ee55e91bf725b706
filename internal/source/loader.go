// Package source enumerates input brochures and turns each one into raw
// text. Extraction prefers the external parser service (table-aware
// markdown); when the service is disabled or fails, a local plain-text
// extraction is used instead and the result is flagged as degraded so
// downstream consumers can tell the two apart.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// inputPattern matches the recognized input files inside the data
// directory. Markdown files are accepted as pre-extracted brochures.
const inputPattern = "*.{pdf,md}"

// RawDocument is one input file's extracted text.
type RawDocument struct {
	SourcePath string
	Text       string
	// Markdown is true when the text came from the parser service and
	// preserves table structure.
	Markdown bool
	// Degraded is true when PDF text was recovered by the local fallback
	// extractor, which loses table and layout fidelity.
	Degraded bool
	Pages    int
}

// Parser is the external extraction oracle.
type Parser interface {
	Parse(ctx context.Context, filename string, content []byte) (string, error)
}

// LoadError records a per-document failure. One bad document never fails
// the whole run.
type LoadError struct {
	SourcePath string
	Err        error
}

func (e LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.SourcePath, e.Err)
}

func (e LoadError) Unwrap() error { return e.Err }

// Loader reads a directory of brochures.
type Loader struct {
	parser Parser // nil disables the external parser
	logger *slog.Logger
}

// NewLoader creates a Loader. parser may be nil, in which case every PDF
// goes through the fallback extractor.
func NewLoader(parser Parser, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{parser: parser, logger: logger}
}

// Load extracts every recognized document under dir. A malformed or
// unreadable document is skipped and reported in the returned error slice;
// the remaining documents still load. The documents are returned in
// filename order for deterministic ingestion.
func (l *Loader) Load(ctx context.Context, dir string) ([]RawDocument, []LoadError, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading input directory %s: %w", dir, err)
	}

	var docs []RawDocument
	var failures []LoadError

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if ok, _ := doublestar.Match(inputPattern, strings.ToLower(name)); !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return docs, failures, err
		}

		path := filepath.Join(dir, name)
		doc, err := l.loadOne(ctx, path)
		if err != nil {
			l.logger.Warn("skipping document", "file", name, "error", err)
			failures = append(failures, LoadError{SourcePath: path, Err: err})
			continue
		}
		docs = append(docs, doc)
	}

	return docs, failures, nil
}

func (l *Loader) loadOne(ctx context.Context, path string) (RawDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return RawDocument{}, fmt.Errorf("read: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".md") {
		return RawDocument{
			SourcePath: path,
			Text:       string(content),
			Markdown:   true,
			Pages:      1,
		}, nil
	}

	if l.parser != nil {
		text, err := l.parser.Parse(ctx, filepath.Base(path), content)
		if err == nil {
			return RawDocument{
				SourcePath: path,
				Text:       text,
				Markdown:   true,
				Pages:      1,
			}, nil
		}
		l.logger.Warn("parser service failed, falling back to plain extraction",
			"file", filepath.Base(path), "error", err)
	}

	text, pages, err := extractText(content)
	if err != nil {
		return RawDocument{}, fmt.Errorf("extract text: %w", err)
	}
	return RawDocument{
		SourcePath: path,
		Text:       text,
		Degraded:   true,
		Pages:      pages,
	}, nil
}
