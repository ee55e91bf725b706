// Package tagger derives store provenance from brochure filenames and
// injects it into the extracted text. The injected header is a retrieval
// aid only: chunk boundaries may truncate it, so the structured metadata
// fields carried alongside the text are the source of truth.
package tagger

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// UnknownStore is used when a filename stem contains no usable characters.
const UnknownStore = "UNKNOWN"

// headerFormat is the provenance marker prepended to every document before
// chunking. When the vector search matches "Butter" it now matches
// "ALDI ... Butter", associating product with store.
const headerFormat = "STORE OFFER FROM: %s"

// Document is tagged document text with its structured provenance.
type Document struct {
	Text       string
	StoreID    string
	SourcePath string
	Degraded   bool
	IngestedAt time.Time
}

// StoreID normalizes a filename into a store identifier: the basename is
// stripped of its extension, uppercased, and reduced to letters and digits.
// "aldi.pdf" -> "ALDI", "Lidl Woche-34.PDF" -> "LIDLWOCHE34". Names with no
// usable characters map to UnknownStore.
func StoreID(filename string) string {
	stem := filepath.Base(filename)
	stem = strings.TrimSuffix(stem, filepath.Ext(stem))

	var b strings.Builder
	for _, r := range stem {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}

	if b.Len() == 0 {
		return UnknownStore
	}
	return b.String()
}

// Header returns the provenance marker line for the given store.
func Header(storeID string) string {
	return fmt.Sprintf(headerFormat, storeID)
}

// Tag attaches store provenance to raw document text. It is a pure function
// of the filename and content: tagging the same input twice yields identical
// output, which keeps chunk IDs stable across rebuilds.
func Tag(sourcePath, rawText string, degraded bool, ingestedAt time.Time) Document {
	storeID := StoreID(sourcePath)
	return Document{
		Text:       Header(storeID) + "\n\n" + rawText,
		StoreID:    storeID,
		SourcePath: sourcePath,
		Degraded:   degraded,
		IngestedAt: ingestedAt,
	}
}
