package tagger

import (
	"strings"
	"testing"
	"time"
)

func TestStoreID(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"simple pdf", "aldi.pdf", "ALDI"},
		{"uppercase extension", "lidl.PDF", "LIDL"},
		{"markdown", "rewe.md", "REWE"},
		{"with path", "data/brochures/edeka.pdf", "EDEKA"},
		{"spaces and punctuation", "Lidl Woche-34.pdf", "LIDLWOCHE34"},
		{"umlauts kept as letters", "müller.pdf", "MÜLLER"},
		{"only punctuation", "--..--.pdf", "UNKNOWN"},
		{"bare extension", ".pdf", "UNKNOWN"},
		{"empty", "", "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StoreID(tt.filename); got != tt.want {
				t.Errorf("StoreID(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestTag(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	doc := Tag("data/aldi.pdf", "Butter 1.99", false, now)

	if doc.StoreID != "ALDI" {
		t.Errorf("StoreID = %q, want ALDI", doc.StoreID)
	}
	if doc.SourcePath != "data/aldi.pdf" {
		t.Errorf("SourcePath = %q", doc.SourcePath)
	}
	if !strings.HasPrefix(doc.Text, "STORE OFFER FROM: ALDI\n\n") {
		t.Errorf("text does not start with provenance header: %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "Butter 1.99") {
		t.Errorf("text lost original content: %q", doc.Text)
	}
	if !doc.IngestedAt.Equal(now) {
		t.Errorf("IngestedAt = %v, want %v", doc.IngestedAt, now)
	}
}

func TestTagIdempotent(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	a := Tag("lidl.pdf", "Butter 1.79", true, now)
	b := Tag("lidl.pdf", "Butter 1.79", true, now)

	if a != b {
		t.Errorf("tagging the same input twice differs:\n%+v\n%+v", a, b)
	}
}

func TestTagMetadataIndependentOfHeader(t *testing.T) {
	// Structured metadata must carry the store identity even if a chunk
	// boundary later cuts off the injected header.
	doc := Tag("netto.pdf", strings.Repeat("x", 10_000), false, time.Now())

	if doc.StoreID != "NETTO" {
		t.Errorf("StoreID = %q, want NETTO", doc.StoreID)
	}
	// The header appears exactly once, at the start.
	if n := strings.Count(doc.Text, "STORE OFFER FROM:"); n != 1 {
		t.Errorf("header injected %d times, want 1", n)
	}
}
