// Package chunker splits tagged document text into bounded, overlapping
// units suitable for embedding and retrieval. Splitting is deterministic:
// identical input and options always produce the identical sequence, which
// chunk-ID derivation and idempotent re-indexing depend on.
package chunker

import "strings"

// Options controls chunk sizing. Sizes are in runes so multi-byte German
// characters never get cut in half.
type Options struct {
	// MaxSize is the upper bound for a chunk.
	MaxSize int
	// MinSize is the lower bound when seeking a natural boundary. If no
	// paragraph or sentence boundary falls within [MinSize, MaxSize] the
	// chunk is hard-cut at MaxSize.
	MinSize int
	// Overlap is how far each chunk after the first reaches back before the
	// previous chunk's end, so a fact straddling a boundary ("Butter ...
	// 1.99") survives whole in at least one chunk.
	Overlap int
	// Markdown enables section-aware splitting for parser-oracle output.
	Markdown bool
}

func (o Options) normalized() Options {
	if o.MaxSize < 1 {
		o.MaxSize = 512
	}
	if o.MinSize < 0 || o.MinSize > o.MaxSize {
		o.MinSize = 0
	}
	if o.Overlap < 0 {
		o.Overlap = 0
	}
	if o.Overlap >= o.MaxSize {
		o.Overlap = o.MaxSize - 1
	}
	return o
}

// Split breaks text into an ordered sequence of chunk texts. Empty or
// whitespace-only input yields no chunks; input no longer than MaxSize
// yields exactly one.
func Split(text string, opts Options) []string {
	opts = opts.normalized()

	if strings.TrimSpace(text) == "" {
		return nil
	}

	if opts.Markdown {
		return splitMarkdown(text, opts)
	}
	return splitPlain(text, opts)
}

func splitPlain(text string, opts Options) []string {
	runes := []rune(text)
	if len(runes) <= opts.MaxSize {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + opts.MaxSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		cut := findBoundary(runes, start+opts.MinSize, end)
		chunks = append(chunks, string(runes[start:cut]))

		next := cut - opts.Overlap
		if next <= start {
			// Overlap must never stall the walk.
			next = cut
		}
		start = next
	}
	return chunks
}

// findBoundary picks the cut position within (lo, hi]: the last paragraph
// break wins, then the last sentence end, then the last line break, and
// finally a hard cut at hi.
func findBoundary(runes []rune, lo, hi int) int {
	if lo < 1 {
		lo = 1
	}

	paragraph, sentence, line := -1, -1, -1
	for i := hi - 1; i >= lo; i-- {
		switch runes[i] {
		case '\n':
			if i+1 < len(runes) && runes[i-1] == '\n' {
				if paragraph < 0 {
					paragraph = i + 1
				}
			} else if line < 0 {
				line = i + 1
			}
		case '.', '!', '?':
			if sentence < 0 && i+1 < len(runes) && isSpace(runes[i+1]) {
				sentence = i + 1
			}
		}
		if paragraph >= 0 {
			break
		}
	}

	switch {
	case paragraph >= 0:
		return paragraph
	case sentence >= 0:
		return sentence
	case line >= 0:
		return line
	default:
		return hi
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
