package chunker

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// markdownParser understands GFM tables, which the external brochure parser
// emits for product/price grids.
var markdownParser = goldmark.New(goldmark.WithExtensions(extension.GFM))

// splitMarkdown groups top-level markdown blocks into sections, starting a
// new section at each heading and whenever the size limit would be crossed.
// A block (in particular a price table) is never split across sections
// unless it alone exceeds MaxSize, in which case it falls back to the plain
// splitter. This mirrors how the parser output is organized: one table per
// offer category, captioned with the store name.
func splitMarkdown(input string, opts Options) []string {
	src := []byte(input)
	doc := markdownParser.Parser().Parse(text.NewReader(src))

	var sections []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sections = append(sections, s)
		}
		current.Reset()
		currentLen = 0
	}

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		block := blockSource(src, node)
		if block == "" {
			continue
		}
		blockLen := len([]rune(block))

		if currentLen > 0 && (node.Kind() == ast.KindHeading || currentLen+blockLen > opts.MaxSize) {
			flush()
		}
		current.WriteString(block)
		current.WriteString("\n\n")
		currentLen += blockLen + 2
	}
	flush()

	if len(sections) == 0 {
		return splitPlain(input, opts)
	}

	// Enforce the size bound on oversized sections.
	var chunks []string
	for _, section := range sections {
		if len([]rune(section)) <= opts.MaxSize {
			chunks = append(chunks, section)
			continue
		}
		chunks = append(chunks, splitPlain(section, opts)...)
	}
	return chunks
}

// blockSource recovers the source text covered by a block node and its
// children.
func blockSource(src []byte, n ast.Node) string {
	start, stop := -1, -1
	grow := func(segStart, segStop int) {
		if segStop <= segStart {
			return
		}
		if start == -1 || segStart < start {
			start = segStart
		}
		if segStop > stop {
			stop = segStop
		}
	}
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if c.Type() == ast.TypeBlock {
			lines := c.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				grow(seg.Start, seg.Stop)
			}
		}
		if txt, ok := c.(*ast.Text); ok {
			grow(txt.Segment.Start, txt.Segment.Stop)
		}
		return ast.WalkContinue, nil
	})

	if start < 0 || stop <= start {
		return ""
	}
	return strings.TrimRight(string(src[start:stop]), "\n")
}
