package source

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractText pulls plain text out of PDF bytes, page by page. This is the
// degraded path: multi-column brochure layouts come out as a flat word
// stream, so price/product associations are weaker than with the parser
// service.
func extractText(content []byte) (text string, pages int, err error) {
	// The pdf library panics on some malformed files; turn that into a
	// per-document error so ingestion can continue.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf extraction panicked: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}

	total := reader.NumPage()
	var sb strings.Builder
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", 0, fmt.Errorf("page %d: %w", i, err)
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(pageText)
	}

	if sb.Len() == 0 {
		return "", 0, fmt.Errorf("no extractable text in %d pages", total)
	}
	return sb.String(), total, nil
}
