package answer

import (
	"fmt"
	"strings"

	"prospekt/internal/index"
)

// systemPrompt defines the assistant's persona and the error-correction
// rules for OCR artifacts common in German brochures (e.g. "169" printed
// for "1.69").
const systemPrompt = `You are a savvy German shopping assistant reading grocery brochures (Prospekte). Rules for answering:
1. PRICE INTERPRETATION: If you see a price like '169' or '129' in a table context, it almost always means '1.69' or '1.29'. Assume the last two digits are cents.
2. SEARCH BROADLY: If the user asks for 'Butter', look for 'Markenbutter', 'Streichfett', or specific brands like 'Kerrygold'.
3. NO HALLUCINATION: If a price column says 'AKTION' but has no number, say 'Price not listed'. Only use facts from the provided brochure excerpts.
4. ALWAYS name the store each offer comes from.`

// InsufficientContext is returned verbatim when retrieval produced nothing
// to ground an answer on.
const InsufficientContext = "I could not find anything relevant in the ingested brochures. " +
	"Try rephrasing the question, or run `prospekt ingest` to index new brochures."

// buildContext renders the retrieved chunks into the grounding block of the
// prompt, each labeled with its store and source file so the model can cite
// them.
func buildContext(hits []index.SearchResult) string {
	var sb strings.Builder
	sb.WriteString("Brochure excerpts:\n\n")
	for i, hit := range hits {
		fmt.Fprintf(&sb, "--- Excerpt %d (store: %s, file: %s) ---\n",
			i+1, hit.Chunk.Meta.StoreID, hit.Chunk.Meta.SourcePath)
		sb.WriteString(hit.Chunk.Text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
