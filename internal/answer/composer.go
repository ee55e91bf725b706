// Package answer builds grounded prompts from retrieved chunks and turns
// generation-oracle output into answers with citations.
package answer

import (
	"context"
	"fmt"

	"prospekt/internal/index"
	"prospekt/internal/llm"
)

// Citation identifies one chunk that was supplied as grounding context.
type Citation struct {
	ChunkID    string  `json:"chunk_id"`
	StoreID    string  `json:"store_id"`
	SourcePath string  `json:"source_path"`
	Similarity float32 `json:"similarity"`
}

// Answer is generated text plus the exact citation set used to ground it.
type Answer struct {
	Text string `json:"text"`
	// Grounded is false when no context was available and the generation
	// oracle was never called.
	Grounded  bool       `json:"grounded"`
	Citations []Citation `json:"citations,omitempty"`
}

// Composer turns a question, retrieved chunks, and prior turns into a
// grounded answer. It is stateless across calls; conversation history is
// owned by the caller.
type Composer struct {
	generator   llm.Generator
	maxTokens   int
	temperature float64
}

// NewComposer creates a Composer using the given generation oracle.
func NewComposer(generator llm.Generator, maxTokens int, temperature float64) *Composer {
	return &Composer{
		generator:   generator,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Answer produces a grounded answer for the question. With no retrieved
// chunks it returns an explicit insufficient-context answer without calling
// the generation oracle: an ungrounded answer must never be presented as
// grounded. History is appended between the system rules and the grounded
// question, oldest first.
func (c *Composer) Answer(ctx context.Context, question string, hits []index.SearchResult, history []llm.Message) (*Answer, error) {
	if len(hits) == 0 {
		return &Answer{Text: InsufficientContext, Grounded: false}, nil
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: buildContext(hits) + "Question: " + question,
	})

	resp, err := c.generator.Generate(ctx, llm.Request{
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	citations := make([]Citation, len(hits))
	for i, hit := range hits {
		citations[i] = Citation{
			ChunkID:    hit.Chunk.ID,
			StoreID:    hit.Chunk.Meta.StoreID,
			SourcePath: hit.Chunk.Meta.SourcePath,
			Similarity: hit.Similarity,
		}
	}

	return &Answer{
		Text:      resp.Content,
		Grounded:  true,
		Citations: citations,
	}, nil
}
