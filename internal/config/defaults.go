package config

// DefaultConfig returns a Config with sensible defaults. Chunk sizes are
// tuned for brochure "product boxes" (name + description + price): 512
// characters holds a whole box, and the 50-character overlap keeps a
// product name and its price together when they straddle a boundary.
func DefaultConfig() *Config {
	return &Config{
		DataDir:   "data",
		IndexPath: "local_storage/index",
		TopK:      8,
		Chunk: ChunkConfig{
			MaxSize: 512,
			MinSize: 64,
			Overlap: 50,
		},
		Embedding: EmbeddingConfig{
			Provider:   ProviderOpenAI,
			Model:      "text-embedding-3-small",
			BatchSize:  64,
			MaxRetries: 3,
		},
		Generation: GenerationConfig{
			Provider:    ProviderOpenAI,
			Model:       "gpt-4o-mini",
			MaxTokens:   1024,
			Temperature: 0.0,
		},
		Parser: ParserConfig{
			Enabled: false,
			BaseURL: "http://localhost:8000",
		},
		Chat: ChatConfig{
			HistoryLimit: 20,
		},
	}
}
