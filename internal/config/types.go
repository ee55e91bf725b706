package config

// ProviderType identifies an embedding or generation provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// Config is the top-level prospekt configuration, corresponding to prospekt.yml.
type Config struct {
	DataDir    string           `yaml:"data_dir" koanf:"data_dir"`
	IndexPath  string           `yaml:"index_path" koanf:"index_path"`
	TopK       int              `yaml:"top_k" koanf:"top_k"`
	Chunk      ChunkConfig      `yaml:"chunk" koanf:"chunk"`
	Embedding  EmbeddingConfig  `yaml:"embedding" koanf:"embedding"`
	Generation GenerationConfig `yaml:"generation" koanf:"generation"`
	Parser     ParserConfig     `yaml:"parser" koanf:"parser"`
	Chat       ChatConfig       `yaml:"chat" koanf:"chat"`
}

// ChunkConfig controls how tagged document text is split before embedding.
type ChunkConfig struct {
	MaxSize int `yaml:"max_size" koanf:"max_size"`
	MinSize int `yaml:"min_size" koanf:"min_size"`
	Overlap int `yaml:"overlap" koanf:"overlap"`
}

// EmbeddingConfig selects the embedding oracle and its call policy.
type EmbeddingConfig struct {
	Provider   ProviderType `yaml:"provider" koanf:"provider"`
	Model      string       `yaml:"model" koanf:"model"`
	Dimensions int          `yaml:"dimensions" koanf:"dimensions"`
	BaseURL    string       `yaml:"base_url" koanf:"base_url"`
	BatchSize  int          `yaml:"batch_size" koanf:"batch_size"`
	MaxRetries int          `yaml:"max_retries" koanf:"max_retries"`
}

// GenerationConfig selects the answer-generating model.
type GenerationConfig struct {
	Provider    ProviderType `yaml:"provider" koanf:"provider"`
	Model       string       `yaml:"model" koanf:"model"`
	BaseURL     string       `yaml:"base_url" koanf:"base_url"`
	MaxTokens   int          `yaml:"max_tokens" koanf:"max_tokens"`
	Temperature float64      `yaml:"temperature" koanf:"temperature"`
	RPM         int          `yaml:"rpm" koanf:"rpm"`
}

// ParserConfig points at the optional external brochure parser service.
// When disabled (or unreachable) ingestion falls back to plain text
// extraction and marks the affected documents as degraded.
type ParserConfig struct {
	Enabled bool   `yaml:"enabled" koanf:"enabled"`
	BaseURL string `yaml:"base_url" koanf:"base_url"`
}

// ChatConfig bounds the interactive conversation.
type ChatConfig struct {
	// HistoryLimit is the number of prior turns (a user message plus the
	// assistant reply) carried into each prompt.
	HistoryLimit int `yaml:"history_limit" koanf:"history_limit"`
}
