package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (PROSPEKT_*). Nested keys use underscores
// in the variable name, e.g. PROSPEKT_CHUNK_MAX_SIZE -> chunk.max_size.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: PROSPEKT_TOP_K -> top_k, etc.
	if err := k.Load(env.Provider("PROSPEKT_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "PROSPEKT_"))
		for _, section := range []string{"chunk", "embedding", "generation", "parser", "chat"} {
			if strings.HasPrefix(key, section+"_") {
				return section + "." + strings.TrimPrefix(key, section+"_")
			}
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized provider values.
var validProviders = map[ProviderType]bool{
	ProviderOpenAI: true,
	ProviderOllama: true,
}

// Validate checks that the configuration contains valid values. It runs
// before any file or network I/O so that bad numeric settings or a missing
// provider fail fast.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.IndexPath == "" {
		return fmt.Errorf("index_path is required")
	}
	if c.TopK < 1 {
		return fmt.Errorf("top_k must be at least 1, got %d", c.TopK)
	}

	if c.Chunk.MaxSize < 1 {
		return fmt.Errorf("chunk.max_size must be positive, got %d", c.Chunk.MaxSize)
	}
	if c.Chunk.MinSize < 0 || c.Chunk.MinSize > c.Chunk.MaxSize {
		return fmt.Errorf("chunk.min_size must be between 0 and chunk.max_size, got %d", c.Chunk.MinSize)
	}
	if c.Chunk.Overlap < 0 || c.Chunk.Overlap >= c.Chunk.MaxSize {
		return fmt.Errorf("chunk.overlap must be non-negative and smaller than chunk.max_size, got %d", c.Chunk.Overlap)
	}

	if !validProviders[c.Embedding.Provider] {
		return fmt.Errorf("invalid embedding.provider %q: must be one of openai, ollama", c.Embedding.Provider)
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Embedding.BatchSize < 1 {
		return fmt.Errorf("embedding.batch_size must be at least 1, got %d", c.Embedding.BatchSize)
	}
	if c.Embedding.MaxRetries < 0 {
		return fmt.Errorf("embedding.max_retries must be non-negative, got %d", c.Embedding.MaxRetries)
	}

	if !validProviders[c.Generation.Provider] {
		return fmt.Errorf("invalid generation.provider %q: must be one of openai, ollama", c.Generation.Provider)
	}
	if c.Generation.Model == "" {
		return fmt.Errorf("generation.model is required")
	}
	if c.Generation.MaxTokens < 1 {
		return fmt.Errorf("generation.max_tokens must be positive, got %d", c.Generation.MaxTokens)
	}
	if c.Generation.RPM < 0 {
		return fmt.Errorf("generation.rpm must be non-negative, got %d", c.Generation.RPM)
	}

	if c.Parser.Enabled && c.Parser.BaseURL == "" {
		return fmt.Errorf("parser.base_url is required when the parser is enabled")
	}

	if c.Chat.HistoryLimit < 0 {
		return fmt.Errorf("chat.history_limit must be non-negative, got %d", c.Chat.HistoryLimit)
	}

	return nil
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider, or "" if none is needed.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}
