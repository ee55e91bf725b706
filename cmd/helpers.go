package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"prospekt/internal/config"
	"prospekt/internal/embeddings"
	"prospekt/internal/index"
	"prospekt/internal/llm"
	"prospekt/internal/source"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `prospekt init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newEmbedder creates the configured embedding oracle, wrapped with the
// retry policy. The API key check happens here, before any file or network
// I/O.
func newEmbedder(cfg *config.Config) (embeddings.Embedder, error) {
	var inner embeddings.Embedder
	switch cfg.Embedding.Provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		inner = embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.Embedding.Model))
	case config.ProviderOllama:
		dims := cfg.Embedding.Dimensions
		if dims == 0 {
			dims = 768
		}
		inner = embeddings.NewOllamaEmbedder(cfg.Embedding.Model, dims, cfg.Embedding.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.Embedding.Provider)
	}
	return embeddings.WithRetry(inner, cfg.Embedding.MaxRetries), nil
}

// newGenerator creates the configured generation oracle, rate-limited when
// generation.rpm is set.
func newGenerator(cfg *config.Config) (llm.Generator, error) {
	var gen llm.Generator
	switch cfg.Generation.Provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI generation")
		}
		gen = llm.NewOpenAIGenerator(apiKey, cfg.Generation.Model)
	case config.ProviderOllama:
		gen = llm.NewOllamaGenerator(cfg.Generation.BaseURL, cfg.Generation.Model)
	default:
		return nil, fmt.Errorf("unsupported generation provider %q", cfg.Generation.Provider)
	}
	if cfg.Generation.RPM > 0 {
		gen = llm.NewRateLimitedGenerator(gen, cfg.Generation.RPM)
	}
	return gen, nil
}

// newLoader creates the source loader with the parser oracle when enabled.
func newLoader(cfg *config.Config) *source.Loader {
	var parser source.Parser
	if cfg.Parser.Enabled {
		parser = source.NewParserClient(cfg.Parser.BaseURL)
	} else {
		slog.Debug("parser service disabled, PDFs use plain text extraction")
	}
	return source.NewLoader(parser, slog.Default())
}

// loadIndex loads the published index for the configured embedding model.
func loadIndex(cfg *config.Config) (*index.Index, error) {
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	idx, err := index.Load(cfg.IndexPath, embedder)
	if err != nil {
		return nil, fmt.Errorf("%w\nRun `prospekt ingest` to (re)build the index", err)
	}
	return idx, nil
}

// logPath returns the ingestion log location, next to the index.
func logPath(cfg *config.Config) string {
	return filepath.Join(filepath.Dir(cfg.IndexPath), "ingest.db")
}

// resolveTopK picks the retrieval depth: the config value when the flag was
// not given, otherwise the flag value, which must be positive. An explicit
// zero is a usage error, not a request for the default.
func resolveTopK(set bool, flagValue, configured int) (int, error) {
	if !set {
		return configured, nil
	}
	if flagValue < 1 {
		return 0, fmt.Errorf("top-k must be at least 1, got %d", flagValue)
	}
	return flagValue, nil
}
