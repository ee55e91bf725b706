package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "prospekt.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := DefaultConfig()
	if cfg.Chunk.MaxSize != want.Chunk.MaxSize {
		t.Errorf("chunk.max_size = %d, want %d", cfg.Chunk.MaxSize, want.Chunk.MaxSize)
	}
	if cfg.TopK != want.TopK {
		t.Errorf("top_k = %d, want %d", cfg.TopK, want.TopK)
	}
	if cfg.Embedding.Provider != ProviderOpenAI {
		t.Errorf("embedding.provider = %q, want openai", cfg.Embedding.Provider)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prospekt.yml")
	content := `
data_dir: brochures
top_k: 4
chunk:
  max_size: 256
  overlap: 20
embedding:
  provider: ollama
  model: nomic-embed-text
  dimensions: 768
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DataDir != "brochures" {
		t.Errorf("data_dir = %q", cfg.DataDir)
	}
	if cfg.TopK != 4 {
		t.Errorf("top_k = %d, want 4", cfg.TopK)
	}
	if cfg.Chunk.MaxSize != 256 || cfg.Chunk.Overlap != 20 {
		t.Errorf("chunk = %+v", cfg.Chunk)
	}
	if cfg.Chunk.MinSize != DefaultConfig().Chunk.MinSize {
		t.Errorf("chunk.min_size = %d, want default %d", cfg.Chunk.MinSize, DefaultConfig().Chunk.MinSize)
	}
	if cfg.Embedding.Provider != ProviderOllama || cfg.Embedding.Model != "nomic-embed-text" {
		t.Errorf("embedding = %+v", cfg.Embedding)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prospekt.yml")
	if err := os.WriteFile(path, []byte("top_k: 4\nchunk:\n  max_size: 256\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PROSPEKT_TOP_K", "12")
	t.Setenv("PROSPEKT_CHUNK_MAX_SIZE", "1024")
	t.Setenv("PROSPEKT_EMBEDDING_MODEL", "text-embedding-3-large")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.TopK != 12 {
		t.Errorf("top_k = %d, want 12 from environment", cfg.TopK)
	}
	if cfg.Chunk.MaxSize != 1024 {
		t.Errorf("chunk.max_size = %d, want 1024 from environment", cfg.Chunk.MaxSize)
	}
	if cfg.Embedding.Model != "text-embedding-3-large" {
		t.Errorf("embedding.model = %q", cfg.Embedding.Model)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prospekt.yml")

	cfg := DefaultConfig()
	cfg.DataDir = "weekly"
	cfg.TopK = 6
	cfg.Parser.Enabled = true
	cfg.Parser.BaseURL = "http://localhost:9000"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.DataDir != "weekly" || loaded.TopK != 6 {
		t.Errorf("loaded = %+v", loaded)
	}
	if !loaded.Parser.Enabled || loaded.Parser.BaseURL != "http://localhost:9000" {
		t.Errorf("parser = %+v", loaded.Parser)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults pass", func(c *Config) {}, ""},
		{"missing data dir", func(c *Config) { c.DataDir = "" }, "data_dir"},
		{"missing index path", func(c *Config) { c.IndexPath = "" }, "index_path"},
		{"zero top_k", func(c *Config) { c.TopK = 0 }, "top_k"},
		{"negative top_k", func(c *Config) { c.TopK = -3 }, "top_k"},
		{"zero max size", func(c *Config) { c.Chunk.MaxSize = 0 }, "chunk.max_size"},
		{"min above max", func(c *Config) { c.Chunk.MinSize = c.Chunk.MaxSize + 1 }, "chunk.min_size"},
		{"overlap at max", func(c *Config) { c.Chunk.Overlap = c.Chunk.MaxSize }, "chunk.overlap"},
		{"negative overlap", func(c *Config) { c.Chunk.Overlap = -1 }, "chunk.overlap"},
		{"unknown embedding provider", func(c *Config) { c.Embedding.Provider = "anthropic" }, "embedding.provider"},
		{"missing embedding model", func(c *Config) { c.Embedding.Model = "" }, "embedding.model"},
		{"zero batch size", func(c *Config) { c.Embedding.BatchSize = 0 }, "embedding.batch_size"},
		{"negative retries", func(c *Config) { c.Embedding.MaxRetries = -1 }, "embedding.max_retries"},
		{"unknown generation provider", func(c *Config) { c.Generation.Provider = "" }, "generation.provider"},
		{"zero max tokens", func(c *Config) { c.Generation.MaxTokens = 0 }, "generation.max_tokens"},
		{"negative rpm", func(c *Config) { c.Generation.RPM = -1 }, "generation.rpm"},
		{"parser enabled without url", func(c *Config) { c.Parser.Enabled = true; c.Parser.BaseURL = "" }, "parser.base_url"},
		{"negative history limit", func(c *Config) { c.Chat.HistoryLimit = -1 }, "chat.history_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate passed, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	if got := APIKeyEnvVar(ProviderOpenAI); got != "OPENAI_API_KEY" {
		t.Errorf("openai key var = %q", got)
	}
	if got := APIKeyEnvVar(ProviderOllama); got != "" {
		t.Errorf("ollama key var = %q, want empty", got)
	}
}
