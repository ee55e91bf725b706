package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOllamaEmbed(t *testing.T) {
	var gotModel string
	var gotInputs []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			http.NotFound(w, r)
			return
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotModel = req.Model
		gotInputs = req.Input
		resp := ollamaEmbedResponse{Embeddings: [][]float32{{1, 0}, {0, 1}}}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	e := NewOllamaEmbedder("nomic-embed-text", 2, server.URL)
	vectors, err := e.Embed(context.Background(), []string{"Butter", "Bananen"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vectors))
	}
	if gotModel != "nomic-embed-text" || len(gotInputs) != 2 {
		t.Errorf("request = model %q, %d inputs", gotModel, len(gotInputs))
	}
}

func TestOllamaEmbedCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaEmbedResponse{Embeddings: [][]float32{{1, 0}}})
	}))
	defer server.Close()

	e := NewOllamaEmbedder("nomic-embed-text", 2, server.URL)
	if _, err := e.Embed(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("Embed accepted a short response")
	}
}

func TestOllamaEmbedUnresponsiveServer(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	e := NewOllamaEmbedder("nomic-embed-text", 2, server.URL)
	if e.httpClient.Timeout == 0 {
		t.Fatal("embedding client has no request timeout")
	}
	e.httpClient.Timeout = 50 * time.Millisecond

	done := make(chan error, 1)
	go func() {
		_, err := e.Embed(context.Background(), []string{"Butter"})
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("Embed succeeded against an unresponsive server")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Embed still blocked well past the request timeout")
	}
}
