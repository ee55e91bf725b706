package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOllamaGenerate(t *testing.T) {
	var gotReq ollamaChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message:    ollamaMessage{Role: "assistant", Content: "ALDI: 1.99 EUR"},
			Model:      "llama3",
			Done:       true,
			DoneReason: "stop",
		})
	}))
	defer server.Close()

	g := NewOllamaGenerator(server.URL, "llama3")
	resp, err := g.Generate(context.Background(), Request{
		Messages:    []Message{{Role: RoleSystem, Content: "rules"}, {Role: RoleUser, Content: "Butter?"}},
		MaxTokens:   128,
		Temperature: 0.1,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Content != "ALDI: 1.99 EUR" {
		t.Errorf("Content = %q", resp.Content)
	}
	if gotReq.Stream {
		t.Error("request asked for streaming")
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
	if gotReq.Options.NumPredict != 128 {
		t.Errorf("num_predict = %d", gotReq.Options.NumPredict)
	}
}

func TestOllamaGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	g := NewOllamaGenerator(server.URL, "llama3")
	if _, err := g.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}}); err == nil {
		t.Fatal("Generate succeeded despite server error")
	}
}

func TestOllamaGenerateUnresponsiveServer(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	g := NewOllamaGenerator(server.URL, "llama3")
	if g.client.Timeout == 0 {
		t.Fatal("generation client has no request timeout")
	}
	g.client.Timeout = 50 * time.Millisecond

	done := make(chan error, 1)
	go func() {
		_, err := g.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "Butter?"}}})
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("Generate succeeded against an unresponsive server")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Generate still blocked well past the request timeout")
	}
}
