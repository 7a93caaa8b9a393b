package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaProvider_Complete_Success(t *testing.T) {
	var got ollamaRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &got)

		resp := ollamaResponse{
			Model:           "llama3.1",
			Response:        `{"lead_diagnosis":"Pneumonia","rationale":"[1]","citations":["fever"]}`,
			Done:            true,
			DoneReason:      "stop",
			PromptEvalCount: 10,
			EvalCount:       20,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Complete(context.Background(), Request{
		System: "system text",
		Prompt: "case text",
		Schema: testSchema(t),
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.TokensUsed != 30 {
		t.Errorf("Expected 30 tokens, got %d", resp.TokensUsed)
	}
	if resp.ID == "" {
		t.Error("Expected generated response ID")
	}
	if !resp.Completed {
		t.Error("Expected completed response")
	}
	if got.Stream {
		t.Error("Expected non-streaming request")
	}
	if len(got.Format) == 0 {
		t.Error("Expected schema to be sent as format")
	}
	if got.System != "system text" {
		t.Errorf("Expected system text, got %q", got.System)
	}
}

func TestOllamaProvider_Complete_NoModel(t *testing.T) {
	provider, err := NewOllamaProvider(Config{BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Complete(context.Background(), Request{Prompt: "case"})
	var pErr *PermanentError
	if !errors.As(err, &pErr) {
		t.Fatalf("Expected PermanentError, got %v", err)
	}
}

func TestOllamaProvider_Complete_LengthLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaResponse{Model: "llama3.1", Response: "partial", Done: true, DoneReason: "length"})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Complete(context.Background(), Request{Prompt: "case"})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Completed {
		t.Error("Expected length-limited response to be incomplete")
	}
	if resp.TokensUsed == 0 {
		t.Error("Expected estimated token count")
	}
}

func TestOllamaProvider_Complete_ModelNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'nope' not found"}`))
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "nope", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Complete(context.Background(), Request{Prompt: "case"})
	var pErr *PermanentError
	if !errors.As(err, &pErr) {
		t.Fatalf("Expected PermanentError, got %v", err)
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be available")
	}
}
