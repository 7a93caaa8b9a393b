package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/dxcite/internal/model"
	"github.com/ppiankov/dxcite/internal/prompt"
	"github.com/sashabaranov/go-openai"
)

func testSchema(t *testing.T) *prompt.Schema {
	t.Helper()
	schema, err := prompt.BuildSchema(model.ConditionRecommendationsDriven, model.Hypotheses{
		{Text: "Pneumonia"},
		{Text: "Bronchitis"},
	})
	if err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}
	return schema
}

func TestOpenAIProvider_Complete_Success(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)

		resp := openai.ChatCompletionResponse{
			ID:      "chatcmpl-123",
			Object:  "chat.completion",
			Created: 1677652288,
			Model:   "gpt-4o",
			Choices: []openai.ChatCompletionChoice{
				{
					Index: 0,
					Message: openai.ChatCompletionMessage{
						Role:    "assistant",
						Content: `{"lead_diagnosis":"Pneumonia","rationale":"fever [1]","citations":["fever"]}`,
					},
					FinishReason: "stop",
				},
			},
			Usage: openai.Usage{TotalTokens: 100},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-4o",
		Timeout: 5,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Complete(context.Background(), Request{
		Condition: model.ConditionRecommendationsDriven,
		System:    "system text",
		Prompt:    "case text",
		Schema:    testSchema(t),
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.ID != "chatcmpl-123" {
		t.Errorf("Expected ID chatcmpl-123, got %s", resp.ID)
	}
	if !strings.Contains(resp.Content, `"lead_diagnosis":"Pneumonia"`) {
		t.Errorf("Unexpected content: %s", resp.Content)
	}
	if !resp.Completed {
		t.Error("Expected completed response")
	}
	if resp.TokensUsed != 100 {
		t.Errorf("Expected 100 tokens, got %d", resp.TokensUsed)
	}

	format, ok := body["response_format"].(map[string]any)
	if !ok {
		t.Fatalf("Expected response_format in request, got %v", body)
	}
	if format["type"] != "json_schema" {
		t.Errorf("Expected json_schema format, got %v", format["type"])
	}
	messages, _ := body["messages"].([]any)
	if len(messages) != 2 {
		t.Errorf("Expected system and user messages, got %d", len(messages))
	}
}

func TestOpenAIProvider_Complete_Truncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := openai.ChatCompletionResponse{
			ID: "chatcmpl-456",
			Choices: []openai.ChatCompletionChoice{
				{
					Message:      openai.ChatCompletionMessage{Role: "assistant", Content: `{"lead_diag`},
					FinishReason: openai.FinishReasonLength,
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Complete(context.Background(), Request{Prompt: "case"})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Completed {
		t.Error("Expected truncated response to be marked incomplete")
	}
}

func TestOpenAIProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "Internal Server Error", "type": "server_error"}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Complete(context.Background(), Request{Prompt: "case"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	var pErr *PermanentError
	if errors.As(err, &pErr) {
		t.Error("Server errors should be retryable")
	}
}

func TestOpenAIProvider_Complete_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "bad-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Complete(context.Background(), Request{Prompt: "case"})
	var pErr *PermanentError
	if !errors.As(err, &pErr) {
		t.Fatalf("Expected PermanentError, got %v", err)
	}
}

func TestOpenAIProvider_Complete_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{malformed json`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Complete(context.Background(), Request{Prompt: "case"})
	if err == nil {
		t.Fatal("Expected error for malformed JSON, got nil")
	}
}

func TestOpenAIProvider_Complete_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	// The caller's deadline is shorter than the provider timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = provider.Complete(ctx, Request{Prompt: "case"})
	if err == nil {
		t.Fatal("Expected timeout error, got nil")
	}
}

func TestNewOpenAIProvider_MissingKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{}); err == nil {
		t.Fatal("Expected error for missing API key")
	}
}
