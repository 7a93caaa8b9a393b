package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/ppiankov/dxcite/internal/cache"
	"github.com/ppiankov/dxcite/internal/model"
	"github.com/sashabaranov/go-openai/jsonschema"
	genai "google.golang.org/genai"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantName string
		wantErr  bool
	}{
		{"openai", Config{Provider: "openai", APIKey: "k"}, "openai", false},
		{"anthropic", Config{Provider: "anthropic", APIKey: "k"}, "anthropic", false},
		{"claude alias", Config{Provider: "Claude", APIKey: "k"}, "anthropic", false},
		{"ollama", Config{Provider: "ollama"}, "ollama", false},
		{"openai without key", Config{Provider: "openai"}, "", true},
		{"unknown", Config{Provider: "mystery"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.config)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider failed: %v", err)
			}
			if p.Name() != tt.wantName {
				t.Errorf("Expected %s, got %s", tt.wantName, p.Name())
			}
		})
	}
}

func TestNewProvider_Disabled(t *testing.T) {
	p, err := NewProvider(Config{})
	if err != nil || p != nil {
		t.Fatalf("Expected nil provider and no error, got %v, %v", p, err)
	}
}

func TestBuild_WrapsProvider(t *testing.T) {
	p, err := Build(Config{Provider: "ollama", MaxAttempts: 2}, Options{
		Cache:             cache.NewMemoryCache(time.Minute, time.Minute),
		CacheTTL:          time.Minute,
		RequestsPerSecond: 1,
		Burst:             1,
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, ok := p.(*Cached); !ok {
		t.Errorf("Expected outermost wrapper to be *Cached, got %T", p)
	}
	if p.Name() != "ollama" {
		t.Errorf("Expected wrapped name ollama, got %s", p.Name())
	}
}

func TestBuild_SharedCacheKeepsModelsApart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(ollamaResponse{
			Model:      req.Model,
			Response:   "answer from " + req.Model,
			Done:       true,
			DoneReason: "stop",
		})
	}))
	defer server.Close()

	store := cache.NewMemoryCache(time.Minute, time.Minute)
	req := Request{Condition: model.ConditionDifferential, Prompt: "case text"}

	for _, name := range []string{"model-a", "model-b"} {
		p, err := Build(Config{Provider: "ollama", Model: name, BaseURL: server.URL, Timeout: 5}, Options{
			Cache:    store,
			CacheTTL: time.Minute,
		})
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		resp, err := p.Complete(context.Background(), req)
		if err != nil {
			t.Fatalf("Complete failed: %v", err)
		}
		if resp.Content != "answer from "+name || resp.Model != name {
			t.Errorf("%s got %q from model %s (cached=%v)", name, resp.Content, resp.Model, resp.Cached)
		}
	}
}

func TestLoadAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "from-env")
	config := Config{Provider: "openai"}
	if err := LoadAPIKey(&config); err != nil {
		t.Fatalf("LoadAPIKey failed: %v", err)
	}
	if config.APIKey != "from-env" {
		t.Errorf("Expected key from environment, got %q", config.APIKey)
	}

	t.Setenv("ANTHROPIC_API_KEY", "")
	missing := Config{Provider: "anthropic"}
	if err := LoadAPIKey(&missing); err == nil {
		t.Error("Expected error for missing ANTHROPIC_API_KEY")
	}

	t.Setenv("OLLAMA_BASE_URL", "http://gpu-box:11434")
	ollama := Config{Provider: "ollama"}
	if err := LoadAPIKey(&ollama); err != nil {
		t.Fatalf("LoadAPIKey failed: %v", err)
	}
	if ollama.BaseURL != "http://gpu-box:11434" {
		t.Errorf("Expected Ollama base URL from environment, got %q", ollama.BaseURL)
	}
}

func TestNewProxyFunc_NoProxyBypass(t *testing.T) {
	proxy := NewProxyFunc("http://proxy:3128", "", "internal.example, localhost")

	check := func(rawURL string) *url.URL {
		t.Helper()
		u, _ := url.Parse(rawURL)
		got, err := proxy(&http.Request{URL: u})
		if err != nil {
			t.Fatalf("proxy(%s) failed: %v", rawURL, err)
		}
		return got
	}

	if got := check("http://api.internal.example/v1"); got != nil {
		t.Errorf("Expected bypass for internal host, got %v", got)
	}
	if got := check("http://localhost:11434"); got != nil {
		t.Errorf("Expected bypass for localhost, got %v", got)
	}
	if got := check("http://api.openai.com/v1"); got == nil || got.Host != "proxy:3128" {
		t.Errorf("Expected proxy for external host, got %v", got)
	}
}

func TestToGenaiSchema(t *testing.T) {
	schema := testSchema(t)
	got := toGenaiSchema(schema.Definition)

	if got.Type != genai.TypeObject {
		t.Fatalf("Expected object, got %s", got.Type)
	}
	want := []string{"lead_diagnosis", "rationale", "citations"}
	if len(got.PropertyOrdering) != len(want) {
		t.Fatalf("Expected ordering %v, got %v", want, got.PropertyOrdering)
	}
	for i := range want {
		if got.PropertyOrdering[i] != want[i] {
			t.Errorf("ordering[%d] = %s, want %s", i, got.PropertyOrdering[i], want[i])
		}
	}

	citations := got.Properties["citations"]
	if citations == nil || citations.Type != genai.TypeArray {
		t.Fatalf("Expected citations array, got %+v", citations)
	}
	if citations.Items == nil || citations.Items.Type != genai.TypeString {
		t.Errorf("Expected string items, got %+v", citations.Items)
	}

	scalar := toGenaiSchema(jsonschema.Definition{Type: jsonschema.Integer})
	if scalar.Type != genai.TypeInteger {
		t.Errorf("Expected integer, got %s", scalar.Type)
	}
}
