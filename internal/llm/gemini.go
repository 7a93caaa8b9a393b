package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai/jsonschema"
	genai "google.golang.org/genai"
)

// GeminiProvider implements the Provider interface for Google Gemini models
type GeminiProvider struct {
	cli    *genai.Client
	config Config
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, config Config) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	cli, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &GeminiProvider{cli: cli, config: config}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable checks that the configured model can be resolved
func (p *GeminiProvider) IsAvailable(ctx context.Context) bool {
	model, _ := p.config.resolve(Request{}, "gemini-2.0-flash")
	if _, err := p.cli.Models.Get(ctx, model, nil); err != nil {
		fmt.Fprintf(os.Stderr, "Gemini API check failed: %v\n", err)
		return false
	}
	return true
}

// Complete generates a response; schemas become a native response schema
func (p *GeminiProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	model, maxTokens := p.config.resolve(req, "gemini-2.0-flash")

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	temperature := float32(0)
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(maxTokens),
	}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = toGenaiSchema(req.Schema.Definition)
	}

	resp, err := p.cli.Models.GenerateContent(ctx, model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: req.Prompt}}}},
		cfg,
	)
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response from Gemini: %w", ErrNoContent)
	}

	candidate := resp.Candidates[0]
	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}
	content := strings.TrimSpace(text.String())
	if content == "" {
		return nil, ErrNoContent
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return &Response{
		ID:           uuid.NewString(),
		Content:      content,
		Model:        model,
		TokensUsed:   tokens,
		Completed:    candidate.FinishReason == "" || candidate.FinishReason == genai.FinishReasonStop,
		FinishReason: string(candidate.FinishReason),
	}, nil
}

// toGenaiSchema converts a JSON schema definition to Gemini's schema type.
// Property order follows the definition's required list.
func toGenaiSchema(def jsonschema.Definition) *genai.Schema {
	s := &genai.Schema{Description: def.Description}

	switch def.Type {
	case jsonschema.Object:
		s.Type = genai.TypeObject
		s.Properties = make(map[string]*genai.Schema, len(def.Properties))
		for name, prop := range def.Properties {
			s.Properties[name] = toGenaiSchema(prop)
		}
		s.Required = append([]string(nil), def.Required...)
		s.PropertyOrdering = append([]string(nil), def.Required...)
	case jsonschema.Array:
		s.Type = genai.TypeArray
		if def.Items != nil {
			s.Items = toGenaiSchema(*def.Items)
		}
	case jsonschema.Integer:
		s.Type = genai.TypeInteger
	case jsonschema.Number:
		s.Type = genai.TypeNumber
	case jsonschema.Boolean:
		s.Type = genai.TypeBoolean
	default:
		s.Type = genai.TypeString
		s.Enum = append([]string(nil), def.Enum...)
	}

	return s
}
