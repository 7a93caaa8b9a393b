// Package llm talks to the AI collaborator that reviews a case.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/dxcite/internal/model"
	"github.com/ppiankov/dxcite/internal/prompt"
)

// ErrNoContent is returned when the collaborator completes without a message
var ErrNoContent = errors.New("collaborator returned no message")

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends one prompt and waits for the collaborator's answer
	Complete(ctx context.Context, req Request) (*Response, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Request is one prompt for the collaborator
type Request struct {
	// Condition the prompt was built for (part of the cache key)
	Condition model.Condition

	// System carries the condition's standing instructions
	System string

	// Prompt embeds the case description and hypotheses
	Prompt string

	// Schema constrains the response; nil means free text
	Schema *prompt.Schema

	// Model overrides the configured model
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// Response is the collaborator's answer
type Response struct {
	// ID identifies the completion; it names the result record entry
	ID string `json:"id"`

	// Content is the raw message: free text or a JSON document
	Content string `json:"content"`

	// Model is the model that generated the response
	Model string `json:"model"`

	// TokensUsed tracks token consumption
	TokensUsed int `json:"tokens_used"`

	// Completed is false when the collaborator stopped early (length limit, filter)
	Completed bool `json:"completed"`

	// FinishReason is the provider's stop reason
	FinishReason string `json:"finish_reason,omitempty"`

	// Cached is set when the response was served from the cache
	Cached bool `json:"-"`
}

// PermanentError marks failures that retrying cannot fix (bad key, bad request)
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// permanentStatus reports whether an HTTP status should not be retried
func permanentStatus(code int) bool {
	switch code {
	case 400, 401, 403, 404, 422:
		return true
	default:
		return false
	}
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "gemini", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic/Gemini
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// MaxAttempts bounds retries of transient failures
	MaxAttempts int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "", // Disabled by default
		Timeout:     60,
		MaxTokens:   1500,
		MaxAttempts: 3,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(c model.LLMConfig) Config {
	return Config{
		Provider:    c.Provider,
		Model:       c.Model,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Timeout:     c.Timeout,
		MaxTokens:   c.MaxTokens,
		MaxAttempts: c.MaxAttempts,
		HTTPProxy:   c.HTTPProxy,
		HTTPSProxy:  c.HTTPSProxy,
		NoProxy:     c.NoProxy,
	}
}

// resolve fills request defaults from the provider config
func (c Config) resolve(req Request, fallbackModel string) (modelName string, maxTokens int) {
	modelName = req.Model
	if modelName == "" {
		modelName = c.Model
	}
	if modelName == "" {
		modelName = fallbackModel
	}

	maxTokens = req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1500
	}
	return modelName, maxTokens
}

// schemaInstruction spells out the schema for providers without native
// structured output
func schemaInstruction(s *prompt.Schema) (string, error) {
	if s == nil {
		return "", nil
	}
	data, err := s.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("marshal schema: %w", err)
	}
	return "\n\nRespond with a single JSON object matching this JSON schema, and nothing else:\n" + string(data), nil
}
