package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/dxcite/internal/cache"
)

// NewProvider creates a new LLM provider based on configuration
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "gemini", "google":
		return NewGeminiProvider(context.Background(), config)

	case "":
		// No provider configured - assistance disabled
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama, gemini)", config.Provider)
	}
}

// APIKeyEnv returns the environment variable holding the provider's API key
func APIKeyEnv(provider string) string {
	switch strings.ToLower(provider) {
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic", "claude":
		return "ANTHROPIC_API_KEY"
	case "gemini", "google":
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// LoadAPIKey fills in the API key (and Ollama base URL) from the environment
// when the configuration does not carry one.
func LoadAPIKey(config *Config) error {
	if strings.EqualFold(config.Provider, "ollama") {
		if config.BaseURL == "" {
			config.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
		return nil
	}

	env := APIKeyEnv(config.Provider)
	if env == "" || config.APIKey != "" {
		return nil
	}
	config.APIKey = os.Getenv(env)
	if config.APIKey == "" {
		return fmt.Errorf("%s environment variable not set", env)
	}
	return nil
}

// Options configures the wrappers Build stacks around a provider
type Options struct {
	Cache             cache.Cache // nil disables response caching
	CacheTTL          time.Duration
	RequestsPerSecond float64 // <= 0 disables rate limiting
	Burst             int
}

// Build creates the configured provider wrapped, outermost first, in the
// response cache, the retry policy and the rate limiter.
func Build(config Config, opts Options) (Provider, error) {
	p, err := NewProvider(config)
	if err != nil || p == nil {
		return nil, err
	}

	if opts.RequestsPerSecond > 0 {
		p = NewRateLimited(p, NewLimiter(opts.RequestsPerSecond, opts.Burst))
	}
	p = NewRetrying(p, config.MaxAttempts, 500*time.Millisecond)
	if opts.Cache != nil {
		p = NewCached(p, opts.Cache, opts.CacheTTL).WithModel(config.Model)
	}
	return p, nil
}
