package model

import "time"

// Config is the complete dxcite configuration
type Config struct {
	Condition    Condition          `yaml:"condition" mapstructure:"condition"` // Default experimental arm
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Data         DataConfig         `yaml:"data" mapstructure:"data"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
}

// LLMConfig configures the AI collaborator
type LLMConfig struct {
	Provider    string   `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, gemini, "" (disabled)
	Model       string   `yaml:"model" mapstructure:"model"`
	Models      []string `yaml:"models" mapstructure:"models"` // Models offered when a session is set up
	APIKey      string   `yaml:"-" mapstructure:"api_key"`     // Never written to config files
	BaseURL     string   `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int      `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens   int      `yaml:"max_tokens" mapstructure:"max_tokens"`
	MaxAttempts int      `yaml:"max_attempts" mapstructure:"max_attempts"`
	HTTPProxy   string   `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy  string   `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy     string   `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig configures the collaborator response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
	ParseSize int           `yaml:"parse_size" mapstructure:"parse_size"` // Memoized parse results
}

// DataConfig locates the case descriptions
type DataConfig struct {
	Dir   string `yaml:"dir" mapstructure:"dir"`
	Cases int    `yaml:"cases" mapstructure:"cases"` // Number of cases in the study
}

// OutputConfig configures rendering and result files
type OutputConfig struct {
	Dir         string `yaml:"dir" mapstructure:"dir"`
	MarkerStyle string `yaml:"marker_style" mapstructure:"marker_style"` // html, streamlit, plain
	Verbose     bool   `yaml:"-" mapstructure:"verbose"`
}

// RateLimitingConfig bounds collaborator request rate
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig configures offline replay
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Condition: ConditionControl,
		LLM: LLMConfig{
			Provider:    "",
			Model:       "gpt-4o",
			Models:      []string{"gpt-3.5-turbo", "gpt-4-turbo", "gpt-4o"},
			Timeout:     60,
			MaxTokens:   1500,
			MaxAttempts: 3,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".dxcite/cache",
			MemoryTTL: time.Hour,
			DiskTTL:   30 * 24 * time.Hour,
			ParseSize: 256,
		},
		Data: DataConfig{
			Dir:   "data",
			Cases: 3,
		},
		Output: OutputConfig{
			Dir:         "results",
			MarkerStyle: "html",
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 1,
			BurstSize:         3,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
	}
}
