package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ppiankov/dxcite/internal/cache"
	"github.com/ppiankov/dxcite/internal/citation"
	"github.com/ppiankov/dxcite/internal/llm"
	"github.com/ppiankov/dxcite/internal/model"
	"github.com/spf13/cobra"
)

// Flags shared by the commands that work on one case
var (
	conditionName  string
	caseIndex      int
	hypothesisArgs []string
	markerStyle    string
)

func addCaseFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&conditionName, "condition", "c", "", "experimental condition (default from config)")
	cmd.Flags().IntVarP(&caseIndex, "case", "n", 0, "case index (case_{n}.txt in the data directory)")
	cmd.Flags().StringArrayVarP(&hypothesisArgs, "hypothesis", "H", nil, "diagnostic hypothesis; prefix with * to select it (repeatable)")
}

func addStyleFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&markerStyle, "style", "", "citation marker style: html, streamlit, plain (default from config)")
}

// resolveCondition prefers the flag over the configured condition
func resolveCondition(cfg *model.Config) (model.Condition, error) {
	name := conditionName
	if name == "" {
		name = string(cfg.Condition)
	}
	return model.ParseCondition(name)
}

func resolveStyle(cfg *model.Config) (citation.Style, error) {
	name := markerStyle
	if name == "" {
		name = cfg.Output.MarkerStyle
	}
	return citation.ParseStyle(name)
}

func parseHypotheses(args []string) model.Hypotheses {
	out := make(model.Hypotheses, 0, len(args))
	for _, a := range args {
		out = append(out, model.ParseHypothesis(a))
	}
	return out
}

// readInput reads a file, or stdin for "-"
func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// newCache builds the response cache from configuration (nil when disabled)
func newCache(cfg *model.Config) cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}
	if cfg.Cache.Dir == "" {
		return cache.NewMemoryCache(cfg.Cache.MemoryTTL, 10*time.Minute)
	}
	return cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
}

// buildProvider creates the configured collaborator with cache, retry and
// rate limiting. A nil provider means assistance is disabled.
func buildProvider(cfg *model.Config) (llm.Provider, error) {
	if cfg.LLM.Provider == "" {
		return nil, nil
	}

	config := llm.ConfigFromModel(cfg.LLM)
	if err := llm.LoadAPIKey(&config); err != nil {
		return nil, err
	}

	p, err := llm.Build(config, llm.Options{
		Cache:             newCache(cfg),
		CacheTTL:          cfg.Cache.DiskTTL,
		RequestsPerSecond: cfg.RateLimiting.RequestsPerSecond,
		Burst:             cfg.RateLimiting.BurstSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}

	if cfg.Output.Verbose && p != nil {
		fmt.Fprintf(os.Stderr, "Using %s/%s (cache: %v)\n", p.Name(), cfg.LLM.Model, cfg.Cache.Enabled)
	}
	return p, nil
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
