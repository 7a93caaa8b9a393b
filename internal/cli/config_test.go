package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/dxcite/internal/model"
	"github.com/spf13/viper"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	viper.SetEnvPrefix("DXCITE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	registerDefaults()
	t.Cleanup(viper.Reset)
}

func TestLoadConfig_Defaults(t *testing.T) {
	resetViper(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	want := model.DefaultConfig()
	if cfg.LLM.Model != want.LLM.Model {
		t.Errorf("expected model %s, got %s", want.LLM.Model, cfg.LLM.Model)
	}
	if cfg.Cache.DiskTTL != want.Cache.DiskTTL {
		t.Errorf("expected disk TTL %v, got %v", want.Cache.DiskTTL, cfg.Cache.DiskTTL)
	}
	if cfg.Condition != model.ConditionControl {
		t.Errorf("expected control condition, got %s", cfg.Condition)
	}
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DXCITE_LLM_PROVIDER", "ollama")
	t.Setenv("DXCITE_LLM_MODEL", "llama3.1:8b")
	t.Setenv("DXCITE_CONDITION", "differential")
	t.Setenv("DXCITE_CACHE_MEMORY_TTL", "5m")
	t.Setenv("DXCITE_LLM_API_KEY", "secret")
	resetViper(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.LLM.Provider != "ollama" || cfg.LLM.Model != "llama3.1:8b" {
		t.Errorf("unexpected LLM config: %+v", cfg.LLM)
	}
	if cfg.Condition != model.ConditionDifferential {
		t.Errorf("expected differential, got %s", cfg.Condition)
	}
	if cfg.Cache.MemoryTTL != 5*time.Minute {
		t.Errorf("expected 5m memory TTL, got %v", cfg.Cache.MemoryTTL)
	}
	if cfg.LLM.APIKey != "secret" {
		t.Errorf("expected API key from environment")
	}
}

func TestResolveCondition_FlagWins(t *testing.T) {
	cfg := model.DefaultConfig()

	conditionName = "multi-hypothesis"
	t.Cleanup(func() { conditionName = "" })

	c, err := resolveCondition(cfg)
	if err != nil {
		t.Fatalf("resolveCondition failed: %v", err)
	}
	if c != model.ConditionMultiHypothesis {
		t.Errorf("expected multi_hypothesis, got %s", c)
	}
}

func TestParseHypotheses(t *testing.T) {
	h := parseHypotheses([]string{"*Pneumonia", "Bronchitis", " * Asthma "})

	selected := h.Selected()
	if len(selected) != 2 || selected[0] != "Pneumonia" || selected[1] != "Asthma" {
		t.Errorf("unexpected selection: %v", selected)
	}
	if texts := h.Texts(); len(texts) != 3 || texts[1] != "Bronchitis" {
		t.Errorf("unexpected texts: %v", texts)
	}
}
