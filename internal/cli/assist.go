package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ppiankov/dxcite/internal/casefile"
	"github.com/ppiankov/dxcite/internal/citation"
	"github.com/ppiankov/dxcite/internal/llm"
	"github.com/ppiankov/dxcite/internal/model"
	"github.com/ppiankov/dxcite/internal/session"
	"github.com/spf13/cobra"
)

var (
	assistProvider string
	assistModel    string
	assistTimeout  time.Duration
	assistNoCache  bool
	assistNoSave   bool
	assistHTML     string
)

// assistCmd runs one assisted interaction end to end
var assistCmd = &cobra.Command{
	Use:   "assist",
	Short: "Ask the AI collaborator about a case and show cited help",
	Long: `Assist loads a case, validates the hypothesis table for the condition,
asks the AI collaborator, and prints the annotated answer, the numbered
citations and the case description with the citations highlighted.

The interaction is appended to a new result record in the output directory
unless --no-save is given. Identical requests are answered from the cache.

Example:
  dxcite assist -c hypothesis_driven -n 0 -H "*Pneumonia" -H Bronchitis
  dxcite assist -c differential -n 2 -H Pneumonia -H "Pulmonary embolism" --provider anthropic
  dxcite assist -c recommendations_driven -n 1 -H A -H B --html case1.html`,
	Args: cobra.NoArgs,
	RunE: runAssist,
}

func init() {
	rootCmd.AddCommand(assistCmd)
	addCaseFlags(assistCmd)
	addStyleFlag(assistCmd)

	assistCmd.Flags().StringVar(&assistProvider, "provider", "", "LLM provider: openai, anthropic, ollama, gemini (default from config)")
	assistCmd.Flags().StringVar(&assistModel, "model", "", "LLM model name (default from config)")
	assistCmd.Flags().DurationVar(&assistTimeout, "timeout", 3*time.Minute, "overall timeout including retries")
	assistCmd.Flags().BoolVar(&assistNoCache, "no-cache", false, "disable the response cache")
	assistCmd.Flags().BoolVar(&assistNoSave, "no-save", false, "do not write a result record")
	assistCmd.Flags().StringVar(&assistHTML, "html", "", "also write the answer as an HTML page")
}

func runAssist(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if assistProvider != "" {
		cfg.LLM.Provider = assistProvider
	}
	if assistModel != "" {
		cfg.LLM.Model = assistModel
	}
	if assistNoCache {
		cfg.Cache.Enabled = false
	}

	condition, err := resolveCondition(cfg)
	if err != nil {
		return err
	}
	style, err := resolveStyle(cfg)
	if err != nil {
		return err
	}

	var provider llm.Provider
	if condition.Format() != model.FormatNone {
		provider, err = buildProvider(cfg)
		if err != nil {
			return err
		}
	}

	store := casefile.NewStore(cfg.Data.Dir, cfg.Cache.MemoryTTL)
	parser := citation.NewParser(style, cfg.Cache.ParseSize)
	s := session.New(condition, provider, store, parser).WithMaxTokens(cfg.LLM.MaxTokens)
	s.SetModel(cfg.LLM.Model)

	ctx, cancel := context.WithTimeout(context.Background(), assistTimeout)
	defer cancel()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Condition: %s\n", condition.Label())
		fmt.Fprintf(os.Stderr, "Case: %d (%s)\n", caseIndex, store.Dir())
		if img, ok := store.Image(caseIndex); ok {
			fmt.Fprintf(os.Stderr, "Case image: %s\n", img)
		}
		fmt.Fprintln(os.Stderr)
	}

	hypotheses := parseHypotheses(hypothesisArgs)
	out, assistErr := s.Assist(ctx, caseIndex, hypotheses)

	if !assistNoSave {
		path, err := session.NewSink(cfg.Output.Dir).Save(s.Record())
		if err != nil {
			return err
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "✓ Result record: %s\n", path)
		}
	}

	if out != nil && out.Status != "" {
		fmt.Fprintf(os.Stderr, "✗ %s\n", out.Status)
		return assistErr
	}
	if assistErr != nil {
		return assistErr
	}

	for _, w := range out.Warnings {
		fmt.Fprintf(os.Stderr, "⚠ %s\n", w)
	}
	if cfg.Output.Verbose && out.Cached {
		fmt.Fprintf(os.Stderr, "✓ Served from cache\n")
	}

	if condition.Format() == model.FormatNone || condition.Format() == model.FormatUnknown {
		fmt.Println(out.Message)
		return nil
	}

	fmt.Println(out.Message)
	fmt.Println(out.Citations)
	fmt.Println("--- case ---")
	fmt.Println(out.CaseText)

	if assistHTML != "" {
		entry := &model.AIHelp{
			ParsedMessage: out.Message,
			Citations:     out.CitationList,
			AnnotatedCase: out.CaseText,
		}
		title := "Case " + strconv.Itoa(caseIndex+1)
		if err := writeOutput(assistHTML, session.RenderHTML(title, session.Markdown(title, entry))); err != nil {
			return err
		}
		if cfg.Output.Verbose {
			fmt.Fprintf(os.Stderr, "✓ HTML: %s\n", filepath.Clean(assistHTML))
		}
	}
	return nil
}
