package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/ppiankov/dxcite/internal/citation"
	"github.com/ppiankov/dxcite/internal/model"
	"github.com/ppiankov/dxcite/internal/session"
	"github.com/spf13/cobra"
)

var replayWorkers int

// replayCmd re-parses saved interactions
var replayCmd = &cobra.Command{
	Use:   "replay [record.json...]",
	Short: "Re-parse saved interactions and summarise citations",
	Long: `Replay loads result records and re-parses every saved AI response with the
current parser, without contacting the collaborator. It reports interactions
whose citations or annotated message no longer match what was recorded, and
summarises citations per response.

With no arguments every record in the output directory is replayed.

Example:
  dxcite replay
  dxcite replay results/results_*.json --workers 8`,
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	addStyleFlag(replayCmd)
	replayCmd.Flags().IntVar(&replayWorkers, "workers", 0, "concurrent workers (default from config)")
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	style, err := resolveStyle(cfg)
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		paths, err = session.NewSink(cfg.Output.Dir).List()
		if err != nil {
			return err
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("no result records found in %s", cfg.Output.Dir)
	}

	workers := replayWorkers
	if workers <= 0 {
		workers = cfg.Concurrency.Workers
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Replaying %d records with %d workers\n\n", len(paths), workers)
	}

	results, summary := session.Replay(context.Background(), paths, citation.NewParser(style, cfg.Cache.ParseSize), workers)

	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(os.Stderr, "✗ %s %s: %v\n", r.Path, r.Key, r.Err)
		case !r.Consistent:
			fmt.Printf("≠ %s %s: %d citations now, %d recorded\n", r.Session, r.Key, len(r.Citations), len(r.Stored))
		case cfg.Output.Verbose:
			fmt.Printf("✓ %s %s: %d citations\n", r.Session, r.Key, len(r.Citations))
		}
	}

	fmt.Println()
	fmt.Printf("Records:       %d\n", summary.Records)
	fmt.Printf("Responses:     %d\n", summary.Responses)
	fmt.Printf("Failed:        %d\n", summary.Failed)
	fmt.Printf("Inconsistent:  %d\n", summary.Inconsistent)
	fmt.Printf("Citations:     mean %.2f, median %.1f, max %.0f\n", summary.MeanCitations, summary.MedianCitations, summary.MaxCitations)

	conditions := make([]string, 0, len(summary.PerCondition))
	for c := range summary.PerCondition {
		conditions = append(conditions, string(c))
	}
	sort.Strings(conditions)
	for _, c := range conditions {
		fmt.Printf("  %-24s %d\n", c, summary.PerCondition[model.Condition(c)])
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d interactions could not be replayed", summary.Failed)
	}
	return nil
}
