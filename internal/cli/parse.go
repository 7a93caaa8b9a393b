package cli

import (
	"encoding/json"
	"fmt"

	"github.com/ppiankov/dxcite/internal/citation"
	"github.com/spf13/cobra"
)

var (
	parseResponse string
	parseJSON     bool
)

// parseCmd parses a saved collaborator response
var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse a collaborator response into citations",
	Long: `Parse reads a raw collaborator response and prints the annotated message
and the numbered citation list. The response shape follows the condition:
free text with <cite> quotes, hypothesis evidence JSON, or a recommendation.

Example:
  dxcite parse -c multi_hypothesis -H "*Pneumonia" -H "*Bronchitis" --response answer.json
  cat answer.txt | dxcite parse -c differential --response - --json`,
	Args: cobra.NoArgs,
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	addCaseFlags(parseCmd)
	addStyleFlag(parseCmd)
	parseCmd.Flags().StringVar(&parseResponse, "response", "-", "response file (- for stdin)")
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print the parse result as JSON")
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	condition, err := resolveCondition(cfg)
	if err != nil {
		return err
	}
	style, err := resolveStyle(cfg)
	if err != nil {
		return err
	}

	response, err := readInput(parseResponse)
	if err != nil {
		return err
	}

	hypotheses := parseHypotheses(hypothesisArgs)
	parsed, err := citation.Parse(response, hypotheses.Texts(), hypotheses.Selected(), condition, style)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	for _, w := range parsed.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %s\n", w)
	}

	if parseJSON {
		data, err := json.MarshalIndent(parsed, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println(parsed.Message)
	fmt.Println(citation.FormatCitations(parsed.Citations))
	return nil
}
