package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ppiankov/dxcite/internal/casefile"
	"github.com/ppiankov/dxcite/internal/prompt"
	"github.com/spf13/cobra"
)

var promptWithSchema bool

// promptCmd prints what would be sent to the collaborator
var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the prompt and response schema for a case",
	Long: `Prompt builds the collaborator prompt for a case and hypothesis table
without contacting the collaborator. Invalid hypothesis tables are reported
exactly as the participant would see them.

Example:
  dxcite prompt -c multi_hypothesis -n 0 -H "*Pneumonia" -H "*Bronchitis" -H Asthma
  dxcite prompt -c recommendations_driven -n 1 -H Pneumonia -H "Heart failure" --schema`,
	Args: cobra.NoArgs,
	RunE: runPrompt,
}

func init() {
	rootCmd.AddCommand(promptCmd)
	addCaseFlags(promptCmd)
	promptCmd.Flags().BoolVar(&promptWithSchema, "schema", false, "also print the JSON response schema")
}

func runPrompt(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	condition, err := resolveCondition(cfg)
	if err != nil {
		return err
	}

	hypotheses := parseHypotheses(hypothesisArgs)
	if err := statusError(prompt.Validate(condition, hypotheses)); err != nil {
		return err
	}

	caseText, err := casefile.NewStore(cfg.Data.Dir, time.Hour).Get(caseIndex)
	if err != nil {
		return err
	}

	userPrompt, err := prompt.BuildPrompt(condition, caseText, hypotheses)
	if err != nil {
		return err
	}

	fmt.Println("--- system ---")
	fmt.Println(prompt.Instructions(condition))
	fmt.Println("--- user ---")
	fmt.Println(userPrompt)

	if promptWithSchema {
		schema, err := prompt.BuildSchema(condition, hypotheses)
		if err != nil {
			return err
		}
		fmt.Println("--- schema ---")
		if schema == nil {
			fmt.Println("(free text, no schema)")
			return nil
		}
		data, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal schema: %w", err)
		}
		fmt.Printf("%s (strict: %v)\n%s\n", schema.Name, schema.Strict, data)
	}
	return nil
}

// statusError turns a validation failure into the participant-facing message
func statusError(err error) error {
	var vErr *prompt.ValidationError
	if errors.As(err, &vErr) {
		return fmt.Errorf("%s (%w)", vErr.Message(), err)
	}
	return err
}
