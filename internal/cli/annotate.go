package cli

import (
	"fmt"
	"time"

	"github.com/ppiankov/dxcite/internal/casefile"
	"github.com/ppiankov/dxcite/internal/citation"
	"github.com/spf13/cobra"
)

var (
	annotateCitations []string
	annotateFile      string
)

// annotateCmd highlights citations in a case description
var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Highlight citations in a case description",
	Long: `Annotate wraps every case-insensitive occurrence of each citation in the
case description with a numbered marker. Citations are numbered in the
order given.

Example:
  dxcite annotate -n 0 --citation "productive cough" --citation "39.2 °C"
  dxcite annotate --file case.txt --citation fever --style plain`,
	Args: cobra.NoArgs,
	RunE: runAnnotate,
}

func init() {
	rootCmd.AddCommand(annotateCmd)
	annotateCmd.Flags().IntVarP(&caseIndex, "case", "n", 0, "case index (case_{n}.txt in the data directory)")
	annotateCmd.Flags().StringVar(&annotateFile, "file", "", "read the case description from a file instead")
	annotateCmd.Flags().StringArrayVar(&annotateCitations, "citation", nil, "citation to highlight (repeatable)")
	addStyleFlag(annotateCmd)
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	style, err := resolveStyle(cfg)
	if err != nil {
		return err
	}

	var caseText string
	if annotateFile != "" {
		caseText, err = readInput(annotateFile)
	} else {
		caseText, err = casefile.NewStore(cfg.Data.Dir, time.Hour).Get(caseIndex)
	}
	if err != nil {
		return err
	}

	fmt.Println(citation.AnnotateCase(caseText, annotateCitations, style))
	return nil
}
