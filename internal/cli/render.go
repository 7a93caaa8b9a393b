package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/dxcite/internal/model"
	"github.com/ppiankov/dxcite/internal/session"
	"github.com/spf13/cobra"
)

var renderOut string

// renderCmd writes saved interactions as HTML pages
var renderCmd = &cobra.Command{
	Use:   "render <record.json>",
	Short: "Render saved interactions as HTML",
	Long: `Render writes one standalone HTML page per AI interaction in a result
record, with the highlighted case, the annotated answer and the citations.

Example:
  dxcite render results/results_1b4e28ba.json --out pages/`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVar(&renderOut, "out", "", "output directory (default: next to the record)")
}

func runRender(cmd *cobra.Command, args []string) error {
	record, err := session.Load(args[0])
	if err != nil {
		return err
	}

	dir := renderOut
	if dir == "" {
		dir = filepath.Dir(args[0])
	}

	keys := record.AIHelpKeys()
	if len(keys) == 0 {
		fmt.Fprintf(os.Stderr, "No AI interactions in %s\n", args[0])
		return nil
	}

	for _, key := range keys {
		var entry model.AIHelp
		if err := record.Decode(key, &entry); err != nil {
			return err
		}

		title := strings.ReplaceAll(key, "_", " ")
		path := filepath.Join(dir, record.ID()+"_"+key+".html")
		if err := writeOutput(path, session.RenderHTML(title, session.Markdown(title, &entry))); err != nil {
			return err
		}
		fmt.Printf("✓ %s\n", path)
	}
	return nil
}
