package cli

import (
	"fmt"

	"github.com/ppiankov/dxcite/internal/model"
	"github.com/ppiankov/dxcite/internal/session"
	"github.com/spf13/cobra"
)

var exportOut string

// exportCmd writes result records to a spreadsheet
var exportCmd = &cobra.Command{
	Use:   "export [record.json...]",
	Short: "Export result records to XLSX",
	Long: `Export collects result records into one workbook for analysis: every
record field as a row, plus one row per AI interaction.

With no arguments every record in the output directory is exported.

Example:
  dxcite export --out study.xlsx
  dxcite export results/results_1b4e28ba.json --out one.xlsx`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "results.xlsx", "output workbook path")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
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

	records := make([]*model.Record, 0, len(paths))
	for _, p := range paths {
		r, err := session.Load(p)
		if err != nil {
			return err
		}
		records = append(records, r)
	}

	if err := session.ExportXLSX(exportOut, records); err != nil {
		return err
	}
	fmt.Printf("✓ Exported %d records to %s\n", len(records), exportOut)
	return nil
}
