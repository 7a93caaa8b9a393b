package session

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/dxcite/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	fieldsSheet = "Fields"
	helpSheet   = "AI help"
)

// ExportXLSX writes records to a workbook: every field as a row on the
// Fields sheet, and one row per assisted interaction on the AI help sheet.
func ExportXLSX(path string, records []*model.Record) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// The default sheet is renamed rather than left empty
	if err := f.SetSheetName("Sheet1", fieldsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(helpSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	if err := writeRow(f, fieldsSheet, 1, []any{"session_id", "field", "value"}); err != nil {
		return err
	}
	if err := writeRow(f, helpSheet, 1, []any{
		"session_id", "field", "condition", "model", "hypotheses",
		"selected_hypotheses", "citation_count", "citations", "raw_message",
	}); err != nil {
		return err
	}

	fieldRow, helpRow := 2, 2
	for _, r := range records {
		id := r.ID()
		for _, key := range r.Keys() {
			value, err := cellValue(r, key)
			if err != nil {
				return err
			}
			if err := writeRow(f, fieldsSheet, fieldRow, []any{id, key, value}); err != nil {
				return err
			}
			fieldRow++
		}

		for _, key := range r.AIHelpKeys() {
			var entry model.AIHelp
			if err := r.Decode(key, &entry); err != nil {
				return err
			}
			if err := writeRow(f, helpSheet, helpRow, []any{
				id, key, string(entry.Condition), entry.Model,
				strings.Join(entry.Hypotheses, "; "),
				strings.Join(entry.SelectedHypotheses, "; "),
				len(entry.Citations),
				strings.Join(entry.Citations, " | "),
				entry.RawMessage,
			}); err != nil {
				return err
			}
			helpRow++
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

// cellValue renders strings as-is and everything else as compact JSON
func cellValue(r *model.Record, key string) (string, error) {
	var raw json.RawMessage
	if err := r.Decode(key, &raw); err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	return string(raw), nil
}
