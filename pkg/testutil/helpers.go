// Package testutil provides common utility functions for testing.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/iwvelando/emi-reconcile/internal/scenario"
)

// FindScenario finds a result by scenario name.
// Returns nil if no result has that name.
func FindScenario(results []*scenario.Result, name string) *scenario.Result {
	for _, res := range results {
		if res != nil && res.Name == name {
			return res
		}
	}
	return nil
}

// WriteWorkbook saves rows to a single-sheet workbook under t.TempDir and
// returns its path.
func WriteWorkbook(t *testing.T, sheet string, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		t.Fatalf("failed to name sheet: %v", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("invalid row %d: %v", i, err)
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			t.Fatalf("failed to write row %d: %v", i, err)
		}
	}

	path := filepath.Join(t.TempDir(), "emi.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save workbook: %v", err)
	}
	return path
}
