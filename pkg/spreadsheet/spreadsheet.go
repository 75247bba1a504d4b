// Package spreadsheet reads the calculator's exported workbook.
package spreadsheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/iwvelando/emi-reconcile/pkg/reconcile"
)

// SourceName labels records produced by this package.
const SourceName = "spreadsheet"

// Workbook wraps an open excelize file.
type Workbook struct {
	file   *excelize.File
	logger *zap.Logger
}

// Open opens the workbook at path.
func Open(path string, logger *zap.Logger) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	return newWorkbook(f, logger), nil
}

// OpenReader reads a workbook from r.
func OpenReader(r io.Reader, logger *zap.Logger) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	return newWorkbook(f, logger), nil
}

func newWorkbook(f *excelize.File, logger *zap.Logger) *Workbook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workbook{file: f, logger: logger}
}

// Sheets lists the sheet names in workbook order.
func (w *Workbook) Sheets() []string {
	return w.file.GetSheetList()
}

// SheetName returns requested when the workbook has it, otherwise the first
// sheet.
func (w *Workbook) SheetName(requested string) (string, error) {
	sheets := w.file.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	for _, name := range sheets {
		if name == requested {
			return name, nil
		}
	}
	w.logger.Debug("sheet not found, using first sheet",
		zap.String("op", "spreadsheet.SheetName"),
		zap.String("requested", requested),
		zap.String("using", sheets[0]))
	return sheets[0], nil
}

// Rows returns the cell texts of the requested sheet, falling back to the
// first sheet when it is absent.
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	name, err := w.SheetName(sheet)
	if err != nil {
		return nil, err
	}
	rows, err := w.file.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}
	return rows, nil
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// LabelValues folds rows into a label to value map. The first two populated
// cells of a row form the pair; shorter rows are skipped and a repeated label
// keeps its last value.
func LabelValues(rows [][]string) map[string]string {
	values := make(map[string]string)
	for _, row := range rows {
		var populated []string
		for _, cell := range row {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			populated = append(populated, cell)
			if len(populated) == 2 {
				break
			}
		}
		if len(populated) < 2 {
			continue
		}
		values[strings.TrimSpace(populated[0])] = strings.TrimSpace(populated[1])
	}
	return values
}

// Record folds rows into a single record.
func Record(source string, rows [][]string) reconcile.Record {
	if source == "" {
		source = SourceName
	}
	return reconcile.NewRecord(source, "", LabelValues(rows))
}
