// Package snapshot loads captured calculator runs: the inputs a browser session
// entered together with everything the page displayed for them.
package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/iwvelando/emi-reconcile/pkg/chart"
	"github.com/iwvelando/emi-reconcile/pkg/loans"
	"github.com/iwvelando/emi-reconcile/pkg/spreadsheet"
	"github.com/iwvelando/emi-reconcile/pkg/table"
)

// ErrNoSource is returned when a run does not capture the requested source.
var ErrNoSource = errors.New("source not captured")

// Summary field names, matching the on-screen summary.
const (
	FieldLoanAmount    = "loanAmount"
	FieldInterestRate  = "interestRate"
	FieldLoanTenure    = "loanTenure"
	FieldEMI           = "emi"
	FieldTotalInterest = "totalInterest"
	FieldTotalPayment  = "totalPayment"
)

// TableCapture holds the breakdown table markup, inline or in a file.
type TableCapture struct {
	HTML string `yaml:"html,omitempty" json:"html,omitempty"`
	File string `yaml:"file,omitempty" json:"file,omitempty"`
}

// Run is one captured calculator session.
type Run struct {
	Name        string               `yaml:"name" json:"name"`
	Parameters  loans.Parameters     `yaml:"parameters" json:"parameters"`
	StartMonth  string               `yaml:"startMonth,omitempty" json:"startMonth,omitempty"`
	Summary     map[string]string    `yaml:"summary,omitempty" json:"summary,omitempty"`
	Chart       []chart.StaticSeries `yaml:"chart,omitempty" json:"chart,omitempty"`
	Table       *TableCapture        `yaml:"table,omitempty" json:"table,omitempty"`
	Spreadsheet string               `yaml:"spreadsheet,omitempty" json:"spreadsheet,omitempty"`

	dir string
}

// Load reads a run file. Relative file references inside it resolve against
// the file's directory.
func Load(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}
	run, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	run.dir = filepath.Dir(path)
	if run.Name == "" {
		run.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return run, nil
}

// Parse decodes a run from YAML. Unknown keys are rejected.
func Parse(data []byte) (*Run, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var run Run
	if err := dec.Decode(&run); err != nil {
		return nil, fmt.Errorf("failed to parse run file: %w", err)
	}
	if run.Parameters.TenureUnit == "" {
		run.Parameters.TenureUnit = loans.Years
	} else {
		unit, err := loans.ParseTenureUnit(string(run.Parameters.TenureUnit))
		if err != nil {
			return nil, err
		}
		run.Parameters.TenureUnit = unit
	}
	return &run, nil
}

func (r *Run) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || r.dir == "" {
		return path
	}
	return filepath.Join(r.dir, path)
}

// HasChart reports whether any chart series was captured.
func (r *Run) HasChart() bool { return len(r.Chart) > 0 }

// HasTable reports whether table markup was captured.
func (r *Run) HasTable() bool {
	return r.Table != nil && (r.Table.HTML != "" || r.Table.File != "")
}

// HasSpreadsheet reports whether an exported workbook was captured.
func (r *Run) HasSpreadsheet() bool { return r.Spreadsheet != "" }

// ChartProvider serves the captured tooltips.
func (r *Run) ChartProvider() (chart.Provider, error) {
	if !r.HasChart() {
		return nil, fmt.Errorf("%w: chart", ErrNoSource)
	}
	return chart.NewStaticProvider(r.Chart...), nil
}

// TableProvider parses the captured table markup.
func (r *Run) TableProvider() (table.Provider, error) {
	if !r.HasTable() {
		return nil, fmt.Errorf("%w: table", ErrNoSource)
	}
	var (
		provider *table.HTMLProvider
		err      error
	)
	if r.Table.HTML != "" {
		provider, err = table.NewHTMLProviderFromString(r.Table.HTML)
	} else {
		var f *os.File
		if f, err = os.Open(r.resolve(r.Table.File)); err != nil {
			return nil, fmt.Errorf("failed to open table markup: %w", err)
		}
		defer f.Close()
		provider, err = table.NewHTMLProvider(f)
	}
	if err != nil {
		return nil, err
	}
	return provider, nil
}

// Workbook opens the captured spreadsheet. The caller closes it.
func (r *Run) Workbook(logger *zap.Logger) (*spreadsheet.Workbook, error) {
	if !r.HasSpreadsheet() {
		return nil, fmt.Errorf("%w: spreadsheet", ErrNoSource)
	}
	return spreadsheet.Open(r.resolve(r.Spreadsheet), logger)
}
