package scenario

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/iwvelando/emi-reconcile/pkg/loans"
	"github.com/iwvelando/emi-reconcile/pkg/reconcile"
)

// Section names, in the order a run evaluates them.
const (
	SectionSources       = "sources"
	SectionSliders       = "sliders"
	SectionSummary       = "summary"
	SectionSchedule      = "schedule"
	SectionTable         = "table"
	SectionChartTable    = "chart-table"
	SectionScheduleTable = "schedule-table"
	SectionSpreadsheet   = "spreadsheet"
)

// SectionError is a failure that stopped one section of a run.
type SectionError struct {
	Section string `json:"section"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

func (e SectionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Section, e.Err)
}

func (e SectionError) Unwrap() error {
	return e.Err
}

// Result collects everything one run produced. Sections whose sources were
// not supplied stay nil.
type Result struct {
	RunID           string                  `json:"runId"`
	Name            string                  `json:"name"`
	Parameters      loans.Parameters        `json:"parameters"`
	StartMonth      string                  `json:"startMonth"`
	Expected        loans.Result            `json:"expected"`
	SliderPositions []float64               `json:"sliderPositions,omitempty"`
	Schedule        []loans.YearlyRow       `json:"schedule,omitempty"`
	Summary         *reconcile.Report       `json:"summary,omitempty"`
	ChartTable      *reconcile.SeriesReport `json:"chartTable,omitempty"`
	ScheduleTable   *reconcile.SeriesReport `json:"scheduleTable,omitempty"`
	Spreadsheet     *reconcile.Report       `json:"spreadsheet,omitempty"`
	Errors          []SectionError          `json:"errors,omitempty"`
}

func (r *Result) fail(section string, err error) {
	r.Errors = append(r.Errors, SectionError{Section: section, Message: err.Error(), Err: err})
}

// SectionErr returns the error recorded for section, if any.
func (r *Result) SectionErr(section string) error {
	for _, e := range r.Errors {
		if e.Section == section {
			return e
		}
	}
	return nil
}

// Passed reports whether no section failed and every report passed.
func (r *Result) Passed() bool {
	return r.Err() == nil
}

// Err combines section errors and report failures.
func (r *Result) Err() error {
	var err error
	for _, e := range r.Errors {
		err = multierr.Append(err, e)
	}
	if r.Summary != nil {
		err = multierr.Append(err, wrapSection(SectionSummary, r.Summary.Err()))
	}
	if r.ChartTable != nil {
		err = multierr.Append(err, wrapSection(SectionChartTable, r.ChartTable.Err()))
	}
	if r.ScheduleTable != nil {
		err = multierr.Append(err, wrapSection(SectionScheduleTable, r.ScheduleTable.Err()))
	}
	if r.Spreadsheet != nil {
		err = multierr.Append(err, wrapSection(SectionSpreadsheet, r.Spreadsheet.Err()))
	}
	return err
}

func wrapSection(section string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", section, err)
}
