package reconcile

import (
	"go.uber.org/multierr"
)

// SeriesReport holds one report per aligned record pair.
type SeriesReport struct {
	Left      string    `json:"left"`
	Right     string    `json:"right"`
	Alignment Alignment `json:"alignment"`
	Reports   []Report  `json:"reports"`
}

// Passed reports whether every record pair passed.
func (s *SeriesReport) Passed() bool {
	for _, r := range s.Reports {
		if !r.Passed() {
			return false
		}
	}
	return true
}

// Failures returns the reports holding at least one failing verdict.
func (s *SeriesReport) Failures() []Report {
	var failed []Report
	for _, r := range s.Reports {
		if !r.Passed() {
			failed = append(failed, r)
		}
	}
	return failed
}

// Err combines the errors of every failing report.
func (s *SeriesReport) Err() error {
	var err error
	for _, r := range s.Reports {
		err = multierr.Append(err, r.Err())
	}
	return err
}

// ReconcileSeries aligns left against right and reconciles each pair with
// left as the expected side. Alignment errors are returned without a report.
func ReconcileSeries(left, right []Record, specs []FieldSpec, alignment Alignment) (*SeriesReport, error) {
	if alignment == "" {
		alignment = ByKey
	}
	pairs, err := Align(left, right, alignment)
	if err != nil {
		return nil, err
	}

	report := &SeriesReport{
		Left:      sourceOf(left, "left"),
		Right:     sourceOf(right, "right"),
		Alignment: alignment,
		Reports:   make([]Report, 0, len(pairs)),
	}
	for _, p := range pairs {
		report.Reports = append(report.Reports, Reconcile(p.Left, p.Right, specs))
	}
	return report, nil
}
