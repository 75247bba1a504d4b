// Package output provides utilities for formatting and displaying reconciliation results.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/iwvelando/emi-reconcile/internal/scenario"
	"github.com/iwvelando/emi-reconcile/pkg/constants"
	"github.com/iwvelando/emi-reconcile/pkg/format"
	"github.com/iwvelando/emi-reconcile/pkg/reconcile"
	"github.com/iwvelando/emi-reconcile/pkg/validation"
)

// Status labels.
const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
)

// CSVHeader is the first row written by WriteCSV.
var CSVHeader = []string{"run", "scenario", "section", "key", "field", "mode", "expected", "actual", "status", "error"}

// WritePretty writes the human-readable report to w.
func WritePretty(w io.Writer, results []*scenario.Result) error {
	p := message.NewPrinter(language.English)
	for i, res := range results {
		if res == nil {
			continue
		}
		params := res.Parameters
		_, _ = fmt.Fprintf(w, "--- Results for scenario %s (run %s) ---\n", res.Name, res.RunID)
		_, _ = fmt.Fprintf(w, "Inputs: %s at %s for %s %s, starting %s\n",
			format.Rupees(params.Principal), format.Percent(params.AnnualRatePercent, 2),
			fmt.Sprintf("%g", params.Tenure), params.TenureUnit, res.StartMonth)
		_, _ = fmt.Fprintf(w, "Expected: EMI %s | Total interest %s | Total payment %s\n",
			format.Rupees(float64(res.Expected.EMI)),
			format.Rupees(float64(res.Expected.TotalInterest)),
			format.Rupees(float64(res.Expected.TotalPayment)))
		if len(res.SliderPositions) > 0 {
			positions := make([]string, len(res.SliderPositions))
			for j, pos := range res.SliderPositions {
				positions[j] = p.Sprintf("%.2f", pos)
			}
			_, _ = fmt.Fprintf(w, "Slider positions (px): %s\n", strings.Join(positions, ", "))
		}

		_, _ = fmt.Fprintf(w, "Section        | Key  | Field                  | Expected        | Actual          | Status\n")
		_, _ = fmt.Fprintf(w, "_______        | ___  | _____                  | ________        | ______          | ______\n")
		for _, row := range verdictRows(res) {
			_, _ = fmt.Fprintf(w, "%-14s | %-4s | %-22s | %-15s | %-15s | %s\n",
				row.section, row.key, row.verdict.Field, row.verdict.Expected, row.verdict.Actual, status(row.verdict.Passed))
			if row.verdict.Error != "" {
				_, _ = fmt.Fprintf(w, "    %s\n", row.verdict.Error)
			}
		}
		for _, e := range res.Errors {
			_, _ = fmt.Fprintf(w, "%-14s | error: %s\n", e.Section, e.Message)
		}

		verdicts, failed := counts(res)
		_, _ = p.Fprintf(w, "Overall: %s (%d verdicts, %d failed, %d section errors)\n",
			status(res.Passed()), verdicts, failed, len(res.Errors))
		if len(results) > 1 && i < len(results)-1 {
			_, _ = fmt.Fprintf(w, "\n")
		}
	}
	return nil
}

// WriteCSV writes the results in comma-separated value format.
func WriteCSV(w io.Writer, results []*scenario.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, res := range results {
		if res == nil {
			continue
		}
		for _, row := range verdictRows(res) {
			v := row.verdict
			if err := cw.Write([]string{res.RunID, res.Name, row.section, row.key, v.Field, string(v.Mode), v.Expected, v.Actual, status(v.Passed), v.Error}); err != nil {
				return err
			}
		}
		for _, e := range res.Errors {
			if err := cw.Write([]string{res.RunID, res.Name, e.Section, "", "", "", "", "", StatusFail, e.Message}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// Format writes results in the named output format.
func Format(w io.Writer, outputFormat string, results []*scenario.Result) error {
	switch outputFormat {
	case constants.OutputFormatCSV:
		return WriteCSV(w, results)
	case constants.OutputFormatPretty, "":
		return WritePretty(w, results)
	default:
		return validation.ValidateOutputFormat(outputFormat)
	}
}

type verdictRow struct {
	section string
	key     string
	verdict reconcile.Verdict
}

func verdictRows(res *scenario.Result) []verdictRow {
	var rows []verdictRow
	addReport := func(section string, report *reconcile.Report) {
		if report == nil {
			return
		}
		for _, v := range report.Verdicts {
			rows = append(rows, verdictRow{section: section, key: report.Key, verdict: v})
		}
	}
	addSeries := func(section string, series *reconcile.SeriesReport) {
		if series == nil {
			return
		}
		for i := range series.Reports {
			addReport(section, &series.Reports[i])
		}
	}

	addReport(scenario.SectionSummary, res.Summary)
	addSeries(scenario.SectionChartTable, res.ChartTable)
	addSeries(scenario.SectionScheduleTable, res.ScheduleTable)
	addReport(scenario.SectionSpreadsheet, res.Spreadsheet)
	return rows
}

func counts(res *scenario.Result) (verdicts, failed int) {
	for _, row := range verdictRows(res) {
		verdicts++
		if !row.verdict.Passed {
			failed++
		}
	}
	return verdicts, failed
}

func status(passed bool) string {
	if passed {
		return StatusPass
	}
	return StatusFail
}
