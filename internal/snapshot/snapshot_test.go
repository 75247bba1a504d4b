package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iwvelando/emi-reconcile/pkg/constants"
	"github.com/iwvelando/emi-reconcile/pkg/loans"
	"github.com/iwvelando/emi-reconcile/pkg/spreadsheet"
)

const runYAML = `
name: thirty-five lakh
parameters:
  principal: 3500000
  annualRatePercent: 6.5
  tenure: 78
  tenureUnit: Months
startMonth: "2025-07"
summary:
  emi: "₹ 55,136"
chart:
  - name: Balance
    tooltips:
      - "Year : 2025 Balance : ₹ 10 Loan Paid To Date : 50.00%"
table:
  file: table.html
spreadsheet: emi.xlsx
`

const tableHTML = `<table><tr class="yearlypaymentdetails"><td>2025</td><td></td><td></td><td></td><td>₹ 10</td><td>50.00%</td></tr></table>`

func TestLoadResolvesRelativeFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run.yaml"), []byte(runYAML), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "table.html"), []byte(tableHTML), 0600))

	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", constants.LabelLoanAmount))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "35,00,000"))
	require.NoError(t, f.SaveAs(filepath.Join(dir, "emi.xlsx")))
	require.NoError(t, f.Close())

	run, err := Load(filepath.Join(dir, "run.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "thirty-five lakh", run.Name)
	assert.Equal(t, loans.Months, run.Parameters.TenureUnit)
	assert.Equal(t, 78.0, run.Parameters.TenureMonths())
	assert.Equal(t, "₹ 55,136", run.Summary[FieldEMI])
	assert.True(t, run.HasChart())
	assert.True(t, run.HasTable())
	assert.True(t, run.HasSpreadsheet())

	tp, err := run.TableProvider()
	require.NoError(t, err)
	rows, err := tp.Rows(context.Background(), constants.DefaultRowSelector)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "₹ 10", rows[0][4])

	cp, err := run.ChartProvider()
	require.NoError(t, err)
	series, err := cp.Series(context.Background())
	require.NoError(t, err)
	require.Len(t, series, 1)
	assert.Len(t, series[0].Points(), 1)

	wb, err := run.Workbook(nil)
	require.NoError(t, err)
	defer wb.Close()
	sheetRows, err := wb.Rows(constants.DefaultSheetName)
	require.NoError(t, err)
	assert.Equal(t, "35,00,000", spreadsheet.LabelValues(sheetRows)[constants.LabelLoanAmount])
}

func TestLoadNamesRunAfterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario-2.yaml")
	require.NoError(t, os.WriteFile(path, []byte("parameters:\n  principal: 100\n  annualRatePercent: 5\n  tenure: 1\n"), 0600))

	run, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "scenario-2", run.Name)
	assert.Equal(t, loans.Years, run.Parameters.TenureUnit)
}

func TestParseInlineTable(t *testing.T) {
	run, err := Parse([]byte("table:\n  html: '" + tableHTML + "'\n"))
	require.NoError(t, err)

	tp, err := run.TableProvider()
	require.NoError(t, err)
	rows, err := tp.Rows(context.Background(), "tr")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("parameters:\n  principle: 100\n"))
	assert.Error(t, err)
}

func TestParseRejectsBadTenureUnit(t *testing.T) {
	_, err := Parse([]byte("parameters:\n  tenureUnit: fortnights\n"))
	assert.ErrorIs(t, err, loans.ErrInvalidParameter)
}

func TestMissingSources(t *testing.T) {
	run, err := Parse([]byte("name: bare\n"))
	require.NoError(t, err)

	_, err = run.ChartProvider()
	assert.ErrorIs(t, err, ErrNoSource)
	_, err = run.TableProvider()
	assert.ErrorIs(t, err, ErrNoSource)
	_, err = run.Workbook(nil)
	assert.ErrorIs(t, err, ErrNoSource)
}
