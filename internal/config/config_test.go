package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iwvelando/emi-reconcile/pkg/constants"
	"github.com/iwvelando/emi-reconcile/pkg/generator"
	"github.com/iwvelando/emi-reconcile/pkg/reconcile"
	"github.com/iwvelando/emi-reconcile/pkg/table"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	_, err := LoadConfiguration(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	conf, err := Default()
	require.NoError(t, err)
	require.NoError(t, conf.Validate())

	assert.Equal(t, generator.DefaultDomains(), conf.Domains.Domains())
	assert.Equal(t, constants.DefaultTrackWidth, conf.Sliders.TrackWidth)
	assert.Equal(t, 360.0, conf.Sliders.TenureMonths.Max)
	assert.Equal(t, table.DefaultLayout(), conf.Table.Layout())
	assert.Equal(t, constants.DefaultRowSelector, conf.Table.RowSelector)
	assert.Equal(t, constants.DefaultChartSeries, conf.Chart.Series)
	assert.Equal(t, constants.DefaultSheetName, conf.Spreadsheet.SheetName)
	assert.Equal(t, constants.DefaultDecimals, conf.Reconcile.PercentDecimals)
	assert.Nil(t, conf.Generator.Seed)
	assert.Empty(t, conf.Generator.Options())

	alignment, err := conf.Alignment()
	require.NoError(t, err)
	assert.Equal(t, reconcile.ByKey, alignment)
}

func TestLoadConfigurationOverrides(t *testing.T) {
	path := writeConfig(t, `
domains:
  interestRate:
    min: 7
    max: 9
    step: 0.5
sliders:
  trackWidth: 320
table:
  rowSelector: tr.yearly
  balanceCell: 3
  loanPaidCell: 4
reconcile:
  alignment: position
generator:
  seed: 42
schedule:
  startMonth: "2025-07"
logging:
  level: debug
  format: console
output:
  format: csv
`)

	conf, err := LoadConfiguration(path)
	require.NoError(t, err)
	require.NoError(t, conf.Validate())

	assert.Equal(t, generator.Domain{Min: 7, Max: 9, Step: 0.5}, conf.Domains.InterestRate)
	assert.Equal(t, constants.PrincipalLakhMax, conf.Domains.PrincipalLakh.Max)
	assert.Equal(t, 320.0, conf.Sliders.TrackWidth)
	assert.Equal(t, "tr.yearly", conf.Table.RowSelector)
	assert.Equal(t, table.Layout{Year: 0, Balance: 3, LoanPaid: 4}, conf.Table.Layout())
	require.NotNil(t, conf.Generator.Seed)
	assert.Equal(t, uint64(42), *conf.Generator.Seed)
	assert.Len(t, conf.Generator.Options(), 1)
	assert.Equal(t, "2025-07", conf.Schedule.StartMonth)
	assert.Equal(t, "debug", conf.Logging.Level)
	assert.Equal(t, "console", conf.Logging.Format)
	assert.Equal(t, constants.OutputFormatCSV, conf.Output.Format)

	alignment, err := conf.Alignment()
	require.NoError(t, err)
	assert.Equal(t, reconcile.ByPosition, alignment)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("EMI_RECONCILE_ALIGNMENT", "position")
	t.Setenv("EMI_CHART_SERIES", "Outstanding")

	conf, err := LoadConfiguration(writeConfig(t, "reconcile:\n  alignment: key\n"))
	require.NoError(t, err)
	assert.Equal(t, "position", conf.Reconcile.Alignment)
	assert.Equal(t, "Outstanding", conf.Chart.Series)
}

func TestLoadConfigurationFromReader(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader("spreadsheet:\n  sheetName: Summary\n"))
	require.NoError(t, err)
	assert.Equal(t, "Summary", conf.Spreadsheet.SheetName)
	assert.Equal(t, constants.DefaultChartSeries, conf.Chart.Series)
}

func TestValidateCollectsAllProblems(t *testing.T) {
	conf, err := Default()
	require.NoError(t, err)

	conf.Domains.InterestRate.Step = 0
	conf.Sliders.TrackWidth = 0
	conf.Sliders.LoanAmount = conf.Sliders.InterestRate
	conf.Sliders.LoanAmount.Max = conf.Sliders.LoanAmount.Min
	conf.Table.BalanceCell = -1
	conf.Reconcile.Alignment = "diagonal"
	conf.Reconcile.PercentDecimals = -2
	conf.Schedule.StartMonth = "July"
	conf.Output.Format = "json"

	err = conf.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"domains.interestRate",
		"sliders.trackWidth",
		"sliders.loanAmount",
		"table:",
		"reconcile.alignment",
		"reconcile.percentDecimals",
		"schedule.startMonth",
		"output.format",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestSlidersRegistry(t *testing.T) {
	conf, err := Default()
	require.NoError(t, err)

	reg, err := conf.Sliders.Registry()
	require.NoError(t, err)

	control, err := reg.Control(constants.ControlInterestRate)
	require.NoError(t, err)
	pos, err := control.DomainToPosition(12.5)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, pos, 1e-9)
}
