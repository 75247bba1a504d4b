package reconcile

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iwvelando/emi-reconcile/pkg/constants"
	"github.com/iwvelando/emi-reconcile/pkg/normalize"
)

func seriesSpecs() []FieldSpec {
	return []FieldSpec{
		{Name: constants.FieldYear, Mode: ModeContains},
		{Name: constants.FieldBalance, Mode: ModeExact, Decimals: Places(constants.CurrencyDecimals)},
		{Name: constants.FieldLoanPaid, Mode: ModeContains},
	}
}

func yearly(source string, years []int, balances []string, paid []string) []Record {
	records := make([]Record, len(years))
	for i, y := range years {
		key := strconv.Itoa(y)
		records[i] = NewRecord(source, key, map[string]string{
			constants.FieldYear:     key,
			constants.FieldBalance:  balances[i],
			constants.FieldLoanPaid: paid[i],
		})
	}
	return records
}

func TestReconcileEvaluatesEveryField(t *testing.T) {
	expected := NewRecord("calculator", "", map[string]string{
		"emi":           "55136",
		"totalInterest": "800616",
		"totalPayment":  "4300616",
	})
	actual := NewRecord("ui", "", map[string]string{
		"emi":           "₹ 55,137",
		"totalInterest": "₹ 8,00,616",
	})

	report := Reconcile(expected, actual, []FieldSpec{
		{Name: "emi"},
		{Name: "totalInterest"},
		{Name: "totalPayment"},
	})

	require.Len(t, report.Verdicts, 3)
	assert.False(t, report.Passed())
	assert.False(t, report.Verdicts[0].Passed)
	assert.ErrorIs(t, report.Verdicts[0].Err, ErrFieldMismatch)
	assert.True(t, report.Verdicts[1].Passed)
	assert.ErrorIs(t, report.Verdicts[2].Err, ErrMissingField)

	failures := report.Failures()
	require.Len(t, failures, 2)
	assert.Equal(t, "emi", failures[0].Field)
	assert.Equal(t, "totalPayment", failures[1].Field)

	err := report.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFieldMismatch))
	assert.True(t, errors.Is(err, ErrMissingField))
}

func TestReconcileDistinctFieldNames(t *testing.T) {
	expected := NewRecord("ui", "", map[string]string{"loanAmount": "3500000"})
	actual := NewRecord("spreadsheet", "", map[string]string{constants.LabelLoanAmount: "35,00,000"})

	report := Reconcile(expected, actual, []FieldSpec{{
		Name:          "loanAmount",
		ActualField:   constants.LabelLoanAmount,
		Decimals:      Places(constants.CurrencyDecimals),
		Normalize:     normalize.Currency,
		ExpectedField: "loanAmount",
	}})

	require.Len(t, report.Verdicts, 1)
	assert.True(t, report.Passed())
	assert.Equal(t, 3500000.0, report.Verdicts[0].ActualValue)
	assert.NoError(t, report.Err())
}

func TestReconcileUnparsableIsVerdictNotAbort(t *testing.T) {
	expected := NewRecord("calculator", "", map[string]string{"emi": "N/A", "rate": "6.5"})
	actual := NewRecord("ui", "", map[string]string{"emi": "--", "rate": "6.5 %"})

	report := Reconcile(expected, actual, []FieldSpec{{Name: "emi"}, {Name: "rate", Decimals: Places(2)}})

	require.Len(t, report.Verdicts, 2)
	assert.ErrorIs(t, report.Verdicts[0].Err, normalize.ErrUnparsableValue)
	assert.NotEmpty(t, report.Verdicts[0].Error)
	assert.True(t, report.Verdicts[1].Passed)
}

func TestReconcileDefaultsToPercentPrecision(t *testing.T) {
	expected := NewRecord("calculator", "", map[string]string{"interestRate": "6.5"})
	actual := NewRecord("ui", "", map[string]string{"interestRate": "6.6 %"})

	report := Reconcile(expected, actual, []FieldSpec{{Name: "interestRate"}})

	require.Len(t, report.Verdicts, 1)
	assert.False(t, report.Passed())
	assert.ErrorIs(t, report.Verdicts[0].Err, ErrFieldMismatch)
	assert.Equal(t, 6.5, report.Verdicts[0].ExpectedValue)
	assert.Equal(t, 6.6, report.Verdicts[0].ActualValue)
}

func TestReconcileExplicitWholeUnits(t *testing.T) {
	expected := NewRecord("calculator", "", map[string]string{"emi": "55136.2"})
	actual := NewRecord("ui", "", map[string]string{"emi": "₹ 55,136"})

	report := Reconcile(expected, actual, []FieldSpec{{Name: "emi", Decimals: Places(constants.CurrencyDecimals)}})

	assert.True(t, report.Passed())
	assert.Equal(t, 55136.0, report.Verdicts[0].ExpectedValue)
}

func TestReconcileContains(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		actual   string
		passed   bool
	}{
		{"Labelled year", "5", "Year: 5", true},
		{"Percent suffix", "48.51%", "48.51%", true},
		{"Bare percent inside suffixed", "48.51", "48.51%", true},
		{"Different percent", "48.51%", "48.50%", false},
		{"Empty expected", "  ", "anything", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Reconcile(
				NewRecord("chart", "", map[string]string{"v": tt.expected}),
				NewRecord("table", "", map[string]string{"v": tt.actual}),
				[]FieldSpec{{Name: "v", Mode: ModeContains}},
			)
			assert.Equal(t, tt.passed, report.Passed())
		})
	}
}

func TestReconcileUnknownMode(t *testing.T) {
	rec := NewRecord("a", "", map[string]string{"v": "1"})
	report := Reconcile(rec, rec, []FieldSpec{{Name: "v", Mode: "fuzzy"}})
	require.Len(t, report.Verdicts, 1)
	assert.ErrorIs(t, report.Verdicts[0].Err, ErrUnknownMode)
}

func TestReconcileSeriesMatchingYears(t *testing.T) {
	chart := yearly("chart", []int{2025, 2026, 2027},
		[]string{"51492", "0", "0"}, []string{"48.51%", "100.00%", "100.00%"})
	table := yearly("table", []int{2025, 2026, 2027},
		[]string{"₹ 51,492", "₹ 0", "₹ 0"}, []string{"48.51%", "100.00%", "100.00%"})

	report, err := ReconcileSeries(chart, table, seriesSpecs(), ByKey)
	require.NoError(t, err)
	require.Len(t, report.Reports, 3)
	assert.True(t, report.Passed())
	assert.Empty(t, report.Failures())
	assert.NoError(t, report.Err())
	assert.Equal(t, "chart", report.Left)
	assert.Equal(t, "table", report.Right)
}

func TestReconcileSeriesExtraTableRow(t *testing.T) {
	chart := yearly("chart", []int{2025, 2026, 2027},
		[]string{"3", "2", "1"}, []string{"1%", "2%", "3%"})
	table := yearly("table", []int{2025, 2026, 2027, 2028},
		[]string{"3", "2", "1", "0"}, []string{"1%", "2%", "3%", "4%"})

	for _, alignment := range []Alignment{ByKey, ByPosition} {
		t.Run(string(alignment), func(t *testing.T) {
			report, err := ReconcileSeries(chart, table, seriesSpecs(), alignment)
			assert.Nil(t, report)
			require.ErrorIs(t, err, ErrRowCountMismatch)

			var countErr *RowCountMismatchError
			require.True(t, errors.As(err, &countErr))
			assert.Equal(t, 3, countErr.Left)
			assert.Equal(t, 4, countErr.Right)
			assert.Equal(t, "chart", countErr.LeftSource)
			assert.Equal(t, "table", countErr.RightSource)
		})
	}
}

func TestAlignByKeyReordered(t *testing.T) {
	left := yearly("chart", []int{2025, 2026}, []string{"10", "0"}, []string{"50%", "100%"})
	right := yearly("table", []int{2026, 2025}, []string{"0", "10"}, []string{"100%", "50%"})

	pairs, err := AlignByKey(left, right)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "2025", pairs[0].Right.Key)
	assert.Equal(t, "2026", pairs[1].Right.Key)

	// Positional alignment pairs them as given, so the year comparison fails.
	report, err := ReconcileSeries(left, right, seriesSpecs(), ByPosition)
	require.NoError(t, err)
	assert.False(t, report.Passed())
	assert.Len(t, report.Failures(), 2)
}

func TestAlignByKeyMismatchedKeys(t *testing.T) {
	left := yearly("chart", []int{2025, 2026}, []string{"1", "0"}, []string{"50%", "100%"})
	right := yearly("table", []int{2025, 2027}, []string{"1", "0"}, []string{"50%", "100%"})

	_, err := AlignByKey(left, right)
	require.ErrorIs(t, err, ErrKeyMismatch)
	assert.Contains(t, err.Error(), "2026")
	assert.Contains(t, err.Error(), "2027")
}

func TestAlignByKeyDuplicate(t *testing.T) {
	left := yearly("chart", []int{2025, 2025}, []string{"1", "0"}, []string{"50%", "100%"})
	right := yearly("table", []int{2025, 2026}, []string{"1", "0"}, []string{"50%", "100%"})

	_, err := AlignByKey(left, right)
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestParseAlignment(t *testing.T) {
	tests := []struct {
		input    string
		expected Alignment
		wantErr  bool
	}{
		{"", ByKey, false},
		{"key", ByKey, false},
		{"Position", ByPosition, false},
		{"diagonal", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAlignment(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownAlignment)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestReconcileSeriesEmpty(t *testing.T) {
	report, err := ReconcileSeries(nil, nil, seriesSpecs(), ByKey)
	require.NoError(t, err)
	assert.Empty(t, report.Reports)
	assert.True(t, report.Passed())
}
