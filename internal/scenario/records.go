package scenario

import (
	"strconv"

	"github.com/iwvelando/emi-reconcile/internal/snapshot"
	"github.com/iwvelando/emi-reconcile/pkg/constants"
	"github.com/iwvelando/emi-reconcile/pkg/loans"
	"github.com/iwvelando/emi-reconcile/pkg/normalize"
	"github.com/iwvelando/emi-reconcile/pkg/reconcile"
)

// Source names used in records built here.
const (
	SourceCalculator = "calculator"
	SourceUI         = "ui"
	SourceSchedule   = "schedule"
)

// expectedRecord holds the recomputed summary figures.
func expectedRecord(p loans.Parameters, res loans.Result) reconcile.Record {
	return reconcile.NewRecord(SourceCalculator, "", map[string]string{
		snapshot.FieldLoanAmount:    normalize.Text(p.Principal),
		snapshot.FieldInterestRate:  normalize.Text(p.AnnualRatePercent),
		snapshot.FieldLoanTenure:    normalize.Text(p.Tenure),
		snapshot.FieldEMI:           strconv.FormatInt(res.EMI, 10),
		snapshot.FieldTotalInterest: strconv.FormatInt(res.TotalInterest, 10),
		snapshot.FieldTotalPayment:  strconv.FormatInt(res.TotalPayment, 10),
	})
}

// scheduleRecords keys the recomputed yearly rows like the table rows.
func scheduleRecords(rows []loans.YearlyRow) []reconcile.Record {
	out := make([]reconcile.Record, len(rows))
	for i, row := range rows {
		year := strconv.Itoa(row.Year)
		out[i] = reconcile.NewRecord(SourceSchedule, year, map[string]string{
			constants.FieldYear:     year,
			constants.FieldBalance:  normalize.Text(row.Balance),
			constants.FieldLoanPaid: normalize.Text(row.LoanPaidPercent),
		})
	}
	return out
}

// summarySpecs compares the calculator's figures with the on-screen summary.
// Inputs are only compared when the summary captured them.
func (r *Runner) summarySpecs(summary map[string]string) []reconcile.FieldSpec {
	currency := reconcile.Places(r.cfg.Reconcile.CurrencyDecimals)
	specs := []reconcile.FieldSpec{
		{Name: snapshot.FieldEMI, Mode: reconcile.ModeExact, Decimals: currency},
		{Name: snapshot.FieldTotalInterest, Mode: reconcile.ModeExact, Decimals: currency},
		{Name: snapshot.FieldTotalPayment, Mode: reconcile.ModeExact, Decimals: currency},
	}
	if _, ok := summary[snapshot.FieldLoanAmount]; ok {
		specs = append(specs, reconcile.FieldSpec{Name: snapshot.FieldLoanAmount, Mode: reconcile.ModeExact, Decimals: currency})
	}
	if _, ok := summary[snapshot.FieldInterestRate]; ok {
		specs = append(specs, reconcile.FieldSpec{Name: snapshot.FieldInterestRate, Mode: reconcile.ModeExact, Decimals: reconcile.Places(r.cfg.Reconcile.PercentDecimals)})
	}
	return specs
}

// spreadsheetSpecs maps summary fields onto workbook labels. Fields the
// expected side lacks are left out.
func (r *Runner) spreadsheetSpecs(expected reconcile.Record) []reconcile.FieldSpec {
	currency := reconcile.Places(r.cfg.Reconcile.CurrencyDecimals)
	candidates := []reconcile.FieldSpec{
		{Name: snapshot.FieldLoanAmount, ActualField: constants.LabelLoanAmount, Mode: reconcile.ModeExact, Decimals: currency},
		{Name: snapshot.FieldInterestRate, ActualField: constants.LabelInterestRate, Mode: reconcile.ModeExact, Decimals: reconcile.Places(r.cfg.Reconcile.PercentDecimals)},
		{Name: snapshot.FieldLoanTenure, ActualField: constants.LabelLoanTenure, Mode: reconcile.ModeContains},
		{Name: snapshot.FieldEMI, ActualField: constants.LabelEMI, Mode: reconcile.ModeExact, Decimals: currency},
		{Name: snapshot.FieldTotalInterest, ActualField: constants.LabelTotalInterest, Mode: reconcile.ModeExact, Decimals: currency},
		{Name: snapshot.FieldTotalPayment, ActualField: constants.LabelTotalPayment, Mode: reconcile.ModeExact, Decimals: currency},
	}
	var specs []reconcile.FieldSpec
	for _, spec := range candidates {
		if _, ok := expected.Field(spec.Name); ok {
			specs = append(specs, spec)
		}
	}
	return specs
}

// chartTableSpecs compares chart points with table rows.
func (r *Runner) chartTableSpecs() []reconcile.FieldSpec {
	return []reconcile.FieldSpec{
		{Name: constants.FieldYear, Mode: reconcile.ModeContains},
		{Name: constants.FieldBalance, Mode: reconcile.ModeExact, Decimals: reconcile.Places(r.cfg.Reconcile.CurrencyDecimals)},
		{Name: constants.FieldLoanPaid, Mode: reconcile.ModeContains},
	}
}

// scheduleTableSpecs compares the recomputed schedule with table rows. The
// schedule holds unrounded percentages, so loan paid is compared numerically.
func (r *Runner) scheduleTableSpecs() []reconcile.FieldSpec {
	return []reconcile.FieldSpec{
		{Name: constants.FieldYear, Mode: reconcile.ModeContains},
		{Name: constants.FieldBalance, Mode: reconcile.ModeExact, Decimals: reconcile.Places(r.cfg.Reconcile.CurrencyDecimals)},
		{Name: constants.FieldLoanPaid, Mode: reconcile.ModeExact, Decimals: reconcile.Places(r.cfg.Reconcile.PercentDecimals)},
	}
}
