package loans

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name          string
		params        Parameters
		expectedEMI   int64
		expectedTotal int64
		expectedInt   int64
		expectedTerm  float64
	}{
		{
			name:          "35 lakh at 6.5% for 6.5 years",
			params:        Parameters{Principal: 3500000, AnnualRatePercent: 6.5, Tenure: 6.5, TenureUnit: Years},
			expectedEMI:   55136,
			expectedTotal: 4300616,
			expectedInt:   800616,
			expectedTerm:  78,
		},
		{
			name:          "125 lakh at 6.75% for 22.5 years",
			params:        Parameters{Principal: 12500000, AnnualRatePercent: 6.75, Tenure: 22.5, TenureUnit: Years},
			expectedEMI:   90135,
			expectedTotal: 24336425,
			expectedInt:   11836425,
			expectedTerm:  270,
		},
		{
			name:          "Tenure given in months",
			params:        Parameters{Principal: 1000000, AnnualRatePercent: 10, Tenure: 120, TenureUnit: Months},
			expectedEMI:   13215,
			expectedTotal: 1585809,
			expectedInt:   585809,
			expectedTerm:  120,
		},
		{
			name:          "Zero interest divides principal",
			params:        Parameters{Principal: 1200000, AnnualRatePercent: 0, Tenure: 1, TenureUnit: Years},
			expectedEMI:   100000,
			expectedTotal: 1200000,
			expectedInt:   0,
			expectedTerm:  12,
		},
		{
			name:          "Totals rounded independently of EMI",
			params:        Parameters{Principal: 500000, AnnualRatePercent: 7.5, Tenure: 5, TenureUnit: Years},
			expectedEMI:   10019,
			expectedTotal: 601138, // 10019*60 would be 601140
			expectedInt:   101138,
			expectedTerm:  60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Compute(tt.params)
			if err != nil {
				t.Fatalf("Compute() error = %v", err)
			}
			if result.EMI != tt.expectedEMI {
				t.Errorf("Compute() EMI = %d, expected %d", result.EMI, tt.expectedEMI)
			}
			if result.TotalPayment != tt.expectedTotal {
				t.Errorf("Compute() TotalPayment = %d, expected %d", result.TotalPayment, tt.expectedTotal)
			}
			if result.TotalInterest != tt.expectedInt {
				t.Errorf("Compute() TotalInterest = %d, expected %d", result.TotalInterest, tt.expectedInt)
			}
			if result.TenureMonths != tt.expectedTerm {
				t.Errorf("Compute() TenureMonths = %.1f, expected %.1f", result.TenureMonths, tt.expectedTerm)
			}
		})
	}
}

func TestComputeInvalidParameters(t *testing.T) {
	tests := []struct {
		name   string
		params Parameters
	}{
		{"Zero principal", Parameters{Principal: 0, AnnualRatePercent: 8, Tenure: 10, TenureUnit: Years}},
		{"Negative principal", Parameters{Principal: -1, AnnualRatePercent: 8, Tenure: 10, TenureUnit: Years}},
		{"Fractional principal", Parameters{Principal: 100000.6, AnnualRatePercent: 8, Tenure: 10, TenureUnit: Years}},
		{"Zero tenure", Parameters{Principal: 100000, AnnualRatePercent: 8, Tenure: 0, TenureUnit: Years}},
		{"Negative tenure months", Parameters{Principal: 100000, AnnualRatePercent: 8, Tenure: -6, TenureUnit: Months}},
		{"Negative rate", Parameters{Principal: 100000, AnnualRatePercent: -0.25, Tenure: 10, TenureUnit: Years}},
		{"NaN rate", Parameters{Principal: 100000, AnnualRatePercent: math.NaN(), Tenure: 10, TenureUnit: Years}},
		{"Unknown unit", Parameters{Principal: 100000, AnnualRatePercent: 8, Tenure: 10, TenureUnit: "weeks"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ComputeEMI(tt.params); !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("ComputeEMI() error = %v, expected ErrInvalidParameter", err)
			}
			if _, err := ComputeTotalPayment(tt.params); !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("ComputeTotalPayment() error = %v, expected ErrInvalidParameter", err)
			}
			if _, err := ComputeTotalInterest(tt.params); !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("ComputeTotalInterest() error = %v, expected ErrInvalidParameter", err)
			}
		})
	}
}

func TestTotalInterestIsTotalPaymentLessPrincipal(t *testing.T) {
	for principal := 100000.0; principal <= 20000000; principal += 1900000 {
		for rate := 0.0; rate <= 20; rate += 2.25 {
			for months := 1.0; months <= 360; months += 37 {
				p := Parameters{Principal: principal, AnnualRatePercent: rate, Tenure: months, TenureUnit: Months}
				total, err := ComputeTotalPayment(p)
				if err != nil {
					t.Fatalf("ComputeTotalPayment(%+v) error = %v", p, err)
				}
				interest, err := ComputeTotalInterest(p)
				if err != nil {
					t.Fatalf("ComputeTotalInterest(%+v) error = %v", p, err)
				}
				if interest != total-int64(principal) {
					t.Fatalf("interest %d != total %d - principal %.0f for %+v", interest, total, principal, p)
				}
			}
		}
	}
}

func TestParseTenureUnit(t *testing.T) {
	tests := []struct {
		input    string
		expected TenureUnit
		wantErr  bool
	}{
		{"years", Years, false},
		{"Yr", Years, false},
		{"loanTenureInYears", Years, false},
		{"Months", Months, false},
		{"mo", Months, false},
		{"weeks", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			unit, err := ParseTenureUnit(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTenureUnit() error = %v, wantErr %v", err, tt.wantErr)
			}
			if unit != tt.expected {
				t.Errorf("ParseTenureUnit() = %s, expected %s", unit, tt.expected)
			}
		})
	}
}

func TestCalculateInterestPayment(t *testing.T) {
	tests := []struct {
		name               string
		remainingPrincipal float64
		annualInterestRate float64
		expected           float64
	}{
		{"Standard interest", 200000, 6.0, 1000.0},
		{"Quarter point rate", 15000, 4.5, 56.25},
		{"Zero interest", 10000, 0.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateInterestPayment(tt.remainingPrincipal, tt.annualInterestRate)
			if math.Abs(result-tt.expected) > 0.01 {
				t.Errorf("CalculateInterestPayment() = %.2f, expected %.2f", result, tt.expected)
			}
		})
	}
}

func TestScheduleGenerator_Monthly(t *testing.T) {
	generator := NewScheduleGenerator(zap.NewNop())
	params := Parameters{Principal: 100000, AnnualRatePercent: 12, Tenure: 1, TenureUnit: Years}

	schedule, err := generator.Monthly(params, "2025-01")
	if err != nil {
		t.Fatalf("Monthly() error = %v", err)
	}
	if len(schedule) != 12 {
		t.Fatalf("Monthly() produced %d payments, expected 12", len(schedule))
	}
	if schedule[0].Month != "2025-01" || schedule[11].Month != "2025-12" {
		t.Errorf("Monthly() months = %s..%s, expected 2025-01..2025-12", schedule[0].Month, schedule[11].Month)
	}
	if math.Abs(schedule[0].Interest-1000) > 1e-6 {
		t.Errorf("first interest = %.4f, expected 1000", schedule[0].Interest)
	}

	lastRemaining := math.MaxFloat64
	for _, payment := range schedule {
		if payment.RemainingPrincipal >= lastRemaining {
			t.Errorf("remaining principal should decrease over time")
		}
		lastRemaining = payment.RemainingPrincipal
	}
	if schedule[11].RemainingPrincipal != 0 {
		t.Errorf("final balance = %.4f, expected 0", schedule[11].RemainingPrincipal)
	}
}

func TestScheduleGenerator_Yearly(t *testing.T) {
	generator := NewScheduleGenerator(nil)
	params := Parameters{Principal: 100000, AnnualRatePercent: 12, Tenure: 12, TenureUnit: Months}

	rows, err := generator.Yearly(params, "2025-07")
	if err != nil {
		t.Fatalf("Yearly() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Yearly() produced %d rows, expected 2", len(rows))
	}

	first := rows[0]
	if first.Year != 2025 {
		t.Errorf("first year = %d, expected 2025", first.Year)
	}
	if math.Abs(first.Balance-51492.1065) > 0.01 {
		t.Errorf("first balance = %.4f, expected 51492.1065", first.Balance)
	}
	if math.Abs(first.LoanPaidPercent-48.5079) > 0.001 {
		t.Errorf("first loan paid = %.4f, expected 48.5079", first.LoanPaidPercent)
	}
	if math.Abs(first.Interest-4801.3797) > 0.01 {
		t.Errorf("first interest = %.4f, expected 4801.3797", first.Interest)
	}

	last := rows[1]
	if last.Year != 2026 || last.Balance != 0 || last.LoanPaidPercent != 100 {
		t.Errorf("last row = %+v, expected 2026 with zero balance and 100%% paid", last)
	}

	totalInterest := first.Interest + last.Interest
	if math.Abs(totalInterest-6618.5464) > 0.01 {
		t.Errorf("total interest = %.4f, expected 6618.5464", totalInterest)
	}
}

func TestScheduleGenerator_Errors(t *testing.T) {
	generator := NewScheduleGenerator(nil)

	_, err := generator.Yearly(Parameters{Principal: 100000, AnnualRatePercent: 12, Tenure: 10.5, TenureUnit: Months}, "2025-01")
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("Yearly() fractional months error = %v, expected ErrInvalidParameter", err)
	}

	_, err = generator.Yearly(Parameters{Principal: 100000, AnnualRatePercent: 12, Tenure: 1, TenureUnit: Years}, "July")
	if err == nil {
		t.Error("Yearly() expected error for invalid start month")
	}
}
