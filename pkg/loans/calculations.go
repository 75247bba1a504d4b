// Package loans computes EMI figures and amortization schedules.
package loans

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/emi-reconcile/pkg/constants"
	"github.com/iwvelando/emi-reconcile/pkg/datetime"
	"github.com/iwvelando/emi-reconcile/pkg/mathutil"
	"go.uber.org/zap"
)

// ErrInvalidParameter is returned for loan inputs no schedule can be built from.
var ErrInvalidParameter = errors.New("invalid loan parameter")

// TenureUnit is the unit a tenure is expressed in.
type TenureUnit string

const (
	Years  TenureUnit = "years"
	Months TenureUnit = "months"
)

// ParseTenureUnit maps free text such as "Yr", "years" or "Months" to a unit.
func ParseTenureUnit(value string) (TenureUnit, error) {
	lower := strings.ToLower(strings.TrimSpace(value))
	switch {
	case strings.Contains(lower, "month") || lower == "mo":
		return Months, nil
	case strings.Contains(lower, "year") || lower == "yr":
		return Years, nil
	default:
		return "", fmt.Errorf("%w: unknown tenure unit %q", ErrInvalidParameter, value)
	}
}

// Parameters holds the inputs of one EMI calculation.
type Parameters struct {
	Principal         float64    `json:"principal" yaml:"principal"`
	AnnualRatePercent float64    `json:"annualRatePercent" yaml:"annualRatePercent"`
	Tenure            float64    `json:"tenure" yaml:"tenure"`
	TenureUnit        TenureUnit `json:"tenureUnit" yaml:"tenureUnit"`
}

// TenureMonths converts the tenure into months.
func (p Parameters) TenureMonths() float64 {
	if p.TenureUnit == Months {
		return p.Tenure
	}
	return p.Tenure * constants.MonthsPerYear
}

// MonthlyRate is the periodic rate as a fraction.
func (p Parameters) MonthlyRate() float64 {
	return p.AnnualRatePercent / constants.MonthsPerYear / constants.PercentageMultiplier
}

// Validate reports the first input that makes the calculation meaningless.
func (p Parameters) Validate() error {
	for name, v := range map[string]float64{
		"principal": p.Principal,
		"rate":      p.AnnualRatePercent,
		"tenure":    p.Tenure,
	} {
		if !mathutil.IsFinite(v) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidParameter, name)
		}
	}
	if p.TenureUnit != Years && p.TenureUnit != Months {
		return fmt.Errorf("%w: unknown tenure unit %q", ErrInvalidParameter, p.TenureUnit)
	}
	if p.Principal <= 0 {
		return fmt.Errorf("%w: principal must be positive, got %.2f", ErrInvalidParameter, p.Principal)
	}
	if p.Principal != math.Trunc(p.Principal) {
		return fmt.Errorf("%w: principal must be a whole rupee amount, got %.2f", ErrInvalidParameter, p.Principal)
	}
	if p.TenureMonths() <= 0 {
		return fmt.Errorf("%w: tenure must be positive, got %.2f months", ErrInvalidParameter, p.TenureMonths())
	}
	if p.AnnualRatePercent < 0 {
		return fmt.Errorf("%w: interest rate must not be negative, got %.2f", ErrInvalidParameter, p.AnnualRatePercent)
	}
	return nil
}

// Result holds the figures the calculator displays. EMI, TotalPayment and
// TotalInterest are rounded independently from RawEMI, so TotalPayment may
// differ from EMI*TenureMonths.
type Result struct {
	EMI           int64   `json:"emi"`
	TotalPayment  int64   `json:"totalPayment"`
	TotalInterest int64   `json:"totalInterest"`
	RawEMI        float64 `json:"rawEmi"`
	TenureMonths  float64 `json:"tenureMonths"`
}

// CalculateMonthlyPayment calculates the unrounded monthly installment using
// the standard amortization formula.
func CalculateMonthlyPayment(principal, annualInterestRate, termMonths float64) float64 {
	if annualInterestRate == 0 {
		// For zero interest, simply divide the principal by term
		return principal / termMonths
	}

	periodicInterestRate := annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
	power := math.Pow(1.00+periodicInterestRate, termMonths)
	return principal * periodicInterestRate * power / (power - 1.00)
}

// CalculateInterestPayment calculates the interest portion of a payment.
func CalculateInterestPayment(remainingPrincipal, annualInterestRate float64) float64 {
	return remainingPrincipal * annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// Compute validates the parameters and returns all displayed figures.
func Compute(p Parameters) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}

	months := p.TenureMonths()
	raw := CalculateMonthlyPayment(p.Principal, p.AnnualRatePercent, months)
	totalPayment := mathutil.RoundToInt(raw * months)

	return Result{
		EMI:           mathutil.RoundToInt(raw),
		TotalPayment:  totalPayment,
		TotalInterest: totalPayment - int64(p.Principal),
		RawEMI:        raw,
		TenureMonths:  months,
	}, nil
}

// ComputeEMI returns the rounded monthly installment.
func ComputeEMI(p Parameters) (int64, error) {
	r, err := Compute(p)
	return r.EMI, err
}

// ComputeTotalPayment returns the rounded sum of all installments.
func ComputeTotalPayment(p Parameters) (int64, error) {
	r, err := Compute(p)
	return r.TotalPayment, err
}

// ComputeTotalInterest returns the total payment less the principal.
func ComputeTotalInterest(p Parameters) (int64, error) {
	r, err := Compute(p)
	return r.TotalInterest, err
}

// Payment holds the values for a given month.
type Payment struct {
	Month              string
	Payment            float64
	Principal          float64
	Interest           float64
	RemainingPrincipal float64
}

// YearlyRow aggregates a calendar year of payments as the breakdown table
// shows them.
type YearlyRow struct {
	Year            int     `json:"year"`
	Principal       float64 `json:"principal"`
	Interest        float64 `json:"interest"`
	TotalPayment    float64 `json:"totalPayment"`
	Balance         float64 `json:"balance"`
	LoanPaidPercent float64 `json:"loanPaidPercent"`
}

// ScheduleGenerator builds amortization schedules.
type ScheduleGenerator struct {
	logger *zap.Logger
}

// NewScheduleGenerator creates a new generator instance
func NewScheduleGenerator(logger *zap.Logger) *ScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleGenerator{logger: logger}
}

// Monthly returns one payment per month starting at startMonth. The tenure
// must be a whole number of months.
func (g *ScheduleGenerator) Monthly(p Parameters, startMonth string) ([]Payment, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	months := p.TenureMonths()
	if months != math.Trunc(months) {
		return nil, fmt.Errorf("%w: schedule needs whole months, got %.2f", ErrInvalidParameter, months)
	}
	term := int(months)

	monthlyPayment := CalculateMonthlyPayment(p.Principal, p.AnnualRatePercent, months)
	schedule := make([]Payment, 0, term)
	balance := p.Principal
	currentMonth := startMonth

	for month := 1; month <= term; month++ {
		var payment Payment
		payment.Month = currentMonth
		payment.Interest = CalculateInterestPayment(balance, p.AnnualRatePercent)
		payment.Principal = monthlyPayment - payment.Interest

		if month == term {
			// Avoid carrying machine error past the final installment.
			payment.Principal = balance
			payment.RemainingPrincipal = 0.00
		} else {
			payment.RemainingPrincipal = balance - payment.Principal
		}
		payment.Payment = payment.Principal + payment.Interest
		schedule = append(schedule, payment)
		balance = payment.RemainingPrincipal

		next, err := datetime.OffsetDate(currentMonth, datetime.DateTimeLayout, 1)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule start %q: %w", startMonth, err)
		}
		currentMonth = next
	}

	g.logger.Debug(fmt.Sprintf("generated %d monthly payments of %.2f", term, monthlyPayment),
		zap.String("op", "loans.Monthly"),
		zap.String("start", startMonth),
	)
	return schedule, nil
}

// Yearly folds the monthly schedule into calendar years.
func (g *ScheduleGenerator) Yearly(p Parameters, startMonth string) ([]YearlyRow, error) {
	schedule, err := g.Monthly(p, startMonth)
	if err != nil {
		return nil, err
	}

	var rows []YearlyRow
	for _, payment := range schedule {
		year, err := datetime.YearOf(payment.Month)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 || rows[len(rows)-1].Year != year {
			rows = append(rows, YearlyRow{Year: year})
		}
		row := &rows[len(rows)-1]
		row.Principal += payment.Principal
		row.Interest += payment.Interest
		row.TotalPayment += payment.Payment
		row.Balance = payment.RemainingPrincipal
		row.LoanPaidPercent = mathutil.CalculatePercentage(p.Principal-payment.RemainingPrincipal, p.Principal)
	}

	g.logger.Debug(fmt.Sprintf("folded schedule into %d years", len(rows)),
		zap.String("op", "loans.Yearly"),
	)
	return rows, nil
}
