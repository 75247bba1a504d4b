// Package table reads yearly breakdown rows into records.
package table

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/iwvelando/emi-reconcile/pkg/constants"
	"github.com/iwvelando/emi-reconcile/pkg/normalize"
	"github.com/iwvelando/emi-reconcile/pkg/reconcile"
)

// SourceName labels records produced by this package.
const SourceName = "table"

var (
	// ErrMissingCell is returned when a row is too short for the layout.
	ErrMissingCell = errors.New("missing cell")

	// ErrInvalidLayout is returned for negative cell indices.
	ErrInvalidLayout = errors.New("invalid table layout")
)

var yearDigits = regexp.MustCompile(`\d+`)

// Provider returns the cell texts of every row matching selector, in
// document order.
type Provider interface {
	Rows(ctx context.Context, selector string) ([][]string, error)
}

// Layout holds the cell index of each field.
type Layout struct {
	Year     int `mapstructure:"yearCell" yaml:"yearCell" json:"yearCell"`
	Balance  int `mapstructure:"balanceCell" yaml:"balanceCell" json:"balanceCell"`
	LoanPaid int `mapstructure:"loanPaidCell" yaml:"loanPaidCell" json:"loanPaidCell"`
}

// DefaultLayout is the calculator's current yearly breakdown layout.
func DefaultLayout() Layout {
	return Layout{
		Year:     constants.DefaultYearCell,
		Balance:  constants.DefaultBalanceCell,
		LoanPaid: constants.DefaultLoanPaidCell,
	}
}

// Validate rejects negative indices.
func (l Layout) Validate() error {
	if l.Year < 0 || l.Balance < 0 || l.LoanPaid < 0 {
		return fmt.Errorf("%w: cell indices must not be negative: %+v", ErrInvalidLayout, l)
	}
	return nil
}

// RowRecord is one parsed row.
type RowRecord struct {
	Index           int      `json:"index"`
	Year            int      `json:"year"`
	Balance         float64  `json:"balance"`
	LoanPaidPercent string   `json:"loanPaid"`
	Cells           []string `json:"cells"`
}

// Record converts the row into a reconcile.Record keyed by year.
func (r RowRecord) Record() reconcile.Record {
	year := strconv.Itoa(r.Year)
	return reconcile.NewRecord(SourceName, year, map[string]string{
		constants.FieldYear:     year,
		constants.FieldBalance:  normalize.Text(r.Balance),
		constants.FieldLoanPaid: r.LoanPaidPercent,
	})
}

// Records converts rows in order.
func Records(rows []RowRecord) []reconcile.Record {
	out := make([]reconcile.Record, len(rows))
	for i, r := range rows {
		out[i] = r.Record()
	}
	return out
}

// Extractor parses rows according to a Layout.
type Extractor struct {
	layout Layout
	logger *zap.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(layout Layout, logger *zap.Logger) (*Extractor, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{layout: layout, logger: logger}, nil
}

// Extract reads every row matching selector. It does not compare counts with
// any other source.
func (e *Extractor) Extract(ctx context.Context, provider Provider, selector string) ([]RowRecord, error) {
	rows, err := provider.Rows(ctx, selector)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows %q: %w", selector, err)
	}

	e.logger.Debug("extracting table rows",
		zap.String("op", "table.Extract"),
		zap.String("selector", selector),
		zap.Int("rows", len(rows)))

	records := make([]RowRecord, 0, len(rows))
	for i, cells := range rows {
		rec, err := e.parseRow(i, cells)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (e *Extractor) parseRow(index int, cells []string) (RowRecord, error) {
	cell := func(field string, pos int) (string, error) {
		if pos >= len(cells) {
			return "", fmt.Errorf("%w: row %d has %d cells, %s needs index %d", ErrMissingCell, index, len(cells), field, pos)
		}
		return strings.TrimSpace(cells[pos]), nil
	}

	yearText, err := cell(constants.FieldYear, e.layout.Year)
	if err != nil {
		return RowRecord{}, err
	}
	balanceText, err := cell(constants.FieldBalance, e.layout.Balance)
	if err != nil {
		return RowRecord{}, err
	}
	paidText, err := cell(constants.FieldLoanPaid, e.layout.LoanPaid)
	if err != nil {
		return RowRecord{}, err
	}

	digits := yearDigits.FindString(yearText)
	if digits == "" {
		return RowRecord{}, fmt.Errorf("row %d: %w: no year in %q", index, normalize.ErrUnparsableValue, yearText)
	}
	year, err := strconv.Atoi(digits)
	if err != nil {
		return RowRecord{}, fmt.Errorf("row %d: %w: year %q", index, normalize.ErrUnparsableValue, yearText)
	}
	balance, err := normalize.Currency(balanceText)
	if err != nil {
		return RowRecord{}, fmt.Errorf("row %d balance: %w", index, err)
	}

	return RowRecord{
		Index:           index,
		Year:            year,
		Balance:         balance,
		LoanPaidPercent: paidText,
		Cells:           cells,
	}, nil
}
