// Package chart walks a chart series point by point and parses each tooltip
// into a record.
package chart

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
const SourceName = "chart"

var (
	// ErrSeriesNotFound is returned when no series has the requested name.
	ErrSeriesNotFound = errors.New("series not found")

	// ErrTooltipUnparsable is returned when a tooltip lacks one of its fields.
	ErrTooltipUnparsable = errors.New("tooltip unparsable")
)

var (
	yearPattern     = regexp.MustCompile(`Year\s*:\s*(\d+)`)
	balancePattern  = regexp.MustCompile(`Balance\s*:\s*([₹\s\d,]+)`)
	loanPaidPattern = regexp.MustCompile(`Loan Paid To Date\s*:\s*([\d.]+%)`)
)

// Point is one data point. Activate makes its tooltip readable and returns
// the tooltip text.
type Point interface {
	Activate(ctx context.Context) (string, error)
}

// Series is a named, ordered list of points.
type Series interface {
	Name() string
	Points() []Point
}

// Provider exposes a chart's series.
type Provider interface {
	Series(ctx context.Context) ([]Series, error)
}

// Tooltip holds the three fields read from tooltip text.
type Tooltip struct {
	Year            int
	Balance         float64
	LoanPaidPercent string
}

// ParseTooltip reads the year, balance and loan-paid fields from tooltip text.
func ParseTooltip(text string) (Tooltip, error) {
	var tip Tooltip

	m := yearPattern.FindStringSubmatch(text)
	if m == nil {
		return tip, fmt.Errorf("%w: no year in %q", ErrTooltipUnparsable, text)
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return tip, fmt.Errorf("%w: year %q: %v", ErrTooltipUnparsable, m[1], err)
	}
	tip.Year = year

	m = balancePattern.FindStringSubmatch(text)
	if m == nil {
		return tip, fmt.Errorf("%w: no balance in %q", ErrTooltipUnparsable, text)
	}
	balance, err := normalize.Currency(m[1])
	if err != nil {
		return tip, fmt.Errorf("%w: balance: %w", ErrTooltipUnparsable, err)
	}
	tip.Balance = balance

	m = loanPaidPattern.FindStringSubmatch(text)
	if m == nil {
		return tip, fmt.Errorf("%w: no loan paid percentage in %q", ErrTooltipUnparsable, text)
	}
	tip.LoanPaidPercent = m[1]

	return tip, nil
}

// PointRecord is one parsed point, in series order.
type PointRecord struct {
	Index           int     `json:"index"`
	Year            int     `json:"year"`
	Balance         float64 `json:"balance"`
	LoanPaidPercent string  `json:"loanPaid"`
	Tooltip         string  `json:"tooltip"`
}

// Record converts the point into a reconcile.Record keyed by year.
func (p PointRecord) Record() reconcile.Record {
	year := strconv.Itoa(p.Year)
	return reconcile.NewRecord(SourceName, year, map[string]string{
		constants.FieldYear:     year,
		constants.FieldBalance:  normalize.Text(p.Balance),
		constants.FieldLoanPaid: p.LoanPaidPercent,
	})
}

// Records converts points in order.
func Records(points []PointRecord) []reconcile.Record {
	out := make([]reconcile.Record, len(points))
	for i, p := range points {
		out[i] = p.Record()
	}
	return out
}

// Extractor reads a series through a Provider.
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract activates every point of the named series in index order and
// returns one record per point. Nothing is retained between calls.
func (e *Extractor) Extract(ctx context.Context, provider Provider, name string) ([]PointRecord, error) {
	all, err := provider.Series(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chart series: %w", err)
	}

	var series Series
	names := make([]string, 0, len(all))
	for _, s := range all {
		names = append(names, s.Name())
		if s.Name() == name && series == nil {
			series = s
		}
	}
	if series == nil {
		return nil, fmt.Errorf("%w: %q among %d series [%s]", ErrSeriesNotFound, name, len(all), strings.Join(names, ", "))
	}

	points := series.Points()
	e.logger.Debug("extracting chart series",
		zap.String("op", "chart.Extract"),
		zap.String("series", name),
		zap.Int("points", len(points)))

	records := make([]PointRecord, 0, len(points))
	for i, point := range points {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := point.Activate(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to activate point %d of %q: %w", i, name, err)
		}
		tip, err := ParseTooltip(text)
		if err != nil {
			return nil, fmt.Errorf("point %d of %q: %w", i, name, err)
		}
		records = append(records, PointRecord{
			Index:           i,
			Year:            tip.Year,
			Balance:         tip.Balance,
			LoanPaidPercent: tip.LoanPaidPercent,
			Tooltip:         text,
		})
	}
	return records, nil
}
