// Package slider maps control values to offsets along a slider track.
package slider

import (
	"errors"
	"fmt"

	"github.com/iwvelando/emi-reconcile/pkg/constants"
	"github.com/iwvelando/emi-reconcile/pkg/loans"
)

var (
	// ErrOutOfRange is returned for values outside a control's declared range.
	ErrOutOfRange = errors.New("value out of range")

	// ErrInvalidRange is returned for ranges or track widths nothing can map onto.
	ErrInvalidRange = errors.New("invalid slider range")

	// ErrUnknownControl is returned when a registry has no control by that name.
	ErrUnknownControl = errors.New("unknown slider control")
)

// Range is a control's inclusive [Min, Max].
type Range struct {
	Min float64 `mapstructure:"min" yaml:"min"`
	Max float64 `mapstructure:"max" yaml:"max"`
}

// Validate rejects empty or inverted ranges.
func (r Range) Validate() error {
	if r.Max <= r.Min {
		return fmt.Errorf("%w: max %v must exceed min %v", ErrInvalidRange, r.Max, r.Min)
	}
	return nil
}

// ToPosition returns trackWidth*(value-min)/(max-min). Values outside
// [min, max] are rejected rather than clamped.
func ToPosition(value, min, max, trackWidth float64) (float64, error) {
	if err := (Range{Min: min, Max: max}).Validate(); err != nil {
		return 0, err
	}
	if trackWidth <= 0 {
		return 0, fmt.Errorf("%w: track width must be positive, got %v", ErrInvalidRange, trackWidth)
	}
	if value < min || value > max {
		return 0, fmt.Errorf("%w: %v not in [%v, %v]", ErrOutOfRange, value, min, max)
	}
	return trackWidth * (value - min) / (max - min), nil
}

// Control maps a semantic value onto its own track.
type Control interface {
	Name() string
	DomainToPosition(value float64) (float64, error)
}

// Slider is a Control over a fixed range.
type Slider struct {
	name       string
	bounds     Range
	trackWidth float64
}

// New creates a Slider after checking its range and width.
func New(name string, bounds Range, trackWidth float64) (*Slider, error) {
	if err := bounds.Validate(); err != nil {
		return nil, fmt.Errorf("slider %s: %w", name, err)
	}
	if trackWidth <= 0 {
		return nil, fmt.Errorf("slider %s: %w: track width must be positive, got %v", name, ErrInvalidRange, trackWidth)
	}
	return &Slider{name: name, bounds: bounds, trackWidth: trackWidth}, nil
}

// Name returns the control name.
func (s *Slider) Name() string { return s.name }

// Range returns the declared bounds.
func (s *Slider) Range() Range { return s.bounds }

// DomainToPosition maps value onto the track.
func (s *Slider) DomainToPosition(value float64) (float64, error) {
	pos, err := ToPosition(value, s.bounds.Min, s.bounds.Max, s.trackWidth)
	if err != nil {
		return 0, fmt.Errorf("slider %s: %w", s.name, err)
	}
	return pos, nil
}

// DefaultRanges returns the calculator's slider ranges keyed by control name.
// The loan amount slider is denominated in lakh.
func DefaultRanges() map[string]Range {
	return map[string]Range{
		constants.ControlLoanAmount:   {Min: constants.PrincipalLakhMin, Max: constants.PrincipalLakhMax},
		constants.ControlInterestRate: {Min: constants.InterestRateMin, Max: constants.InterestRateMax},
		constants.ControlTenureYears:  {Min: constants.TenureYearsMin, Max: constants.TenureYearsMax},
		constants.ControlTenureMonths: {Min: constants.TenureMonthsMin, Max: constants.TenureMonthsMax},
	}
}

// Registry looks controls up by name.
type Registry struct {
	controls map[string]Control
}

// NewRegistry builds one Slider per range, all sharing trackWidth.
func NewRegistry(ranges map[string]Range, trackWidth float64) (*Registry, error) {
	if ranges == nil {
		ranges = DefaultRanges()
	}
	reg := &Registry{controls: make(map[string]Control, len(ranges))}
	for name, r := range ranges {
		s, err := New(name, r, trackWidth)
		if err != nil {
			return nil, err
		}
		reg.controls[name] = s
	}
	return reg, nil
}

// Register adds or replaces a control.
func (r *Registry) Register(c Control) {
	r.controls[c.Name()] = c
}

// Control returns the named control.
func (r *Registry) Control(name string) (Control, error) {
	c, ok := r.controls[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownControl, name)
	}
	return c, nil
}

// ForTenure returns the tenure control matching unit.
func (r *Registry) ForTenure(unit loans.TenureUnit) (Control, error) {
	if unit == loans.Months {
		return r.Control(constants.ControlTenureMonths)
	}
	return r.Control(constants.ControlTenureYears)
}

// Positions maps a full parameter set onto the loan amount, interest rate
// and tenure tracks, in that order.
func (r *Registry) Positions(p loans.Parameters) ([]float64, error) {
	amount, err := r.Control(constants.ControlLoanAmount)
	if err != nil {
		return nil, err
	}
	rate, err := r.Control(constants.ControlInterestRate)
	if err != nil {
		return nil, err
	}
	tenure, err := r.ForTenure(p.TenureUnit)
	if err != nil {
		return nil, err
	}

	positions := make([]float64, 0, 3)
	for _, step := range []struct {
		control Control
		value   float64
	}{
		{amount, p.Principal / constants.RupeesPerLakh},
		{rate, p.AnnualRatePercent},
		{tenure, p.Tenure},
	} {
		pos, err := step.control.DomainToPosition(step.value)
		if err != nil {
			return nil, err
		}
		positions = append(positions, pos)
	}
	return positions, nil
}
