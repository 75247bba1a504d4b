package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/iwvelando/emi-reconcile/pkg/normalize"
)

var (
	// ErrMissingField is recorded when a field named by a spec is absent.
	ErrMissingField = errors.New("missing field")

	// ErrFieldMismatch is recorded for a field whose values disagree.
	ErrFieldMismatch = errors.New("field mismatch")

	// ErrUnknownMode is recorded for a spec with an unsupported comparison mode.
	ErrUnknownMode = errors.New("unknown comparison mode")
)

// Mode selects how a field is compared.
type Mode string

const (
	// ModeExact compares numbers exactly after normalization and rounding.
	ModeExact Mode = "exact"

	// ModeContains passes when the actual text contains the expected text.
	ModeContains Mode = "contains"
)

// NormalizeFunc turns raw field text into a comparable number.
type NormalizeFunc func(text string) (float64, error)

// FieldSpec describes one field comparison. ExpectedField and ActualField
// default to Name, Mode defaults to ModeExact, Normalize defaults to
// normalize.Currency and a nil Decimals rounds to normalize.DefaultDecimals.
type FieldSpec struct {
	Name          string
	ExpectedField string
	ActualField   string
	Mode          Mode
	Normalize     NormalizeFunc
	Decimals      *int
}

// Places returns a Decimals value for a FieldSpec.
func Places(decimals int) *int {
	return &decimals
}

func (s FieldSpec) decimals() int {
	if s.Decimals == nil {
		return normalize.DefaultDecimals
	}
	return *s.Decimals
}

func (s FieldSpec) expectedField() string {
	if s.ExpectedField != "" {
		return s.ExpectedField
	}
	return s.Name
}

func (s FieldSpec) actualField() string {
	if s.ActualField != "" {
		return s.ActualField
	}
	return s.Name
}

func (s FieldSpec) mode() Mode {
	if s.Mode == "" {
		return ModeExact
	}
	return s.Mode
}

// Verdict is the outcome of one field comparison.
type Verdict struct {
	Field         string  `json:"field"`
	Mode          Mode    `json:"mode"`
	Expected      string  `json:"expected"`
	Actual        string  `json:"actual"`
	ExpectedValue float64 `json:"expectedValue,omitempty"`
	ActualValue   float64 `json:"actualValue,omitempty"`
	Passed        bool    `json:"passed"`
	Error         string  `json:"error,omitempty"`
	Err           error   `json:"-"`
}

func (v *Verdict) fail(err error) {
	v.Passed = false
	v.Err = err
	v.Error = err.Error()
}

// Report holds the verdicts for one expected/actual pair.
type Report struct {
	Key      string    `json:"key"`
	Expected string    `json:"expected"`
	Actual   string    `json:"actual"`
	Verdicts []Verdict `json:"verdicts"`
}

// Passed reports whether every verdict passed.
func (r Report) Passed() bool {
	for _, v := range r.Verdicts {
		if !v.Passed {
			return false
		}
	}
	return true
}

// Failures returns the failing verdicts in spec order.
func (r Report) Failures() []Verdict {
	var failed []Verdict
	for _, v := range r.Verdicts {
		if !v.Passed {
			failed = append(failed, v)
		}
	}
	return failed
}

// Err combines the errors of every failing verdict, or returns nil.
func (r Report) Err() error {
	var err error
	for _, v := range r.Failures() {
		if r.Key != "" {
			err = multierr.Append(err, fmt.Errorf("%s %s: %w", r.Key, v.Field, v.Err))
		} else {
			err = multierr.Append(err, fmt.Errorf("%s: %w", v.Field, v.Err))
		}
	}
	return err
}

// Reconcile evaluates every spec against the two records. It never stops at
// the first mismatch: the report always holds exactly one verdict per spec.
func Reconcile(expected, actual Record, specs []FieldSpec) Report {
	key := expected.Key
	if key == "" {
		key = actual.Key
	}
	report := Report{
		Key:      key,
		Expected: expected.Source,
		Actual:   actual.Source,
		Verdicts: make([]Verdict, 0, len(specs)),
	}
	for _, spec := range specs {
		report.Verdicts = append(report.Verdicts, compare(expected, actual, spec))
	}
	return report
}

func compare(expected, actual Record, spec FieldSpec) Verdict {
	v := Verdict{Field: spec.Name, Mode: spec.mode()}

	exp, okExp := expected.Field(spec.expectedField())
	act, okAct := actual.Field(spec.actualField())
	v.Expected, v.Actual = exp, act

	switch {
	case !okExp && !okAct:
		v.fail(fmt.Errorf("%w: %q absent from %s and %s", ErrMissingField, spec.Name, expected.Source, actual.Source))
		return v
	case !okExp:
		v.fail(fmt.Errorf("%w: %q absent from %s", ErrMissingField, spec.expectedField(), expected.Source))
		return v
	case !okAct:
		v.fail(fmt.Errorf("%w: %q absent from %s", ErrMissingField, spec.actualField(), actual.Source))
		return v
	}

	switch v.Mode {
	case ModeExact:
		compareExact(&v, spec)
	case ModeContains:
		compareContains(&v)
	default:
		v.fail(fmt.Errorf("%w: %q", ErrUnknownMode, v.Mode))
	}
	return v
}

func compareExact(v *Verdict, spec FieldSpec) {
	norm := spec.Normalize
	if norm == nil {
		norm = normalize.Currency
	}

	var errs error
	left, err := norm(v.Expected)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("expected: %w", err))
	}
	right, err := norm(v.Actual)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("actual: %w", err))
	}
	if errs != nil {
		v.fail(errs)
		return
	}

	decimals := spec.decimals()
	v.ExpectedValue = normalize.RoundTo(left, decimals)
	v.ActualValue = normalize.RoundTo(right, decimals)
	if v.ExpectedValue != v.ActualValue {
		v.fail(fmt.Errorf("%w: expected %s, got %s", ErrFieldMismatch,
			normalize.Text(v.ExpectedValue), normalize.Text(v.ActualValue)))
		return
	}
	v.Passed = true
}

func compareContains(v *Verdict) {
	want := strings.TrimSpace(v.Expected)
	if want == "" {
		v.fail(fmt.Errorf("%w: expected value is empty", ErrFieldMismatch))
		return
	}
	if !strings.Contains(v.Actual, want) {
		v.fail(fmt.Errorf("%w: %q does not contain %q", ErrFieldMismatch, v.Actual, want))
		return
	}
	v.Passed = true
}
