package reconcile

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"

	"github.com/iwvelando/emi-reconcile/pkg/constants"
)

var (
	// ErrRowCountMismatch is wrapped by RowCountMismatchError.
	ErrRowCountMismatch = errors.New("row count mismatch")

	// ErrKeyMismatch is returned when keyed alignment finds keys on one side only.
	ErrKeyMismatch = errors.New("key mismatch")

	// ErrDuplicateKey is returned when keyed alignment meets the same key twice.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrUnknownAlignment is returned for an unsupported alignment name.
	ErrUnknownAlignment = errors.New("unknown alignment")
)

// RowCountMismatchError reports two record sets of different lengths.
type RowCountMismatchError struct {
	LeftSource  string
	RightSource string
	Left        int
	Right       int
}

func (e *RowCountMismatchError) Error() string {
	return fmt.Sprintf("%s: %s has %d records, %s has %d",
		ErrRowCountMismatch, e.LeftSource, e.Left, e.RightSource, e.Right)
}

// Unwrap lets errors.Is match ErrRowCountMismatch.
func (e *RowCountMismatchError) Unwrap() error {
	return ErrRowCountMismatch
}

// Alignment selects how two record sets are paired.
type Alignment string

const (
	// ByKey pairs records sharing a key.
	ByKey Alignment = constants.AlignmentKey

	// ByPosition pairs record i with record i.
	ByPosition Alignment = constants.AlignmentPosition
)

// ParseAlignment accepts "key" or "position", case-insensitively. Empty text
// selects ByKey.
func ParseAlignment(value string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", constants.AlignmentKey:
		return ByKey, nil
	case constants.AlignmentPosition:
		return ByPosition, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAlignment, value)
	}
}

// Pair is one aligned left/right record.
type Pair struct {
	Left  Record
	Right Record
}

func checkCounts(left, right []Record) error {
	if len(left) != len(right) {
		return &RowCountMismatchError{
			LeftSource:  sourceOf(left, "left"),
			RightSource: sourceOf(right, "right"),
			Left:        len(left),
			Right:       len(right),
		}
	}
	return nil
}

// AlignByPosition pairs record i of left with record i of right.
func AlignByPosition(left, right []Record) ([]Pair, error) {
	if err := checkCounts(left, right); err != nil {
		return nil, err
	}
	pairs := make([]Pair, len(left))
	for i := range left {
		pairs[i] = Pair{Left: left[i], Right: right[i]}
	}
	return pairs, nil
}

// AlignByKey pairs records by key, in left order. Keys present on only one
// side are listed in the returned error.
func AlignByKey(left, right []Record) ([]Pair, error) {
	if err := checkCounts(left, right); err != nil {
		return nil, err
	}

	leftSource, rightSource := sourceOf(left, "left"), sourceOf(right, "right")
	leftKeys, err := indexByKey(left, leftSource)
	if err != nil {
		return nil, err
	}
	rightKeys, err := indexByKey(right, rightSource)
	if err != nil {
		return nil, err
	}

	var errs error
	if missing := keysAbsentFrom(leftKeys, rightKeys); len(missing) > 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: %s lacks keys %s present in %s",
			ErrKeyMismatch, rightSource, strings.Join(missing, ", "), leftSource))
	}
	if missing := keysAbsentFrom(rightKeys, leftKeys); len(missing) > 0 {
		errs = multierr.Append(errs, fmt.Errorf("%w: %s lacks keys %s present in %s",
			ErrKeyMismatch, leftSource, strings.Join(missing, ", "), rightSource))
	}
	if errs != nil {
		return nil, errs
	}

	pairs := make([]Pair, len(left))
	for i, rec := range left {
		pairs[i] = Pair{Left: rec, Right: right[rightKeys[rec.Key]]}
	}
	return pairs, nil
}

func indexByKey(records []Record, source string) (map[string]int, error) {
	index := make(map[string]int, len(records))
	for i, rec := range records {
		if _, dup := index[rec.Key]; dup {
			return nil, fmt.Errorf("%w: %q appears more than once in %s", ErrDuplicateKey, rec.Key, source)
		}
		index[rec.Key] = i
	}
	return index, nil
}

// keysAbsentFrom returns the keys of from that other lacks, sorted.
func keysAbsentFrom(from, other map[string]int) []string {
	var missing []string
	for key := range from {
		if _, ok := other[key]; !ok {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

// Align dispatches on alignment.
func Align(left, right []Record, alignment Alignment) ([]Pair, error) {
	switch alignment {
	case ByKey, "":
		return AlignByKey(left, right)
	case ByPosition:
		return AlignByPosition(left, right)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlignment, alignment)
	}
}
