// Package normalize turns displayed numeric text into comparable numbers.
package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/iwvelando/emi-reconcile/pkg/constants"
	"github.com/iwvelando/emi-reconcile/pkg/mathutil"
)

// ErrUnparsableValue is returned when no number can be read from a value.
var ErrUnparsableValue = errors.New("unparsable value")

// DefaultDecimals is the rounding used for percentage comparisons.
const DefaultDecimals = constants.DefaultDecimals

// decoration is removed before parsing.
var decoration = strings.NewReplacer("₹", "", ",", "", "%", "")

// Strip removes the currency symbol, percent sign, thousands separators and
// every whitespace rune.
func Strip(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, decoration.Replace(text))
}

// Currency parses formatted text such as "₹ 35,00,000", "12.5 %" or
// "1,234.50" into a number.
func Currency(text string) (float64, error) {
	stripped := Strip(text)
	if strings.IndexFunc(stripped, unicode.IsDigit) < 0 {
		return 0, fmt.Errorf("%w: no digits in %q", ErrUnparsableValue, text)
	}
	value, err := strconv.ParseFloat(stripped, 64)
	if err != nil || !mathutil.IsFinite(value) {
		return 0, fmt.Errorf("%w: %q", ErrUnparsableValue, text)
	}
	return value, nil
}

// Value normalizes numbers directly and strings through Currency. Workbook
// cells and JSON payloads arrive as either.
func Value(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case string:
		return Currency(n)
	case fmt.Stringer:
		return Currency(n.String())
	case nil:
		return 0, fmt.Errorf("%w: empty value", ErrUnparsableValue)
	default:
		return Currency(fmt.Sprint(n))
	}
}

// RoundTo rounds to the given number of decimals.
func RoundTo(value float64, decimals int) float64 {
	return mathutil.RoundTo(value, decimals)
}

// Equal normalizes both texts, rounds them to decimals and compares exactly.
func Equal(a, b string, decimals int) (bool, error) {
	left, err := Currency(a)
	if err != nil {
		return false, err
	}
	right, err := Currency(b)
	if err != nil {
		return false, err
	}
	return RoundTo(left, decimals) == RoundTo(right, decimals), nil
}

// Text renders a normalized number back to plain text. Currency(Text(v))
// returns v.
func Text(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
