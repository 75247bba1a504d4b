// Package validation checks configuration values before a run starts.
package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/emi-reconcile/pkg/constants"
)

// MaxDecimals bounds the rounding precision accepted for comparisons.
const MaxDecimals = 10

// ValidateAlignment checks for a supported chart/table alignment. Empty
// selects the default and is accepted.
func ValidateAlignment(alignment string) error {
	switch strings.ToLower(strings.TrimSpace(alignment)) {
	case "", constants.AlignmentKey, constants.AlignmentPosition:
		return nil
	}
	return fmt.Errorf("expected alignment of %s or %s, got %s",
		constants.AlignmentKey, constants.AlignmentPosition, alignment)
}

// ValidateOutputFormat checks a report format name. Empty selects pretty.
func ValidateOutputFormat(format string) error {
	switch format {
	case "", constants.OutputFormatPretty, constants.OutputFormatCSV:
		return nil
	}
	return fmt.Errorf("unsupported output format %q: use %s or %s",
		format, constants.OutputFormatPretty, constants.OutputFormatCSV)
}

// ValidateDecimals checks a rounding precision.
func ValidateDecimals(decimals int) error {
	if decimals < 0 || decimals > MaxDecimals {
		return fmt.Errorf("decimals must be between 0 and %d, got %d", MaxDecimals, decimals)
	}
	return nil
}

// ValidateStartMonth checks a schedule start month such as "2025-07".
func ValidateStartMonth(month string) error {
	if _, err := time.Parse(constants.DateTimeLayout, month); err != nil {
		return fmt.Errorf("expected month in %s layout, got %q", constants.DateTimeLayout, month)
	}
	return nil
}
