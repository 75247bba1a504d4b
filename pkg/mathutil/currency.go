// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"
)

// Round rounds a value to the nearest whole currency unit, half away from zero.
func Round(val float64) float64 {
	return math.Round(val)
}

// RoundToInt rounds half away from zero and converts to int64.
func RoundToInt(val float64) int64 {
	return int64(math.Round(val))
}

// RoundTo rounds a value to the given number of decimals. Negative decimals
// are treated as zero.
func RoundTo(val float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(val)
	}
	scale := math.Pow(10, float64(decimals))
	return math.Round(val*scale) / scale
}

// IsFinite reports whether val is neither NaN nor an infinity.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * 100
}
