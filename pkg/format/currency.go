// Package format renders amounts the way the calculator displays them.
package format

import (
	"math"
	"strconv"
	"strings"
)

// RupeeSymbol prefixes displayed currency amounts.
const RupeeSymbol = "₹"

// Rupees returns a whole-rupee string with the symbol and Indian digit
// grouping (e.g., "₹ 35,00,000", "-₹ 1,234").
func Rupees(amount float64) string {
	formatted := Indian(math.Abs(amount))
	if math.Round(amount) < 0 {
		return "-" + RupeeSymbol + " " + formatted
	}
	return RupeeSymbol + " " + formatted
}

// Indian returns a whole-number string grouped as lakh/crore without a symbol
// (e.g., "1,25,00,000").
func Indian(amount float64) string {
	sign := ""
	rounded := math.Round(amount)
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}
	return sign + groupIndian(strconv.FormatFloat(rounded, 'f', 0, 64))
}

// Percent formats a percentage with a fixed number of decimals and a trailing
// percent sign (e.g., "12.34%").
func Percent(value float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return strconv.FormatFloat(value, 'f', decimals, 64) + "%"
}

// groupIndian inserts separators after the last three digits and then every
// two digits.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var builder strings.Builder
	for i, digit := range head {
		if i > 0 && (len(head)-i)%2 == 0 {
			builder.WriteByte(',')
		}
		builder.WriteRune(digit)
	}
	builder.WriteByte(',')
	builder.WriteString(tail)
	return builder.String()
}
