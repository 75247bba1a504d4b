// Package datetime provides month arithmetic for amortization schedules.
package datetime

import (
	"time"

	"github.com/iwvelando/emi-reconcile/pkg/constants"
)

const (
	// DateTimeLayout is the month layout used for schedule start dates.
	DateTimeLayout = constants.DateTimeLayout
)

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}

// YearOf returns the calendar year of a month formatted with DateTimeLayout.
func YearOf(date string) (int, error) {
	t, err := time.Parse(DateTimeLayout, date)
	if err != nil {
		return 0, err
	}
	return t.Year(), nil
}

// CurrentMonth formats the month containing now.
func CurrentMonth(now time.Time) string {
	return now.Format(DateTimeLayout)
}
