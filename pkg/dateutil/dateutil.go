package dateutil

import (
	"time"
)

// MonthsPerYear is the number of withholding periods in a tax year.
const MonthsPerYear = 12

// ClampMonth forces a month number into the range 1..12
func ClampMonth(month int) int {
	if month < 1 {
		return 1
	}
	if month > MonthsPerYear {
		return MonthsPerYear
	}
	return month
}

// NextMonth returns the month following the given one. December wraps to
// January, so the result is always in 1..12.
func NextMonth(month int) int {
	return ClampMonth(month)%MonthsPerYear + 1
}

// CurrentMonth returns the calendar month of t as 1..12
func CurrentMonth(t time.Time) int {
	return int(t.Month())
}

// RemainingMonths returns the months strictly after the given one through
// December, in order. December yields an empty slice.
func RemainingMonths(month int) []int {
	m := ClampMonth(month)
	months := make([]int, 0, MonthsPerYear-m)
	for next := m + 1; next <= MonthsPerYear; next++ {
		months = append(months, next)
	}
	return months
}

// IsValidMonth reports whether month is in 1..12
func IsValidMonth(month int) bool {
	return month >= 1 && month <= MonthsPerYear
}
