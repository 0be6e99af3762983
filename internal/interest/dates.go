package interest

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// DaysInMonth returns the number of days in a given month
func DaysInMonth(year int, month time.Month) int {
	if month == time.February {
		// Check for leap year
		if (year%4 == 0 && year%100 != 0) || (year%400 == 0) {
			return 29
		}
		return 28
	}

	// Months with 30 days: April, June, September, November
	if month == time.April || month == time.June || month == time.September || month == time.November {
		return 30
	}

	return 31
}

// DaysInMonthOf returns the length of the calendar month containing t.
func DaysInMonthOf(t time.Time) int {
	return DaysInMonth(t.Year(), t.Month())
}

// TruncateToDay returns midnight of t's calendar date in t's own location.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseDate converts a yyyy-mm-dd string into midnight of that date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected yyyy-mm-dd", s)
	}
	return t, nil
}

// CivilDate pins t's calendar date (as seen in t's location) to midnight UTC.
// Calendar dates such as lend dates and posting dates are stored this way so
// that they survive a round trip through the database unchanged.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
