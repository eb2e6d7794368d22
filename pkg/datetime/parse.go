// Package datetime provides period date utility functions.
package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/business-case/pkg/constants"
)

const (
	// DateTimeLayout is the format of start dates and record dates.
	DateTimeLayout = constants.DateTimeLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// PeriodDates returns count consecutive monthly dates beginning at start.
// An empty or unparsable start falls back to constants.DefaultStartDate.
func PeriodDates(start string, count int) []string {
	startT, err := time.Parse(DateTimeLayout, start)
	if err != nil {
		startT = MustParseTime(DateTimeLayout, constants.DefaultStartDate)
	}
	dates := make([]string, count)
	for i := range dates {
		dates[i] = startT.AddDate(0, i, 0).Format(DateTimeLayout)
	}
	return dates
}

// ValidatePeriod returns an error when date is not in DateTimeLayout.
func ValidatePeriod(date string) error {
	if _, err := time.Parse(DateTimeLayout, date); err != nil {
		return fmt.Errorf("invalid period %q, expected YYYY-MM: %w", date, err)
	}
	return nil
}
