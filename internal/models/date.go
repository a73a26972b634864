package models

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar-day form used for task and event dates.
// Zero-padded dates compare correctly as strings.
const DateLayout = "2006-01-02"

// FormatDate renders t as a calendar day in t's location
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses an ISO calendar day
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

// AdvanceDate returns the next occurrence of date for a recurrence rule
func AdvanceDate(date string, freq Frequency) (string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	switch freq {
	case FrequencyDaily:
		return FormatDate(d.AddDate(0, 0, 1)), nil
	case FrequencyWeekly:
		return FormatDate(d.AddDate(0, 0, 7)), nil
	default:
		return "", fmt.Errorf("unknown recurrence frequency %q", freq)
	}
}

// WeekdayIndex maps a weekday to 1 (Monday) .. 7 (Sunday)
func WeekdayIndex(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}
