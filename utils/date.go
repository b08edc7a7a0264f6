package utils

import (
	"fmt"
	"os"
	"time"

	"gorm.io/datatypes"
)

// DateLocation is the timezone every workflow "today" is computed in.
var DateLocation = time.UTC

// InitializeDateLocation loads APP_TIMEZONE, defaulting to UTC.
func InitializeDateLocation() error {
	name := os.Getenv("APP_TIMEZONE")
	if name == "" {
		DateLocation = time.UTC
		return nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", name, err)
	}
	DateLocation = loc
	return nil
}

// Today returns the calendar date of now in DateLocation.
func Today(now time.Time) datatypes.Date {
	y, m, d := now.In(DateLocation).Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, DateLocation))
}

// AddDays shifts a calendar date.
func AddDays(d datatypes.Date, days int) datatypes.Date {
	return datatypes.Date(time.Time(d).AddDate(0, 0, days))
}

// FormatDate renders a date column, "" for nil.
func FormatDate(d *datatypes.Date) string {
	if d == nil {
		return ""
	}
	return time.Time(*d).Format("2006-01-02")
}

// ParseDate parses a yyyy-mm-dd form value; empty input yields nil.
func ParseDate(s string) (*datatypes.Date, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, DateLocation)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: expected yyyy-mm-dd", s)
	}
	d := datatypes.Date(t)
	return &d, nil
}

// DaysBetween counts calendar days from a to b. Each date is read by its own
// year, month and day, so dates loaded in different locations still compare
// as calendar dates.
func DaysBetween(a, b datatypes.Date) int {
	ay, am, ad := time.Time(a).Date()
	by, bm, bd := time.Time(b).Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
