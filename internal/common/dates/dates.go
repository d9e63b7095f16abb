// Package dates normalizes the loosely formatted date strings found in
// requests and upstream tickets to calendar dates.
package dates

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Layout is the canonical calendar-date form used for comparisons and output.
const Layout = time.DateOnly

// Normalize parses any date-like string and returns its calendar date as
// YYYY-MM-DD. Time of day is discarded. Timestamps with an offset keep the
// date as written in that offset; naive timestamps are read as UTC.
func Normalize(value string) (string, error) {
	t, err := Parse(value)
	if err != nil {
		return "", err
	}
	return t.Format(Layout), nil
}

// Parse parses a date-like string into a time.Time.
func Parse(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	// Fast path for the canonical form, which is what most tickets carry.
	if t, err := time.Parse(Layout, trimmed); err == nil {
		return t, nil
	}

	t, err := dateparse.ParseIn(trimmed, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return t, nil
}
