package timeutil

import (
	"errors"
	"strings"
	"time"
)

// naiveLayouts are timestamps written without a zone. They are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ErrEmpty is returned when parsing a blank timestamp.
var ErrEmpty = errors.New("timeutil: empty timestamp")

// ParseUTC parses an RFC3339 timestamp, or a zone-less one which is taken to
// be UTC, and returns it in UTC.
func ParseUTC(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrEmpty
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err == nil {
		return t.UTC(), nil
	}
	for _, layout := range naiveLayouts {
		if naive, nerr := time.ParseInLocation(layout, value, time.UTC); nerr == nil {
			return naive, nil
		}
	}
	return time.Time{}, err
}

// UTC converts t to UTC, leaving the zero time untouched.
func UTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
