package common

import (
	"fmt"
	"strings"
	"time"
)

// DateOnly is the layout of plain calendar dates.
const DateOnly = "2006-01-02"

// ParseDate accepts an RFC 3339 timestamp or a YYYY-MM-DD date and returns
// it in UTC. With endOfDay set, a date-only value covers the whole day.
func ParseDate(value string, endOfDay bool) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), nil
	}

	t, err := time.Parse(DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected RFC 3339 or YYYY-MM-DD", value)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
