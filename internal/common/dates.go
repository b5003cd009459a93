package common

import (
	"strings"
	"time"
)

// WireTimestampLayout is the MySQL DATETIME text form, accepted as input.
const WireTimestampLayout = "2006-01-02 15:04:05"

var acceptedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	WireTimestampLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp accepts the date shapes clients send and returns the
// instant in UTC truncated to whole seconds. Zone-less inputs are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Second), nil
		}
	}
	return time.Time{}, NewValidationError("unrecognised date %q", s)
}
