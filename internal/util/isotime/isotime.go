// Package isotime formats and parses the ISO8601 timestamps used by the
// execution API models. Timestamps are carried with microsecond precision;
// API responses render them offset-less in UTC with a trailing Z.
package isotime

import (
	"fmt"
	"strings"
	"time"
)

const (
	layoutUTC    = "2006-01-02T15:04:05.000000Z"
	layoutOffset = "2006-01-02T15:04:05.000000-07:00"
)

// parse layouts, most specific first
var parseLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
}

// Format renders t with microsecond precision. With offset=false the value
// is converted to UTC and rendered with a trailing Z, otherwise the numeric
// offset is kept.
func Format(t time.Time, offset bool) string {
	t = t.Truncate(time.Microsecond)
	if !offset {
		return t.UTC().Format(layoutUTC)
	}
	return t.Format(layoutOffset)
}

// Parse accepts RFC3339-style timestamps with or without fractional seconds
// and with either a Z or a numeric offset. Values without any offset are
// taken as UTC.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}
