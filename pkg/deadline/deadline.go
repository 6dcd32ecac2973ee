// Package deadline turns the heterogeneous date-time strings returned by the
// scheme API into absolute instants.
//
// Timestamps without a zone are always read as wall-clock time in the
// caller's location, never as UTC.
package deadline

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// componentPattern matches YYYY[-/]MM[-/]DD[ T]HH:MM[:SS] with nothing after it.
var componentPattern = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})[ T](\d{1,2}):(\d{1,2})(?::(\d{1,2}))?$`)

// zonedLayouts carry their own offset; the location only applies when the
// string names none.
var zonedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.RFC822Z,
	time.RFC822,
	time.UnixDate,
	time.ANSIC,
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	"2006/1/2 15:04:05",
	"2006/1/2",
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006",
	"2 Jan 2006 15:04:05",
}

// ISO date-only strings are UTC midnight, everything else zoneless is local.
const isoDateOnly = "2006-01-02"

// Parse resolves raw in the process-local time zone.
func Parse(raw string) (time.Time, bool) {
	return ParseIn(raw, time.Local)
}

// ParseIn resolves raw, reading zoneless timestamps as wall-clock time in loc.
// The boolean is false when no strategy produced an instant, which callers
// treat as "no deadline available".
func ParseIn(raw string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}

	s := strings.TrimSpace(raw)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return time.Time{}, false
	}

	if t, ok := fromComponents(s, loc); ok {
		return t, true
	}
	if t, ok := generic(s, loc); ok {
		return t, true
	}
	if t, ok := generic(strings.Replace(s, " ", "T", 1), loc); ok {
		return t, true
	}
	if t, ok := generic(strings.ReplaceAll(s, "-", "/"), loc); ok {
		return t, true
	}

	return time.Time{}, false
}

// FromMillis returns the instant for a numeric epoch-millisecond value as-is.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms)
}

func fromComponents(s string, loc *time.Location) (time.Time, bool) {
	m := componentPattern.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}

	parts := make([]int, 6)
	for i := 1; i <= 6; i++ {
		if m[i] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i])
		if err != nil {
			return time.Time{}, false
		}
		parts[i-1] = n
	}

	// time.Date normalises out-of-range fields the same way a calendar
	// constructor rolls them over (month 13 -> January next year).
	return time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], 0, loc), true
}

func generic(s string, loc *time.Location) (time.Time, bool) {
	if t, err := time.Parse(isoDateOnly, s); err == nil {
		return t, true
	}
	for _, layout := range zonedLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
