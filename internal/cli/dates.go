// Package cli holds small parsers for command-line values.
package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Matches "2h", "7d ago", "2w", "1mo ago".
var relativeRegex = regexp.MustCompile(`^(\d+)\s*(mo|w|d|h|m)(\s+ago)?$`)

// ParseSince parses a lower time bound for list filters. Every relative
// form counts back from now: "7d" and "7d ago" are the same instant.
// Also accepted: "today", "yesterday", a weekday ("monday", "last fri"),
// a date (2006-01-02) and RFC3339.
func ParseSince(s string, now time.Time) (time.Time, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty time expression")
	}
	input := strings.ToLower(raw)

	switch input {
	case "today":
		return startOfDay(now), nil
	case "yesterday":
		return startOfDay(now).AddDate(0, 0, -1), nil
	}

	if t, ok := parseWeekday(input, now); ok {
		return t, nil
	}

	if m := relativeRegex.FindStringSubmatch(input); m != nil {
		value, err := strconv.Atoi(m[1])
		if err != nil || value < 1 {
			return time.Time{}, fmt.Errorf("invalid relative time %q", raw)
		}
		return subtract(now, value, m[2]), nil
	}

	if t, err := time.ParseInLocation(time.DateOnly, raw, now.Location()); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("invalid time expression %q (try 7d, yesterday, monday or 2006-01-02)", raw)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// parseWeekday resolves to the most recent such day, today included.
// "last" skips today.
func parseWeekday(input string, now time.Time) (time.Time, bool) {
	last := false
	if rest, ok := strings.CutPrefix(input, "last "); ok {
		last = true
		input = strings.TrimSpace(rest)
	}

	weekday, ok := weekdays[input]
	if !ok {
		return time.Time{}, false
	}

	base := startOfDay(now)
	delta := (int(base.Weekday()) - int(weekday) + 7) % 7
	if last && delta == 0 {
		delta = 7
	}
	return base.AddDate(0, 0, -delta), true
}

var weekdays = map[string]time.Weekday{
	"sun":       time.Sunday,
	"sunday":    time.Sunday,
	"mon":       time.Monday,
	"monday":    time.Monday,
	"tue":       time.Tuesday,
	"tues":      time.Tuesday,
	"tuesday":   time.Tuesday,
	"wed":       time.Wednesday,
	"wednesday": time.Wednesday,
	"thu":       time.Thursday,
	"thurs":     time.Thursday,
	"thursday":  time.Thursday,
	"fri":       time.Friday,
	"friday":    time.Friday,
	"sat":       time.Saturday,
	"saturday":  time.Saturday,
}

func subtract(now time.Time, value int, unit string) time.Time {
	switch unit {
	case "mo":
		return now.AddDate(0, -value, 0)
	case "w":
		return now.AddDate(0, 0, -7*value)
	case "d":
		return now.AddDate(0, 0, -value)
	case "h":
		return now.Add(-time.Duration(value) * time.Hour)
	default:
		return now.Add(-time.Duration(value) * time.Minute)
	}
}
