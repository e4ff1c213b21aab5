// Package dates converts between calendar days, day tokens and wall-clock times.
//
// A day is a time.Time at midnight UTC; only its calendar date is meaningful.
package dates

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const DayLayout = "2006-01-02"

// ErrFormat marks malformed day or time input.
var ErrFormat = errors.New("malformed value")

// Day returns t's calendar date (as seen in t's location) at midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date in the local zone.
func Today() time.Time { return Day(time.Now()) }

// DayToken formats a day as YYYY-MM-DD.
func DayToken(day time.Time) string {
	return day.Format(DayLayout)
}

// TokenToDate parses a YYYY-MM-DD token.
func TokenToDate(token string) (time.Time, error) {
	t, err := time.Parse(DayLayout, strings.TrimSpace(token))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: day %q: %v", ErrFormat, token, err)
	}
	return t, nil
}

// DaysBetween returns the inclusive ascending day tokens from start to end.
// The caller guarantees start is not after end.
func DaysBetween(start, end time.Time) []string {
	start, end = Day(start), Day(end)
	n := int(end.Sub(start).Hours()/24) + 1
	if n < 1 {
		return nil
	}
	out := make([]string, 0, n)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, DayToken(d))
	}
	return out
}

// TokensBetween is DaysBetween for two day tokens.
func TokensBetween(startToken, endToken string) ([]string, error) {
	start, err := TokenToDate(startToken)
	if err != nil {
		return nil, err
	}
	end, err := TokenToDate(endToken)
	if err != nil {
		return nil, err
	}
	return DaysBetween(start, end), nil
}

// NextOccurrence returns the first date on or after today falling on weekday.
// If today is that weekday, today is returned.
func NextOccurrence(weekday time.Weekday, today time.Time) time.Time {
	offset := (int(weekday) - int(today.Weekday()) + 7) % 7
	return Day(today).AddDate(0, 0, offset)
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday accepts full english weekday names, case-insensitively.
func ParseWeekday(s string) (time.Weekday, bool) {
	wd, ok := weekdays[strings.ToLower(strings.TrimSpace(s))]
	return wd, ok
}

// ParseDay accepts a day token or a weekday name. Weekday names resolve to
// their next occurrence relative to today.
func ParseDay(s string, today time.Time) (time.Time, error) {
	if wd, ok := ParseWeekday(s); ok {
		return NextOccurrence(wd, today), nil
	}
	return TokenToDate(s)
}

// ParseDayRange parses both ends of a day range. A weekday name at the end
// resolves relative to the start day, so "friday - sunday" never inverts.
func ParseDayRange(start, end string, today time.Time) (time.Time, time.Time, error) {
	from, err := ParseDay(start, today)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := ParseDay(end, from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}
