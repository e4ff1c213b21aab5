package dates

import (
	"fmt"
	"strconv"
	"strings"
)

// Clock is a wall-clock time of day in seconds since midnight.
type Clock int

// ParseClock accepts HH:MM or HH:MM:SS.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: time %q", ErrFormat, s)
	}
	limits := []int{24, 60, 60}
	var total int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || v >= limits[i] || len(p) != 2 {
			return 0, fmt.Errorf("%w: time %q", ErrFormat, s)
		}
		total = total*60 + v
	}
	if len(parts) == 2 {
		total *= 60
	}
	return Clock(total), nil
}

// MustClock is ParseClock for literals.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", int(c)/3600, int(c)/60%60, int(c)%60)
}

// Window is an inclusive time-of-day range.
type Window struct {
	Start Clock
	End   Clock
}

func (w Window) Contains(c Clock) bool {
	return c >= w.Start && c <= w.End
}

func (w Window) Valid() bool { return w.Start <= w.End }
