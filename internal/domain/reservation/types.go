package reservation

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/resy-asks/internal/dates"
)

// Ask is a standing preference. VenueNames is in priority order.
type Ask struct {
	StartDay   time.Time
	EndDay     time.Time
	StartTime  dates.Clock
	EndTime    dates.Clock
	NumSeats   int
	VenueNames []string
}

func (a Ask) Window() dates.Window {
	return dates.Window{Start: a.StartTime, End: a.EndTime}
}

// Validate reports ErrInvalidAsk for inverted ranges, a non-positive party or no venues.
func (a Ask) Validate() error {
	switch {
	case a.StartDay.After(a.EndDay):
		return fmt.Errorf("%w: start day %s after end day %s", ErrInvalidAsk, dates.DayToken(a.StartDay), dates.DayToken(a.EndDay))
	case !a.Window().Valid():
		return fmt.Errorf("%w: start time %s after end time %s", ErrInvalidAsk, a.StartTime, a.EndTime)
	case a.NumSeats < 1:
		return fmt.Errorf("%w: num_seats must be >= 1", ErrInvalidAsk)
	case len(a.VenueNames) == 0:
		return fmt.Errorf("%w: no venues", ErrInvalidAsk)
	}
	return nil
}

// Live reports whether the ask's last day is today or later.
func (a Ask) Live(today time.Time) bool {
	return !dates.Day(a.EndDay).Before(dates.Day(today))
}

// Check runs Validate and then the liveness test.
func (a Ask) Check(today time.Time) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if !a.Live(today) {
		return fmt.Errorf("%w: ended %s", ErrExpiredAsk, dates.DayToken(a.EndDay))
	}
	return nil
}

// Covers reports whether day and time fall inside the ask's day range and window.
func (a Ask) Covers(day time.Time, t dates.Clock) bool {
	day = dates.Day(day)
	return !day.Before(dates.Day(a.StartDay)) && !day.After(dates.Day(a.EndDay)) && a.Window().Contains(t)
}

func (a Ask) String() string {
	return fmt.Sprintf("%s..%s %s-%s x%d [%s]",
		dates.DayToken(a.StartDay), dates.DayToken(a.EndDay), a.StartTime, a.EndTime, a.NumSeats, strings.Join(a.VenueNames, ", "))
}

// Slot is one bookable availability entry for a venue, day and party size.
type Slot struct {
	Day       time.Time
	Time      dates.Clock
	NumSeats  int
	VenueID   string
	VenueName string
	Kind      string
	Token     string
}

func (s Slot) String() string {
	return fmt.Sprintf("%s %s %s (%s) x%d", s.VenueName, dates.DayToken(s.Day), s.Time, s.Kind, s.NumSeats)
}

// ExistingReservation is a reservation the user already holds.
type ExistingReservation struct {
	Day       time.Time
	Time      dates.Clock
	NumSeats  int
	VenueID   string
	VenueName string
}

// HoldToken is the platform's short-lived booking hold.
type HoldToken struct {
	Value           string
	PaymentMethodID int64
}

// BookingResult identifies a confirmed reservation.
type BookingResult struct {
	ReservationToken string
	ReservationID    string
}
