package asks

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/resy-asks/internal/dates"
	"github.com/example/resy-asks/internal/domain/reservation"
)

const rangeSep = " - "

// splitRange splits "a - b". A single value v means v - v.
func splitRange(s string) (string, string, error) {
	parts := strings.Split(strings.TrimSpace(s), rangeSep)
	switch len(parts) {
	case 1:
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[0]), nil
	case 2:
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
	default:
		return "", "", fmt.Errorf("%w: range %q", reservation.ErrFormat, s)
	}
}

// splitVenues splits a comma separated venue list, dropping blanks.
func splitVenues(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parseFields builds an Ask from the textual form shared by every source.
// Day fields take a YYYY-MM-DD token or a weekday name. Semantic checks
// (inverted ranges, seat count) are left to the engine's validity gate.
func parseFields(dayRange, timeRange, seats string, venues []string, today time.Time) (reservation.Ask, error) {
	startDay, endDay, err := splitRange(dayRange)
	if err != nil {
		return reservation.Ask{}, err
	}
	startTime, endTime, err := splitRange(timeRange)
	if err != nil {
		return reservation.Ask{}, err
	}

	var a reservation.Ask
	if a.StartDay, a.EndDay, err = dates.ParseDayRange(startDay, endDay, today); err != nil {
		return reservation.Ask{}, err
	}
	if a.StartTime, err = dates.ParseClock(startTime); err != nil {
		return reservation.Ask{}, err
	}
	if a.EndTime, err = dates.ParseClock(endTime); err != nil {
		return reservation.Ask{}, err
	}
	if a.NumSeats, err = strconv.Atoi(strings.TrimSpace(seats)); err != nil {
		return reservation.Ask{}, fmt.Errorf("%w: seats %q", reservation.ErrFormat, seats)
	}
	a.VenueNames = venues
	return a, nil
}

// parseRow parses a four column row: day range, time range, seats, venues.
func parseRow(row []string, today time.Time) (reservation.Ask, error) {
	if len(row) != 4 {
		return reservation.Ask{}, fmt.Errorf("%w: want 4 columns, got %d", reservation.ErrFormat, len(row))
	}
	return parseFields(row[0], row[1], row[2], splitVenues(row[3]), today)
}
