package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/resy-asks/internal/dates"
	"github.com/example/resy-asks/internal/domain/reservation"
	"github.com/example/resy-asks/internal/venues"
)

type fakePlatform struct {
	mu sync.Mutex

	slots     map[string][]reservation.Slot
	searchErr map[string]error

	reservations []reservation.ExistingReservation
	listErr      error

	holdErr    error
	confirmErr error

	searches     []string
	listCalls    int
	holds        []reservation.Slot
	confirms     []reservation.HoldToken
	forceReplace []bool
}

func searchKey(venueID string, day time.Time) string {
	return venueID + "|" + dates.DayToken(day)
}

func (f *fakePlatform) SearchAvailability(ctx context.Context, venueID string, day time.Time, numSeats int, window dates.Window) ([]reservation.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := searchKey(venueID, day)
	f.searches = append(f.searches, key)
	if err := f.searchErr[key]; err != nil {
		return nil, err
	}
	return f.slots[key], nil
}

func (f *fakePlatform) ListReservations(ctx context.Context) ([]reservation.ExistingReservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.reservations, nil
}

func (f *fakePlatform) AcquireHold(ctx context.Context, slot reservation.Slot) (reservation.HoldToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.holds = append(f.holds, slot)
	if f.holdErr != nil {
		return reservation.HoldToken{}, f.holdErr
	}
	return reservation.HoldToken{Value: "hold-" + slot.Token}, nil
}

func (f *fakePlatform) ConfirmBooking(ctx context.Context, hold reservation.HoldToken, forceReplace bool) (reservation.BookingResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirms = append(f.confirms, hold)
	f.forceReplace = append(f.forceReplace, forceReplace)
	if f.confirmErr != nil {
		return reservation.BookingResult{}, f.confirmErr
	}
	return reservation.BookingResult{ReservationToken: "resy-" + hold.Value, ReservationID: fmt.Sprintf("%d", len(f.confirms))}, nil
}

type fakeLookup struct {
	ids   map[string]string
	calls int
}

func (f *fakeLookup) ResolveVenueID(ctx context.Context, name string) (string, error) {
	f.calls++
	if id, ok := f.ids[name]; ok {
		return id, nil
	}
	return "", reservation.ErrVenueUnresolved
}

var today = time.Date(2022, 5, 9, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return today }

func day(s string) time.Time {
	d, err := dates.TokenToDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func slot(venueID, d, tm, kind, token string) reservation.Slot {
	return reservation.Slot{
		Day:       day(d),
		Time:      dates.MustClock(tm),
		NumSeats:  2,
		VenueID:   venueID,
		VenueName: "venue " + venueID,
		Kind:      kind,
		Token:     token,
	}
}

func ask(start, end, from, to string, venueNames ...string) reservation.Ask {
	return reservation.Ask{
		StartDay:   day(start),
		EndDay:     day(end),
		StartTime:  dates.MustClock(from),
		EndTime:    dates.MustClock(to),
		NumSeats:   2,
		VenueNames: venueNames,
	}
}

func newTestEngine(p *fakePlatform, lookup *fakeLookup) *Engine {
	reg := venues.NewRegistry(lookup, zerolog.Nop())
	return New(p, reg, zerolog.Nop(), WithClock(fixedNow))
}
