package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/resy-asks/internal/dates"
	"github.com/example/resy-asks/internal/domain/reservation"
)

var defaultVenues = map[string]string{"dante": "1290", "carbone": "6194", "lilia": "418"}

func TestProcessInvalidAskMakesNoCalls(t *testing.T) {
	tests := []struct {
		name string
		ask  reservation.Ask
	}{
		{"inverted days", ask("2022-05-12", "2022-05-10", "19:00", "21:00", "dante")},
		{"inverted times", ask("2022-05-10", "2022-05-12", "21:00", "19:00", "dante")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePlatform{}
			lookup := &fakeLookup{ids: defaultVenues}
			e := newTestEngine(p, lookup)

			res := e.Matcher().Process(context.Background(), tt.ask, nil)
			assert.Equal(t, OutcomeInvalid, res.Outcome)
			assert.ErrorIs(t, res.Err, reservation.ErrInvalidAsk)
			assert.Empty(t, p.searches)
			assert.Empty(t, p.holds)
			assert.Zero(t, lookup.calls)
		})
	}
}

func TestProcessExpiredAsk(t *testing.T) {
	p := &fakePlatform{}
	e := newTestEngine(p, &fakeLookup{ids: defaultVenues})

	res := e.Matcher().Process(context.Background(), ask("2022-05-01", "2022-05-08", "19:00", "21:00", "dante"), nil)
	assert.Equal(t, OutcomeExpired, res.Outcome)
	assert.ErrorIs(t, res.Err, reservation.ErrExpiredAsk)
	assert.Empty(t, p.searches)
}

func TestProcessAskEndingTodayIsLive(t *testing.T) {
	p := &fakePlatform{}
	e := newTestEngine(p, &fakeLookup{ids: defaultVenues})

	res := e.Matcher().Process(context.Background(), ask("2022-05-09", "2022-05-09", "19:00", "21:00", "dante"), nil)
	assert.Equal(t, OutcomeNoMatch, res.Outcome)
	assert.Equal(t, []string{"1290|2022-05-09"}, p.searches)
}

func TestConflictAtFirstVenueShortCircuits(t *testing.T) {
	p := &fakePlatform{slots: map[string][]reservation.Slot{
		"1290|2022-05-10": {slot("1290", "2022-05-10", "19:30", "Dining Room", "t1")},
	}}
	e := newTestEngine(p, &fakeLookup{ids: defaultVenues})
	existing := []reservation.ExistingReservation{
		{Day: day("2022-05-11"), Time: dates.MustClock("20:00"), NumSeats: 4, VenueID: "1290", VenueName: "Dante"},
	}

	res := e.Matcher().Process(context.Background(), ask("2022-05-10", "2022-05-12", "19:00", "21:00", "dante", "carbone"), existing)
	assert.Equal(t, OutcomeSatisfied, res.Outcome)
	assert.Equal(t, "1290", res.ConflictVenueID)
	assert.Empty(t, p.searches)
	assert.Empty(t, p.holds)
}

func TestConflictAtLaterVenueStopsAfterEarlierVenuesAreScanned(t *testing.T) {
	p := &fakePlatform{}
	e := newTestEngine(p, &fakeLookup{ids: defaultVenues})
	existing := []reservation.ExistingReservation{
		{Day: day("2022-05-10"), Time: dates.MustClock("19:00"), VenueID: "6194"},
	}

	res := e.Matcher().Process(context.Background(), ask("2022-05-10", "2022-05-11", "19:00", "21:00", "dante", "carbone", "lilia"), existing)
	assert.Equal(t, OutcomeSatisfied, res.Outcome)
	assert.Equal(t, []string{"1290|2022-05-10", "1290|2022-05-11"}, p.searches)
}

func TestReservationsOutsideWindowAreNotConflicts(t *testing.T) {
	a := ask("2022-05-10", "2022-05-12", "19:00", "21:00", "dante")
	existing := []reservation.ExistingReservation{
		{Day: day("2022-05-13"), Time: dates.MustClock("20:00"), VenueID: "1290"},
		{Day: day("2022-05-10"), Time: dates.MustClock("21:30"), VenueID: "1290"},
		{Day: day("2022-05-12"), Time: dates.MustClock("21:00"), NumSeats: 8, VenueID: "6194"},
	}

	got := ConflictSet(a, existing)
	assert.Equal(t, map[string]struct{}{"6194": {}}, got)
}

func TestVenuePriorityBeatsEarlierDay(t *testing.T) {
	p := &fakePlatform{slots: map[string][]reservation.Slot{
		"6194|2022-05-10": {slot("6194", "2022-05-10", "19:00", "Dining Room", "carbone-early")},
		"1290|2022-05-12": {slot("1290", "2022-05-12", "20:00", "Dining Room", "dante-late")},
	}}
	e := newTestEngine(p, &fakeLookup{ids: defaultVenues})

	res := e.Matcher().Process(context.Background(), ask("2022-05-10", "2022-05-12", "19:00", "21:00", "dante", "carbone"), nil)
	require.Equal(t, OutcomeBooked, res.Outcome)
	assert.Equal(t, "dante-late", res.Slot.Token)
	assert.Equal(t, []string{"1290|2022-05-10", "1290|2022-05-11", "1290|2022-05-12"}, p.searches)
}

func TestFallsThroughToSecondVenue(t *testing.T) {
	p := &fakePlatform{slots: map[string][]reservation.Slot{
		"6194|2022-05-11": {slot("6194", "2022-05-11", "20:15", "Dining Room", "v2")},
	}}
	e := newTestEngine(p, &fakeLookup{ids: defaultVenues})

	res := e.Matcher().Process(context.Background(), ask("2022-05-10", "2022-05-11", "19:00", "21:00", "dante", "carbone"), nil)
	require.Equal(t, OutcomeBooked, res.Outcome)
	assert.Equal(t, "v2", res.Slot.Token)
	assert.Equal(t, "resy-hold-v2", res.Booking.ReservationToken)
	assert.Equal(t, []bool{true}, p.forceReplace)
}

func TestOutdoorSlotRejectedEvenWhenEarlier(t *testing.T) {
	p := &fakePlatform{slots: map[string][]reservation.Slot{
		"1290|2022-05-10": {
			slot("1290", "2022-05-10", "18:30", "Dining Room", "too-early"),
			slot("1290", "2022-05-10", "19:00", "Outdoors", "outside"),
			slot("1290", "2022-05-10", "20:30", "Dining Room", "inside"),
		},
	}}
	e := newTestEngine(p, &fakeLookup{ids: defaultVenues})

	res := e.Matcher().Process(context.Background(), ask("2022-05-10", "2022-05-10", "19:00", "21:00", "dante"), nil)
	require.Equal(t, OutcomeBooked, res.Outcome)
	assert.Equal(t, "inside", res.Slot.Token)
	require.Len(t, p.holds, 1)
}

func TestAtMostOneBookingAttemptPerAsk(t *testing.T) {
	p := &fakePlatform{
		slots: map[string][]reservation.Slot{
			"1290|2022-05-10": {
				slot("1290", "2022-05-10", "19:00", "Bar", "first"),
				slot("1290", "2022-05-10", "19:30", "Bar", "second"),
			},
			"1290|2022-05-11": {slot("1290", "2022-05-11", "19:00", "Bar", "third")},
		},
		holdErr: fmt.Errorf("%w: slot no longer available", reservation.ErrBooking),
	}
	e := newTestEngine(p, &fakeLookup{ids: defaultVenues})

	res := e.Matcher().Process(context.Background(), ask("2022-05-10", "2022-05-11", "19:00", "21:00", "dante", "carbone"), nil)
	assert.Equal(t, OutcomeBookingFailed, res.Outcome)
	assert.ErrorIs(t, res.Err, reservation.ErrBooking)
	assert.Len(t, p.holds, 1)
	assert.Empty(t, p.confirms, "no confirm after a failed hold")
	assert.Equal(t, []string{"1290|2022-05-10"}, p.searches)
}

func TestConfirmFailureDoesNotBlockNextAttempt(t *testing.T) {
	p := &fakePlatform{
		slots: map[string][]reservation.Slot{
			"1290|2022-05-10": {slot("1290", "2022-05-10", "19:00", "Dining Room", "s1")},
		},
		confirmErr: fmt.Errorf("%w: http 500", reservation.ErrBooking),
	}
	e := newTestEngine(p, &fakeLookup{ids: defaultVenues})
	a := ask("2022-05-10", "2022-05-10", "19:00", "21:00", "dante")

	first := e.Matcher().Process(context.Background(), a, nil)
	assert.Equal(t, OutcomeBookingFailed, first.Outcome)

	p.confirmErr = nil
	second := e.Matcher().Process(context.Background(), a, nil)
	assert.Equal(t, OutcomeBooked, second.Outcome)
	assert.Len(t, p.holds, 2)
	assert.Len(t, p.confirms, 2)
}

func TestSearchFailureOnlySkipsThatDay(t *testing.T) {
	p := &fakePlatform{
		searchErr: map[string]error{"1290|2022-05-10": fmt.Errorf("%w: http 502", reservation.ErrTransport)},
		slots: map[string][]reservation.Slot{
			"1290|2022-05-11": {slot("1290", "2022-05-11", "19:45", "Dining Room", "d2")},
		},
	}
	e := newTestEngine(p, &fakeLookup{ids: defaultVenues})

	res := e.Matcher().Process(context.Background(), ask("2022-05-10", "2022-05-11", "19:00", "21:00", "dante"), nil)
	require.Equal(t, OutcomeBooked, res.Outcome)
	assert.Equal(t, "d2", res.Slot.Token)
}

func TestUnresolvedVenueIsSkipped(t *testing.T) {
	p := &fakePlatform{slots: map[string][]reservation.Slot{
		"6194|2022-05-10": {slot("6194", "2022-05-10", "19:00", "Dining Room", "c")},
	}}
	lookup := &fakeLookup{ids: map[string]string{"carbone": "6194"}}
	e := newTestEngine(p, lookup)

	res := e.Matcher().Process(context.Background(), ask("2022-05-10", "2022-05-10", "19:00", "21:00", "nowhere", "carbone"), nil)
	require.Equal(t, OutcomeBooked, res.Outcome)
	assert.Equal(t, []string{"6194|2022-05-10"}, p.searches)
}

func TestNoMatch(t *testing.T) {
	p := &fakePlatform{slots: map[string][]reservation.Slot{
		"1290|2022-05-10": {slot("1290", "2022-05-10", "22:00", "Dining Room", "late")},
	}}
	e := newTestEngine(p, &fakeLookup{ids: defaultVenues})

	res := e.Matcher().Process(context.Background(), ask("2022-05-10", "2022-05-10", "19:00", "21:00", "dante"), nil)
	assert.Equal(t, OutcomeNoMatch, res.Outcome)
	assert.Nil(t, res.Slot)
	assert.NoError(t, res.Err)
}
