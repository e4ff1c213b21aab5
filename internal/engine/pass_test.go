package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/resy-asks/internal/domain/reservation"
)

func TestRunPassTalliesOutcomes(t *testing.T) {
	p := &fakePlatform{
		slots: map[string][]reservation.Slot{
			"6194|2022-05-10": {slot("6194", "2022-05-10", "19:30", "Dining Room", "c1")},
		},
		reservations: []reservation.ExistingReservation{
			{Day: day("2022-05-20"), Time: mustClock("20:00"), VenueID: "418"},
		},
	}
	e := newTestEngine(p, &fakeLookup{ids: defaultVenues})

	asks := []reservation.Ask{
		ask("2022-05-12", "2022-05-10", "19:00", "21:00", "dante"),   // invalid
		ask("2022-05-01", "2022-05-02", "19:00", "21:00", "dante"),   // expired
		ask("2022-05-20", "2022-05-20", "19:00", "21:00", "lilia"),   // satisfied
		ask("2022-05-10", "2022-05-10", "19:00", "21:00", "carbone"), // booked
		ask("2022-05-11", "2022-05-11", "19:00", "21:00", "dante"),   // no match
	}

	rep := e.RunPass(context.Background(), asks)
	assert.NotEmpty(t, rep.RunID)
	assert.Equal(t, 1, rep.Invalid)
	assert.Equal(t, 1, rep.Expired)
	assert.Equal(t, 2, rep.Skipped())
	assert.Equal(t, 1, rep.Satisfied)
	assert.Equal(t, 1, rep.Booked)
	assert.Equal(t, 1, rep.NoMatch)
	assert.Zero(t, rep.FetchFailed)
	assert.Zero(t, rep.BookingFailed)
	require.Len(t, rep.Results, len(asks))
	assert.Equal(t, OutcomeBooked, rep.Results[3].Outcome)

	assert.Equal(t, 3, p.listCalls, "reservations are fetched once per valid ask")
}

func TestRunPassSkipsAskWhenReservationFetchFails(t *testing.T) {
	p := &fakePlatform{
		listErr: fmt.Errorf("%w: http 500", reservation.ErrTransport),
		slots: map[string][]reservation.Slot{
			"1290|2022-05-10": {slot("1290", "2022-05-10", "19:30", "Dining Room", "s")},
		},
	}
	e := newTestEngine(p, &fakeLookup{ids: defaultVenues})

	rep := e.RunPass(context.Background(), []reservation.Ask{
		ask("2022-05-10", "2022-05-10", "19:00", "21:00", "dante"),
		ask("2022-05-10", "2022-05-10", "19:00", "21:00", "dante"),
	})
	assert.Equal(t, 2, rep.FetchFailed)
	assert.Empty(t, p.searches)
	assert.Empty(t, p.holds)
	for _, r := range rep.Results {
		assert.ErrorIs(t, r.Err, reservation.ErrTransport)
	}
}

func TestRunPassFailureIsLocalToAsk(t *testing.T) {
	p := &fakePlatform{
		slots: map[string][]reservation.Slot{
			"1290|2022-05-10": {slot("1290", "2022-05-10", "19:30", "Dining Room", "s")},
		},
		confirmErr: fmt.Errorf("%w: http 412", reservation.ErrBooking),
	}
	e := newTestEngine(p, &fakeLookup{ids: defaultVenues})

	rep := e.RunPass(context.Background(), []reservation.Ask{
		ask("2022-05-10", "2022-05-10", "19:00", "21:00", "dante"),
		ask("2022-05-10", "2022-05-10", "19:00", "21:00", "dante"),
	})
	assert.Equal(t, 2, rep.BookingFailed)
	assert.Len(t, p.holds, 2)
	assert.Contains(t, rep.String(), "booking_failed=2")
}

func TestRunPassEmpty(t *testing.T) {
	e := newTestEngine(&fakePlatform{}, &fakeLookup{})
	rep := e.RunPass(context.Background(), nil)
	assert.Zero(t, rep.Total())
	assert.False(t, rep.Finished.Before(rep.Started))
}
