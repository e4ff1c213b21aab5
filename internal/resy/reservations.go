package resy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/example/resy-asks/internal/dates"
	"github.com/example/resy-asks/internal/domain/reservation"
)

// ListReservations returns the account's upcoming reservations. A reservation
// whose venue is missing from the response keeps its id with an empty name.
// An entry with an unreadable day or time fails the whole fetch: dropping it
// would hide a conflict and allow a second booking.
func (c *Client) ListReservations(ctx context.Context) ([]reservation.ExistingReservation, error) {
	params := url.Values{}
	params.Set("limit", "10")
	params.Set("offset", "1")
	params.Set("type", "upcoming")
	params.Set("book_on_behalf_of", "false")

	status, body, err := c.do(ctx, http.MethodGet, "/3/user/reservations", "", params, nil)
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		return nil, statusError(reservation.ErrTransport, "reservations", status, body)
	}
	var res reservationsResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("%w: parse reservations: %v", reservation.ErrTransport, err)
	}

	out := make([]reservation.ExistingReservation, 0, len(res.Reservations))
	for i, r := range res.Reservations {
		venueID := string(r.Venue.ID)
		if venueID == "" {
			return nil, fmt.Errorf("%w: reservation %d has no venue id", reservation.ErrTransport, i)
		}
		day, err := dates.TokenToDate(r.Day)
		if err != nil {
			return nil, fmt.Errorf("%w: reservation %d day: %v", reservation.ErrTransport, i, err)
		}
		t, err := dates.ParseClock(r.TimeSlot)
		if err != nil {
			return nil, fmt.Errorf("%w: reservation %d time: %v", reservation.ErrTransport, i, err)
		}
		out = append(out, reservation.ExistingReservation{
			Day:       day,
			Time:      t,
			NumSeats:  r.NumSeats,
			VenueID:   venueID,
			VenueName: res.Venues[venueID].Name,
		})
	}
	return out, nil
}
