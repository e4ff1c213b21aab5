package resy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/example/resy-asks/internal/dates"
	"github.com/example/resy-asks/internal/domain/reservation"
)

// SearchAvailability lists the venue's slots for a day in the order Resy returns them.
// Slots with an unparseable start time are dropped.
func (c *Client) SearchAvailability(ctx context.Context, venueID string, day time.Time, numSeats int, window dates.Window) ([]reservation.Slot, error) {
	dayToken := dates.DayToken(day)
	params := url.Values{}
	params.Set("lat", "0")
	params.Set("long", "0")
	params.Set("day", dayToken)
	params.Set("party_size", strconv.Itoa(numSeats))
	params.Set("venue_id", venueID)
	params.Set("time_preferred_start", window.Start.String())
	params.Set("time_preferred_end", window.End.String())

	status, body, err := c.do(ctx, http.MethodGet, "/4/find", "", params, nil)
	if err != nil {
		return nil, err
	}
	if !ok(status) {
		return nil, statusError(reservation.ErrTransport, "find", status, body)
	}
	var res findResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("%w: parse find: %v", reservation.ErrTransport, err)
	}
	if len(res.Results.Venues) == 0 {
		return nil, nil
	}

	v := res.Results.Venues[0]
	out := make([]reservation.Slot, 0, len(v.Slots))
	for _, s := range v.Slots {
		start, err := dates.ParseClock(s.startTime())
		if err != nil {
			continue
		}
		out = append(out, reservation.Slot{
			Day:       dates.Day(day),
			Time:      start,
			NumSeats:  numSeats,
			VenueID:   venueID,
			VenueName: v.Venue.Name,
			Kind:      s.Config.Type,
			Token:     s.Config.Token,
		})
	}
	return out, nil
}
