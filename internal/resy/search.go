package resy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/example/resy-asks/internal/dates"
	"github.com/example/resy-asks/internal/domain/reservation"
)

// ResolveVenueID returns the Resy id of the top search hit for name.
func (c *Client) ResolveVenueID(ctx context.Context, name string) (string, error) {
	var req searchRequest
	req.Geo.Latitude = 40.7157
	req.Geo.Longitude = -74
	req.Highlight.PreTag = "<b>"
	req.Highlight.PostTag = "</b>"
	req.PerPage = 10
	req.Query = name
	req.SlotFilter.Day = dates.DayToken(dates.Day(c.now()))
	req.SlotFilter.PartySize = 2
	req.Types = []string{"venue", "cuisine"}

	jb, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	status, body, err := c.do(ctx, http.MethodPost, "/3/venuesearch/search", "application/json;charset=UTF-8", nil, jb)
	if err != nil {
		return "", err
	}
	if !ok(status) {
		return "", statusError(reservation.ErrTransport, "venuesearch", status, body)
	}
	var res searchResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("%w: parse venuesearch: %v", reservation.ErrTransport, err)
	}
	if len(res.Search.Hits) == 0 || res.Search.Hits[0].ID.Resy == "" {
		return "", fmt.Errorf("%w: %s", reservation.ErrVenueUnresolved, name)
	}
	return string(res.Search.Hits[0].ID.Resy), nil
}
