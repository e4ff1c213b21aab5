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

// AcquireHold exchanges a slot's config token for a book token.
func (c *Client) AcquireHold(ctx context.Context, slot reservation.Slot) (reservation.HoldToken, error) {
	jb, err := json.Marshal(detailsRequest{
		Commit:    1,
		ConfigID:  slot.Token,
		Day:       dates.DayToken(slot.Day),
		PartySize: slot.NumSeats,
	})
	if err != nil {
		return reservation.HoldToken{}, err
	}
	status, body, err := c.do(ctx, http.MethodPost, "/3/details", "application/json;charset=UTF-8", nil, jb)
	if err != nil {
		return reservation.HoldToken{}, fmt.Errorf("%w: details: %v", reservation.ErrBooking, err)
	}
	if !ok(status) {
		return reservation.HoldToken{}, statusError(reservation.ErrBooking, "details", status, body)
	}
	var details detailsResponse
	if err := json.Unmarshal(body, &details); err != nil {
		return reservation.HoldToken{}, fmt.Errorf("%w: parse details: %v", reservation.ErrBooking, err)
	}
	if details.BookToken.Value == "" {
		return reservation.HoldToken{}, fmt.Errorf("%w: details returned no book token", reservation.ErrBooking)
	}

	hold := reservation.HoldToken{Value: details.BookToken.Value, PaymentMethodID: c.paymentMethodID}
	if len(details.User.PaymentMethods) > 0 {
		hold.PaymentMethodID = details.User.PaymentMethods[0].ID
	}
	return hold, nil
}

// ConfirmBooking books with a hold. forceReplace asks Resy to replace a
// colliding reservation instead of rejecting the booking.
func (c *Client) ConfirmBooking(ctx context.Context, hold reservation.HoldToken, forceReplace bool) (reservation.BookingResult, error) {
	form := url.Values{}
	form.Set("book_token", hold.Value)
	form.Set("source_id", "resy.com-venue-details")
	if hold.PaymentMethodID != 0 {
		pb, _ := json.Marshal(struct {
			ID int64 `json:"id"`
		}{ID: hold.PaymentMethodID})
		form.Set("struct_payment_method", string(pb))
	}
	if forceReplace {
		form.Set("replace", "1")
	}

	status, body, err := c.do(ctx, http.MethodPost, "/3/book", "application/x-www-form-urlencoded", nil, []byte(form.Encode()))
	if err != nil {
		return reservation.BookingResult{}, fmt.Errorf("%w: book: %v", reservation.ErrBooking, err)
	}
	if !ok(status) {
		return reservation.BookingResult{}, statusError(reservation.ErrBooking, "book", status, body)
	}
	var res bookResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return reservation.BookingResult{}, fmt.Errorf("%w: parse book: %v", reservation.ErrBooking, err)
	}
	return reservation.BookingResult{ReservationToken: res.ResyToken, ReservationID: string(res.ReservationID)}, nil
}
