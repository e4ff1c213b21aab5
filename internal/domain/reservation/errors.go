package reservation

import (
	"errors"

	"github.com/example/resy-asks/internal/dates"
)

var (
	ErrInvalidAsk      = errors.New("invalid ask")
	ErrExpiredAsk      = errors.New("expired ask")
	ErrTransport       = errors.New("transport error")
	ErrBooking         = errors.New("booking error")
	ErrVenueUnresolved = errors.New("venue unresolved")
	ErrFormat          = dates.ErrFormat
)
