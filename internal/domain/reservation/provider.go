package reservation

import (
	"context"
	"time"

	"github.com/example/resy-asks/internal/dates"
)

// BookingPlatform is the reservation platform as seen by the engine.
//
// SearchAvailability returns slots in platform order and fails with ErrTransport.
// ListReservations must return an error, never an empty list, when the fetch fails.
// AcquireHold and ConfirmBooking fail with ErrBooking.
type BookingPlatform interface {
	SearchAvailability(ctx context.Context, venueID string, day time.Time, numSeats int, window dates.Window) ([]Slot, error)
	ListReservations(ctx context.Context) ([]ExistingReservation, error)
	AcquireHold(ctx context.Context, slot Slot) (HoldToken, error)
	ConfirmBooking(ctx context.Context, hold HoldToken, forceReplace bool) (BookingResult, error)
}

// VenueLookup maps a user-facing venue name to a platform id.
// A name with no match yields ErrVenueUnresolved.
type VenueLookup interface {
	ResolveVenueID(ctx context.Context, name string) (string, error)
}
