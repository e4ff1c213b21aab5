package engine

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/example/resy-asks/internal/domain/reservation"
	"github.com/example/resy-asks/internal/metrics"
)

// Executor books a slot: acquire a hold, then confirm it with forceReplace.
// Neither step is retried and an abandoned hold is left to expire on the platform.
type Executor struct {
	platform reservation.BookingPlatform
	log      zerolog.Logger
}

func NewExecutor(p reservation.BookingPlatform, log zerolog.Logger) *Executor {
	return &Executor{platform: p, log: log}
}

func (x *Executor) Book(ctx context.Context, slot reservation.Slot) (reservation.BookingResult, error) {
	log := x.log.With().Str("slot", slot.String()).Logger()

	log.Info().Msg("getting book token")
	hold, err := x.platform.AcquireHold(ctx, slot)
	if err != nil {
		metrics.IncPlatformError("hold")
		log.Warn().Err(err).Msg("failed to get book token")
		return reservation.BookingResult{}, err
	}

	// Confirm always replaces a colliding reservation.
	res, err := x.platform.ConfirmBooking(ctx, hold, true)
	if err != nil {
		metrics.IncPlatformError("confirm")
		log.Warn().Err(err).Msg("failed to book")
		return reservation.BookingResult{}, err
	}

	log.Info().
		Str("resy_token", res.ReservationToken).
		Str("reservation_id", res.ReservationID).
		Msg("reserved")
	return res, nil
}
