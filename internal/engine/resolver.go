package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/resy-asks/internal/dates"
	"github.com/example/resy-asks/internal/domain/reservation"
	"github.com/example/resy-asks/internal/metrics"
	"github.com/example/resy-asks/internal/venues"
)

// AvailabilityResolver fetches candidate slots for one venue and day.
// It never filters; acceptance is the matcher's job.
type AvailabilityResolver struct {
	platform reservation.BookingPlatform
	venues   *venues.Registry
	log      zerolog.Logger
}

func NewAvailabilityResolver(p reservation.BookingPlatform, reg *venues.Registry, log zerolog.Logger) *AvailabilityResolver {
	return &AvailabilityResolver{platform: p, venues: reg, log: log}
}

func (r *AvailabilityResolver) Resolve(ctx context.Context, venueID string, day time.Time, numSeats int, window dates.Window) ([]reservation.Slot, error) {
	log := r.log.With().
		Str("venue", r.venues.DisplayName(venueID)).
		Str("day", dates.DayToken(day)).
		Int("num_seats", numSeats).
		Logger()

	log.Debug().Msg("checking availability")
	slots, err := r.platform.SearchAvailability(ctx, venueID, day, numSeats, window)
	if err != nil {
		metrics.IncPlatformError("search")
		return nil, err
	}
	if len(slots) == 0 {
		log.Info().Msg("no availability")
	}
	return slots, nil
}
