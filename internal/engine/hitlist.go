package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/resy-asks/internal/dates"
	"github.com/example/resy-asks/internal/domain/reservation"
	"github.com/example/resy-asks/internal/venues"
)

// HitListEntry is every slot one venue offers inside the window across the queried days.
type HitListEntry struct {
	VenueName string
	VenueID   string
	Slots     []reservation.Slot
}

// HitList reports availability without booking anything. Venues that cannot be
// resolved or have nothing in the window are left out; search failures are logged.
func HitList(ctx context.Context, platform reservation.BookingPlatform, reg *venues.Registry, log zerolog.Logger,
	venueNames []string, days []time.Time, numSeats int, window dates.Window) []HitListEntry {

	reg.Resolve(ctx, venueNames)
	resolver := NewAvailabilityResolver(platform, reg, log)

	var out []HitListEntry
	for _, name := range venueNames {
		venueID, ok := reg.ID(name)
		if !ok {
			continue
		}
		entry := HitListEntry{VenueName: name, VenueID: venueID}
		for _, day := range days {
			slots, err := resolver.Resolve(ctx, venueID, day, numSeats, window)
			if err != nil {
				log.Warn().Err(err).Str("venue", name).Str("day", dates.DayToken(day)).Msg("availability search failed")
				continue
			}
			for _, s := range slots {
				if window.Contains(s.Time) {
					entry.Slots = append(entry.Slots, s)
				}
			}
		}
		if len(entry.Slots) > 0 {
			out = append(out, entry)
		}
	}
	return out
}
