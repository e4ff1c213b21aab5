package engine

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/resy-asks/internal/dates"
	"github.com/example/resy-asks/internal/domain/reservation"
	"github.com/example/resy-asks/internal/venues"
)

type Outcome string

const (
	OutcomeInvalid       Outcome = "invalid"
	OutcomeExpired       Outcome = "expired"
	OutcomeSatisfied     Outcome = "already_satisfied"
	OutcomeBooked        Outcome = "booked"
	OutcomeBookingFailed Outcome = "booking_failed"
	OutcomeNoMatch       Outcome = "no_match"
	OutcomeFetchFailed   Outcome = "fetch_failed"
)

// Result is what happened to one ask in one pass.
type Result struct {
	Ask     reservation.Ask
	Outcome Outcome

	// Slot is set when a slot was accepted, whether or not booking succeeded.
	Slot    *reservation.Slot
	Booking reservation.BookingResult

	// ConflictVenueID is set for OutcomeSatisfied.
	ConflictVenueID string

	Err error
}

// Matcher decides what to do with a single ask. It keeps no state between calls.
type Matcher struct {
	resolver *AvailabilityResolver
	executor *Executor
	venues   *venues.Registry
	log      zerolog.Logger
	now      func() time.Time
}

func NewMatcher(resolver *AvailabilityResolver, executor *Executor, reg *venues.Registry, log zerolog.Logger) *Matcher {
	return &Matcher{resolver: resolver, executor: executor, venues: reg, log: log, now: time.Now}
}

func (m *Matcher) withLogger(log zerolog.Logger) *Matcher {
	c := *m
	c.log = log
	c.resolver = NewAvailabilityResolver(m.resolver.platform, m.resolver.venues, log)
	c.executor = NewExecutor(m.executor.platform, log)
	return &c
}

// ConflictSet returns the venue ids holding an existing reservation inside the
// ask's day range and time window. Party size is not compared.
func ConflictSet(ask reservation.Ask, existing []reservation.ExistingReservation) map[string]struct{} {
	out := make(map[string]struct{})
	for _, res := range existing {
		if ask.Covers(res.Day, res.Time) {
			out[res.VenueID] = struct{}{}
		}
	}
	return out
}

// Check runs the validity and liveness gate and maps it to an outcome.
func (m *Matcher) Check(ask reservation.Ask) (Outcome, error) {
	err := ask.Check(dates.Day(m.now()))
	switch {
	case err == nil:
		return "", nil
	case errors.Is(err, reservation.ErrExpiredAsk):
		return OutcomeExpired, err
	default:
		return OutcomeInvalid, err
	}
}

// Process scans the ask's venues in priority order and books the first
// acceptable slot. At most one booking attempt is made.
func (m *Matcher) Process(ctx context.Context, ask reservation.Ask, existing []reservation.ExistingReservation) Result {
	if outcome, err := m.Check(ask); err != nil {
		return Result{Ask: ask, Outcome: outcome, Err: err}
	}

	conflicts := ConflictSet(ask, existing)
	if len(conflicts) > 0 {
		m.log.Info().Int("count", len(conflicts)).Msg("already has conflicting reservations")
	}

	m.venues.Resolve(ctx, ask.VenueNames)

	found := m.scanVenues(ctx, ask, conflicts)
	switch found.stop {
	case conflictFound:
		m.log.Info().Str("venue", m.venues.DisplayName(found.venueID)).Msg("best reservation already booked")
		return Result{Ask: ask, Outcome: OutcomeSatisfied, ConflictVenueID: found.venueID}
	case acceptedSlotFound:
		slot := found.slot
		booking, err := m.executor.Book(ctx, slot)
		if err != nil {
			return Result{Ask: ask, Outcome: OutcomeBookingFailed, Slot: &slot, Err: err}
		}
		return Result{Ask: ask, Outcome: OutcomeBooked, Slot: &slot, Booking: booking}
	default:
		m.log.Info().Int("venues", len(ask.VenueNames)).Msg("no slots found")
		return Result{Ask: ask, Outcome: OutcomeNoMatch}
	}
}

type scanStop int

const (
	keepScanning scanStop = iota
	conflictFound
	acceptedSlotFound
)

type scanResult struct {
	stop    scanStop
	venueID string
	slot    reservation.Slot
}

func (m *Matcher) scanVenues(ctx context.Context, ask reservation.Ask, conflicts map[string]struct{}) scanResult {
	for _, name := range ask.VenueNames {
		venueID, ok := m.venues.ID(name)
		if !ok {
			continue
		}
		if _, taken := conflicts[venueID]; taken {
			return scanResult{stop: conflictFound, venueID: venueID}
		}
		if r := m.scanVenue(ctx, ask, name, venueID); r.stop != keepScanning {
			return r
		}
		m.log.Info().Str("venue", name).Msg("no slots found for venue")
	}
	return scanResult{}
}

func (m *Matcher) scanVenue(ctx context.Context, ask reservation.Ask, name, venueID string) scanResult {
	m.log.Info().Str("venue", name).Msg("searching venue")
	for _, token := range dates.DaysBetween(ask.StartDay, ask.EndDay) {
		day, _ := dates.TokenToDate(token)
		slots, err := m.resolver.Resolve(ctx, venueID, day, ask.NumSeats, ask.Window())
		if err != nil {
			m.log.Warn().Err(err).Str("venue", name).Str("day", token).Msg("availability search failed")
			continue
		}
		if r := m.scanSlots(ask, slots); r.stop != keepScanning {
			return r
		}
	}
	return scanResult{}
}

func (m *Matcher) scanSlots(ask reservation.Ask, slots []reservation.Slot) scanResult {
	for _, slot := range slots {
		switch reservation.AcceptSlot(ask, slot) {
		case reservation.Accepted:
			return scanResult{stop: acceptedSlotFound, venueID: slot.VenueID, slot: slot}
		case reservation.RejectOutdoor:
			m.log.Debug().Str("slot", slot.String()).Msg("skipping outdoor slot")
		}
	}
	return scanResult{}
}
