package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/example/resy-asks/internal/domain/reservation"
	"github.com/example/resy-asks/internal/metrics"
	"github.com/example/resy-asks/internal/venues"
)

// Report tallies one pass over a list of asks.
type Report struct {
	RunID    string
	Started  time.Time
	Finished time.Time

	Invalid       int
	Expired       int
	Satisfied     int
	Booked        int
	BookingFailed int
	NoMatch       int
	FetchFailed   int

	Results []Result
}

// Skipped counts asks rejected before any platform call.
func (r Report) Skipped() int { return r.Invalid + r.Expired }

func (r Report) Total() int { return len(r.Results) }

func (r *Report) add(res Result) {
	switch res.Outcome {
	case OutcomeInvalid:
		r.Invalid++
	case OutcomeExpired:
		r.Expired++
	case OutcomeSatisfied:
		r.Satisfied++
	case OutcomeBooked:
		r.Booked++
	case OutcomeBookingFailed:
		r.BookingFailed++
	case OutcomeNoMatch:
		r.NoMatch++
	case OutcomeFetchFailed:
		r.FetchFailed++
	}
	r.Results = append(r.Results, res)
	metrics.IncAskOutcome(string(res.Outcome))
}

func (r Report) String() string {
	return fmt.Sprintf("asks=%d skipped=%d satisfied=%d booked=%d booking_failed=%d no_match=%d fetch_failed=%d",
		r.Total(), r.Skipped(), r.Satisfied, r.Booked, r.BookingFailed, r.NoMatch, r.FetchFailed)
}

// Engine runs passes for one credential context.
type Engine struct {
	platform reservation.BookingPlatform
	matcher  *Matcher
	log      zerolog.Logger
	now      func() time.Time
}

type Option func(*Engine)

// WithClock replaces time.Now for liveness checks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
		e.matcher.now = now
	}
}

func New(platform reservation.BookingPlatform, reg *venues.Registry, log zerolog.Logger, opts ...Option) *Engine {
	resolver := NewAvailabilityResolver(platform, reg, log)
	executor := NewExecutor(platform, log)
	e := &Engine{
		platform: platform,
		matcher:  NewMatcher(resolver, executor, reg, log),
		log:      log,
		now:      time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Matcher exposes the engine's matcher for single-ask callers.
func (e *Engine) Matcher() *Matcher { return e.matcher }

// RunPass processes asks strictly in order. Reservations are fetched fresh for
// each ask so a booking made for one ask is seen by the next. A failed fetch
// skips the ask rather than assuming there are no conflicts.
func (e *Engine) RunPass(ctx context.Context, asks []reservation.Ask) Report {
	rep := Report{RunID: uuid.NewString(), Started: e.now()}
	log := e.log.With().Str("run_id", rep.RunID).Logger()

	for i, ask := range asks {
		alog := log.With().Int("ask", i).Str("ask_spec", ask.String()).Logger()

		if outcome, err := e.matcher.Check(ask); err != nil {
			if outcome == OutcomeInvalid {
				alog.Warn().Err(err).Msg("encountered invalid ask")
			} else {
				alog.Debug().Err(err).Msg("ask expired")
			}
			rep.add(Result{Ask: ask, Outcome: outcome, Err: err})
			continue
		}

		existing, err := e.platform.ListReservations(ctx)
		if err != nil {
			metrics.IncPlatformError("reservations")
			alog.Warn().Err(err).Msg("failed to fetch current reservations")
			rep.add(Result{Ask: ask, Outcome: OutcomeFetchFailed, Err: err})
			continue
		}
		alog.Info().Int("reservations", len(existing)).Msg("checking reservations")

		rep.add(e.matcher.withLogger(alog).Process(ctx, ask, existing))
	}

	rep.Finished = e.now()
	metrics.ObservePass(rep.Finished.Sub(rep.Started))
	log.Info().
		Int("skipped", rep.Skipped()).
		Int("satisfied", rep.Satisfied).
		Int("booked", rep.Booked).
		Int("booking_failed", rep.BookingFailed).
		Int("no_match", rep.NoMatch).
		Int("fetch_failed", rep.FetchFailed).
		Msg("pass finished")
	return rep
}
