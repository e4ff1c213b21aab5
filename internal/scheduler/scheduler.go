package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/resy-asks/internal/contexts"
	"github.com/example/resy-asks/internal/engine"
)

// Store supplies the contexts to process and records their passes.
type Store interface {
	Enabled(ctx context.Context) ([]contexts.Context, error)
	RecordPass(ctx context.Context, contextID int64, rep engine.Report, passErr error) error
}

// PassFunc runs one pass for one context.
type PassFunc func(ctx context.Context, c contexts.Context) (engine.Report, error)

// Scheduler runs a pass for every enabled context on each tick. Contexts run
// concurrently and independently; a context whose previous pass is still
// running is skipped for that tick.
type Scheduler struct {
	Store    Store
	Pass     PassFunc
	Interval time.Duration
	Log      zerolog.Logger

	mu      sync.Mutex
	running map[int64]bool
	wg      sync.WaitGroup
}

func (s *Scheduler) Run(ctx context.Context) error {
	t := time.NewTicker(s.Interval)
	defer t.Stop()

	// kick immediately
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-t.C:
			s.tick(ctx)
		}
	}
}

// RunOnce runs a single pass over every enabled context and waits for all of them.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if err := s.tick(ctx); err != nil {
		return err
	}
	s.wg.Wait()
	return nil
}

func (s *Scheduler) tick(ctx context.Context) error {
	cs, err := s.Store.Enabled(ctx)
	if err != nil {
		s.Log.Error().Err(err).Msg("listing contexts failed")
		return err
	}
	for _, c := range cs {
		if !s.claim(c.ID) {
			s.Log.Warn().Str("context", c.Name).Msg("previous pass still running, skipping")
			continue
		}
		c := c
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.release(c.ID)
			s.runPass(ctx, c)
		}()
	}
	return nil
}

func (s *Scheduler) claim(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running == nil {
		s.running = make(map[int64]bool)
	}
	if s.running[id] {
		return false
	}
	s.running[id] = true
	return true
}

func (s *Scheduler) release(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, id)
}

func (s *Scheduler) runPass(ctx context.Context, c contexts.Context) {
	log := s.Log.With().Str("context", c.Name).Logger()
	started := time.Now()

	rep, err := s.Pass(ctx, c)
	if err != nil {
		log.Error().Err(err).Msg("pass failed")
		rep.Started = started
		rep.Finished = time.Now()
	} else {
		log.Info().Str("run_id", rep.RunID).Str("report", rep.String()).Msg("pass finished")
	}

	if err := s.Store.RecordPass(ctx, c.ID, rep, err); err != nil {
		log.Error().Err(err).Msg("recording pass failed")
	}
}
