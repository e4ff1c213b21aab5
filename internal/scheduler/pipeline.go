package scheduler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/example/resy-asks/internal/asks"
	"github.com/example/resy-asks/internal/contexts"
	"github.com/example/resy-asks/internal/engine"
	"github.com/example/resy-asks/internal/resy"
	"github.com/example/resy-asks/internal/venues"
)

// Pipeline builds an isolated client and engine for each context. Only the
// venue registry's entries are shared between contexts.
type Pipeline struct {
	Registry   *venues.Registry
	HTTPClient *http.Client
	APIKey     string
	Options    []resy.Option
	Log        zerolog.Logger
}

// Pass loads the context's asks and runs one engine pass over them.
func (p *Pipeline) Pass(ctx context.Context, c contexts.Context) (engine.Report, error) {
	log := p.Log.With().Str("context", c.Name).Logger()

	src := asks.Open(c.AskSource, p.HTTPClient, log)
	list, err := src.Load(ctx)
	if err != nil {
		return engine.Report{}, fmt.Errorf("load asks: %w", err)
	}

	opts := append([]resy.Option{resy.WithHTTPClient(p.HTTPClient)}, p.Options...)
	client := resy.New(resy.Credentials{APIKey: p.APIKey, AuthToken: c.AuthToken}, opts...)
	// Venue search runs with this context's credentials; resolved ids are shared.
	return engine.New(client, p.Registry.WithLookup(client), log).RunPass(ctx, list), nil
}

// StaticStore serves a fixed set of contexts and only logs pass results.
// It backs single-context runs configured from the environment.
type StaticStore struct {
	Contexts []contexts.Context
	Log      zerolog.Logger
}

func (s *StaticStore) Enabled(context.Context) ([]contexts.Context, error) {
	return s.Contexts, nil
}

func (s *StaticStore) RecordPass(_ context.Context, contextID int64, rep engine.Report, passErr error) error {
	ev := s.Log.Debug()
	if passErr != nil {
		ev = s.Log.Warn().Err(passErr)
	}
	ev.Int64("context_id", contextID).Str("run_id", rep.RunID).Str("report", rep.String()).Msg("pass recorded")
	return nil
}
