package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/example/resy-asks/internal/config"
	"github.com/example/resy-asks/internal/contexts"
	"github.com/example/resy-asks/internal/db"
	"github.com/example/resy-asks/internal/logging"
	"github.com/example/resy-asks/internal/metrics"
	"github.com/example/resy-asks/internal/migrate"
	"github.com/example/resy-asks/internal/resy"
	"github.com/example/resy-asks/internal/scheduler"
	"github.com/example/resy-asks/internal/seal"
	"github.com/example/resy-asks/internal/venues"
)

// app holds what every command shares: config, logger, the HTTP client and
// the venue registry. The database is opened on demand.
type app struct {
	cfg      config.Config
	log      zerolog.Logger
	hc       *http.Client
	registry *venues.Registry

	db      *db.DB
	closers []func()
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg: cfg,
		log: logging.New(cfg.LogLevel, cfg.LogPretty),
		hc:  &http.Client{Timeout: cfg.HTTPTimeout},
	}
	metrics.Register()

	// Operator lookup for the venues and hitlist commands. Scheduled passes
	// resolve through each context's own client instead.
	lookup := resy.New(resy.Credentials{APIKey: cfg.ResyAPIKey, AuthToken: cfg.ResyAuthToken}, a.resyOptions()...)
	a.registry = venues.NewRegistry(lookup, a.log)

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			a.log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, venue cache stays in memory")
			_ = rdb.Close()
		} else {
			a.registry.UseRedisCache(rdb, cfg.VenueCacheTTL)
			a.closers = append(a.closers, func() { _ = rdb.Close() })
		}
	}
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *app) resyOptions() []resy.Option {
	return []resy.Option{
		resy.WithHTTPClient(a.hc),
		resy.WithRateLimit(a.cfg.ResyRPS, a.cfg.ResyBurst),
		resy.WithPaymentMethod(a.cfg.PaymentMethodID),
	}
}

// client builds a Resy client for the env-configured account.
func (a *app) client() (*resy.Client, error) {
	if a.cfg.ResyAuthToken == "" {
		return nil, fmt.Errorf("RESY_AUTH_TOKEN is required")
	}
	return resy.New(resy.Credentials{APIKey: a.cfg.ResyAPIKey, AuthToken: a.cfg.ResyAuthToken}, a.resyOptions()...), nil
}

func (a *app) openDB(ctx context.Context) (*db.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	if a.cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	d, err := db.Open(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := d.Ping(ctx); err != nil {
		d.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if _, err := migrate.Up(ctx, d, a.log); err != nil {
		d.Close()
		return nil, err
	}
	a.db = d
	a.closers = append(a.closers, d.Close)
	return d, nil
}

func (a *app) contexts(ctx context.Context) (*contexts.Repo, error) {
	d, err := a.openDB(ctx)
	if err != nil {
		return nil, err
	}
	key, err := a.cfg.SealKey()
	if err != nil {
		return nil, err
	}
	s, err := seal.New(key)
	if err != nil {
		return nil, err
	}
	return contexts.NewRepo(d, s, a.log), nil
}

// store returns the contexts to process: the database when DATABASE_URL is
// set, otherwise the single context described by the environment. askSource
// overrides RESY_ASK_SOURCE in single-context mode.
func (a *app) store(ctx context.Context, askSource string) (scheduler.Store, error) {
	if !a.cfg.SingleContext() {
		return a.contexts(ctx)
	}
	if askSource == "" {
		askSource = a.cfg.AskSource
	}
	c := contexts.Context{Name: "default", AuthToken: a.cfg.ResyAuthToken, AskSource: askSource, Enabled: true}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("single context (RESY_AUTH_TOKEN, RESY_ASK_SOURCE): %w", err)
	}
	return &scheduler.StaticStore{Contexts: []contexts.Context{c}, Log: a.log}, nil
}

func (a *app) pipeline() *scheduler.Pipeline {
	return &scheduler.Pipeline{
		Registry:   a.registry,
		HTTPClient: a.hc,
		APIKey:     a.cfg.ResyAPIKey,
		Options: []resy.Option{
			resy.WithRateLimit(a.cfg.ResyRPS, a.cfg.ResyBurst),
			resy.WithPaymentMethod(a.cfg.PaymentMethodID),
		},
		Log: a.log,
	}
}
