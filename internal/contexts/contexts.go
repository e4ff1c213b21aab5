// Package contexts stores credential contexts: one Resy account plus the
// location of its asks. Auth tokens are sealed at rest.
package contexts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/example/resy-asks/internal/db"
	"github.com/example/resy-asks/internal/engine"
	"github.com/example/resy-asks/internal/seal"
)

type Context struct {
	ID        int64
	Name      string
	AuthToken string
	AskSource string
	Enabled   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c Context) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name required")
	}
	if strings.TrimSpace(c.AuthToken) == "" {
		return fmt.Errorf("auth token required")
	}
	if strings.TrimSpace(c.AskSource) == "" {
		return fmt.Errorf("ask source required")
	}
	return nil
}

// PassRun is the recorded outcome of one pass for one context.
type PassRun struct {
	RunID         uuid.UUID
	ContextID     int64
	StartedAt     time.Time
	FinishedAt    time.Time
	Asks          int
	Invalid       int
	Expired       int
	Satisfied     int
	Booked        int
	BookingFailed int
	NoMatch       int
	FetchFailed   int
	Error         *string
}

type Repo struct {
	db     db.Querier
	sealer *seal.Sealer
	log    zerolog.Logger
}

func NewRepo(q db.Querier, s *seal.Sealer, log zerolog.Logger) *Repo {
	return &Repo{db: q, sealer: s, log: log.With().Str("component", "contexts").Logger()}
}

// Save creates the context or, when the name exists, replaces its token and
// ask source and re-enables it.
func (r *Repo) Save(ctx context.Context, c Context) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	sealed, err := r.sealer.Seal(c.AuthToken, c.Name)
	if err != nil {
		return 0, fmt.Errorf("seal token: %w", err)
	}
	var id int64
	err = r.db.QueryRow(ctx, `
INSERT INTO contexts(name, auth_token_sealed, ask_source, enabled)
VALUES ($1,$2,$3,TRUE)
ON CONFLICT (name) DO UPDATE
SET auth_token_sealed=EXCLUDED.auth_token_sealed, ask_source=EXCLUDED.ask_source, enabled=TRUE, updated_at=now()
RETURNING id`, c.Name, sealed, c.AskSource).Scan(&id)
	return id, db.WrapNotFound(err)
}

// Enabled returns every enabled context with its token unsealed. A context
// whose token cannot be unsealed is logged and left out; the others are
// still returned.
func (r *Repo) Enabled(ctx context.Context) ([]Context, error) {
	all, err := r.list(ctx, true)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, c := range all {
		tok, err := r.sealer.Open(c.AuthToken, c.Name)
		if err != nil {
			r.log.Error().Err(err).Str("context", c.Name).Int64("context_id", c.ID).Msg("cannot unseal auth token, skipping context")
			continue
		}
		c.AuthToken = tok
		out = append(out, c)
	}
	return out, nil
}

// List returns all contexts. Tokens are left out.
func (r *Repo) List(ctx context.Context) ([]Context, error) {
	out, err := r.list(ctx, false)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].AuthToken = ""
	}
	return out, nil
}

func (r *Repo) list(ctx context.Context, onlyEnabled bool) ([]Context, error) {
	rows, err := r.db.Query(ctx, `
SELECT id,name,auth_token_sealed,ask_source,enabled,created_at,updated_at
FROM contexts
WHERE enabled OR NOT $1
ORDER BY name ASC`, onlyEnabled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Context
	for rows.Next() {
		var c Context
		if err := rows.Scan(&c.ID, &c.Name, &c.AuthToken, &c.AskSource, &c.Enabled, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) SetEnabled(ctx context.Context, name string, enabled bool) error {
	var id int64
	err := r.db.QueryRow(ctx, `UPDATE contexts SET enabled=$2, updated_at=now() WHERE name=$1 RETURNING id`, name, enabled).Scan(&id)
	return db.WrapNotFound(err)
}

// RecordPass stores the tallies of a finished pass. passErr is a failure that
// kept the pass from running at all (e.g. the ask source was unreadable).
func (r *Repo) RecordPass(ctx context.Context, contextID int64, rep engine.Report, passErr error) error {
	var msg *string
	if passErr != nil {
		s := passErr.Error()
		msg = &s
	}
	runID, err := uuid.Parse(rep.RunID)
	if err != nil {
		runID = uuid.New()
	}
	return r.db.Exec(ctx, `
INSERT INTO pass_runs(run_id,context_id,started_at,finished_at,asks,invalid,expired,satisfied,booked,booking_failed,no_match,fetch_failed,error)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		runID, contextID, rep.Started, rep.Finished, rep.Total(),
		rep.Invalid, rep.Expired, rep.Satisfied, rep.Booked, rep.BookingFailed, rep.NoMatch, rep.FetchFailed, msg)
}

// RecentPasses returns the latest passes of a context, newest first.
func (r *Repo) RecentPasses(ctx context.Context, name string, limit int) ([]PassRun, error) {
	rows, err := r.db.Query(ctx, `
SELECT p.run_id,p.context_id,p.started_at,p.finished_at,p.asks,p.invalid,p.expired,p.satisfied,p.booked,p.booking_failed,p.no_match,p.fetch_failed,p.error
FROM pass_runs p
JOIN contexts c ON c.id = p.context_id
WHERE c.name=$1
ORDER BY p.started_at DESC
LIMIT $2`, name, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PassRun
	for rows.Next() {
		var p PassRun
		if err := rows.Scan(&p.RunID, &p.ContextID, &p.StartedAt, &p.FinishedAt, &p.Asks, &p.Invalid, &p.Expired,
			&p.Satisfied, &p.Booked, &p.BookingFailed, &p.NoMatch, &p.FetchFailed, &p.Error); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
