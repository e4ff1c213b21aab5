package migrate

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/example/resy-asks/internal/db"
)

//go:embed *.sql
var fs embed.FS

// Files lists the embedded migrations in apply order.
func Files() ([]string, error) {
	entries, err := fs.ReadDir(".")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Executor is a Querier that can run work in a transaction. *db.DB is one.
type Executor interface {
	db.Querier
	InTx(ctx context.Context, fn func(db.Querier) error) error
}

// Up applies every migration not yet recorded in schema_migrations and
// returns the names it applied. Each migration and its record commit together.
func Up(ctx context.Context, q Executor, log zerolog.Logger) ([]string, error) {
	files, err := Files()
	if err != nil {
		return nil, err
	}
	if err := q.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TIMESTAMPTZ NOT NULL DEFAULT now());`); err != nil {
		return nil, fmt.Errorf("schema_migrations: %w", err)
	}

	var applied []string
	for _, f := range files {
		var done bool
		if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version=$1)`, f).Scan(&done); err != nil {
			return applied, err
		}
		if done {
			continue
		}

		b, err := fs.ReadFile(f)
		if err != nil {
			return applied, err
		}
		err = q.InTx(ctx, func(tx db.Querier) error {
			if err := tx.Exec(ctx, string(b)); err != nil {
				return err
			}
			return tx.Exec(ctx, `INSERT INTO schema_migrations(version) VALUES ($1)`, f)
		})
		if err != nil {
			return applied, fmt.Errorf("apply %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied migration")
		applied = append(applied, f)
	}
	return applied, nil
}
