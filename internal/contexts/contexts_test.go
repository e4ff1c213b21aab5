package contexts

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/resy-asks/internal/db"
	"github.com/example/resy-asks/internal/engine"
	"github.com/example/resy-asks/internal/seal"
)

// fakeRows scans each stored row into the destinations by position.
type fakeRows struct {
	rows [][]any
	i    int
	err  error
}

func (r *fakeRows) Close() {}
func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Next() bool { r.i++; return r.i <= len(r.rows) }

func (r *fakeRows) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	row := r.rows[r.i-1]
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(row[i]))
	}
	return nil
}

type fakeDB struct {
	lastSQL  string
	lastArgs []any
	rows     [][]any
	rowErr   error
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) error {
	f.lastSQL, f.lastArgs = sql, args
	return nil
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) db.Row {
	f.lastSQL, f.lastArgs = sql, args
	if f.rowErr != nil {
		return &fakeRows{rows: [][]any{nil}, i: 1, err: f.rowErr}
	}
	return &fakeRows{rows: f.rows, i: 1}
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (db.Rows, error) {
	f.lastSQL, f.lastArgs = sql, args
	return &fakeRows{rows: f.rows}, nil
}

func newSealer(t *testing.T) *seal.Sealer {
	t.Helper()
	key, err := seal.NewKey()
	require.NoError(t, err)
	s, err := seal.New(key)
	require.NoError(t, err)
	return s
}

func TestValidate(t *testing.T) {
	ok := Context{Name: "alice", AuthToken: "tok", AskSource: "asks.tsv"}
	assert.NoError(t, ok.Validate())

	for _, c := range []Context{
		{AuthToken: "tok", AskSource: "asks.tsv"},
		{Name: "alice", AskSource: "asks.tsv"},
		{Name: "alice", AuthToken: "tok", AskSource: " "},
	} {
		assert.Error(t, c.Validate())
	}
}

func TestSaveSealsToken(t *testing.T) {
	s := newSealer(t)
	fdb := &fakeDB{rows: [][]any{{int64(7)}}}
	repo := NewRepo(fdb, s, zerolog.Nop())

	id, err := repo.Save(context.Background(), Context{Name: "alice", AuthToken: "secret", AskSource: "asks.tsv"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	sealed, ok := fdb.lastArgs[1].(string)
	require.True(t, ok)
	assert.NotEqual(t, "secret", sealed)
	tok, err := s.Open(sealed, "alice")
	require.NoError(t, err)
	assert.Equal(t, "secret", tok)
}

func TestSaveRejectsInvalid(t *testing.T) {
	repo := NewRepo(&fakeDB{}, newSealer(t), zerolog.Nop())
	_, err := repo.Save(context.Background(), Context{Name: "alice"})
	assert.Error(t, err)
}

func TestEnabledUnsealsAndListRedacts(t *testing.T) {
	s := newSealer(t)
	sealed, err := s.Seal("secret", "alice")
	require.NoError(t, err)
	now := time.Now()
	fdb := &fakeDB{rows: [][]any{{int64(1), "alice", sealed, "asks.tsv", true, now, now}}}
	repo := NewRepo(fdb, s, zerolog.Nop())

	got, err := repo.Enabled(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "secret", got[0].AuthToken)
	assert.Equal(t, []any{true}, fdb.lastArgs)

	got, err = repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].AuthToken)
	assert.Equal(t, []any{false}, fdb.lastArgs)
}

func TestEnabledSkipsContextThatCannotBeUnsealed(t *testing.T) {
	s := newSealer(t)
	good, err := s.Seal("alice-token", "alice")
	require.NoError(t, err)
	foreign, err := newSealer(t).Seal("bob-token", "bob")
	require.NoError(t, err)
	now := time.Now()

	var logs bytes.Buffer
	repo := NewRepo(&fakeDB{rows: [][]any{
		{int64(1), "alice", good, "alice.tsv", true, now, now},
		{int64(2), "bob", foreign, "bob.tsv", true, now, now},
	}}, s, zerolog.New(&logs))

	got, err := repo.Enabled(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].Name)
	assert.Equal(t, "alice-token", got[0].AuthToken)
	assert.Contains(t, logs.String(), `"context":"bob"`)
}

func TestSetEnabledNotFound(t *testing.T) {
	repo := NewRepo(&fakeDB{rowErr: pgx.ErrNoRows}, newSealer(t), zerolog.Nop())
	err := repo.SetEnabled(context.Background(), "nobody", false)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestRecordPass(t *testing.T) {
	fdb := &fakeDB{}
	repo := NewRepo(fdb, newSealer(t), zerolog.Nop())
	runID := uuid.New()
	rep := engine.Report{
		RunID:   runID.String(),
		Started: time.Now(),
		Booked:  1,
		NoMatch: 2,
		Results: make([]engine.Result, 3),
	}

	require.NoError(t, repo.RecordPass(context.Background(), 4, rep, nil))
	assert.Equal(t, runID, fdb.lastArgs[0])
	assert.Equal(t, int64(4), fdb.lastArgs[1])
	assert.Equal(t, 3, fdb.lastArgs[4])
	assert.Equal(t, 1, fdb.lastArgs[8])
	assert.Nil(t, fdb.lastArgs[12])

	require.NoError(t, repo.RecordPass(context.Background(), 4, engine.Report{}, errors.New("source down")))
	msg, ok := fdb.lastArgs[12].(*string)
	require.True(t, ok)
	assert.Equal(t, "source down", *msg)
	assert.NotEqual(t, uuid.Nil, fdb.lastArgs[0])
}
