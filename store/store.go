// SPDX-License-Identifier: MIT
//
// File: store.go
// Role: SQLite run database: schema, run index, shared helpers.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var (
	// ErrRunNotFound is returned for run IDs absent from the database.
	ErrRunNotFound = errors.New("store: run not found")

	// ErrKindMismatch is returned when a run exists but holds another kind of result.
	ErrKindMismatch = errors.New("store: run has a different kind")
)

// Kind tags what a run holds.
type Kind string

const (
	KindEnvelope   Kind = "envelope"
	KindPhases     Kind = "phases"
	KindValidation Kind = "validation"
)

// Run is one row of the run index.
type Run struct {
	ID        uuid.UUID
	Kind      Kind
	CreatedAt time.Time

	// Model names the model document the run was computed on.
	Model string

	// Label is a kind-specific summary: "objective→target" for envelopes,
	// the profile for validation runs, the parent envelope for phases.
	Label string
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	kind       TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	model      TEXT NOT NULL,
	label      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS envelopes (
	run_id    TEXT PRIMARY KEY,
	objective TEXT NOT NULL,
	target    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS envelope_points (
	run_id TEXT NOT NULL,
	idx    INTEGER NOT NULL,
	level  REAL NOT NULL,
	min    REAL,
	max    REAL,
	PRIMARY KEY (run_id, idx)
);
CREATE TABLE IF NOT EXISTS phase_sets (
	run_id      TEXT PRIMARY KEY,
	envelope_id TEXT NOT NULL,
	curve       TEXT NOT NULL,
	threshold   REAL NOT NULL,
	absolute    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS phase_boundaries (
	run_id       TEXT NOT NULL,
	idx          INTEGER NOT NULL,
	slope_before REAL NOT NULL,
	slope_after  REAL NOT NULL,
	difference   REAL NOT NULL,
	PRIMARY KEY (run_id, idx)
);
CREATE TABLE IF NOT EXISTS validations (
	run_id      TEXT PRIMARY KEY,
	profile     TEXT NOT NULL,
	version     TEXT NOT NULL,
	objective   TEXT NOT NULL,
	baseline    REAL NOT NULL,
	denominator REAL NOT NULL,
	threshold   REAL NOT NULL,
	tp INTEGER NOT NULL,
	tn INTEGER NOT NULL,
	fp INTEGER NOT NULL,
	fn INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS validation_records (
	run_id      TEXT NOT NULL,
	idx         INTEGER NOT NULL,
	component   TEXT NOT NULL,
	status      INTEGER NOT NULL,
	growth      REAL,
	fold_change REAL,
	predicted   INTEGER NOT NULL,
	scored      INTEGER NOT NULL,
	observed    INTEGER,
	observed_value REAL,
	outcome     INTEGER,
	excluded    INTEGER NOT NULL,
	PRIMARY KEY (run_id, idx)
);
`

// childTables lists every table keyed by run_id, for DeleteRun.
var childTables = []string{
	"envelopes", "envelope_points", "phase_sets", "phase_boundaries",
	"validations", "validation_records",
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger (default zap.NewNop()).
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces time.Now for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store persists analysis runs in one SQLite file.
type Store struct {
	db   *sql.DB
	path string
	log  *zap.Logger
	now  func() time.Time
}

// Open creates or opens the database at path and applies the schema.
// Parent directories are created as needed.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store: empty database path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("store: create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	// One connection serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	s := &Store{db: db, path: path, log: zap.NewNop(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	s.log.Debug("run store opened", zap.String("path", path))

	return s, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database path.
func (s *Store) Path() string { return s.path }

// Runs lists runs oldest first. An empty kind lists every kind.
func (s *Store) Runs(ctx context.Context, kind Kind) ([]Run, error) {
	q := `SELECT id, kind, created_at, model, label FROM runs`
	var args []any
	if kind != "" {
		q += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	q += ` ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}

	return out, rows.Err()
}

// Run returns one run's index entry.
//
// Errors: ErrRunNotFound.
func (s *Store) Run(ctx context.Context, id uuid.UUID) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, created_at, model, label FROM runs WHERE id = ?`, id.String())
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	return r, err
}

// DeleteRun removes a run and all of its rows.
//
// Errors: ErrRunNotFound.
func (s *Store) DeleteRun(ctx context.Context, id uuid.UUID) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id.String())
		if err != nil {
			return fmt.Errorf("store: delete run: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		for _, t := range childTables {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+t+` WHERE run_id = ?`, id.String()); err != nil {
				return fmt.Errorf("store: delete from %s: %w", t, err)
			}
		}

		return nil
	})
}

// expect loads a run and checks its kind.
func (s *Store) expect(ctx context.Context, id uuid.UUID, kind Kind) (Run, error) {
	r, err := s.Run(ctx, id)
	if err != nil {
		return Run{}, err
	}
	if r.Kind != kind {
		return Run{}, fmt.Errorf("%w: %s is %s, want %s", ErrKindMismatch, id, r.Kind, kind)
	}

	return r, nil
}

// insertRun writes the index row for a new run inside tx.
func (s *Store) insertRun(ctx context.Context, tx *sql.Tx, kind Kind, model, label string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := tx.ExecContext(ctx,
		`INSERT INTO runs(id, kind, created_at, model, label) VALUES(?,?,?,?,?)`,
		id.String(), string(kind), s.now().UnixNano(), model, label)
	if err != nil {
		return uuid.Nil, fmt.Errorf("store: insert run: %w", err)
	}

	return id, nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) (retErr error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r           Run
		rawID, kind string
		created     int64
	)
	if err := sc.Scan(&rawID, &kind, &created, &r.Model, &r.Label); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("store: scan run: %w", err)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return Run{}, fmt.Errorf("store: run id %q: %w", rawID, err)
	}
	r.ID = id
	r.Kind = Kind(kind)
	r.CreatedAt = time.Unix(0, created)

	return r, nil
}

// nullable maps NaN to SQL NULL.
func nullable(v float64) any {
	if math.IsNaN(v) {
		return nil
	}

	return v
}

// orNaN maps SQL NULL back to NaN.
func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}

	return v.Float64
}

func boolInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
