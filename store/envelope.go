// SPDX-License-Identifier: MIT
//
// File: envelope.go
// Role: Envelope and phase-boundary runs.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/katalvlaran/lvflux/core"
	"github.com/katalvlaran/lvflux/envelope"
	"github.com/katalvlaran/lvflux/phase"
)

// SaveEnvelope stores env as a new run. Infeasible points keep their NaN
// bounds as NULL.
func (s *Store) SaveEnvelope(ctx context.Context, model string, env envelope.Envelope) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		label := fmt.Sprintf("%s→%s", env.Objective, env.Target)
		if id, err = s.insertRun(ctx, tx, KindEnvelope, model, label); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO envelopes(run_id, objective, target) VALUES(?,?,?)`,
			id.String(), string(env.Objective), string(env.Target)); err != nil {
			return fmt.Errorf("store: insert envelope: %w", err)
		}
		for i, p := range env.Points {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO envelope_points(run_id, idx, level, min, max) VALUES(?,?,?,?,?)`,
				id.String(), i, p.Level, nullable(p.Min), nullable(p.Max)); err != nil {
				return fmt.Errorf("store: insert envelope point %d: %w", i, err)
			}
		}

		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	s.log.Info("envelope saved", zap.Stringer("run", id), zap.Int("points", env.Len()))

	return id, nil
}

// LoadEnvelope reads an envelope run back.
//
// Errors: ErrRunNotFound, ErrKindMismatch.
func (s *Store) LoadEnvelope(ctx context.Context, id uuid.UUID) (envelope.Envelope, error) {
	if _, err := s.expect(ctx, id, KindEnvelope); err != nil {
		return envelope.Envelope{}, err
	}

	var objective, target string
	if err := s.db.QueryRowContext(ctx, `SELECT objective, target FROM envelopes WHERE run_id = ?`, id.String()).
		Scan(&objective, &target); err != nil {
		return envelope.Envelope{}, fmt.Errorf("store: select envelope: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT level, min, max FROM envelope_points WHERE run_id = ? ORDER BY idx`, id.String())
	if err != nil {
		return envelope.Envelope{}, fmt.Errorf("store: select envelope points: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var points []envelope.Point
	for rows.Next() {
		var (
			level  float64
			lo, hi sql.NullFloat64
		)
		if err := rows.Scan(&level, &lo, &hi); err != nil {
			return envelope.Envelope{}, fmt.Errorf("store: scan envelope point: %w", err)
		}
		points = append(points, envelope.Point{Level: level, Min: orNaN(lo), Max: orNaN(hi)})
	}
	if err := rows.Err(); err != nil {
		return envelope.Envelope{}, err
	}

	return envelope.New(core.ReactionID(objective), core.ReactionID(target), points)
}

// PhaseSet is a stored boundary detection over a stored envelope.
type PhaseSet struct {
	Envelope   uuid.UUID
	Options    phase.Options
	Boundaries []phase.Boundary
}

// SavePhases stores the boundaries detected on a saved envelope. Only the
// slopes and indices are written; the anchoring points are reattached from
// the envelope on load.
//
// Errors: ErrRunNotFound, ErrKindMismatch (envelopeID is not an envelope).
func (s *Store) SavePhases(ctx context.Context, envelopeID uuid.UUID, opts phase.Options, bounds []phase.Boundary) (uuid.UUID, error) {
	parent, err := s.expect(ctx, envelopeID, KindEnvelope)
	if err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		if id, err = s.insertRun(ctx, tx, KindPhases, parent.Model, envelopeID.String()); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO phase_sets(run_id, envelope_id, curve, threshold, absolute) VALUES(?,?,?,?,?)`,
			id.String(), envelopeID.String(), opts.Curve.String(), opts.Threshold, boolInt(opts.Absolute)); err != nil {
			return fmt.Errorf("store: insert phase set: %w", err)
		}
		for _, b := range bounds {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO phase_boundaries(run_id, idx, slope_before, slope_after, difference) VALUES(?,?,?,?,?)`,
				id.String(), b.Index, b.SlopeBefore, b.SlopeAfter, b.SlopeDifference); err != nil {
				return fmt.Errorf("store: insert boundary %d: %w", b.Index, err)
			}
		}

		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	s.log.Info("phases saved", zap.Stringer("run", id), zap.Stringer("envelope", envelopeID), zap.Int("boundaries", len(bounds)))

	return id, nil
}

// LoadPhases reads a phase run and reattaches its envelope points.
//
// Errors: ErrRunNotFound, ErrKindMismatch.
func (s *Store) LoadPhases(ctx context.Context, id uuid.UUID) (PhaseSet, error) {
	if _, err := s.expect(ctx, id, KindPhases); err != nil {
		return PhaseSet{}, err
	}

	var (
		set      PhaseSet
		rawEnv   string
		curve    string
		absolute int
	)
	if err := s.db.QueryRowContext(ctx,
		`SELECT envelope_id, curve, threshold, absolute FROM phase_sets WHERE run_id = ?`, id.String()).
		Scan(&rawEnv, &curve, &set.Options.Threshold, &absolute); err != nil {
		return PhaseSet{}, fmt.Errorf("store: select phase set: %w", err)
	}
	envID, err := uuid.Parse(rawEnv)
	if err != nil {
		return PhaseSet{}, fmt.Errorf("store: envelope id %q: %w", rawEnv, err)
	}
	set.Envelope = envID
	set.Options.Absolute = absolute != 0
	if set.Options.Curve, err = envelope.ParseSide(curve); err != nil {
		return PhaseSet{}, err
	}

	env, err := s.LoadEnvelope(ctx, envID)
	if err != nil {
		return PhaseSet{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, slope_before, slope_after, difference FROM phase_boundaries WHERE run_id = ? ORDER BY idx`, id.String())
	if err != nil {
		return PhaseSet{}, fmt.Errorf("store: select boundaries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var b phase.Boundary
		if err := rows.Scan(&b.Index, &b.SlopeBefore, &b.SlopeAfter, &b.SlopeDifference); err != nil {
			return PhaseSet{}, fmt.Errorf("store: scan boundary: %w", err)
		}
		if b.Index < 1 || b.Index+1 >= env.Len() {
			return PhaseSet{}, fmt.Errorf("store: boundary index %d outside envelope of %d points", b.Index, env.Len())
		}
		b.Left, b.Mid, b.Right = env.Points[b.Index-1], env.Points[b.Index], env.Points[b.Index+1]
		set.Boundaries = append(set.Boundaries, b)
	}

	return set, rows.Err()
}
