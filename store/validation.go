// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/katalvlaran/lvflux/core"
	"github.com/katalvlaran/lvflux/fba"
	"github.com/katalvlaran/lvflux/media"
	"github.com/katalvlaran/lvflux/validation"
)

// SaveValidation stores one profile's validation report as a new run.
// Unscored records keep NULL observation and outcome columns.
func (s *Store) SaveValidation(ctx context.Context, model string, rep validation.Report) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		if id, err = s.insertRun(ctx, tx, KindValidation, model, string(rep.Profile)); err != nil {
			return err
		}
		m := rep.Matrix
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO validations(run_id, profile, version, objective, baseline, denominator, threshold, tp, tn, fp, fn)
			 VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
			id.String(), string(rep.Profile), rep.Version, string(rep.Objective),
			rep.Baseline, rep.Denominator, rep.Threshold, m.TP, m.TN, m.FP, m.FN); err != nil {
			return fmt.Errorf("store: insert validation: %w", err)
		}
		for i, r := range rep.Records {
			var observed, observedValue, outcome any
			if r.Scored {
				observed, observedValue, outcome = int(r.Observed.Label), nullable(r.Observed.Value), int(r.Outcome)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO validation_records(run_id, idx, component, status, growth, fold_change, predicted,
				 scored, observed, observed_value, outcome, excluded) VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
				id.String(), i, string(r.Component), int(r.Status), nullable(r.Growth), nullable(r.FoldChange),
				int(r.Predicted), boolInt(r.Scored), observed, observedValue, outcome, boolInt(r.Excluded)); err != nil {
				return fmt.Errorf("store: insert record %s: %w", r.Component, err)
			}
		}

		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	s.log.Info("validation saved",
		zap.Stringer("run", id),
		zap.String("profile", string(rep.Profile)),
		zap.Int("records", len(rep.Records)))

	return id, nil
}

// LoadValidation reads a validation run back. Unscored is rebuilt from the
// records in their stored order.
//
// Errors: ErrRunNotFound, ErrKindMismatch.
func (s *Store) LoadValidation(ctx context.Context, id uuid.UUID) (validation.Report, error) {
	if _, err := s.expect(ctx, id, KindValidation); err != nil {
		return validation.Report{}, err
	}

	var (
		rep                validation.Report
		profile, objective string
	)
	if err := s.db.QueryRowContext(ctx,
		`SELECT profile, version, objective, baseline, denominator, threshold, tp, tn, fp, fn
		 FROM validations WHERE run_id = ?`, id.String()).
		Scan(&profile, &rep.Version, &objective, &rep.Baseline, &rep.Denominator, &rep.Threshold,
			&rep.Matrix.TP, &rep.Matrix.TN, &rep.Matrix.FP, &rep.Matrix.FN); err != nil {
		return validation.Report{}, fmt.Errorf("store: select validation: %w", err)
	}
	rep.Profile = media.ProfileID(profile)
	rep.Objective = core.ReactionID(objective)

	rows, err := s.db.QueryContext(ctx,
		`SELECT component, status, growth, fold_change, predicted, scored, observed, observed_value, outcome, excluded
		 FROM validation_records WHERE run_id = ? ORDER BY idx`, id.String())
	if err != nil {
		return validation.Report{}, fmt.Errorf("store: select records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			r                      validation.Record
			component              string
			status, predicted      int
			scored, excluded       int
			growth, fold, obsValue sql.NullFloat64
			observed, outcome      sql.NullInt64
		)
		if err := rows.Scan(&component, &status, &growth, &fold, &predicted, &scored,
			&observed, &obsValue, &outcome, &excluded); err != nil {
			return validation.Report{}, fmt.Errorf("store: scan record: %w", err)
		}
		r.Component = core.ReactionID(component)
		r.Status = fba.Status(status)
		r.Growth = orNaN(growth)
		r.FoldChange = orNaN(fold)
		r.Predicted = validation.Label(predicted)
		r.Scored = scored != 0
		r.Excluded = excluded != 0
		if r.Scored {
			r.Observed = validation.Observation{Label: validation.Label(observed.Int64), Value: orNaN(obsValue)}
			r.Outcome = validation.Outcome(outcome.Int64)
		} else {
			rep.Unscored = append(rep.Unscored, r.Component)
		}
		rep.Records = append(rep.Records, r)
	}

	return rep, rows.Err()
}
