// SPDX-License-Identifier: MIT
//
// File: evaluate.go
// Role: Dropout simulation, fold-change labelling and scoring for one profile.

package validation

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/katalvlaran/lvflux/core"
	"github.com/katalvlaran/lvflux/fba"
	"github.com/katalvlaran/lvflux/media"
)

var (
	// ErrNoBaseline is returned when neither the baseline nor the floor is positive.
	ErrNoBaseline = errors.New("validation: no positive baseline to normalize against")

	// ErrNoObjective is returned when no objective is given and the model has none.
	ErrNoObjective = errors.New("validation: model has no objective")
)

// Options configures Evaluate.
type Options struct {
	// Objective overrides the model's objective for every solve. The model's
	// own objective coefficients are left untouched.
	Objective core.ReactionID
}

// Record is the outcome of one dropout.
type Record struct {
	Component  core.ReactionID
	Status     fba.Status
	Growth     float64
	FoldChange float64
	Predicted  Label

	// Scored is false when the reference has no observation for Component;
	// Observed is then the zero value and Outcome is OutcomeNone.
	Scored   bool
	Observed Observation
	Outcome  Outcome
	Excluded bool
}

// Report is the result of validating one profile.
type Report struct {
	Profile     media.ProfileID
	Version     string
	Objective   core.ReactionID
	Baseline    float64
	Denominator float64
	Threshold   float64
	Records     []Record
	Matrix      ConfusionMatrix
	Unscored    []core.ReactionID
}

// Evaluate applies p's profile to m and runs one dropout per component.
//
// Implementation:
//   - Stage 1: Resolve the objective and apply the profile; both fail
//     before any bound changes other than the profile itself.
//   - Stage 2: Solve the baseline. The denominator is the floor when the
//     baseline is below it, otherwise the baseline.
//   - Stage 3: For each component in sorted order, zero its lower bound
//     inside m.Perturb, solve, and compute growth/denominator. An
//     infeasible dropout has fold change 0. The bound is restored on every
//     exit path, so dropouts never accumulate.
//   - Stage 4: Label, classify against ref and count.
//
// The profile stays applied to m afterwards.
//
// Errors: media.ErrUnknownProfile, media.ErrMissingExchange,
// fba.ErrUnknownReaction, ErrNoObjective, ErrNoBaseline, fba.ErrSolverFault.
func Evaluate(ctx context.Context, a *fba.Adapter, m *core.Model, reg *media.Registry, p Protocol, ref Reference, opts Options) (Report, error) {
	log := a.Logger().With(zap.String("profile", string(p.Profile)))
	a = a.WithDualValues(false)

	// Stage 1: objective and profile
	objective, coefs, err := resolveObjective(m, opts.Objective)
	if err != nil {
		return Report{}, err
	}
	applied, err := reg.Apply(m, p.Profile)
	if err != nil {
		return Report{}, err
	}
	solve := func() (fba.Solution, error) {
		net, err := m.Network().WithObjective(coefs)
		if err != nil {
			return fba.Solution{Status: fba.StatusError}, err
		}
		return a.SolveNetwork(ctx, net, fba.Maximize)
	}

	// Stage 2: baseline
	base, err := solve()
	if err != nil {
		return Report{}, fmt.Errorf("validation: baseline: %w", err)
	}
	rep := Report{
		Profile:   applied.Profile,
		Version:   applied.Version,
		Objective: objective,
		Baseline:  growth(base),
		Threshold: p.EffectThreshold(),
	}
	rep.Denominator = rep.Baseline
	if rep.Baseline < p.Floor {
		log.Info("baseline below floor", zap.Float64("baseline", rep.Baseline), zap.Float64("floor", p.Floor))
		rep.Denominator = p.Floor
	}
	if !(rep.Denominator > 0) {
		return Report{}, fmt.Errorf("%w: profile %q baseline %g floor %g", ErrNoBaseline, p.Profile, rep.Baseline, p.Floor)
	}

	// Stage 3: dropouts
	components := media.Profile{Bounds: applied.Bounds}.Components()
	for _, id := range components {
		cur, err := m.Bounds(id)
		if err != nil {
			return Report{}, err
		}
		var sol fba.Solution
		err = m.Perturb(core.BoundSnapshot{id: {Lower: 0, Upper: math.Max(cur.Upper, 0)}}, func() error {
			var err error
			sol, err = solve()
			return err
		})
		if err != nil {
			return Report{}, fmt.Errorf("validation: dropout %q: %w", id, err)
		}

		// Stage 4: label and score
		rec := Record{Component: id, Status: sol.Status, Growth: growth(sol)}
		rec.FoldChange = rec.Growth / rep.Denominator
		if sol.Status == fba.StatusUnbounded {
			rec.FoldChange = math.Inf(1)
		}
		rec.Predicted = LabelFor(rec.FoldChange, rep.Threshold)
		if obs, ok := ref[id]; ok {
			rec.Scored = true
			rec.Observed = obs
			rec.Excluded = p.Excluded(id)
			rec.Outcome = Classify(obs.Label, rec.Predicted, rec.Excluded)
			rep.Matrix.Add(rec.Outcome)
		} else {
			rep.Unscored = append(rep.Unscored, id)
		}
		rep.Records = append(rep.Records, rec)
		log.Debug("dropout",
			zap.String("component", string(id)),
			zap.Stringer("status", sol.Status),
			zap.Float64("fold_change", rec.FoldChange),
			zap.Stringer("predicted", rec.Predicted))
	}
	log.Info("profile validated",
		zap.Float64("baseline", rep.Baseline),
		zap.Int("components", len(rep.Records)),
		zap.Int("unscored", len(rep.Unscored)),
		zap.Float64("accuracy", rep.Matrix.Accuracy()))

	return rep, nil
}

// resolveObjective returns the objective label and coefficients to solve for.
func resolveObjective(m *core.Model, id core.ReactionID) (core.ReactionID, map[core.ReactionID]float64, error) {
	if id != "" {
		if !m.HasReaction(id) {
			return "", nil, fmt.Errorf("validation: objective %q: %w", id, fba.ErrUnknownReaction)
		}
		return id, map[core.ReactionID]float64{id: 1}, nil
	}
	coefs := m.Objective()
	if len(coefs) == 0 {
		return "", nil, ErrNoObjective
	}
	var label core.ReactionID
	for rid := range coefs {
		if label == "" || rid < label {
			label = rid
		}
	}

	return label, coefs, nil
}

// growth is the objective value of an optimal solve and 0 otherwise.
func growth(s fba.Solution) float64 {
	if !s.Optimal() {
		return 0
	}

	return s.Objective()
}
