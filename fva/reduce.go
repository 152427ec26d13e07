// SPDX-License-Identifier: MIT
//
// File: reduce.go
// Role: Variability-driven model reduction, re-solve and phase range analysis.

package fva

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/katalvlaran/lvflux/core"
	"github.com/katalvlaran/lvflux/fba"
)

// DefaultEpsilon is the blocked-reaction threshold.
const DefaultEpsilon = 1e-6

// DefaultFermentation is the lactate dehydrogenase reaction suppressed on request.
const DefaultFermentation core.ReactionID = "LDH_L"

// ReduceOptions configures Reduce and ReduceAndSolve.
type ReduceOptions struct {
	// Epsilon is the blocked threshold; zero means DefaultEpsilon.
	Epsilon float64

	// Keep lists reactions never removed, whatever their range.
	Keep []core.ReactionID

	// SuppressFermentation pins Fermentation to (0, 0) if it survives.
	SuppressFermentation bool
	Fermentation         core.ReactionID

	// Parsimonious makes ReduceAndSolve minimize total flux at Fraction
	// (zero means 1) of the optimum instead of a plain solve.
	Parsimonious bool
	Fraction     float64

	// Variability configures the pass ReduceAndSolve runs first.
	Variability Options
}

// DefaultReduceOptions returns ε = 1e-6, no suppression, plain re-solve.
func DefaultReduceOptions() ReduceOptions {
	return ReduceOptions{
		Epsilon:      DefaultEpsilon,
		Fermentation: DefaultFermentation,
		Fraction:     1,
		Variability:  DefaultOptions(),
	}
}

func (o ReduceOptions) normalized() ReduceOptions {
	if o.Epsilon <= 0 {
		o.Epsilon = DefaultEpsilon
	}
	if o.Fermentation == "" {
		o.Fermentation = DefaultFermentation
	}
	if o.Fraction == 0 {
		o.Fraction = 1
	}

	return o
}

// Reduce returns a clone of m without the reactions res reports as blocked,
// and the removed identifiers in model order. Metabolites left without
// reactions are dropped too. m itself is never mutated.
//
// Ranges that are NaN are never treated as blocked.
func Reduce(m *core.Model, res Result, opts ReduceOptions) (*core.Model, []core.ReactionID, error) {
	opts = opts.normalized()
	keep := make(map[core.ReactionID]bool, len(opts.Keep))
	for _, id := range opts.Keep {
		keep[id] = true
	}

	var removed []core.ReactionID
	for _, id := range m.ReactionIDs() {
		r, ok := res[id]
		if !ok || keep[id] || r.Infeasible() {
			continue
		}
		if r.Blocked(opts.Epsilon) {
			removed = append(removed, id)
		}
	}

	reduced := m.Clone()
	if _, err := reduced.RemoveReactions(removed, true); err != nil {
		return nil, nil, fmt.Errorf("fva: reduce: %w", err)
	}
	if opts.SuppressFermentation && reduced.HasReaction(opts.Fermentation) {
		if err := reduced.SetBounds(opts.Fermentation, 0, 0); err != nil {
			return nil, nil, err
		}
	}

	return reduced, removed, nil
}

// Reduction is the outcome of ReduceAndSolve.
type Reduction struct {
	Model       *core.Model
	Removed     []core.ReactionID
	Variability Result
	Solution    fba.Solution
}

// ReduceAndSolve runs a variability pass with objective as the network
// objective, reduces the model and solves the reduced model for objective.
// The objective reaction is always kept.
//
// Errors: fba.ErrUnknownReaction, fba.ErrInvalidFraction, fba.ErrSolverFault.
func ReduceAndSolve(ctx context.Context, a *fba.Adapter, m *core.Model, objective core.ReactionID, opts ReduceOptions) (Reduction, error) {
	opts = opts.normalized()
	if !m.HasReaction(objective) {
		return Reduction{}, fmt.Errorf("fva: objective %q: %w", objective, fba.ErrUnknownReaction)
	}
	net, err := m.Network().WithObjective(map[core.ReactionID]float64{objective: 1})
	if err != nil {
		return Reduction{}, err
	}
	res, err := AnalyzeNetwork(ctx, a, net, opts.Variability)
	if err != nil {
		return Reduction{}, err
	}

	opts.Keep = append(append([]core.ReactionID(nil), opts.Keep...), objective)
	reduced, removed, err := Reduce(m, res, opts)
	if err != nil {
		return Reduction{}, err
	}

	var sol fba.Solution
	if opts.Parsimonious {
		sol, err = a.Parsimonious(ctx, reduced, objective, opts.Fraction)
	} else {
		sol, err = a.Solve(ctx, reduced, objective, fba.Maximize)
	}
	if err != nil {
		return Reduction{}, err
	}
	a.Logger().Debug("reduced model solved",
		zap.String("objective", string(objective)),
		zap.Int("removed", len(removed)),
		zap.Int("reactions", reduced.NumReactions()),
		zap.Stringer("status", sol.Status))

	return Reduction{Model: reduced, Removed: removed, Variability: res, Solution: sol}, nil
}

// RangeQuery pins Constrained to [Lower, Upper] and asks which metabolites
// and reactions limit Objective inside that window.
type RangeQuery struct {
	Constrained core.ReactionID
	Lower       float64
	Upper       float64
	Objective   core.ReactionID
	Reduce      ReduceOptions
}

// Price is one shadow price or reduced cost.
type Price struct {
	ID    string
	Value float64
}

// RangeReport holds the duals of the reduced model inside one window.
type RangeReport struct {
	Query        RangeQuery
	Reduction    Reduction
	ShadowPrices map[core.MetaboliteID]float64
	ReducedCosts map[core.ReactionID]float64
}

// Limiting returns up to n metabolites with non-zero shadow price ordered by
// |price| descending (ties by ID). n ≤ 0 returns all of them.
func (r RangeReport) Limiting(n int) []Price {
	out := make([]Price, 0, len(r.ShadowPrices))
	for id, v := range r.ShadowPrices {
		if v > DefaultEpsilon || v < -DefaultEpsilon {
			out = append(out, Price{ID: string(id), Value: v})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := abs(out[i].Value), abs(out[j].Value)
		if ai != aj {
			return ai > aj
		}
		return out[i].ID < out[j].ID
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}

	return out
}

// RangeAnalysis applies a RangeQuery to a clone of m and reduces and solves
// it with duals. Parsimonious re-solves are not used here since they carry
// no duals. m is never mutated.
//
// Errors: fba.ErrUnknownReaction, core.BoundsError, fba.ErrSolverFault.
func RangeAnalysis(ctx context.Context, a *fba.Adapter, m *core.Model, q RangeQuery) (RangeReport, error) {
	if !m.HasReaction(q.Constrained) {
		return RangeReport{}, fmt.Errorf("fva: constrained %q: %w", q.Constrained, fba.ErrUnknownReaction)
	}
	window := m.Clone()
	if err := window.SetBounds(q.Constrained, q.Lower, q.Upper); err != nil {
		return RangeReport{}, err
	}

	opts := q.Reduce
	opts.Parsimonious = false
	opts.Keep = append(append([]core.ReactionID(nil), opts.Keep...), q.Constrained)
	red, err := ReduceAndSolve(ctx, a.WithDualValues(true), window, q.Objective, opts)
	if err != nil {
		return RangeReport{}, err
	}

	return RangeReport{
		Query:        q,
		Reduction:    red,
		ShadowPrices: red.Solution.ShadowPrices,
		ReducedCosts: red.Solution.ReducedCosts,
	}, nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}

	return x
}
