// SPDX-License-Identifier: MIT
//
// File: adapter.go
// Role: Single-objective flux balance solves over a Model or a frozen Network.

package fba

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/katalvlaran/lvflux/core"
	"github.com/katalvlaran/lvflux/solver"
)

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the adapter's logger (default zap.NewNop()).
func WithLogger(l *zap.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.log = l
		}
	}
}

// WithDuals makes every solve request shadow prices and reduced costs.
func WithDuals(on bool) Option {
	return func(a *Adapter) { a.duals = on }
}

// Adapter binds a Model to an Optimizer. It holds no per-solve state and
// may be shared by concurrent sweeps.
type Adapter struct {
	opt   solver.Optimizer
	log   *zap.Logger
	duals bool
}

// New constructs an Adapter over opt.
func New(opt solver.Optimizer, opts ...Option) *Adapter {
	a := &Adapter{opt: opt, log: zap.NewNop()}
	for _, o := range opts {
		o(a)
	}

	return a
}

// Logger returns the adapter's logger, for engines built on top of it.
func (a *Adapter) Logger() *zap.Logger { return a.log }

// WithDualValues returns a copy of the adapter with duals switched on or off.
func (a *Adapter) WithDualValues(on bool) *Adapter {
	cp := *a
	cp.duals = on

	return &cp
}

// Solve makes objective the model's sole objective (coefficient 1), sets
// the direction and solves once.
//
// Implementation:
//   - Stage 1: Reject unknown objectives before any mutation.
//   - Stage 2: Rewrite the model objective and freeze a Network.
//   - Stage 3: Delegate to SolveNetwork.
//
// Infeasible and unbounded outcomes return a Solution with that status and
// a nil error. Optimizer failures return Status=StatusError and an error
// wrapping ErrSolverFault.
func (a *Adapter) Solve(ctx context.Context, m *core.Model, objective core.ReactionID, dir solver.Sense) (Solution, error) {
	if !m.HasReaction(objective) {
		return Solution{Status: StatusError}, fmt.Errorf("fba: objective %q: %w", objective, ErrUnknownReaction)
	}
	if err := m.SetObjective(map[core.ReactionID]float64{objective: 1}); err != nil {
		return Solution{Status: StatusError}, err
	}

	return a.SolveNetwork(ctx, m.Network(), dir)
}

// SolveNetwork optimizes the snapshot's own objective vector.
func (a *Adapter) SolveNetwork(ctx context.Context, net *core.Network, dir solver.Sense) (Solution, error) {
	p := BuildProblem(net, dir)
	p.WantDuals = a.duals

	return a.SolveProblem(ctx, net, p)
}

// SolveProblem solves an LP whose first NumReactions columns are net's
// fluxes, typically one produced by BuildProblem and then extended with
// extra rows or variables. Duals are mapped only when p has no rows beyond
// the mass balances.
func (a *Adapter) SolveProblem(ctx context.Context, net *core.Network, p *solver.Problem) (Solution, error) {
	res, err := a.opt.Optimize(ctx, p)
	if err != nil {
		return Solution{Status: StatusError}, wrapFault(err)
	}
	sol := Solution{Status: statusOf(res.Status)}
	if sol.Status != StatusOptimal {
		a.log.Debug("fba non-optimal", zap.Stringer("status", sol.Status), zap.Stringer("sense", p.Sense))
		return sol, nil
	}

	obj := res.Objective
	sol.ObjectiveValue = &obj
	sol.Fluxes = make(map[core.ReactionID]float64, net.NumReactions())
	for j, id := range net.Reactions() {
		sol.Fluxes[id] = res.X[j]
		sol.TotalFlux += abs(res.X[j])
	}
	if res.Duals != nil && len(p.Ineq) == 0 && p.NumVars() == net.NumReactions() {
		sol.ShadowPrices, sol.ReducedCosts = dualMaps(net, res.Duals)
	}

	return sol, nil
}

// BuildProblem translates a Network into an LP: S·v = 0 with one equality
// row per metabolite, the snapshot's bounds and objective vector.
// Complexity: O(nnz(S) + R).
func BuildProblem(net *core.Network, dir solver.Sense) *solver.Problem {
	n := net.NumReactions()
	p := &solver.Problem{
		Sense: dir,
		C:     append([]float64(nil), net.Objective()...),
		Lower: append([]float64(nil), net.Lower()...),
		Upper: append([]float64(nil), net.Upper()...),
		Eq:    make([]solver.Row, net.NumMetabolites()),
		EqRHS: make([]float64, net.NumMetabolites()),
	}
	for j := 0; j < n; j++ {
		for _, e := range net.Column(j) {
			p.Eq[e.Row] = append(p.Eq[e.Row], solver.Term{Col: j, Val: e.Coef})
		}
	}

	return p
}

// dualMaps turns row duals into shadow prices per metabolite and reduced
// costs d_j = c_j − Σ_i S_ij·π_i per reaction.
func dualMaps(net *core.Network, duals []float64) (map[core.MetaboliteID]float64, map[core.ReactionID]float64) {
	prices := make(map[core.MetaboliteID]float64, len(duals))
	for i, id := range net.Metabolites() {
		prices[id] = duals[i]
	}
	reduced := make(map[core.ReactionID]float64, net.NumReactions())
	c := net.Objective()
	for j, id := range net.Reactions() {
		d := c[j]
		for _, e := range net.Column(j) {
			d -= e.Coef * duals[e.Row]
		}
		reduced[id] = d
	}

	return prices, reduced
}

func wrapFault(err error) error {
	if errors.Is(err, ErrSolverFault) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrSolverFault, err)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}

	return x
}
