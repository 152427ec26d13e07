// SPDX-License-Identifier: MIT
//
// File: parsimonious.go
// Role: Parsimonious flux balance: minimal total flux among (near-)optimal states.

package fba

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/katalvlaran/lvflux/core"
	"github.com/katalvlaran/lvflux/solver"
)

// optimumSlack relaxes the objective floor so it stays feasible under
// solver round-off.
const optimumSlack = 1e-9

// Parsimonious maximizes objective, then among all flux states keeping the
// objective at or above fraction·optimum minimizes Σ|v_j|.
//
// The returned Solution reports the objective reaction's flux as
// ObjectiveValue and the minimized sum as TotalFlux. Non-optimal first
// stages are returned as they are.
//
// Errors: ErrUnknownReaction, ErrInvalidFraction, ErrSolverFault.
func (a *Adapter) Parsimonious(ctx context.Context, m *core.Model, objective core.ReactionID, fraction float64) (Solution, error) {
	if !(fraction > 0 && fraction <= 1) {
		return Solution{Status: StatusError}, ErrInvalidFraction
	}
	if !m.HasReaction(objective) {
		return Solution{Status: StatusError}, fmt.Errorf("fba: objective %q: %w", objective, ErrUnknownReaction)
	}
	if err := m.SetObjective(map[core.ReactionID]float64{objective: 1}); err != nil {
		return Solution{Status: StatusError}, err
	}

	return a.ParsimoniousNetwork(ctx, m.Network(), fraction)
}

// ParsimoniousNetwork is Parsimonious over a snapshot's own objective vector.
//
// Implementation:
//   - Stage 1: Maximize cᵀv to obtain z*.
//   - Stage 2: Add t_j ≥ |v_j| through v_j − t_j ≤ 0 and −v_j − t_j ≤ 0
//     (dropping the row a sign-restricted flux makes redundant), plus the
//     floor −cᵀv ≤ −(fraction·z* − slack).
//   - Stage 3: Minimize Σ t_j.
func (a *Adapter) ParsimoniousNetwork(ctx context.Context, net *core.Network, fraction float64) (Solution, error) {
	if !(fraction > 0 && fraction <= 1) {
		return Solution{Status: StatusError}, ErrInvalidFraction
	}

	// Stage 1: optimum
	base, err := a.WithDualValues(false).SolveNetwork(ctx, net, Maximize)
	if err != nil || !base.Optimal() {
		return base, err
	}
	z := base.Objective()

	// Stage 2: augmented problem
	n := net.NumReactions()
	p := BuildProblem(net, Minimize)
	c := p.C
	p.C = make([]float64, 2*n)
	for j := 0; j < n; j++ {
		p.C[n+j] = 1
		p.Lower = append(p.Lower, 0)
		p.Upper = append(p.Upper, math.Inf(1))
	}
	for j := 0; j < n; j++ {
		if net.Upper()[j] > 0 {
			p.Ineq = append(p.Ineq, solver.Row{{Col: j, Val: 1}, {Col: n + j, Val: -1}})
			p.IneqRHS = append(p.IneqRHS, 0)
		}
		if net.Lower()[j] < 0 {
			p.Ineq = append(p.Ineq, solver.Row{{Col: j, Val: -1}, {Col: n + j, Val: -1}})
			p.IneqRHS = append(p.IneqRHS, 0)
		}
	}
	var floor solver.Row
	for j, cj := range c {
		if cj != 0 {
			floor = append(floor, solver.Term{Col: j, Val: -cj})
		}
	}
	if len(floor) > 0 {
		p.Ineq = append(p.Ineq, floor)
		p.IneqRHS = append(p.IneqRHS, -(fraction*z - optimumSlack*math.Max(1, math.Abs(z))))
	}

	// Stage 3: minimize total flux
	res, err := a.opt.Optimize(ctx, p)
	if err != nil {
		return Solution{Status: StatusError}, wrapFault(err)
	}
	sol := Solution{Status: statusOf(res.Status)}
	if sol.Status != StatusOptimal {
		a.log.Warn("parsimonious stage failed after optimal first stage", zap.Stringer("status", sol.Status))
		return sol, nil
	}

	sol.Fluxes = make(map[core.ReactionID]float64, n)
	var obj float64
	for j, id := range net.Reactions() {
		v := res.X[j]
		sol.Fluxes[id] = v
		sol.TotalFlux += math.Abs(v)
		obj += c[j] * v
	}
	sol.ObjectiveValue = &obj
	a.log.Debug("parsimonious solve", zap.Float64("optimum", z), zap.Float64("objective", obj), zap.Float64("total_flux", sol.TotalFlux))

	return sol, nil
}
