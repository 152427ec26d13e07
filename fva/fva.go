// SPDX-License-Identifier: MIT
//
// File: fva.go
// Role: Parallel per-reaction min/max sweep over a frozen Network.

package fva

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/lvflux/core"
	"github.com/katalvlaran/lvflux/fba"
	"github.com/katalvlaran/lvflux/solver"
)

// collapseTol bounds the min > max inversion treated as round-off.
const collapseTol = 1e-9

// floorSlack relaxes the fraction-of-optimum floor like fba.Parsimonious does.
const floorSlack = 1e-9

// Range is the feasible flux interval of one reaction.
type Range struct {
	Min float64
	Max float64
}

// Infeasible reports whether the range carries no values.
func (r Range) Infeasible() bool { return math.IsNaN(r.Min) || math.IsNaN(r.Max) }

// Blocked reports whether both ends lie strictly within eps of zero.
func (r Range) Blocked(eps float64) bool {
	return math.Abs(r.Min) < eps && math.Abs(r.Max) < eps
}

// Result maps reactions to their ranges.
type Result map[core.ReactionID]Range

// Options configures a variability pass.
type Options struct {
	// Reactions restricts the pass; empty means every reaction.
	Reactions []core.ReactionID

	// FractionOfOptimum, when positive, first maximizes the network
	// objective and keeps it at or above fraction·optimum. Zero disables it.
	FractionOfOptimum float64

	// Workers bounds concurrent solves; values < 1 mean GOMAXPROCS.
	Workers int
}

// DefaultOptions returns a full, unconstrained pass using GOMAXPROCS workers.
func DefaultOptions() Options {
	return Options{Workers: runtime.GOMAXPROCS(0)}
}

// Analyze runs a variability pass over a snapshot of m.
func Analyze(ctx context.Context, a *fba.Adapter, m *core.Model, opts Options) (Result, error) {
	return AnalyzeNetwork(ctx, a, m.Network(), opts)
}

// AnalyzeNetwork runs a variability pass over net.
//
// Implementation:
//   - Stage 1: Resolve the reaction set; unknown identifiers fail fast.
//   - Stage 2: Build the base LP (mass balances plus, optionally, the
//     objective floor) and probe it once; an infeasible snapshot gives NaN
//     for every range.
//   - Stage 3: Fan out min and max solves per reaction over errgroup with
//     SetLimit(Workers). Each goroutine owns its objective vector and its
//     slot in the output slice.
//   - Stage 4: Map statuses (unbounded side → ±Inf) and collapse inverted
//     ranges within round-off.
//
// Errors: fba.ErrUnknownReaction, fba.ErrInvalidFraction, fba.ErrSolverFault,
// context errors.
// Complexity: 2·|Reactions| LP solves.
func AnalyzeNetwork(ctx context.Context, a *fba.Adapter, net *core.Network, opts Options) (Result, error) {
	// Stage 1: reaction set
	cols, ids, err := resolve(net, opts.Reactions)
	if err != nil {
		return nil, err
	}
	if opts.FractionOfOptimum < 0 || opts.FractionOfOptimum > 1 {
		return nil, fba.ErrInvalidFraction
	}
	a = a.WithDualValues(false)
	log := a.Logger()

	// Stage 2: base problem
	base := fba.BuildProblem(net, solver.Minimize)
	if opts.FractionOfOptimum > 0 {
		opt, err := a.SolveNetwork(ctx, net, fba.Maximize)
		if err != nil {
			return nil, err
		}
		switch opt.Status {
		case fba.StatusInfeasible:
			return allNaN(ids), nil
		case fba.StatusUnbounded:
			log.Warn("fva objective unbounded, fraction of optimum ignored")
		default:
			addFloor(base, net.Objective(), opts.FractionOfOptimum*opt.Objective())
		}
	} else {
		probe := *base
		probe.C = make([]float64, len(base.C))
		sol, err := a.SolveProblem(ctx, net, &probe)
		if err != nil {
			return nil, err
		}
		if sol.Status == fba.StatusInfeasible {
			return allNaN(ids), nil
		}
	}

	// Stage 3: fan-out
	workers := opts.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	ranges := make([]Range, len(cols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for k, j := range cols {
		k, j := k, j
		g.Go(func() error {
			lo, err := extreme(gctx, a, net, base, j, solver.Minimize)
			if err != nil {
				return fmt.Errorf("fva: min %q: %w", ids[k], err)
			}
			hi, err := extreme(gctx, a, net, base, j, solver.Maximize)
			if err != nil {
				return fmt.Errorf("fva: max %q: %w", ids[k], err)
			}
			ranges[k] = collapse(Range{Min: lo, Max: hi})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Stage 4: assemble
	res := make(Result, len(ids))
	for k, id := range ids {
		res[id] = ranges[k]
	}
	log.Debug("fva pass",
		zap.Int("reactions", len(ids)),
		zap.Int("workers", workers),
		zap.Float64("fraction", opts.FractionOfOptimum))

	return res, nil
}

// extreme optimizes v_j alone over base. Unbounded gives ±Inf; an
// infeasible side after a feasible probe gives NaN.
func extreme(ctx context.Context, a *fba.Adapter, net *core.Network, base *solver.Problem, j int, sense solver.Sense) (float64, error) {
	p := *base
	p.Sense = sense
	p.C = make([]float64, len(base.C))
	p.C[j] = 1
	sol, err := a.SolveProblem(ctx, net, &p)
	if err != nil {
		return 0, err
	}
	switch sol.Status {
	case fba.StatusOptimal:
		return sol.Objective(), nil
	case fba.StatusUnbounded:
		if sense == solver.Maximize {
			return math.Inf(1), nil
		}
		return math.Inf(-1), nil
	default:
		return math.NaN(), nil
	}
}

func resolve(net *core.Network, want []core.ReactionID) ([]int, []core.ReactionID, error) {
	if len(want) == 0 {
		ids := net.Reactions()
		cols := make([]int, len(ids))
		for j := range ids {
			cols[j] = j
		}
		return cols, append([]core.ReactionID(nil), ids...), nil
	}
	cols := make([]int, 0, len(want))
	ids := make([]core.ReactionID, 0, len(want))
	seen := make(map[core.ReactionID]bool, len(want))
	for _, id := range want {
		if seen[id] {
			continue
		}
		j, ok := net.Index(id)
		if !ok {
			return nil, nil, fmt.Errorf("fva: reaction %q: %w", id, fba.ErrUnknownReaction)
		}
		seen[id] = true
		cols = append(cols, j)
		ids = append(ids, id)
	}

	return cols, ids, nil
}

// addFloor appends cᵀv ≥ floor as −cᵀv ≤ −floor.
func addFloor(p *solver.Problem, c []float64, floor float64) {
	var row solver.Row
	for j, cj := range c {
		if cj != 0 {
			row = append(row, solver.Term{Col: j, Val: -cj})
		}
	}
	if len(row) == 0 {
		return
	}
	p.Ineq = append(p.Ineq, row)
	p.IneqRHS = append(p.IneqRHS, -(floor - floorSlack*math.Max(1, math.Abs(floor))))
}

func collapse(r Range) Range {
	switch {
	case math.IsNaN(r.Min) || math.IsNaN(r.Max):
		return Range{Min: math.NaN(), Max: math.NaN()}
	case r.Min > r.Max && r.Min-r.Max <= collapseTol*math.Max(1, math.Abs(r.Max)):
		mid := (r.Min + r.Max) / 2
		return Range{Min: mid, Max: mid}
	default:
		return r
	}
}

func allNaN(ids []core.ReactionID) Result {
	res := make(Result, len(ids))
	for _, id := range ids {
		res[id] = Range{Min: math.NaN(), Max: math.NaN()}
	}

	return res
}
