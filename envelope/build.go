// SPDX-License-Identifier: MIT
//
// File: build.go
// Role: Parallel envelope sweep and flux distributions at fixed levels.

package envelope

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/lvflux/core"
	"github.com/katalvlaran/lvflux/fba"
	"github.com/katalvlaran/lvflux/fva"
)

// deadTol is the objective maximum below which a model counts as dead.
const deadTol = 1e-9

// Options configures Build and FluxesAt.
type Options struct {
	// Workers bounds concurrent levels; values < 1 mean GOMAXPROCS.
	Workers int
}

// DefaultOptions uses GOMAXPROCS workers.
func DefaultOptions() Options { return Options{Workers: runtime.GOMAXPROCS(0)} }

func (o Options) workers() int {
	if o.Workers < 1 {
		return runtime.GOMAXPROCS(0)
	}

	return o.Workers
}

// Build sweeps objective over numPoints evenly spaced levels in
// [0, max objective] and records target's feasible range at each.
//
// Implementation:
//   - Stage 1: Validate numPoints and both reaction IDs before any solve.
//   - Stage 2: Maximize objective on a snapshot of m. An infeasible
//     baseline gives the single point (0, NaN, NaN); a maximum ≤ 0 gives
//     (0, 0, 0); an unbounded one yields (0, NaN, NaN) like an infeasible baseline.
//   - Stage 3: For each level, pin objective to (level, level) on a private
//     Network copy and run fva.AnalyzeNetwork restricted to target. Levels
//     run in parallel; each writes only its own slot.
//
// A level that admits no steady state yields a NaN range, not an error.
// m is never mutated.
//
// Errors: ErrInvalidPointCount, fba.ErrUnknownReaction, fba.ErrSolverFault,
// context errors.
// Complexity: 1 + 3·numPoints LP solves.
func Build(ctx context.Context, a *fba.Adapter, m *core.Model, objective, target core.ReactionID, numPoints int, opts Options) (Envelope, error) {
	// Stage 1: validation
	if numPoints < 2 {
		return Envelope{}, fmt.Errorf("%w: got %d", ErrInvalidPointCount, numPoints)
	}
	for _, id := range []core.ReactionID{objective, target} {
		if !m.HasReaction(id) {
			return Envelope{}, fmt.Errorf("envelope: reaction %q: %w", id, fba.ErrUnknownReaction)
		}
	}
	env := Envelope{Objective: objective, Target: target}
	log := a.Logger()

	// Stage 2: maximum objective
	net, err := m.Network().WithObjective(map[core.ReactionID]float64{objective: 1})
	if err != nil {
		return Envelope{}, err
	}
	base, err := a.WithDualValues(false).SolveNetwork(ctx, net, fba.Maximize)
	if err != nil {
		return Envelope{}, err
	}
	if base.Status == fba.StatusInfeasible || base.Status == fba.StatusUnbounded {
		log.Info("envelope baseline has no finite optimum",
			zap.String("objective", string(objective)), zap.Stringer("status", base.Status))
		env.Points = []Point{{Level: 0, Min: math.NaN(), Max: math.NaN()}}
		return env, nil
	}
	top := base.Objective()
	if top <= deadTol {
		log.Info("envelope objective cannot carry flux", zap.String("objective", string(objective)), zap.Float64("max", top))
		env.Points = []Point{{}}
		return env, nil
	}

	// Stage 3: levels
	levels := Linspace(0, top, numPoints)
	env.Points = make([]Point, numPoints)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for i, level := range levels {
		i, level := i, level
		g.Go(func() error {
			pt, err := pointAt(gctx, a, net, objective, target, level)
			if err != nil {
				return fmt.Errorf("envelope: level %g: %w", level, err)
			}
			env.Points[i] = pt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Envelope{}, err
	}
	log.Debug("envelope built",
		zap.String("objective", string(objective)),
		zap.String("target", string(target)),
		zap.Float64("max", top),
		zap.Int("points", numPoints))

	return env, nil
}

func pointAt(ctx context.Context, a *fba.Adapter, net *core.Network, objective, target core.ReactionID, level float64) (Point, error) {
	pinned, err := net.WithFixed(objective, level)
	if err != nil {
		return Point{}, err
	}
	res, err := fva.AnalyzeNetwork(ctx, a, pinned, fva.Options{Reactions: []core.ReactionID{target}, Workers: 1})
	if err != nil {
		return Point{}, err
	}
	r := res[target]

	return Point{Level: level, Min: r.Min, Max: r.Max}, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive. The last
// value is exactly hi.
func Linspace(lo, hi float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := floats.Span(make([]float64, n), lo, hi)
	out[n-1] = hi

	return out
}

// LevelFluxes is one flux distribution produced by FluxesAt.
type LevelFluxes struct {
	Level    float64
	Solution fba.Solution
}

// FluxesAt bounds objective to (0, level) for each level and maximizes it,
// returning the resulting flux distributions in input order. Levels are
// solved in parallel on private Network copies; m is never mutated.
//
// Errors: fba.ErrUnknownReaction, core.BoundsError (negative level),
// fba.ErrSolverFault, context errors.
func FluxesAt(ctx context.Context, a *fba.Adapter, m *core.Model, objective core.ReactionID, levels []float64, opts Options) ([]LevelFluxes, error) {
	if !m.HasReaction(objective) {
		return nil, fmt.Errorf("envelope: reaction %q: %w", objective, fba.ErrUnknownReaction)
	}
	net, err := m.Network().WithObjective(map[core.ReactionID]float64{objective: 1})
	if err != nil {
		return nil, err
	}
	capped := make([]*core.Network, len(levels))
	for i, level := range levels {
		if capped[i], err = net.WithBounds(core.BoundSnapshot{objective: {Lower: 0, Upper: level}}); err != nil {
			return nil, err
		}
	}

	out := make([]LevelFluxes, len(levels))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for i := range levels {
		i := i
		g.Go(func() error {
			sol, err := a.SolveNetwork(gctx, capped[i], fba.Maximize)
			if err != nil {
				return fmt.Errorf("envelope: fluxes at %g: %w", levels[i], err)
			}
			out[i] = LevelFluxes{Level: levels[i], Solution: sol}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}
