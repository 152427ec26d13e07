// SPDX-License-Identifier: MIT
//
// File: simplex.go
// Role: Default Optimizer backed by gonum's dense simplex.
// Policy:
//   - Infeasible and unbounded outcomes are statuses, never errors.
//   - Every gonum failure other than those two maps to ErrSolverFault.

package solver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// Options tunes the simplex backend.
//   - Tolerance: pivoting tolerance passed to gonum (default 1e-10).
//   - FeasibilityTol: largest residual artificial mass accepted as feasible,
//     scaled by max(1, max|b|) (default 1e-7).
//   - PenaltyScale: big-M multiplier relative to max|c|; also the growth
//     factor per escalation (default 1e4).
//   - MaxEscalations: penalty escalations before giving up (default 2).
type Options struct {
	Tolerance      float64
	FeasibilityTol float64
	PenaltyScale   float64
	MaxEscalations int
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Tolerance:      1e-10,
		FeasibilityTol: 1e-7,
		PenaltyScale:   1e4,
		MaxEscalations: 2,
	}
}

// SimplexOption configures a Simplex.
type SimplexOption func(*Simplex)

// WithOptions replaces the numeric options; zero fields keep their defaults.
func WithOptions(o Options) SimplexOption {
	return func(s *Simplex) {
		if o.Tolerance > 0 {
			s.opts.Tolerance = o.Tolerance
		}
		if o.FeasibilityTol > 0 {
			s.opts.FeasibilityTol = o.FeasibilityTol
		}
		if o.PenaltyScale > 1 {
			s.opts.PenaltyScale = o.PenaltyScale
		}
		if o.MaxEscalations > 0 {
			s.opts.MaxEscalations = o.MaxEscalations
		}
	}
}

// WithLogger sets the logger used for per-solve debug records.
func WithLogger(l *zap.Logger) SimplexOption {
	return func(s *Simplex) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *Metrics) SimplexOption {
	return func(s *Simplex) { s.metrics = m }
}

// Simplex is the default Optimizer. It is stateless apart from its
// configuration and safe for concurrent use.
type Simplex struct {
	opts    Options
	log     *zap.Logger
	metrics *Metrics
}

// NewSimplex constructs a Simplex optimizer.
func NewSimplex(opts ...SimplexOption) *Simplex {
	s := &Simplex{opts: DefaultOptions(), log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}

	return s
}

// Optimize solves p.
//
// Implementation:
//   - Stage 1: Validate; flip the objective for maximization.
//   - Stage 2: Solve the primal in standard form (see solvePrimal).
//   - Stage 3: Recompute the objective in original space; solve the dual LP
//     when duals are requested.
//
// Errors: ErrInvalidProblem, ErrSolverFault, or ctx.Err().
func (s *Simplex) Optimize(ctx context.Context, p *Problem) (Result, error) {
	start := time.Now()
	res, err := s.optimize(ctx, p)

	status := res.Status.String()
	if err != nil {
		status = "fault"
	}
	s.metrics.observe(p.Sense, status, time.Since(start).Seconds())
	s.log.Debug("lp solve",
		zap.Stringer("sense", p.Sense),
		zap.Int("vars", len(p.C)),
		zap.Int("eq_rows", len(p.Eq)),
		zap.Int("ineq_rows", len(p.Ineq)),
		zap.String("status", status),
		zap.Duration("elapsed", time.Since(start)),
	)

	return res, err
}

func (s *Simplex) optimize(ctx context.Context, p *Problem) (Result, error) {
	// Stage 1: validation
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	c := minForm(p)

	// Stage 2: primal
	x, status, err := s.solvePrimal(ctx, c, p)
	if err != nil || status != StatusOptimal {
		return Result{Status: status}, err
	}

	// Stage 3: objective and duals
	res := Result{Status: StatusOptimal, X: x}
	for j, cj := range p.C {
		res.Objective += cj * x[j]
	}
	if p.WantDuals && len(p.Eq) > 0 {
		y, err := s.solveDuals(ctx, c, p)
		if err != nil {
			return Result{Status: StatusOptimal}, err
		}
		if p.Sense == Maximize {
			for i := range y {
				y[i] = -y[i]
			}
		}
		res.Duals = y
	}

	return res, nil
}

// solvePrimal minimizes cᵀx under p's constraints.
//
// The standard form starts from a slack/artificial identity basis. The
// artificial columns carry a big-M cost; when the optimum still uses them, or
// the penalized problem is unbounded, a phase-one solve decides feasibility
// and, if feasible, the penalty grows by PenaltyScale and the solve repeats.
func (s *Simplex) solvePrimal(ctx context.Context, c []float64, p *Problem) ([]float64, Status, error) {
	sf := toStandard(c, p, s.opts.FeasibilityTol)
	if sf.status != StatusOptimal {
		return nil, sf.status, nil
	}
	if sf.a == nil {
		return sf.original(nil), StatusOptimal, nil
	}
	feasTol := s.opts.FeasibilityTol * math.Max(1, maxAbs(sf.rhs))

	if len(sf.artificial) == 0 {
		z, err := s.simplex(sf.cost, sf)
		switch {
		case err == nil:
			return sf.original(z), StatusOptimal, nil
		case errors.Is(err, lp.ErrUnbounded):
			return nil, StatusUnbounded, nil
		case errors.Is(err, lp.ErrInfeasible):
			return nil, StatusInfeasible, nil
		default:
			return nil, StatusOptimal, fault(err)
		}
	}

	penalty := s.opts.PenaltyScale * math.Max(1, maxAbs(sf.cost))
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, StatusOptimal, err
		}
		z, err := s.simplex(sf.penalized(penalty), sf)
		if err == nil && sf.infeasibility(z) <= feasTol {
			return sf.original(z), StatusOptimal, nil
		}
		if err != nil && !errors.Is(err, lp.ErrUnbounded) {
			if errors.Is(err, lp.ErrInfeasible) {
				return nil, StatusInfeasible, nil
			}
			return nil, StatusOptimal, fault(err)
		}

		feasible, perr := s.phaseOne(sf, feasTol)
		if perr != nil {
			return nil, StatusOptimal, perr
		}
		if !feasible {
			return nil, StatusInfeasible, nil
		}
		if attempt >= s.opts.MaxEscalations {
			if err != nil {
				return nil, StatusUnbounded, nil
			}
			return nil, StatusOptimal, fmt.Errorf("%w: artificial columns remain basic at penalty %g", ErrSolverFault, penalty)
		}
		penalty *= s.opts.PenaltyScale
		s.metrics.escalated()
		s.log.Debug("big-M escalation", zap.Int("attempt", attempt+1), zap.Float64("penalty", penalty))
	}
}

// phaseOne minimizes the artificial mass; the problem is feasible iff it reaches zero.
func (s *Simplex) phaseOne(sf *standardForm, feasTol float64) (bool, error) {
	cost := make([]float64, len(sf.cost))
	for _, col := range sf.artificial {
		cost[col] = 1
	}
	z, err := s.simplex(cost, sf)
	if err != nil {
		return false, fault(err)
	}

	return sf.infeasibility(z) <= feasTol, nil
}

// simplex runs gonum's solver from sf's identity basis, converting panics
// on degenerate input into ErrSolverFault.
func (s *Simplex) simplex(cost []float64, sf *standardForm) (z []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			z, err = nil, fmt.Errorf("%w: simplex panic: %v", ErrSolverFault, r)
		}
	}()
	basis := append([]int(nil), sf.basis...)
	_, z, err = lp.Simplex(cost, mat.DenseCopyOf(sf.a), sf.rhs, s.opts.Tolerance, basis)

	return z, err
}

// penalized returns sf.cost with penalty on every artificial column.
func (sf *standardForm) penalized(penalty float64) []float64 {
	cost := append([]float64(nil), sf.cost...)
	for _, col := range sf.artificial {
		cost[col] = penalty
	}

	return cost
}

// minForm returns the minimization objective for p.
func minForm(p *Problem) []float64 {
	c := append([]float64(nil), p.C...)
	if p.Sense == Maximize {
		for j := range c {
			c[j] = -c[j]
		}
	}

	return c
}

func fault(err error) error {
	if errors.Is(err, ErrSolverFault) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrSolverFault, err)
}

func maxAbs(v []float64) float64 {
	var m float64
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}

	return m
}
