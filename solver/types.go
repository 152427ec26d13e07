// SPDX-License-Identifier: MIT

package solver

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrSolverFault is returned for numerical or internal solver failures.
	// Infeasible and unbounded problems are not faults; they are reported in Result.Status.
	ErrSolverFault = errors.New("solver: fault")

	// ErrInvalidProblem is returned when a Problem is malformed.
	ErrInvalidProblem = errors.New("solver: invalid problem")
)

// Sense selects the optimization direction.
type Sense int

const (
	// Minimize the objective.
	Minimize Sense = iota
	// Maximize the objective.
	Maximize
)

func (s Sense) String() string {
	if s == Maximize {
		return "max"
	}

	return "min"
}

// Status is the terminal state of a solve.
type Status int

const (
	// StatusOptimal means an optimal point was found.
	StatusOptimal Status = iota
	// StatusInfeasible means the constraints admit no point.
	StatusInfeasible
	// StatusUnbounded means the objective is unbounded in the requested direction.
	StatusUnbounded
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Term is one non-zero coefficient of a constraint row.
type Term struct {
	Col int
	Val float64
}

// Row is a sparse constraint row.
type Row []Term

// Problem is a linear program over n variables:
//
//	min|max  Cᵀx
//	s.t.     Eq[i]·x  = EqRHS[i]
//	         Ineq[k]·x ≤ IneqRHS[k]
//	         Lower ≤ x ≤ Upper        (±Inf allowed)
type Problem struct {
	Sense Sense
	C     []float64
	Lower []float64
	Upper []float64

	Eq    []Row
	EqRHS []float64

	Ineq    []Row
	IneqRHS []float64

	// WantDuals requests one dual value per equality row, expressed as the
	// rate of change of the optimal objective per unit of EqRHS[i].
	WantDuals bool
}

// NumVars returns the variable count.
func (p *Problem) NumVars() int { return len(p.C) }

// Validate checks shapes, bound ordering and finiteness of coefficients.
//
// Errors: ErrInvalidProblem (wrapped with the offending location).
func (p *Problem) Validate() error {
	n := len(p.C)
	if len(p.Lower) != n || len(p.Upper) != n {
		return fmt.Errorf("%w: bound vectors have length %d/%d, want %d", ErrInvalidProblem, len(p.Lower), len(p.Upper), n)
	}
	if len(p.Eq) != len(p.EqRHS) {
		return fmt.Errorf("%w: %d equality rows but %d right-hand sides", ErrInvalidProblem, len(p.Eq), len(p.EqRHS))
	}
	if len(p.Ineq) != len(p.IneqRHS) {
		return fmt.Errorf("%w: %d inequality rows but %d right-hand sides", ErrInvalidProblem, len(p.Ineq), len(p.IneqRHS))
	}
	for j := 0; j < n; j++ {
		l, u := p.Lower[j], p.Upper[j]
		if !finite(p.C[j]) {
			return fmt.Errorf("%w: objective coefficient %d is not finite", ErrInvalidProblem, j)
		}
		if math.IsNaN(l) || math.IsNaN(u) || l > u || math.IsInf(l, 1) || math.IsInf(u, -1) {
			return fmt.Errorf("%w: variable %d has bounds [%g, %g]", ErrInvalidProblem, j, l, u)
		}
	}
	check := func(kind string, rows []Row, rhs []float64) error {
		for i, row := range rows {
			if !finite(rhs[i]) {
				return fmt.Errorf("%w: %s row %d has right-hand side %g", ErrInvalidProblem, kind, i, rhs[i])
			}
			for _, t := range row {
				if t.Col < 0 || t.Col >= n || !finite(t.Val) {
					return fmt.Errorf("%w: %s row %d has term (%d, %g)", ErrInvalidProblem, kind, i, t.Col, t.Val)
				}
			}
		}
		return nil
	}
	if err := check("equality", p.Eq, p.EqRHS); err != nil {
		return err
	}

	return check("inequality", p.Ineq, p.IneqRHS)
}

// Result is the outcome of a solve. X and Objective are meaningful only when
// Status is StatusOptimal; Duals is set only when requested.
type Result struct {
	Status    Status
	Objective float64
	X         []float64
	Duals     []float64
}

// Optimizer solves linear programs. Implementations must be safe for
// concurrent use by multiple goroutines on distinct Problems.
type Optimizer interface {
	Optimize(ctx context.Context, p *Problem) (Result, error)
}

// OptimizerFunc adapts a function to the Optimizer interface.
type OptimizerFunc func(ctx context.Context, p *Problem) (Result, error)

// Optimize calls f(ctx, p).
func (f OptimizerFunc) Optimize(ctx context.Context, p *Problem) (Result, error) { return f(ctx, p) }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
