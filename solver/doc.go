// SPDX-License-Identifier: MIT

// Package solver defines the Optimizer contract used by every lvflux engine
// and ships a default backend built on gonum's simplex method.
//
// A Problem is a general bounded LP: sparse equality rows (the steady-state
// stoichiometry S·v = 0 in flux balance analysis), sparse ≤ rows (used by
// parsimonious solves and objective floors), and per-variable bounds that
// may be infinite.
//
// The Simplex backend converts a Problem to standard form
// (min cᵀz, Az = b, z ≥ 0) by shifting finite lower bounds, mirroring
// variables that are only bounded above, splitting free variables and adding
// an explicit row per doubly bounded variable. Every row receives a basic
// column (its slack, or an artificial), so gonum always starts from a known
// identity basis. Artificial columns are priced with a big-M penalty; a
// phase-one solve separates genuinely infeasible problems from a penalty that
// is too small.
//
// Dual values for equality rows are obtained by solving the dual LP with the
// same machinery, then signed so that Duals[i] is ∂objective/∂EqRHS[i] in the
// problem's own direction.
//
// Outcomes:
//
//	StatusOptimal     – X, Objective (and Duals if requested) are set.
//	StatusInfeasible  – no point satisfies the constraints; not an error.
//	StatusUnbounded   – the objective has no finite optimum; not an error.
//	ErrSolverFault    – numerical failure inside the backend.
//	ErrInvalidProblem – malformed input (shapes, NaN, inverted bounds).
package solver
