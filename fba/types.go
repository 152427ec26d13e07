// SPDX-License-Identifier: MIT

package fba

import (
	"errors"
	"math"

	"github.com/katalvlaran/lvflux/core"
	"github.com/katalvlaran/lvflux/solver"
)

var (
	// ErrUnknownReaction is returned when an objective or target reaction is
	// absent from the model. It is core.ErrReactionNotFound, so either
	// sentinel matches with errors.Is.
	ErrUnknownReaction = core.ErrReactionNotFound

	// ErrSolverFault re-exports solver.ErrSolverFault.
	ErrSolverFault = solver.ErrSolverFault

	// ErrInvalidFraction is returned for an optimum fraction outside (0, 1].
	ErrInvalidFraction = errors.New("fba: fraction of optimum must be in (0, 1]")
)

// Directions accepted by Solve.
const (
	Maximize = solver.Maximize
	Minimize = solver.Minimize
)

// Status is the outcome class of a Solution.
type Status int

const (
	// StatusOptimal means ObjectiveValue and Fluxes are set.
	StatusOptimal Status = iota
	// StatusInfeasible means the bounds admit no steady state.
	StatusInfeasible
	// StatusUnbounded means the objective has no finite optimum.
	StatusUnbounded
	// StatusError means the optimizer failed; the returned error says why.
	StatusError
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
		return "error"
	}
}

// Solution is the result of one optimization.
//
// ObjectiveValue is nil unless Status is StatusOptimal. ShadowPrices and
// ReducedCosts are populated only when the Adapter requests duals.
type Solution struct {
	Status         Status
	ObjectiveValue *float64
	Fluxes         map[core.ReactionID]float64
	ShadowPrices   map[core.MetaboliteID]float64
	ReducedCosts   map[core.ReactionID]float64

	// TotalFlux is Σ|v| over all reactions (minimized by Parsimonious).
	TotalFlux float64
}

// Optimal reports whether the solve reached an optimum.
func (s Solution) Optimal() bool { return s.Status == StatusOptimal && s.ObjectiveValue != nil }

// Objective returns the objective value, or NaN when there is none.
func (s Solution) Objective() float64 {
	if s.ObjectiveValue == nil {
		return math.NaN()
	}

	return *s.ObjectiveValue
}

// Flux returns the flux of a reaction, or NaN when the solution has none.
func (s Solution) Flux(id core.ReactionID) float64 {
	v, ok := s.Fluxes[id]
	if !ok {
		return math.NaN()
	}

	return v
}

func statusOf(s solver.Status) Status {
	switch s {
	case solver.StatusOptimal:
		return StatusOptimal
	case solver.StatusInfeasible:
		return StatusInfeasible
	case solver.StatusUnbounded:
		return StatusUnbounded
	default:
		return StatusError
	}
}
