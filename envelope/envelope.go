// SPDX-License-Identifier: MIT
//
// File: envelope.go
// Role: Envelope value type and its curve accessors.

package envelope

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/lvflux/core"
)

var (
	// ErrInvalidPointCount is returned when fewer than two points are requested.
	ErrInvalidPointCount = errors.New("envelope: point count must be at least 2")

	// ErrInvalidLevels is returned by New for levels that are not strictly ascending.
	ErrInvalidLevels = errors.New("envelope: levels must be finite and strictly ascending")

	// ErrUnknownSide is returned by ParseSide.
	ErrUnknownSide = errors.New("envelope: side must be \"min\" or \"max\"")
)

// Side selects one bound curve of an envelope.
type Side int

const (
	// SideMin is the lower curve (minimum target flux per level).
	SideMin Side = iota
	// SideMax is the upper curve.
	SideMax
)

func (s Side) String() string {
	if s == SideMin {
		return "min"
	}

	return "max"
}

// ParseSide maps "min"/"max" to a Side.
func ParseSide(s string) (Side, error) {
	switch s {
	case "min":
		return SideMin, nil
	case "max":
		return SideMax, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSide, s)
	}
}

// Point is one envelope entry. Min and Max are NaN when the level admits no
// steady state.
type Point struct {
	Level float64
	Min   float64
	Max   float64
}

// Feasible reports whether the point carries a range.
func (p Point) Feasible() bool { return !math.IsNaN(p.Min) && !math.IsNaN(p.Max) }

// Envelope is the ordered target range over objective levels.
type Envelope struct {
	Objective core.ReactionID
	Target    core.ReactionID
	Points    []Point
}

// New assembles an envelope from precomputed points, for instance ones read
// back from storage.
//
// Errors: ErrInvalidLevels.
func New(objective, target core.ReactionID, points []Point) (Envelope, error) {
	for i, p := range points {
		if math.IsNaN(p.Level) || math.IsInf(p.Level, 0) {
			return Envelope{}, fmt.Errorf("%w: level %d is %g", ErrInvalidLevels, i, p.Level)
		}
		if i > 0 && !(p.Level > points[i-1].Level) {
			return Envelope{}, fmt.Errorf("%w: level %d (%g) after %g", ErrInvalidLevels, i, p.Level, points[i-1].Level)
		}
	}

	return Envelope{Objective: objective, Target: target, Points: append([]Point(nil), points...)}, nil
}

// Len returns the number of points.
func (e Envelope) Len() int { return len(e.Points) }

// Levels returns the objective levels (x values).
func (e Envelope) Levels() []float64 {
	xs := make([]float64, len(e.Points))
	for i, p := range e.Points {
		xs[i] = p.Level
	}

	return xs
}

// Curve returns one bound curve (y values).
func (e Envelope) Curve(which Side) []float64 {
	ys := make([]float64, len(e.Points))
	for i, p := range e.Points {
		if which == SideMin {
			ys[i] = p.Min
		} else {
			ys[i] = p.Max
		}
	}

	return ys
}
