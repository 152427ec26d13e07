// SPDX-License-Identifier: MIT
//
// File: detect.go
// Role: Secant-slope change detection over one envelope curve.

package phase

import (
	"math"

	"github.com/katalvlaran/lvflux/envelope"
)

// DefaultThreshold is the slope difference above which a boundary is reported.
const DefaultThreshold = 0.1

// Options configures DetectWithOptions.
type Options struct {
	// Curve selects the envelope bound to analyze.
	Curve envelope.Side

	// Threshold is compared against |slope before − slope after|.
	Threshold float64

	// Absolute reports SlopeDifference as |before − after| instead of the
	// signed before − after.
	Absolute bool
}

// DefaultOptions analyzes the max curve at DefaultThreshold, signed.
func DefaultOptions() Options {
	return Options{Curve: envelope.SideMax, Threshold: DefaultThreshold}
}

// Boundary is a slope change anchored on three consecutive envelope points.
// Index is Mid's position in the envelope.
type Boundary struct {
	Left            envelope.Point
	Mid             envelope.Point
	Right           envelope.Point
	SlopeBefore     float64
	SlopeAfter      float64
	SlopeDifference float64
	Index           int
}

// Detect reports slope changes on one curve with a signed difference.
func Detect(env envelope.Envelope, which envelope.Side, threshold float64) []Boundary {
	return DetectWithOptions(env, Options{Curve: which, Threshold: threshold})
}

// DetectWithOptions reports every interior point i where the secant slopes
// on either side differ by more than opts.Threshold.
//
// Implementation:
//   - Stage 1: Return nothing for envelopes shorter than three points.
//   - Stage 2: Compute secant slopes, 0 where two levels coincide.
//   - Stage 3: Compare neighbouring slopes; pairs involving a NaN slope
//     (an infeasible point) are skipped.
//
// The envelope is not modified.
// Complexity: O(n).
func DetectWithOptions(env envelope.Envelope, opts Options) []Boundary {
	// Stage 1: short envelopes
	if env.Len() < 3 {
		return nil
	}

	// Stage 2: slopes
	slopes := Slopes(env.Levels(), env.Curve(opts.Curve))

	// Stage 3: changes
	var out []Boundary
	for i := 1; i < len(slopes); i++ {
		before, after := slopes[i-1], slopes[i]
		if math.IsNaN(before) || math.IsNaN(after) {
			continue
		}
		change := before - after
		if !(math.Abs(change) > opts.Threshold) {
			continue
		}
		if opts.Absolute {
			change = math.Abs(change)
		}
		out = append(out, Boundary{
			Left:            env.Points[i-1],
			Mid:             env.Points[i],
			Right:           env.Points[i+1],
			SlopeBefore:     before,
			SlopeAfter:      after,
			SlopeDifference: change,
			Index:           i,
		})
	}

	return out
}

// Slopes returns the len(xs)−1 secant slopes (y[i+1]−y[i])/(x[i+1]−x[i]).
// A zero step in x gives slope 0. xs and ys must have equal length.
func Slopes(xs, ys []float64) []float64 {
	if len(xs) < 2 {
		return nil
	}
	out := make([]float64, len(xs)-1)
	for i := range out {
		dx := xs[i+1] - xs[i]
		if dx == 0 {
			continue
		}
		out[i] = (ys[i+1] - ys[i]) / dx
	}

	return out
}

// Window is an interval of objective levels between phase boundaries.
type Window struct {
	From float64
	To   float64
}

// Windows splits the envelope's level range at each boundary's midpoint,
// giving one window per regime. Boundaries must come from env in index
// order, as DetectWithOptions returns them. An empty envelope has no windows.
func Windows(env envelope.Envelope, bounds []Boundary) []Window {
	if env.Len() == 0 {
		return nil
	}
	from := env.Points[0].Level
	last := env.Points[env.Len()-1].Level
	out := make([]Window, 0, len(bounds)+1)
	for _, b := range bounds {
		if b.Mid.Level <= from {
			continue
		}
		out = append(out, Window{From: from, To: b.Mid.Level})
		from = b.Mid.Level
	}

	return append(out, Window{From: from, To: last})
}
