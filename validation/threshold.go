// SPDX-License-Identifier: MIT
//
// File: threshold.go
// Role: Two-component Gaussian mixture fit of fold changes.

package validation

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrTooFewValues is returned when fewer than MinThresholdValues finite
// values are supplied.
var ErrTooFewValues = errors.New("validation: too few values to fit a threshold")

// MinThresholdValues is the smallest sample FitThreshold accepts.
const MinThresholdValues = 10

// FitOptions configures FitThreshold.
type FitOptions struct {
	MaxIterations int     // EM iterations; default 500
	Tolerance     float64 // log-likelihood convergence; default 1e-8
	GridPoints    int     // overlap integration grid; default 1000
}

// DefaultFitOptions returns the defaults described on FitOptions.
func DefaultFitOptions() FitOptions {
	return FitOptions{MaxIterations: 500, Tolerance: 1e-8, GridPoints: 1000}
}

// Component is one fitted Gaussian.
type Component struct {
	Mean   float64
	StdDev float64
	Weight float64
}

// Threshold is a fitted two-group split of fold changes.
type Threshold struct {
	// Value is where the weighted densities cross between the two means.
	// Found is false when they do not cross there.
	Value float64
	Found bool

	// Confidence is 1 − the overlap area of the weighted densities over
	// the data range; 1 means perfectly separated groups.
	Confidence float64

	// Low and High are ordered by mean.
	Low, High Component

	Iterations    int
	LogLikelihood float64
}

// FitThreshold fits a two-component Gaussian mixture to values by
// expectation maximization and returns the density intersection between
// the component means. NaN and infinite values are ignored.
//
// Implementation:
//   - Stage 1: Filter values; initialize components on the lower and upper
//     halves of the sorted sample.
//   - Stage 2: Alternate responsibilities and weighted population
//     moments until the log-likelihood gain drops below Tolerance.
//   - Stage 3: Solve w₁N(x;μ₁,σ₁) = w₂N(x;μ₂,σ₂) for x in (μ₁, μ₂).
//   - Stage 4: Integrate min(w₁N₁, w₂N₂) over the data range (trapezoid).
//
// Errors: ErrTooFewValues.
func FitThreshold(values []float64, opts FitOptions) (Threshold, error) {
	def := DefaultFitOptions()
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = def.MaxIterations
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = def.Tolerance
	}
	if opts.GridPoints < 2 {
		opts.GridPoints = def.GridPoints
	}

	// Stage 1: sample and initial components
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			xs = append(xs, v)
		}
	}
	if len(xs) < MinThresholdValues {
		return Threshold{}, fmt.Errorf("%w: %d < %d", ErrTooFewValues, len(xs), MinThresholdValues)
	}
	sort.Float64s(xs)
	n := len(xs)
	_, total := stat.PopMeanVariance(xs, nil)
	varFloor := 1e-6*total + 1e-12

	half := n / 2
	comps := [2]Component{initial(xs[:half], varFloor), initial(xs[half:], varFloor)}

	// Stage 2: EM
	resp := make([]float64, n)
	other := make([]float64, n)
	prev := math.Inf(-1)
	var th Threshold
	for it := 1; it <= opts.MaxIterations; it++ {
		ll := 0.0
		d0 := distuv.Normal{Mu: comps[0].Mean, Sigma: comps[0].StdDev}
		d1 := distuv.Normal{Mu: comps[1].Mean, Sigma: comps[1].StdDev}
		for i, x := range xs {
			l0 := math.Log(comps[0].Weight) + d0.LogProb(x)
			l1 := math.Log(comps[1].Weight) + d1.LogProb(x)
			hi := math.Max(l0, l1)
			lse := hi + math.Log(math.Exp(l0-hi)+math.Exp(l1-hi))
			ll += lse
			resp[i] = math.Exp(l0 - lse)
			other[i] = 1 - resp[i]
		}
		th.Iterations, th.LogLikelihood = it, ll

		comps[0] = moments(xs, resp, varFloor)
		comps[1] = moments(xs, other, varFloor)
		if ll-prev < opts.Tolerance {
			break
		}
		prev = ll
	}
	if comps[0].Mean > comps[1].Mean {
		comps[0], comps[1] = comps[1], comps[0]
	}
	th.Low, th.High = comps[0], comps[1]

	// Stage 3: intersection
	th.Value, th.Found = intersection(th.Low, th.High)

	// Stage 4: overlap
	grid := floats.Span(make([]float64, opts.GridPoints), xs[0], xs[n-1])
	overlap := make([]float64, len(grid))
	dl := distuv.Normal{Mu: th.Low.Mean, Sigma: th.Low.StdDev}
	dh := distuv.Normal{Mu: th.High.Mean, Sigma: th.High.StdDev}
	for i, x := range grid {
		overlap[i] = math.Min(th.Low.Weight*dl.Prob(x), th.High.Weight*dh.Prob(x))
	}
	th.Confidence = 1 - integrate.Trapezoidal(grid, overlap)

	return th, nil
}

func initial(xs []float64, varFloor float64) Component {
	mean, variance := stat.PopMeanVariance(xs, nil)

	return Component{Mean: mean, StdDev: math.Sqrt(math.Max(variance, varFloor)), Weight: 0.5}
}

func moments(xs, weights []float64, varFloor float64) Component {
	sum := floats.Sum(weights)
	if sum <= 0 {
		return Component{Mean: stat.Mean(xs, nil), StdDev: math.Sqrt(varFloor), Weight: 1e-12}
	}
	mean, variance := stat.PopMeanVariance(xs, weights)

	return Component{
		Mean:   mean,
		StdDev: math.Sqrt(math.Max(variance, varFloor)),
		Weight: sum / float64(len(xs)),
	}
}

// intersection solves a·x² + b·x + c = 0 for the crossing of the weighted
// densities and keeps the root strictly between the means.
func intersection(lo, hi Component) (float64, bool) {
	s1, s2 := lo.StdDev*lo.StdDev, hi.StdDev*hi.StdDev
	a := 1/(2*s1) - 1/(2*s2)
	b := hi.Mean/s2 - lo.Mean/s1
	c := lo.Mean*lo.Mean/(2*s1) - hi.Mean*hi.Mean/(2*s2) - math.Log((hi.StdDev*lo.Weight)/(lo.StdDev*hi.Weight))

	var roots []float64
	switch {
	case math.Abs(a) < 1e-12*math.Max(math.Abs(b), 1):
		if b != 0 {
			roots = append(roots, -c/b)
		}
	default:
		disc := b*b - 4*a*c
		if disc < 0 {
			return 0, false
		}
		sq := math.Sqrt(disc)
		roots = append(roots, (-b+sq)/(2*a), (-b-sq)/(2*a))
	}
	sort.Float64s(roots)
	for _, r := range roots {
		if r > lo.Mean && r < hi.Mean {
			return r, true
		}
	}

	return 0, false
}
