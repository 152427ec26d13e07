// SPDX-License-Identifier: MIT

package validation_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvflux/validation"
)

func twoGroups() []float64 {
	var xs []float64
	for i := 0; i < 20; i++ {
		xs = append(xs, 0.05+0.005*float64(i), 0.9+0.005*float64(i))
	}
	return xs
}

func TestFitThresholdSeparatesGroups(t *testing.T) {
	th, err := validation.FitThreshold(twoGroups(), validation.DefaultFitOptions())
	require.NoError(t, err)
	require.True(t, th.Found)
	require.InDelta(t, 0.0975, th.Low.Mean, 1e-3)
	require.InDelta(t, 0.9475, th.High.Mean, 1e-3)
	require.InDelta(t, 0.5, th.Low.Weight, 1e-3)
	require.InDelta(t, 0.5225, th.Value, 1e-2)
	require.Greater(t, th.Confidence, 0.99)
	require.LessOrEqual(t, th.Confidence, 1.0+1e-9)
}

func TestFitThresholdIgnoresNonFinite(t *testing.T) {
	xs := append(twoGroups(), math.NaN(), math.Inf(1))
	th, err := validation.FitThreshold(xs, validation.FitOptions{})
	require.NoError(t, err)
	require.True(t, th.Found)
	require.Greater(t, th.Iterations, 0)

	_, err = validation.FitThreshold([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, math.NaN(), math.NaN()}, validation.FitOptions{})
	require.ErrorIs(t, err, validation.ErrTooFewValues)
}

func TestFitThresholdIdenticalValues(t *testing.T) {
	xs := make([]float64, 12)
	for i := range xs {
		xs[i] = 0.7
	}
	th, err := validation.FitThreshold(xs, validation.FitOptions{GridPoints: 10})
	require.NoError(t, err)
	require.False(t, th.Found)
}
