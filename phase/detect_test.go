// SPDX-License-Identifier: MIT

package phase_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvflux/envelope"
	"github.com/katalvlaran/lvflux/phase"
)

func env(t *testing.T, pts ...envelope.Point) envelope.Envelope {
	t.Helper()
	e, err := envelope.New("BIOMASS", "EX_lac_e", pts)
	require.NoError(t, err)
	return e
}

func kink(t *testing.T) envelope.Envelope {
	return env(t,
		envelope.Point{Level: 0, Min: 0, Max: 0},
		envelope.Point{Level: 1, Min: 0, Max: 0},
		envelope.Point{Level: 2, Min: 0, Max: 2},
		envelope.Point{Level: 3, Min: 0, Max: 4},
	)
}

func TestSingleKink(t *testing.T) {
	e := kink(t)
	got := phase.Detect(e, envelope.SideMax, 0.5)
	require.Len(t, got, 1)
	b := got[0]
	require.Equal(t, 1, b.Index)
	require.Equal(t, e.Points[0], b.Left)
	require.Equal(t, e.Points[1], b.Mid)
	require.Equal(t, e.Points[2], b.Right)
	require.Equal(t, 0.0, b.SlopeBefore)
	require.Equal(t, 2.0, b.SlopeAfter)
	require.Equal(t, -2.0, b.SlopeDifference)

	abs := phase.DetectWithOptions(e, phase.Options{Curve: envelope.SideMax, Threshold: 0.5, Absolute: true})
	require.Equal(t, 2.0, abs[0].SlopeDifference)

	// The min curve is flat.
	require.Empty(t, phase.Detect(e, envelope.SideMin, 0.5))
	// Threshold is strict.
	require.Empty(t, phase.Detect(e, envelope.SideMax, 2))
}

func TestLinearEnvelopeHasNoPhases(t *testing.T) {
	var pts []envelope.Point
	for i := 0; i < 10; i++ {
		x := float64(i) * 1.5
		pts = append(pts, envelope.Point{Level: x, Min: 0.25 * x, Max: 10 - 2*x})
	}
	e := env(t, pts...)
	for _, th := range []float64{1e-9, 0.1, 5} {
		require.Empty(t, phase.Detect(e, envelope.SideMax, th))
		require.Empty(t, phase.Detect(e, envelope.SideMin, th))
	}
}

func TestShortEnvelopes(t *testing.T) {
	require.Empty(t, phase.Detect(envelope.Envelope{}, envelope.SideMax, 0))
	require.Empty(t, phase.Detect(env(t, envelope.Point{}), envelope.SideMax, 0))
	require.Empty(t, phase.Detect(env(t, envelope.Point{Level: 0}, envelope.Point{Level: 1, Max: 9}), envelope.SideMax, 0))
}

func TestJaggedCurveIsNotMerged(t *testing.T) {
	e := env(t,
		envelope.Point{Level: 0, Max: 0},
		envelope.Point{Level: 1, Max: 1},
		envelope.Point{Level: 2, Max: 0},
		envelope.Point{Level: 3, Max: 1},
	)
	got := phase.Detect(e, envelope.SideMax, 0.1)
	require.Len(t, got, 2)
	require.Equal(t, 1, got[0].Index)
	require.Equal(t, 2, got[1].Index)
	require.Equal(t, 2.0, got[0].SlopeDifference)
	require.Equal(t, -2.0, got[1].SlopeDifference)
}

func TestNaNPointsAreSkipped(t *testing.T) {
	nan := math.NaN()
	e := env(t,
		envelope.Point{Level: 0, Min: nan, Max: nan},
		envelope.Point{Level: 1, Max: 0},
		envelope.Point{Level: 2, Max: 0},
		envelope.Point{Level: 3, Max: 5},
	)
	got := phase.Detect(e, envelope.SideMax, 0.5)
	require.Len(t, got, 1)
	require.Equal(t, 2, got[0].Index)
}

func TestSlopesZeroStep(t *testing.T) {
	require.Equal(t, []float64{0, 2}, phase.Slopes([]float64{1, 1, 2}, []float64{0, 5, 7}))
	require.Nil(t, phase.Slopes([]float64{1}, []float64{1}))
}

func TestWindows(t *testing.T) {
	e := kink(t)
	ws := phase.Windows(e, phase.Detect(e, envelope.SideMax, 0.5))
	require.Equal(t, []phase.Window{{From: 0, To: 1}, {From: 1, To: 3}}, ws)
	require.Equal(t, []phase.Window{{From: 0, To: 3}}, phase.Windows(e, nil))
	require.Nil(t, phase.Windows(envelope.Envelope{}, nil))
}

func ExampleDetect() {
	e, _ := envelope.New("BIOMASS", "EX_lac_e", []envelope.Point{
		{Level: 0, Min: 0, Max: 0},
		{Level: 1, Min: 0, Max: 0},
		{Level: 2, Min: 0, Max: 2},
		{Level: 3, Min: 0, Max: 4},
	})
	for _, b := range phase.Detect(e, envelope.SideMax, 0.5) {
		fmt.Printf("index %d at level %g: slope %g -> %g\n", b.Index, b.Mid.Level, b.SlopeBefore, b.SlopeAfter)
	}
	// Output:
	// index 1 at level 1: slope 0 -> 2
}
