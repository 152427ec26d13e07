// SPDX-License-Identifier: MIT

package fba

import (
	"math"
	"sort"

	"github.com/katalvlaran/lvflux/core"
)

// FluxDelta is one reaction's normalized flux change between two states.
type FluxDelta struct {
	Reaction core.ReactionID
	A, B     float64 // normalized fluxes
	Delta    float64 // B − A
}

// CompareFluxes normalizes a by scaleA and b by scaleB (a zero scale leaves
// fluxes unscaled), and returns the reactions whose normalized flux changes
// by more than tol, ordered by |Delta| descending then by ID. Reactions
// missing from one side count as zero there.
//
// Complexity: O((|a|+|b|)·log(|a|+|b|)).
func CompareFluxes(a, b map[core.ReactionID]float64, scaleA, scaleB, tol float64) []FluxDelta {
	norm := func(v, scale float64) float64 {
		if scale == 0 {
			return v
		}
		return v / scale
	}

	ids := make(map[core.ReactionID]struct{}, len(a)+len(b))
	for id := range a {
		ids[id] = struct{}{}
	}
	for id := range b {
		ids[id] = struct{}{}
	}

	var out []FluxDelta
	for id := range ids {
		d := FluxDelta{Reaction: id, A: norm(a[id], scaleA), B: norm(b[id], scaleB)}
		d.Delta = d.B - d.A
		if math.Abs(d.Delta) > tol {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := math.Abs(out[i].Delta), math.Abs(out[j].Delta)
		if di != dj {
			return di > dj
		}
		return out[i].Reaction < out[j].Reaction
	})

	return out
}
