// SPDX-License-Identifier: MIT

package solver

import (
	"context"
	"fmt"
	"math"
)

// solveDuals returns equality-row duals y of min cᵀx by solving the dual LP
//
//	min  −bᵀy + hᵀμ + Σ u_j α_j − Σ l_j β_j
//	s.t. Aᵀy − Gᵀμ − α + β = c,  y free, μ, α, β ≥ 0
//
// where α exists only for finite upper bounds and β only for finite lower
// bounds. y_i is the rate of change of the optimal value per unit of b_i.
func (s *Simplex) solveDuals(ctx context.Context, c []float64, p *Problem) ([]float64, error) {
	n, nEq, nIneq := len(c), len(p.Eq), len(p.Ineq)

	d := &Problem{Sense: Minimize}
	addVar := func(cost, lower float64) int {
		d.C = append(d.C, cost)
		d.Lower = append(d.Lower, lower)
		d.Upper = append(d.Upper, math.Inf(1))
		return len(d.C) - 1
	}

	rows := make([]Row, n)
	for i, row := range p.Eq {
		col := addVar(-p.EqRHS[i], math.Inf(-1))
		for _, t := range row {
			rows[t.Col] = append(rows[t.Col], Term{Col: col, Val: t.Val})
		}
	}
	for k, row := range p.Ineq {
		col := addVar(p.IneqRHS[k], 0)
		for _, t := range row {
			rows[t.Col] = append(rows[t.Col], Term{Col: col, Val: -t.Val})
		}
	}
	for j := 0; j < n; j++ {
		if u := p.Upper[j]; !math.IsInf(u, 1) {
			col := addVar(u, 0)
			rows[j] = append(rows[j], Term{Col: col, Val: -1})
		}
		if l := p.Lower[j]; !math.IsInf(l, -1) {
			col := addVar(-l, 0)
			rows[j] = append(rows[j], Term{Col: col, Val: 1})
		}
	}
	d.Eq = rows
	d.EqRHS = append([]float64(nil), c...)

	v, status, err := s.solvePrimal(ctx, d.C, d)
	if err != nil {
		return nil, err
	}
	if status != StatusOptimal {
		return nil, fmt.Errorf("%w: dual problem is %s (%d equality, %d inequality rows)", ErrSolverFault, status, nEq, nIneq)
	}

	return v[:nEq], nil
}
