// SPDX-License-Identifier: MIT
//
// File: standard.go
// Role: Conversion of a bounded Problem into equality standard form
//       (min cᵀz, Az = b, z ≥ 0, b ≥ 0) with an explicit identity basis.

package solver

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// varMap expresses an original variable as shift + z[plus] - z[minus].
type varMap struct {
	shift       float64
	plus, minus int // standard-form columns; -1 when absent
}

// stdRow is a row under construction.
type stdRow struct {
	coef  map[int]float64 // structural column → coefficient
	rhs   float64
	slack bool // row is an inequality and owns a slack column
}

// standardForm is the assembled LP handed to the simplex routine.
type standardForm struct {
	a          *mat.Dense
	rhs        []float64
	cost       []float64 // min-form costs; zero on slack and artificial columns
	basis      []int
	artificial []int
	vars       []varMap

	// presolve outcome; StatusOptimal means "solve it"
	status Status
}

// toStandard builds the standard form of min cᵀx under p's constraints.
//
// Implementation:
//   - Stage 1: Substitute every variable by shift + z⁺ − z⁻ and emit an
//     upper-bound row for doubly bounded variables.
//   - Stage 2: Move shifts to the right-hand side; drop rows without
//     structural coefficients, deciding infeasibility from their rhs.
//   - Stage 3: Drop structural columns that appear in no row (unbounded if
//     their cost is negative, otherwise fixed at zero).
//   - Stage 4: Flip rows with negative rhs; give each row a basic column,
//     its slack when the coefficient is +1 and an artificial otherwise.
//
// Complexity: O(m·n) for the dense matrix.
func toStandard(c []float64, p *Problem, feasTol float64) *standardForm {
	n := len(c)
	sf := &standardForm{vars: make([]varMap, n), status: StatusOptimal}

	// Stage 1: variable substitution
	var structCost []float64
	newCol := func(cost float64) int {
		structCost = append(structCost, cost)
		return len(structCost) - 1
	}
	var rows []stdRow
	for j := 0; j < n; j++ {
		l, u := p.Lower[j], p.Upper[j]
		vm := varMap{plus: -1, minus: -1}
		switch {
		case l == u:
			vm.shift = l
		case !math.IsInf(l, -1):
			vm.shift = l
			vm.plus = newCol(c[j])
			if !math.IsInf(u, 1) {
				rows = append(rows, stdRow{coef: map[int]float64{vm.plus: 1}, rhs: u - l, slack: true})
			}
		case !math.IsInf(u, 1):
			vm.shift = u
			vm.minus = newCol(-c[j])
		default:
			vm.plus = newCol(c[j])
			vm.minus = newCol(-c[j])
		}
		sf.vars[j] = vm
	}

	// Stage 2: constraint rows
	expand := func(row Row, rhs float64, slack bool) stdRow {
		r := stdRow{coef: make(map[int]float64, len(row)), rhs: rhs, slack: slack}
		for _, t := range row {
			vm := sf.vars[t.Col]
			r.rhs -= t.Val * vm.shift
			if vm.plus >= 0 {
				r.coef[vm.plus] += t.Val
			}
			if vm.minus >= 0 {
				r.coef[vm.minus] -= t.Val
			}
		}
		for col, v := range r.coef {
			if v == 0 {
				delete(r.coef, col)
			}
		}
		return r
	}
	for i, row := range p.Eq {
		rows = append(rows, expand(row, p.EqRHS[i], false))
	}
	for k, row := range p.Ineq {
		rows = append(rows, expand(row, p.IneqRHS[k], true))
	}

	kept := rows[:0]
	for _, r := range rows {
		if len(r.coef) > 0 {
			kept = append(kept, r)
			continue
		}
		if r.slack && r.rhs >= -feasTol || !r.slack && math.Abs(r.rhs) <= feasTol {
			continue
		}
		sf.status = StatusInfeasible
		return sf
	}
	rows = kept

	// Stage 3: zero columns
	used := make([]bool, len(structCost))
	for _, r := range rows {
		for col := range r.coef {
			used[col] = true
		}
	}
	remap := make([]int, len(structCost))
	nStruct := 0
	for col, ok := range used {
		if ok {
			remap[col] = nStruct
			nStruct++
			continue
		}
		if structCost[col] < 0 {
			sf.status = StatusUnbounded
			return sf
		}
		remap[col] = -1
	}
	for j := range sf.vars {
		if sf.vars[j].plus >= 0 {
			sf.vars[j].plus = remap[sf.vars[j].plus]
		}
		if sf.vars[j].minus >= 0 {
			sf.vars[j].minus = remap[sf.vars[j].minus]
		}
	}

	m := len(rows)
	if m == 0 {
		return sf
	}

	// Stage 4: slack and artificial columns
	nSlack := 0
	for _, r := range rows {
		if r.slack {
			nSlack++
		}
	}
	nArt := 0
	for _, r := range rows {
		if !r.slack || r.rhs < 0 {
			nArt++
		}
	}
	total := nStruct + nSlack + nArt
	sf.a = mat.NewDense(m, total, nil)
	sf.rhs = make([]float64, m)
	sf.cost = make([]float64, total)
	sf.basis = make([]int, m)
	for col, cost := range structCost {
		if remap[col] >= 0 {
			sf.cost[remap[col]] = cost
		}
	}

	slackCol, artCol := nStruct, nStruct+nSlack
	for i, r := range rows {
		sign := 1.0
		if r.rhs < 0 {
			sign = -1
		}
		for col, v := range r.coef {
			sf.a.Set(i, remap[col], sign*v)
		}
		sf.rhs[i] = sign * r.rhs
		if r.slack {
			sf.a.Set(i, slackCol, sign)
			if sign > 0 {
				sf.basis[i] = slackCol
				slackCol++
				continue
			}
			slackCol++
		}
		sf.a.Set(i, artCol, 1)
		sf.basis[i] = artCol
		sf.artificial = append(sf.artificial, artCol)
		artCol++
	}

	return sf
}

// original maps a standard-form point back to the original variables.
func (sf *standardForm) original(z []float64) []float64 {
	x := make([]float64, len(sf.vars))
	for j, vm := range sf.vars {
		x[j] = vm.shift
		if vm.plus >= 0 && z != nil {
			x[j] += z[vm.plus]
		}
		if vm.minus >= 0 && z != nil {
			x[j] -= z[vm.minus]
		}
	}

	return x
}

// infeasibility returns Σ artificial values of z.
func (sf *standardForm) infeasibility(z []float64) float64 {
	var s float64
	for _, col := range sf.artificial {
		s += math.Abs(z[col])
	}

	return s
}
