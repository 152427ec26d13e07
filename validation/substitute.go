// SPDX-License-Identifier: MIT
//
// File: substitute.go
// Role: Nutrient substitution screening (e.g. alternative carbon sources).

package validation

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/katalvlaran/lvflux/core"
	"github.com/katalvlaran/lvflux/fba"
)

// improvementTol is the growth gain below which a substitution does not count.
const improvementTol = 1e-9

// Substitution opens one exchange to a given uptake (negative lower bound).
type Substitution struct {
	Reaction core.ReactionID
	Lower    float64
}

// SubstitutionResult is the growth under one substitution.
type SubstitutionResult struct {
	Substitution
	Status    fba.Status
	Objective float64

	// Ratio is Objective/baseline; +Inf when only the substitution grows,
	// NaN when neither does.
	Ratio    float64
	Improved bool
}

// Screen is the outcome of ScanSubstitutions.
type Screen struct {
	Objective core.ReactionID
	Baseline  float64
	Results   []SubstitutionResult
}

// ScanSubstitutions solves objective under the current bounds, then under
// each substitution in turn. A substitution sets the reaction's lower bound
// (lifting the upper bound if needed) inside m.Perturb, so each starts from
// the same bounds. Results keep input order.
//
// Errors: fba.ErrUnknownReaction (before any solve), core.BoundsError,
// fba.ErrSolverFault.
func ScanSubstitutions(ctx context.Context, a *fba.Adapter, m *core.Model, objective core.ReactionID, subs []Substitution) (Screen, error) {
	if !m.HasReaction(objective) {
		return Screen{}, fmt.Errorf("validation: objective %q: %w", objective, fba.ErrUnknownReaction)
	}
	for _, s := range subs {
		if !m.HasReaction(s.Reaction) {
			return Screen{}, fmt.Errorf("validation: substitution %q: %w", s.Reaction, fba.ErrUnknownReaction)
		}
	}
	a = a.WithDualValues(false)
	coefs := map[core.ReactionID]float64{objective: 1}
	solve := func() (fba.Solution, error) {
		net, err := m.Network().WithObjective(coefs)
		if err != nil {
			return fba.Solution{Status: fba.StatusError}, err
		}
		return a.SolveNetwork(ctx, net, fba.Maximize)
	}

	base, err := solve()
	if err != nil {
		return Screen{}, fmt.Errorf("validation: substitution baseline: %w", err)
	}
	scr := Screen{Objective: objective, Baseline: growth(base), Results: make([]SubstitutionResult, 0, len(subs))}

	for _, s := range subs {
		cur, err := m.Bounds(s.Reaction)
		if err != nil {
			return Screen{}, err
		}
		var sol fba.Solution
		err = m.Perturb(core.BoundSnapshot{s.Reaction: {Lower: s.Lower, Upper: math.Max(cur.Upper, s.Lower)}}, func() error {
			var err error
			sol, err = solve()
			return err
		})
		if err != nil {
			return Screen{}, fmt.Errorf("validation: substitution %q: %w", s.Reaction, err)
		}
		res := SubstitutionResult{Substitution: s, Status: sol.Status, Objective: growth(sol)}
		switch {
		case scr.Baseline > 0:
			res.Ratio = res.Objective / scr.Baseline
		case res.Objective > 0:
			res.Ratio = math.Inf(1)
		default:
			res.Ratio = math.NaN()
		}
		res.Improved = res.Objective > scr.Baseline+improvementTol
		scr.Results = append(scr.Results, res)
	}
	a.Logger().Debug("substitution scan",
		zap.String("objective", string(objective)),
		zap.Float64("baseline", scr.Baseline),
		zap.Int("candidates", len(subs)))

	return scr, nil
}

// CarbonMatched scales a reference uptake to the same carbon flux for a
// compound with a different carbon count: uptake·refCarbons/carbons.
func CarbonMatched(uptake float64, refCarbons, carbons int) float64 {
	return uptake * float64(refCarbons) / float64(carbons)
}

// aminoAcidCarbons holds carbon counts of the amino acids screened as
// glucose substitutes.
var aminoAcidCarbons = map[core.ReactionID]int{
	"EX_gly_e": 2, "EX_ala_L_e": 3, "EX_ser_L_e": 3, "EX_val_L_e": 5,
	"EX_thr_L_e": 4, "EX_leu_L_e": 6, "EX_pro_L_e": 5, "EX_met_L_e": 5,
	"EX_phe_L_e": 9, "EX_trp_L_e": 11, "EX_tyr_L_e": 9, "EX_asp_L_e": 4,
	"EX_gln_L_e": 5, "EX_lys_L_e": 6, "EX_arg_L_e": 6, "EX_his_L_e": 6,
}

// AminoAcidSubstitutions returns the amino-acid exchanges present in m,
// each at the uptake carrying as much carbon as glucoseUptake of glucose.
// Results are sorted by reaction ID.
func AminoAcidSubstitutions(m *core.Model, glucoseUptake float64) []Substitution {
	var out []Substitution
	for id, c := range aminoAcidCarbons {
		if m.HasReaction(id) {
			out = append(out, Substitution{Reaction: id, Lower: CarbonMatched(glucoseUptake, 6, c)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Reaction < out[j].Reaction })

	return out
}
