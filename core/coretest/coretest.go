// SPDX-License-Identifier: MIT

// Package coretest provides small, fully specified metabolic networks for
// tests and examples across lvflux packages.
package coretest

import "github.com/katalvlaran/lvflux/core"

// Reaction IDs of the toy network.
const (
	ExGlc   core.ReactionID = "EX_glc_e"
	ExPyr   core.ReactionID = "EX_pyr_e"
	ExNH4   core.ReactionID = "EX_nh4_e"
	ExH2O   core.ReactionID = "EX_h2o_e"
	ExLac   core.ReactionID = "EX_lac_e"
	GLCt    core.ReactionID = "GLCt"
	PYRt    core.ReactionID = "PYRt"
	R2      core.ReactionID = "R2"
	LDH     core.ReactionID = "LDH_L"
	Biomass core.ReactionID = "BIOMASS"
	Dead    core.ReactionID = "R_dead"
)

// Toy returns an eleven-reaction network with a single carbon route:
//
//	EX_glc_e  glc_e <=>            [-10, 1000]
//	EX_pyr_e  pyr_e <=>            [0, 1000]
//	EX_nh4_e  nh4_e <=>            [-1000, 1000]
//	EX_h2o_e  h2o_e <=>            [-1000, 1000]
//	EX_lac_e  lac_e -->            [0, 1000]
//	GLCt      glc_e --> A
//	PYRt      pyr_e --> A
//	R2        A --> B
//	LDH_L     A --> lac_e
//	BIOMASS   B + 0.1 nh4_e -->    (objective)
//	R_dead    C --> D              (blocked)
//
// Maximum BIOMASS is 10 and every unit of biomass diverted to LDH_L
// secretes one unit of lactate.
func Toy() *core.Model {
	m := core.NewModel(core.WithName("toy"))
	rxns := []core.Reaction{
		{ID: ExGlc, Lower: -10, Upper: 1000, Stoichiometry: map[core.MetaboliteID]float64{"glc_e": -1}},
		{ID: ExPyr, Lower: 0, Upper: 1000, Stoichiometry: map[core.MetaboliteID]float64{"pyr_e": -1}},
		{ID: ExNH4, Lower: -1000, Upper: 1000, Stoichiometry: map[core.MetaboliteID]float64{"nh4_e": -1}},
		{ID: ExH2O, Lower: -1000, Upper: 1000, Stoichiometry: map[core.MetaboliteID]float64{"h2o_e": -1}},
		{ID: ExLac, Lower: 0, Upper: 1000, Stoichiometry: map[core.MetaboliteID]float64{"lac_e": -1}},
		{ID: GLCt, Lower: 0, Upper: 1000, Stoichiometry: map[core.MetaboliteID]float64{"glc_e": -1, "A": 1}},
		{ID: PYRt, Lower: 0, Upper: 1000, Stoichiometry: map[core.MetaboliteID]float64{"pyr_e": -1, "A": 1}},
		{ID: R2, Lower: 0, Upper: 1000, Stoichiometry: map[core.MetaboliteID]float64{"A": -1, "B": 1}},
		{ID: LDH, Lower: 0, Upper: 1000, Stoichiometry: map[core.MetaboliteID]float64{"A": -1, "lac_e": 1}},
		{ID: Biomass, Lower: 0, Upper: 1000, Objective: 1, Stoichiometry: map[core.MetaboliteID]float64{"B": -1, "nh4_e": -0.1}},
		{ID: Dead, Lower: 0, Upper: 1000, Stoichiometry: map[core.MetaboliteID]float64{"C": -1, "D": 1}},
	}
	for _, r := range rxns {
		if err := m.AddReaction(r); err != nil {
			panic(err)
		}
	}

	return m
}

// Exchanges lists the toy network's exchange reactions in model order.
func Exchanges() []core.ReactionID {
	return []core.ReactionID{ExGlc, ExPyr, ExNH4, ExH2O, ExLac}
}
