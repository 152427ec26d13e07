// SPDX-License-Identifier: MIT
//
// File: protocol.go
// Role: Per-profile normalization floors and exclusion lists.

package validation

import (
	"github.com/katalvlaran/lvflux/core"
	"github.com/katalvlaran/lvflux/media"
)

// Protocol fixes how one media profile is validated.
type Protocol struct {
	Profile media.ProfileID

	// Floor replaces a baseline that falls below it as the fold-change
	// denominator.
	Floor float64

	// Threshold is the effect threshold; nil means DefaultEffectThreshold.
	Threshold *float64

	// Exclusions lists components whose observed-deleterious /
	// predicted-no-effect mismatch is a known model gap.
	Exclusions []core.ReactionID
}

// EffectThreshold returns the threshold in force.
func (p Protocol) EffectThreshold() float64 {
	if p.Threshold == nil {
		return DefaultEffectThreshold
	}

	return *p.Threshold
}

// Excluded reports whether id is on the exclusion list.
func (p Protocol) Excluded(id core.ReactionID) bool {
	for _, x := range p.Exclusions {
		if x == id {
			return true
		}
	}

	return false
}

// DefaultProtocols returns the protocols for the built-in profiles. Floors
// are the in-vitro growth rates each formulation is normalized against.
func DefaultProtocols() map[media.ProfileID]Protocol {
	return map[media.ProfileID]Protocol{
		media.DM57: {
			Profile: media.DM57,
			Floor:   0.43,
			Exclusions: []core.ReactionID{
				"EX_inost_e", "EX_ala_D_e", "EX_lys_L_e", "EX_gua_e", "EX_thr_L_e",
				"EX_pnto_R_e", "EX_csn_e", "EX_cu2_e", "EX_pydx_e", "EX_leu_L_e",
				"EX_ribflv_e", "EX_na1_e", "EX_thm_e", "EX_mn2_e", "EX_thym_e",
				"EX_phe_L_e", "EX_fe2_e", "EX_zn2_e", "EX_fol_e", "EX_nac_e",
				"EX_cbl1_e", "EX_btn_e", "EX_gly_e", "EX_trp_L_e", "EX_tyr_L_e",
				"EX_4abut_e", "EX_adn_e",
			},
		},
		media.DM25: {
			Profile:    media.DM25,
			Floor:      0.31,
			Exclusions: []core.ReactionID{"EX_cit_e", "EX_ura_e", "EX_xan_e", "EX_met_L_e"},
		},
		media.DM16: {
			Profile:    media.DM16,
			Floor:      0.07,
			Exclusions: []core.ReactionID{"EX_cytd_e", "EX_mops_e", "EX_NH4_e"},
		},
		media.DM13:    {Profile: media.DM13, Floor: 0.11},
		media.SUN2019: {Profile: media.SUN2019, Floor: 0.11},
	}
}
