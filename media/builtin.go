// SPDX-License-Identifier: MIT
//
// File: builtin.go
// Role: Built-in defined-media formulations.
// Values are relative uptake rates (glucose = -10) used as exchange lower bounds.

package media

import "github.com/katalvlaran/lvflux/core"

// Built-in profile identifiers.
const (
	DM57    ProfileID = "DM57"
	DM25    ProfileID = "DM25"
	DM16    ProfileID = "DM16"
	DM13    ProfileID = "DM13"
	SUN2019 ProfileID = "SUN2019"
)

// DefaultVersion tags the built-in formulations with the model release they target.
const DefaultVersion = "v37"

// DefaultRegistry returns a registry holding DM57, DM25, DM16, DM13 and SUN2019.
func DefaultRegistry() *Registry {
	reg, err := NewRegistry(builtinProfiles()...)
	if err != nil {
		panic(err)
	}

	return reg
}

func builtinProfiles() []Profile {
	return []Profile{
		{
			ID:          DM57,
			Description: "Fully defined 57-component medium",
			Version:     DefaultVersion,
			Bounds: map[core.ReactionID]float64{
				"EX_4abut_e":   -0.238239650186896,
				"EX_adn_e":     -0.909023633807176,
				"EX_ala_L_e":   -3.43941818181818,
				"EX_arg_L_e":   -0.282058240267196,
				"EX_asn_L_e":   -0.0929733300305507,
				"EX_asp_L_e":   -0.55373266853357,
				"EX_btn_e":     -0.502788930606048,
				"EX_C00072_e":  -0.697458344517168,
				"EX_cbl1_e":    -0.00906293953948838,
				"EX_cit_e":     -2.17226868802977,
				"EX_cobalt2_e": -0.710036784025223,
				"EX_csn_e":     -0.44225513460437,
				"EX_cu2_e":     -0.000983950365558824,
				"EX_cys_L_e":   -1.16893013200794,
				"EX_cytd_e":    -0.101009685701545,
				"EX_fe2_e":     -0.0323445102064021,
				"EX_fol_e":     -0.000556576183218685,
				"EX_glc_D_e":   -10,
				"EX_glu_L_e":   -0.500929913558201,
				"EX_gly_e":     -0.837744,
				"EX_gua_e":     -0.487671661363185,
				"EX_his_L_e":   -0.65449154972054,
				"EX_ile_L_e":   -0.468006545454545,
				"EX_inost_e":   -0.00681833698681884,
				"EX_k_e":       -19.7463439075564,
				"EX_leu_L_e":   -0.468006545454545,
				"EX_lys_L_e":   -0.881965090909091,
				"EX_met_L_e":   -0.164648969420768,
				"EX_mg2_e":     -5.10261883074804,
				"EX_mn2_e":     -0.0221638272953635,
				"EX_mops_e":    -9.82706405984726,
				"EX_na1_e":     -0.0840769087175658,
				"EX_nac_e":     -0.0402313481163887,
				"EX_NH4_e":     -7.08581509092581,
				"EX_phe_L_e":   -0.371702836363636,
				"EX_pnto_R_e":  -0.00515545143585351,
				"EX_pro_L_e":   -0.426767062628509,
				"EX_pydx_e":    -0.0120652552437249,
				"EX_ribflv_e":  -0.0130548864158699,
				"EX_ser_L_e":   -1.81153897697883,
				"EX_thm_e":     -0.185161838463014,
				"EX_thr_L_e":   -0.515417920291105,
				"EX_thym_e":    -0.0584424852762019,
				"EX_trp_L_e":   -0.336817309090909,
				"EX_tyr_L_e":   -0.271098358335077,
				"EX_ura_e":     -0.00438361724922243,
				"EX_val_L_e":   -0.209711414000006,
				"EX_xan_e":     -0.0193811894502184,
				"EX_zn2_e":     -0.00854216715134657,
				"EX_pi_e":      -19.7463439075564,
				"EX_h_e":       -0.0120652552437249,
				"EX_hco3_e":    -1,
			},
		},
		{
			ID:          DM25,
			Description: "DM57 reduced to 25 components",
			Version:     DefaultVersion,
			Bounds: map[core.ReactionID]float64{
				"EX_arg_L_e":   -0.282058240267196,
				"EX_asn_L_e":   -0.0929733300305507,
				"EX_asp_L_e":   -0.55373266853357,
				"EX_C00072_e":  -0.697458344517168,
				"EX_cit_e":     -2.17226868802977,
				"EX_cobalt2_e": -0.710036784025223,
				"EX_cys_L_e":   -1.16893013200794,
				"EX_cytd_e":    -0.101009685701545,
				"EX_glc_D_e":   -10,
				"EX_glu_L_e":   -0.500929913558201,
				"EX_his_L_e":   -0.65449154972054,
				"EX_ile_L_e":   -0.468006545454545,
				"EX_k_e":       -19.7463439075564,
				"EX_met_L_e":   -0.164648969420768,
				"EX_mg2_e":     -5.10261883074804,
				"EX_mops_e":    -9.82706405984726,
				"EX_NH4_e":     -7.08581509092581,
				"EX_pro_L_e":   -0.426767062628509,
				"EX_ser_L_e":   -1.81153897697883,
				"EX_ura_e":     -0.00438361724922243,
				"EX_val_L_e":   -0.209711414000006,
				"EX_xan_e":     -0.0193811894502184,
				"EX_pi_e":      -19.7463439075564,
				"EX_h_e":       -0.0120652552437249,
				"EX_hco3_e":    -1,
			},
		},
		{
			ID:          DM16,
			Description: "DM25 reduced to 16 components",
			Version:     DefaultVersion,
			Bounds: map[core.ReactionID]float64{
				"EX_arg_L_e":   -0.282058240267196,
				"EX_asn_L_e":   -0.0929733300305507,
				"EX_asp_L_e":   -0.55373266853357,
				"EX_cobalt2_e": -0.710036784025223,
				"EX_cys_L_e":   -1.16893013200794,
				"EX_cytd_e":    -0.101009685701545,
				"EX_glc_D_e":   -10,
				"EX_glu_L_e":   -0.500929913558201,
				"EX_his_L_e":   -0.65449154972054,
				"EX_ile_L_e":   -0.468006545454545,
				"EX_k_e":       -19.7463439075564,
				"EX_mg2_e":     -5.10261883074804,
				"EX_mops_e":    -9.82706405984726,
				"EX_NH4_e":     -7.08581509092581,
				"EX_pro_L_e":   -0.426767062628509,
				"EX_val_L_e":   -0.209711414000006,
				"EX_pi_e":      -19.7463439075564,
				"EX_h_e":       -0.0120652552437249,
				"EX_hco3_e":    -1,
			},
		},
		{
			ID:          DM13,
			Description: "DM16 reduced to 13 components",
			Version:     DefaultVersion,
			Bounds: map[core.ReactionID]float64{
				"EX_arg_L_e":   -0.282058240267196,
				"EX_asn_L_e":   -0.0929733300305507,
				"EX_asp_L_e":   -0.55373266853357,
				"EX_cobalt2_e": -0.710036784025223,
				"EX_cys_L_e":   -1.16893013200794,
				"EX_glc_D_e":   -10,
				"EX_glu_L_e":   -0.500929913558201,
				"EX_his_L_e":   -0.65449154972054,
				"EX_ile_L_e":   -0.468006545454545,
				"EX_k_e":       -19.7463439075564,
				"EX_mg2_e":     -5.10261883074804,
				"EX_pro_L_e":   -0.426767062628509,
				"EX_val_L_e":   -0.209711414000006,
				"EX_pi_e":      -19.7463439075564,
				"EX_h_e":       -0.0120652552437249,
				"EX_hco3_e":    -1,
			},
		},
		{
			ID:          SUN2019,
			Description: "Defined medium of the 2019 dropout study",
			Version:     DefaultVersion,
			Bounds: map[core.ReactionID]float64{
				"EX_adn_e":    -0.004,
				"EX_ala_D_e":  -0.2,
				"EX_NH4_e":    -1.2,
				"EX_arg_L_e":  -0.4,
				"EX_asn_L_e":  -0.44,
				"EX_asp_L_e":  -0.32,
				"EX_btn_e":    -0.002,
				"EX_cbl1_e":   -0.002,
				"EX_cys_L_e":  -0.6,
				"EX_k_e":      -0.48,
				"EX_fol_e":    -0.002,
				"EX_glc_D_e":  -10,
				"EX_glu_L_e":  -0.48,
				"EX_gln_L_e":  -0.4,
				"EX_gly_e":    -0.16,
				"EX_gua_e":    -0.004,
				"EX_his_L_e":  -0.176,
				"EX_fe2_e":    -0.004,
				"EX_ile_L_e":  -0.2,
				"EX_leu_L_e":  -0.2,
				"EX_lys_L_e":  -0.42,
				"EX_mg2_e":    -0.08,
				"EX_mn2_e":    -0.004,
				"EX_met_L_e":  -0.08,
				"EX_inost_e":  -0.002,
				"EX_nac_e":    -0.0016,
				"EX_pnto_R_e": -0.002,
				"EX_phe_L_e":  -0.2,
				"EX_pro_L_e":  -0.16,
				"EX_pydx_e":   -0.0016,
				"EX_ribflv_e": -0.002,
				"EX_ser_L_e":  -0.62,
				"EX_na1_e":    -8,
				"EX_thm_e":    -0.002,
				"EX_thr_L_e":  -0.2,
				"EX_trp_L_e":  -0.224,
				"EX_tyr_L_e":  -0.16,
				"EX_ura_e":    -0.004,
				"EX_val_L_e":  -0.4,
				"EX_xan_e":    -0.004,
				"EX_ac_e":     -8,
				"EX_hco3_e":   -1,
				"EX_pi_e":     -0.48,
				"EX_h_e":      -0.48,
			},
		},
	}
}
