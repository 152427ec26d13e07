// SPDX-License-Identifier: MIT

// Package media maps named nutrient regimes to exchange-reaction bounds.
//
// A Registry is a closed, versioned set of Profiles. Applying a profile is a
// two-phase, all-or-nothing operation on a core.Model: first every exchange
// reaction loses its uptake (lower bound 0), then each profile component is
// opened to its recorded uptake rate. Because the reset covers all exchanges,
// applying the same profile twice, or after any other profile, yields the
// same lower bounds.
//
// DefaultRegistry ships the DM57 → DM25 → DM16 → DM13 reduction series and
// the SUN2019 formulation. LoadRegistry reads additional sets from YAML.
package media
