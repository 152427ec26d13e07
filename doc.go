// SPDX-License-Identifier: MIT

// Package lvflux is a toolkit for constraint-based metabolic modelling:
// load a genome-scale network, constrain it to a growth medium, optimize
// it, and read phase structure out of its production envelopes.
//
// 🚀 What is in the box?
//
//	• Core model: reactions, metabolites, bounds, objective, cheap clones
//	• Media profiles: versioned exchange-bound regimes with undo
//	• Optimizer adapter: FBA, parsimonious FBA, dual values
//	• Variability: FVA, ε-reduction, single-reaction range analysis
//	• Production envelopes: parallel min/max sweeps of a target flux
//	• Phase detection: slope-change boundaries and objective windows
//	• Validation: nutrient dropouts scored against growth data, GMM thresholds
//
// ✨ Design notes
//
//   - Pure Go LP (gonum) behind a small Optimizer interface
//   - Models are never left perturbed: every probe restores bounds
//   - Structured logging (zap), Prometheus solver metrics
//   - Runs persist to SQLite via the store package
//
// Layout:
//
//	core/       — Model, Reaction, Metabolite, bound snapshots, Network view
//	solver/     — LP problem, simplex optimizer, metrics
//	fba/        — optimizer adapter, pFBA, flux comparison
//	media/      — profile registry and built-in chemically defined media
//	fva/        — flux variability and model reduction
//	envelope/   — production envelopes
//	phase/      — phase boundary detection
//	validation/ — dropout classification, confusion matrices, thresholds
//	modelio/    — YAML model files
//	config/     — YAML configuration and logger setup
//	store/      — SQLite run history
//	cmd/lvflux/ — command-line interface
//
// Quick start:
//
//	go install github.com/katalvlaran/lvflux/cmd/lvflux@latest
//	lvflux --model model.yaml envelope --profile DM13 --target EX_lac_L_e
package lvflux
