// SPDX-License-Identifier: MIT

// Package validation turns single-nutrient dropout simulations into binary
// phenotype calls and scores them against observed labels.
//
// Evaluate applies a media profile, solves the baseline and then drops each
// profile component in turn inside a core.Model.Perturb scope, so every
// dropout starts from the same bounds and the model is restored even when a
// solve fails. Fold changes are normalized by the baseline, or by the
// protocol's floor when the baseline falls below it, and labelled against an
// effect threshold. Outcomes accumulate in a ConfusionMatrix.
//
// The package also reads reference tables (ReadReferenceCSV), screens
// substitute nutrients (ScanSubstitutions) and fits an effect threshold to
// observed fold changes with a two-component Gaussian mixture (FitThreshold).
package validation
