// SPDX-License-Identifier: MIT

// Package fva computes flux variability: the feasible [min, max] range of
// every reaction under a model's current bounds.
//
// Each range takes two independent LP solves, so a pass fans out over a
// bounded worker pool against one frozen core.Network. The package also
// builds reduced models from a variability result, dropping reactions that
// can never carry flux together with the metabolites they leave orphaned,
// and re-solves them for a chosen objective (optionally inside a window on
// another reaction, the phase range analysis used for booster screening).
package fva
