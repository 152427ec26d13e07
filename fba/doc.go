// SPDX-License-Identifier: MIT

// Package fba adapts a core.Model to a solver.Optimizer: it picks the
// objective reaction, translates the network into an LP (S·v = 0 under the
// current bounds) and maps the optimizer's answer back to per-reaction
// fluxes, per-metabolite shadow prices and per-reaction reduced costs.
//
// Solve rewrites the model's objective and therefore mutates it; sweeps that
// solve many variants work on frozen snapshots through SolveNetwork instead.
//
// Parsimonious adds a second stage that keeps the objective at a fraction
// of its optimum and minimizes total absolute flux, the usual way to pick
// one representative among many alternative optima.
package fba
