// SPDX-License-Identifier: MIT

// Package envelope builds production envelopes: the feasible range of a
// target reaction as an objective reaction is swept from zero to its
// maximum.
//
// Every level is an independent unit of work. Build pins the objective on a
// private core.Network copy, runs a variability pass restricted to the
// target and writes the point into its own slot, so levels are computed in
// parallel and returned in ascending order.
//
// Example:
//
//	env, err := envelope.Build(ctx, adapter, model, "BIOMASS", "EX_lac_e", 10, envelope.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	for _, p := range env.Points {
//		fmt.Println(p.Level, p.Min, p.Max)
//	}
package envelope
