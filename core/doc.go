// SPDX-License-Identifier: MIT

// Package core is the in-memory constraint-based network: reactions,
// metabolites, signed stoichiometry, mutable flux bounds and objective
// coefficients, guarded for concurrent use.
//
// A Model M = (S, l, u, c) holds:
//
//   - Reactions (columns of S) in insertion order, each with bounds [l_j, u_j],
//     an objective coefficient c_j and a Role (internal, exchange, sink, demand).
//   - Metabolites (rows of S) in insertion order, created implicitly when a
//     reaction references them.
//   - Exchange detection by explicit RoleExchange or the "EX_" naming
//     convention (WithExchangePrefix overrides it).
//
// Core Methods:
//
//	// Catalog
//	AddMetabolite(met) error                     // O(1)
//	AddReaction(r) error                         // O(k log k)
//	AddBoundary(met, RoleSink|RoleDemand) (id, error)
//	RemoveReactions(ids, pruneOrphans) ([]MetaboliteID, error) // O(R+M)
//	Clone() *Model                               // deep copy
//
//	// Bound store
//	Bounds / SetBounds / SetLowerBound / SetUpperBound / ApplyBounds
//	Snapshot() BoundSnapshot, Restore(snap)
//	Perturb(overrides, fn) error                 // scoped, restores on error and panic
//
//	// Solving hand-off
//	Network() *Network                           // frozen, index-addressed snapshot
//
// Perturbation model:
//
// Sweeps that solve many variants of one model never mutate it concurrently.
// They freeze it once with Network() and derive per-unit copies with
// Network.WithBounds, which share the read-only stoichiometry and own their
// bound vectors. Sequential single-reaction knockouts on the live model use
// Perturb, which is serialized per model and always puts the old bounds back.
//
// Errors:
//
//	ErrEmptyID, ErrReactionNotFound, ErrMetaboliteNotFound,
//	ErrDuplicateReaction, ErrDuplicateMetabolite, ErrInvalidBounds (BoundsError).
package core
