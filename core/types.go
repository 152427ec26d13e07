// SPDX-License-Identifier: MIT

// Package core defines the central Model, Reaction and Metabolite types,
// and provides thread-safe primitives for building, querying, cloning and
// perturbing constraint-based metabolic networks.
//
// All core APIs use a sync.RWMutex (mu) for structural and bound state, plus
// a separate perturbation mutex (muScope) that serializes Perturb scopes so a
// save-mutate-run-restore unit is never interleaved with another one.
//
// Errors:
//
//	ErrEmptyID             - reaction or metabolite ID is the empty string.
//	ErrReactionNotFound    - requested reaction does not exist.
//	ErrMetaboliteNotFound  - requested metabolite does not exist.
//	ErrDuplicateReaction   - reaction ID already registered.
//	ErrDuplicateMetabolite - metabolite ID already registered.
//	ErrInvalidBounds       - lower > upper or a NaN bound.
package core

import (
	"errors"
	"fmt"
	"sync"
)

// Sentinel errors for core model operations.
var (
	// ErrEmptyID indicates that a reaction or metabolite ID is empty.
	ErrEmptyID = errors.New("core: identifier is empty")

	// ErrReactionNotFound indicates an operation referenced a non-existent reaction.
	ErrReactionNotFound = errors.New("core: reaction not found")

	// ErrMetaboliteNotFound indicates an operation referenced a non-existent metabolite.
	ErrMetaboliteNotFound = errors.New("core: metabolite not found")

	// ErrDuplicateReaction indicates a reaction ID is already registered.
	ErrDuplicateReaction = errors.New("core: duplicate reaction")

	// ErrDuplicateMetabolite indicates a metabolite ID is already registered.
	ErrDuplicateMetabolite = errors.New("core: duplicate metabolite")

	// ErrInvalidBounds indicates lower > upper or a NaN bound value.
	ErrInvalidBounds = errors.New("core: invalid bounds")
)

// BoundsError reports the offending reaction and values for ErrInvalidBounds.
type BoundsError struct {
	Reaction     ReactionID
	Lower, Upper float64
}

func (e BoundsError) Error() string {
	return fmt.Sprintf("core: invalid bounds on reaction %q: [%g, %g]", e.Reaction, e.Lower, e.Upper)
}

// Unwrap lets errors.Is(err, ErrInvalidBounds) match a BoundsError.
func (e BoundsError) Unwrap() error { return ErrInvalidBounds }

// ReactionID identifies a reaction within a Model.
type ReactionID string

// MetaboliteID identifies a metabolite within a Model.
type MetaboliteID string

// DefaultExchangePrefix is the naming convention marking exchange reactions.
const DefaultExchangePrefix = "EX_"

// DefaultFluxLimit is the magnitude used for "unconstrained" bounds in
// models and boundary reactions (the conventional ±1000).
const DefaultFluxLimit = 1000.0

// Role tags the part a reaction plays at the system boundary.
type Role int

const (
	// RoleInternal is an intracellular or transport reaction.
	RoleInternal Role = iota
	// RoleExchange moves a metabolite across the system boundary.
	RoleExchange
	// RoleSink is a reversible intracellular boundary (supplementation).
	RoleSink
	// RoleDemand is an irreversible intracellular drain.
	RoleDemand
)

// String returns the lowercase role name used in model files.
func (r Role) String() string {
	switch r {
	case RoleExchange:
		return "exchange"
	case RoleSink:
		return "sink"
	case RoleDemand:
		return "demand"
	default:
		return "internal"
	}
}

// ParseRole maps a model-file role name back to a Role.
// The empty string yields RoleInternal.
func ParseRole(s string) (Role, error) {
	switch s {
	case "", "internal":
		return RoleInternal, nil
	case "exchange":
		return RoleExchange, nil
	case "sink":
		return RoleSink, nil
	case "demand":
		return RoleDemand, nil
	default:
		return RoleInternal, fmt.Errorf("core: unknown role %q", s)
	}
}

// Bounds is a (lower, upper) flux bound pair.
type Bounds struct {
	Lower float64
	Upper float64
}

// BoundSnapshot captures reaction bounds at one instant.
type BoundSnapshot map[ReactionID]Bounds

// Metabolite is a chemical species participating in reactions.
type Metabolite struct {
	// ID is the unique identifier for this Metabolite.
	ID MetaboliteID

	// Name is a human readable label.
	Name string

	// Compartment is the compartment code (e.g. "c", "e").
	Compartment string
}

// Reaction is a flux-carrying transformation with signed stoichiometry.
//
// Negative coefficients are consumed, positive coefficients are produced.
// Values returned by Model getters are copies; mutate through Model methods.
type Reaction struct {
	// ID is the unique identifier for this Reaction.
	ID ReactionID

	// Name is a human readable label.
	Name string

	// Lower and Upper bound the steady-state flux.
	Lower float64
	Upper float64

	// Objective is the cached objective coefficient.
	Objective float64

	// Role tags exchange, sink and demand reactions.
	Role Role

	// Stoichiometry maps metabolite → signed coefficient.
	Stoichiometry map[MetaboliteID]float64
}

// ModelOption configures a Model before creation.
type ModelOption func(m *Model)

// WithExchangePrefix overrides the exchange naming convention ("EX_").
// An empty prefix disables name-based detection; only RoleExchange tags count.
func WithExchangePrefix(prefix string) ModelOption {
	return func(m *Model) { m.exchangePrefix = prefix }
}

// WithName sets the model's descriptive identifier.
func WithName(name string) ModelOption {
	return func(m *Model) { m.name = name }
}

// Model is the in-memory constraint-based network.
//
// mu protects the catalogs and bounds; muScope serializes Perturb scopes.
// Reaction and metabolite enumeration follows insertion order, which keeps
// LP variable ordering reproducible across runs.
type Model struct {
	mu      sync.RWMutex // guards everything below
	muScope sync.Mutex   // serializes Perturb scopes

	name           string
	exchangePrefix string

	reactions   map[ReactionID]*Reaction
	rxnOrder    []ReactionID
	metabolites map[MetaboliteID]*Metabolite
	metOrder    []MetaboliteID
}

// NewModel creates an empty Model with the given options.
// Complexity: O(1)
func NewModel(opts ...ModelOption) *Model {
	m := &Model{
		exchangePrefix: DefaultExchangePrefix,
		reactions:      make(map[ReactionID]*Reaction),
		metabolites:    make(map[MetaboliteID]*Metabolite),
	}
	for _, opt := range opts {
		opt(m)
	}

	return m
}
