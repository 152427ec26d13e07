// SPDX-License-Identifier: MIT
//
// File: methods.go
// Role: Catalog mutations (metabolites, reactions, boundary reactions, removal).
// Policy:
//   - Validate every argument before touching model state.
//   - Stoichiometry maps are copied in and out; callers never alias internal state.

package core

import (
	"fmt"
	"math"
	"strings"
)

// Boundary reaction prefixes used by AddBoundary.
const (
	SinkPrefix   = "SK_"
	DemandPrefix = "DM_"
)

// AddMetabolite registers a metabolite.
//
// Errors: ErrEmptyID, ErrDuplicateMetabolite.
// Complexity: O(1) amortized.
func (m *Model) AddMetabolite(met Metabolite) error {
	if met.ID == "" {
		return ErrEmptyID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.metabolites[met.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateMetabolite, met.ID)
	}
	cp := met
	m.metabolites[met.ID] = &cp
	m.metOrder = append(m.metOrder, met.ID)

	return nil
}

// AddReaction registers a reaction. Metabolites referenced by the
// stoichiometry are created implicitly when missing.
//
// Implementation:
//   - Stage 1: Validate ID, bounds and coefficients.
//   - Stage 2: Resolve role (an explicit non-internal Role wins; otherwise the
//     exchange prefix promotes the reaction to RoleExchange).
//   - Stage 3: Insert reaction and any new metabolites in deterministic order.
//
// Errors: ErrEmptyID, ErrDuplicateReaction, BoundsError (ErrInvalidBounds).
// Complexity: O(k log k) where k is the number of stoichiometric entries.
func (m *Model) AddReaction(r Reaction) error {
	// Stage 1: validation
	if r.ID == "" {
		return ErrEmptyID
	}
	if err := checkBounds(r.ID, r.Lower, r.Upper); err != nil {
		return err
	}
	for met, coef := range r.Stoichiometry {
		if met == "" {
			return fmt.Errorf("%w: metabolite in reaction %q", ErrEmptyID, r.ID)
		}
		if math.IsNaN(coef) || math.IsInf(coef, 0) {
			return fmt.Errorf("core: reaction %q: non-finite coefficient for %q", r.ID, met)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reactions[r.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateReaction, r.ID)
	}

	// Stage 2: role resolution
	cp := r
	if cp.Role == RoleInternal && m.exchangePrefix != "" && strings.HasPrefix(string(cp.ID), m.exchangePrefix) {
		cp.Role = RoleExchange
	}

	// Stage 3: insertion (metabolites in sorted order so implicit creation is reproducible)
	cp.Stoichiometry = make(map[MetaboliteID]float64, len(r.Stoichiometry))
	for _, met := range sortedMetabolites(r.Stoichiometry) {
		coef := r.Stoichiometry[met]
		if coef == 0 {
			continue
		}
		cp.Stoichiometry[met] = coef
		if _, ok := m.metabolites[met]; !ok {
			m.metabolites[met] = &Metabolite{ID: met}
			m.metOrder = append(m.metOrder, met)
		}
	}
	m.reactions[cp.ID] = &cp
	m.rxnOrder = append(m.rxnOrder, cp.ID)

	return nil
}

// AddBoundary adds a boundary reaction for an existing metabolite and
// returns its ID. Sinks are reversible (SK_ prefix, bounds ±DefaultFluxLimit),
// demands drain only (DM_ prefix, bounds [0, DefaultFluxLimit]) and exchanges
// get the model's exchange prefix with sink-like bounds.
//
// Errors: ErrMetaboliteNotFound, ErrDuplicateReaction, or a core error for RoleInternal.
func (m *Model) AddBoundary(met MetaboliteID, kind Role) (ReactionID, error) {
	m.mu.RLock()
	_, ok := m.metabolites[met]
	prefix := m.exchangePrefix
	m.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMetaboliteNotFound, met)
	}

	r := Reaction{
		Lower:         -DefaultFluxLimit,
		Upper:         DefaultFluxLimit,
		Role:          kind,
		Stoichiometry: map[MetaboliteID]float64{met: -1},
	}
	switch kind {
	case RoleSink:
		r.ID = ReactionID(SinkPrefix + string(met))
		r.Name = string(met) + " sink"
	case RoleDemand:
		r.ID = ReactionID(DemandPrefix + string(met))
		r.Name = string(met) + " demand"
		r.Lower = 0
	case RoleExchange:
		if prefix == "" {
			prefix = DefaultExchangePrefix
		}
		r.ID = ReactionID(prefix + string(met))
		r.Name = string(met) + " exchange"
	default:
		return "", fmt.Errorf("core: boundary kind %s is not a boundary role", kind)
	}

	if err := m.AddReaction(r); err != nil {
		return "", err
	}

	return r.ID, nil
}

// RemoveReactions deletes the given reactions. With pruneOrphans set,
// metabolites no longer referenced by any reaction are removed as well;
// their IDs are returned in model order.
//
// Errors: ErrReactionNotFound if any ID is absent (nothing is removed).
// Complexity: O(R + M).
func (m *Model) RemoveReactions(ids []ReactionID, pruneOrphans bool) ([]MetaboliteID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	drop := make(map[ReactionID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := m.reactions[id]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrReactionNotFound, id)
		}
		drop[id] = struct{}{}
	}
	if len(drop) == 0 {
		return nil, nil
	}

	kept := m.rxnOrder[:0:0]
	for _, id := range m.rxnOrder {
		if _, gone := drop[id]; gone {
			delete(m.reactions, id)
			continue
		}
		kept = append(kept, id)
	}
	m.rxnOrder = kept

	if !pruneOrphans {
		return nil, nil
	}

	used := make(map[MetaboliteID]struct{}, len(m.metabolites))
	for _, r := range m.reactions {
		for met := range r.Stoichiometry {
			used[met] = struct{}{}
		}
	}
	var pruned []MetaboliteID
	metKept := m.metOrder[:0:0]
	for _, met := range m.metOrder {
		if _, ok := used[met]; ok {
			metKept = append(metKept, met)
			continue
		}
		delete(m.metabolites, met)
		pruned = append(pruned, met)
	}
	m.metOrder = metKept

	return pruned, nil
}

// SetObjective makes the given reactions the objective with the given
// coefficients; every other coefficient is reset to zero.
//
// Errors: ErrReactionNotFound (checked before mutation).
func (m *Model) SetObjective(coefs map[ReactionID]float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id := range coefs {
		if _, ok := m.reactions[id]; !ok {
			return fmt.Errorf("%w: %q", ErrReactionNotFound, id)
		}
	}
	for _, r := range m.reactions {
		r.Objective = coefs[r.ID]
	}

	return nil
}

// checkBounds validates a (lower, upper) pair.
func checkBounds(id ReactionID, lower, upper float64) error {
	if math.IsNaN(lower) || math.IsNaN(upper) || lower > upper {
		return BoundsError{Reaction: id, Lower: lower, Upper: upper}
	}

	return nil
}
