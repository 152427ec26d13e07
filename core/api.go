// SPDX-License-Identifier: MIT
//
// File: api.go
// Role: Read-only getters over the model catalogs.
// Policy:
//   - Every getter takes the read lock and returns copies.
//   - Enumeration follows insertion order.

package core

import (
	"fmt"
	"sort"
	"strings"
)

// Name returns the model's descriptive identifier.
func (m *Model) Name() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.name
}

// ExchangePrefix returns the naming convention used to detect exchange reactions.
func (m *Model) ExchangePrefix() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.exchangePrefix
}

// HasReaction reports whether the reaction exists.
// Complexity: O(1).
func (m *Model) HasReaction(id ReactionID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.reactions[id]

	return ok
}

// HasMetabolite reports whether the metabolite exists.
func (m *Model) HasMetabolite(id MetaboliteID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.metabolites[id]

	return ok
}

// Reaction returns a copy of the reaction with the given ID.
//
// Errors: ErrReactionNotFound.
func (m *Model) Reaction(id ReactionID) (Reaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reactions[id]
	if !ok {
		return Reaction{}, fmt.Errorf("%w: %q", ErrReactionNotFound, id)
	}

	return copyReaction(r), nil
}

// Reactions returns copies of all reactions in insertion order.
// Complexity: O(R·k).
func (m *Model) Reactions() []Reaction {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Reaction, 0, len(m.rxnOrder))
	for _, id := range m.rxnOrder {
		out = append(out, copyReaction(m.reactions[id]))
	}

	return out
}

// ReactionIDs returns all reaction IDs in insertion order.
func (m *Model) ReactionIDs() []ReactionID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]ReactionID(nil), m.rxnOrder...)
}

// Metabolites returns copies of all metabolites in insertion order.
func (m *Model) Metabolites() []Metabolite {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Metabolite, 0, len(m.metOrder))
	for _, id := range m.metOrder {
		out = append(out, *m.metabolites[id])
	}

	return out
}

// NumReactions returns the reaction count.
func (m *Model) NumReactions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.rxnOrder)
}

// NumMetabolites returns the metabolite count.
func (m *Model) NumMetabolites() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.metOrder)
}

// IsExchange reports whether the reaction is an exchange reaction, either by
// explicit RoleExchange tag or by the exchange naming convention.
func (m *Model) IsExchange(id ReactionID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reactions[id]

	return ok && m.isExchangeLocked(r)
}

// Exchanges returns the exchange reaction IDs in insertion order.
func (m *Model) Exchanges() []ReactionID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ReactionID
	for _, id := range m.rxnOrder {
		if m.isExchangeLocked(m.reactions[id]) {
			out = append(out, id)
		}
	}

	return out
}

// Objective returns the non-zero objective coefficients.
func (m *Model) Objective() map[ReactionID]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[ReactionID]float64)
	for _, id := range m.rxnOrder {
		if c := m.reactions[id].Objective; c != 0 {
			out[id] = c
		}
	}

	return out
}

func (m *Model) isExchangeLocked(r *Reaction) bool {
	if r.Role == RoleExchange {
		return true
	}

	return r.Role == RoleInternal && m.exchangePrefix != "" && strings.HasPrefix(string(r.ID), m.exchangePrefix)
}

func copyReaction(r *Reaction) Reaction {
	cp := *r
	cp.Stoichiometry = make(map[MetaboliteID]float64, len(r.Stoichiometry))
	for k, v := range r.Stoichiometry {
		cp.Stoichiometry[k] = v
	}

	return cp
}

func sortedMetabolites(s map[MetaboliteID]float64) []MetaboliteID {
	keys := make([]MetaboliteID, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return keys
}
