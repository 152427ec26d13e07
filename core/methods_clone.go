// SPDX-License-Identifier: MIT
//
// File: methods_clone.go
// Role: Deep copies of a model.
// Determinism:
//   - Clones keep insertion order of reactions and metabolites.
// Concurrency:
//   - Read lock on the source only; the clone starts with fresh mutexes.

package core

// Clone returns a deep copy of the Model: options, catalogs, bounds and
// objective coefficients. Mutating the clone never affects the source.
//
// Complexity: O(R·k + M).
func (m *Model) Clone() *Model {
	m.mu.RLock()
	defer m.mu.RUnlock()

	clone := NewModel(WithName(m.name), WithExchangePrefix(m.exchangePrefix))
	clone.metOrder = append([]MetaboliteID(nil), m.metOrder...)
	for _, id := range m.metOrder {
		met := *m.metabolites[id]
		clone.metabolites[id] = &met
	}
	clone.rxnOrder = append([]ReactionID(nil), m.rxnOrder...)
	for _, id := range m.rxnOrder {
		r := copyReaction(m.reactions[id])
		clone.reactions[id] = &r
	}

	return clone
}

// CloneWithBounds returns a deep copy whose bounds are overridden by set.
//
// Errors: ErrReactionNotFound, BoundsError.
func (m *Model) CloneWithBounds(set BoundSnapshot) (*Model, error) {
	clone := m.Clone()
	if err := clone.ApplyBounds(set); err != nil {
		return nil, err
	}

	return clone, nil
}
