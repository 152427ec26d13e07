// SPDX-License-Identifier: MIT
//
// File: methods_bounds.go
// Role: Bound store: reads, writes, snapshots and scoped perturbations.
// Concurrency:
//   - Bound reads/writes take mu.
//   - Perturb additionally holds muScope for the whole scope; scopes never nest.

package core

import "fmt"

// Bounds returns the current (lower, upper) of a reaction.
//
// Errors: ErrReactionNotFound.
func (m *Model) Bounds(id ReactionID) (Bounds, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reactions[id]
	if !ok {
		return Bounds{}, fmt.Errorf("%w: %q", ErrReactionNotFound, id)
	}

	return Bounds{Lower: r.Lower, Upper: r.Upper}, nil
}

// SetBounds overwrites both bounds of a reaction.
//
// Errors: ErrReactionNotFound, BoundsError.
func (m *Model) SetBounds(id ReactionID, lower, upper float64) error {
	if err := checkBounds(id, lower, upper); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reactions[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrReactionNotFound, id)
	}
	r.Lower, r.Upper = lower, upper

	return nil
}

// SetLowerBound overwrites only the lower bound.
// A lower bound above the current upper bound is rejected.
func (m *Model) SetLowerBound(id ReactionID, lower float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reactions[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrReactionNotFound, id)
	}
	if err := checkBounds(id, lower, r.Upper); err != nil {
		return err
	}
	r.Lower = lower

	return nil
}

// SetUpperBound overwrites only the upper bound.
func (m *Model) SetUpperBound(id ReactionID, upper float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reactions[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrReactionNotFound, id)
	}
	if err := checkBounds(id, r.Lower, upper); err != nil {
		return err
	}
	r.Upper = upper

	return nil
}

// ApplyBounds validates every entry first, then writes all of them under a
// single lock. Either every bound is written or none is.
//
// Errors: ErrReactionNotFound, BoundsError.
func (m *Model) ApplyBounds(set BoundSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.applyLocked(set)
}

// Snapshot captures the bounds of every reaction.
// Complexity: O(R).
func (m *Model) Snapshot() BoundSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := make(BoundSnapshot, len(m.reactions))
	for id, r := range m.reactions {
		snap[id] = Bounds{Lower: r.Lower, Upper: r.Upper}
	}

	return snap
}

// SnapshotOf captures the bounds of the listed reactions only.
//
// Errors: ErrReactionNotFound.
func (m *Model) SnapshotOf(ids []ReactionID) (BoundSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := make(BoundSnapshot, len(ids))
	for _, id := range ids {
		r, ok := m.reactions[id]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrReactionNotFound, id)
		}
		snap[id] = Bounds{Lower: r.Lower, Upper: r.Upper}
	}

	return snap, nil
}

// Restore writes back a snapshot. Reactions removed since the snapshot was
// taken are ignored; reactions added since keep their current bounds.
func (m *Model) Restore(snap BoundSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, b := range snap {
		if r, ok := m.reactions[id]; ok {
			r.Lower, r.Upper = b.Lower, b.Upper
		}
	}
}

// Perturb runs fn with the given bound overrides in effect and restores the
// previous values of exactly those reactions afterwards, whether fn returns
// normally, returns an error, or panics.
//
// Implementation:
//   - Stage 1: Acquire muScope so scopes on the same model never interleave.
//   - Stage 2: Validate and capture old bounds, then write the overrides.
//   - Stage 3: Run fn; a deferred restore puts the old bounds back.
//
// fn must not call Perturb on the same model (the scope mutex is not reentrant).
//
// Errors: ErrReactionNotFound, BoundsError (before any mutation), or fn's error.
func (m *Model) Perturb(overrides BoundSnapshot, fn func() error) error {
	m.muScope.Lock()
	defer m.muScope.Unlock()

	m.mu.Lock()
	saved := make(BoundSnapshot, len(overrides))
	for id := range overrides {
		r, ok := m.reactions[id]
		if !ok {
			m.mu.Unlock()
			return fmt.Errorf("%w: %q", ErrReactionNotFound, id)
		}
		saved[id] = Bounds{Lower: r.Lower, Upper: r.Upper}
	}
	if err := m.applyLocked(overrides); err != nil {
		m.mu.Unlock()
		return err
	}
	m.mu.Unlock()

	defer m.Restore(saved)

	return fn()
}

// applyLocked validates then writes a bound set; caller holds mu.
func (m *Model) applyLocked(set BoundSnapshot) error {
	for id, b := range set {
		if _, ok := m.reactions[id]; !ok {
			return fmt.Errorf("%w: %q", ErrReactionNotFound, id)
		}
		if err := checkBounds(id, b.Lower, b.Upper); err != nil {
			return err
		}
	}
	for id, b := range set {
		r := m.reactions[id]
		r.Lower, r.Upper = b.Lower, b.Upper
	}

	return nil
}

