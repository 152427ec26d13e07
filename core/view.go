// SPDX-License-Identifier: MIT
//
// File: view.go
// Role: Immutable Network snapshots for concurrent solving.
// Policy:
//   - A Network never changes after construction; WithBounds/WithFixed return
//     copies that share the read-only stoichiometry and own private bound vectors.

package core

import "fmt"

// Entry is one non-zero stoichiometric coefficient of a reaction column.
type Entry struct {
	Row  int
	Coef float64
}

// Network is a frozen, index-addressed view of a Model.
//
// Reactions map to columns (0..NumReactions-1) in model insertion order,
// metabolites map to rows (0..NumMetabolites-1) in model insertion order.
// Lower, Upper and Objective are per-column vectors.
type Network struct {
	reactions   []ReactionID
	metabolites []MetaboliteID
	index       map[ReactionID]int
	columns     [][]Entry

	lower     []float64
	upper     []float64
	objective []float64
}

// Network freezes the current model state.
// Complexity: O(R·k + M).
func (m *Model) Network() *Network {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rowOf := make(map[MetaboliteID]int, len(m.metOrder))
	for i, id := range m.metOrder {
		rowOf[id] = i
	}

	n := &Network{
		reactions:   append([]ReactionID(nil), m.rxnOrder...),
		metabolites: append([]MetaboliteID(nil), m.metOrder...),
		index:       make(map[ReactionID]int, len(m.rxnOrder)),
		columns:     make([][]Entry, len(m.rxnOrder)),
		lower:       make([]float64, len(m.rxnOrder)),
		upper:       make([]float64, len(m.rxnOrder)),
		objective:   make([]float64, len(m.rxnOrder)),
	}
	for j, id := range m.rxnOrder {
		r := m.reactions[id]
		n.index[id] = j
		n.lower[j], n.upper[j], n.objective[j] = r.Lower, r.Upper, r.Objective
		col := make([]Entry, 0, len(r.Stoichiometry))
		for _, met := range sortedMetabolites(r.Stoichiometry) {
			col = append(col, Entry{Row: rowOf[met], Coef: r.Stoichiometry[met]})
		}
		n.columns[j] = col
	}

	return n
}

// NumReactions returns the column count.
func (n *Network) NumReactions() int { return len(n.reactions) }

// NumMetabolites returns the row count.
func (n *Network) NumMetabolites() int { return len(n.metabolites) }

// Reactions returns the ordered reaction IDs. The slice must not be modified.
func (n *Network) Reactions() []ReactionID { return n.reactions }

// Metabolites returns the ordered metabolite IDs. The slice must not be modified.
func (n *Network) Metabolites() []MetaboliteID { return n.metabolites }

// Index returns the column of a reaction.
func (n *Network) Index(id ReactionID) (int, bool) {
	j, ok := n.index[id]

	return j, ok
}

// Column returns the sparse stoichiometry of column j. Read only.
func (n *Network) Column(j int) []Entry { return n.columns[j] }

// Lower returns the lower bound vector. Read only.
func (n *Network) Lower() []float64 { return n.lower }

// Upper returns the upper bound vector. Read only.
func (n *Network) Upper() []float64 { return n.upper }

// Objective returns the objective coefficient vector. Read only.
func (n *Network) Objective() []float64 { return n.objective }

// Bounds returns the bounds of a reaction in this snapshot.
func (n *Network) Bounds(id ReactionID) (Bounds, error) {
	j, ok := n.index[id]
	if !ok {
		return Bounds{}, fmt.Errorf("%w: %q", ErrReactionNotFound, id)
	}

	return Bounds{Lower: n.lower[j], Upper: n.upper[j]}, nil
}

// WithBounds returns a copy of the snapshot with the given bound overrides.
//
// Errors: ErrReactionNotFound, BoundsError.
// Complexity: O(R) for the private bound vectors.
func (n *Network) WithBounds(set BoundSnapshot) (*Network, error) {
	for id, b := range set {
		if _, ok := n.index[id]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrReactionNotFound, id)
		}
		if err := checkBounds(id, b.Lower, b.Upper); err != nil {
			return nil, err
		}
	}
	cp := n.shallow()
	cp.lower = append([]float64(nil), n.lower...)
	cp.upper = append([]float64(nil), n.upper...)
	for id, b := range set {
		j := n.index[id]
		cp.lower[j], cp.upper[j] = b.Lower, b.Upper
	}

	return cp, nil
}

// WithFixed pins a reaction's flux to value.
func (n *Network) WithFixed(id ReactionID, value float64) (*Network, error) {
	return n.WithBounds(BoundSnapshot{id: {Lower: value, Upper: value}})
}

// WithObjective returns a copy whose objective is exactly the given coefficients.
//
// Errors: ErrReactionNotFound.
func (n *Network) WithObjective(coefs map[ReactionID]float64) (*Network, error) {
	obj := make([]float64, len(n.reactions))
	for id, c := range coefs {
		j, ok := n.index[id]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrReactionNotFound, id)
		}
		obj[j] = c
	}
	cp := n.shallow()
	cp.objective = obj

	return cp, nil
}

func (n *Network) shallow() *Network {
	cp := *n

	return &cp
}
