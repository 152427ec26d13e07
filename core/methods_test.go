// SPDX-License-Identifier: MIT
// Package core_test verifies core.Model catalog and bound-store contracts.

package core_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvflux/core"
	"github.com/katalvlaran/lvflux/core/coretest"
)

func TestModel_AddReactionValidation(t *testing.T) {
	m := core.NewModel()

	err := m.AddReaction(core.Reaction{})
	require.ErrorIs(t, err, core.ErrEmptyID)

	err = m.AddReaction(core.Reaction{ID: "R", Lower: 5, Upper: 1})
	require.ErrorIs(t, err, core.ErrInvalidBounds)
	var be core.BoundsError
	require.True(t, errors.As(err, &be))
	require.Equal(t, core.ReactionID("R"), be.Reaction)

	require.NoError(t, m.AddReaction(core.Reaction{ID: "R", Upper: 1}))
	require.ErrorIs(t, m.AddReaction(core.Reaction{ID: "R"}), core.ErrDuplicateReaction)
	require.Equal(t, 1, m.NumReactions())
}

func TestModel_ImplicitMetabolitesAndOrder(t *testing.T) {
	m := coretest.Toy()

	require.Equal(t, 11, m.NumReactions())
	require.Equal(t, 9, m.NumMetabolites())

	var ids []core.MetaboliteID
	for _, met := range m.Metabolites() {
		ids = append(ids, met.ID)
	}
	want := []core.MetaboliteID{"glc_e", "pyr_e", "nh4_e", "h2o_e", "lac_e", "A", "B", "C", "D"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("metabolite order mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, coretest.ExGlc, m.ReactionIDs()[0])
}

func TestModel_ExchangeDetection(t *testing.T) {
	m := coretest.Toy()
	require.Equal(t, coretest.Exchanges(), m.Exchanges())
	require.True(t, m.IsExchange(coretest.ExGlc))
	require.False(t, m.IsExchange(coretest.GLCt))
	require.False(t, m.IsExchange("missing"))

	r, err := m.Reaction(coretest.ExGlc)
	require.NoError(t, err)
	require.Equal(t, core.RoleExchange, r.Role)

	// Explicit tags win over naming when the prefix is disabled.
	n := core.NewModel(core.WithExchangePrefix(""))
	require.NoError(t, n.AddReaction(core.Reaction{ID: "EX_a", Upper: 1, Stoichiometry: map[core.MetaboliteID]float64{"a": -1}}))
	require.NoError(t, n.AddReaction(core.Reaction{ID: "uptake_b", Role: core.RoleExchange, Upper: 1, Stoichiometry: map[core.MetaboliteID]float64{"b": -1}}))
	require.Equal(t, []core.ReactionID{"uptake_b"}, n.Exchanges())
}

func TestModel_ReactionReturnsCopy(t *testing.T) {
	m := coretest.Toy()
	r, err := m.Reaction(coretest.GLCt)
	require.NoError(t, err)
	r.Stoichiometry["A"] = 42
	r.Lower = -99

	again, err := m.Reaction(coretest.GLCt)
	require.NoError(t, err)
	require.Equal(t, 1.0, again.Stoichiometry["A"])
	require.Equal(t, 0.0, again.Lower)

	_, err = m.Reaction("nope")
	require.ErrorIs(t, err, core.ErrReactionNotFound)
}

func TestModel_SetBounds(t *testing.T) {
	m := coretest.Toy()

	require.NoError(t, m.SetBounds(coretest.ExGlc, -5, 5))
	b, err := m.Bounds(coretest.ExGlc)
	require.NoError(t, err)
	require.Equal(t, core.Bounds{Lower: -5, Upper: 5}, b)

	require.ErrorIs(t, m.SetLowerBound(coretest.ExGlc, 6), core.ErrInvalidBounds)
	require.ErrorIs(t, m.SetUpperBound(coretest.ExGlc, -6), core.ErrInvalidBounds)
	require.ErrorIs(t, m.SetBounds("nope", 0, 1), core.ErrReactionNotFound)

	require.NoError(t, m.SetLowerBound(coretest.ExGlc, 0))
	require.NoError(t, m.SetUpperBound(coretest.ExGlc, 0))
	b, _ = m.Bounds(coretest.ExGlc)
	require.Equal(t, core.Bounds{}, b)
}

func TestModel_ApplyBoundsAllOrNothing(t *testing.T) {
	m := coretest.Toy()
	before := m.Snapshot()

	err := m.ApplyBounds(core.BoundSnapshot{
		coretest.ExGlc: {Lower: -1, Upper: 1},
		"missing":      {Lower: 0, Upper: 1},
	})
	require.ErrorIs(t, err, core.ErrReactionNotFound)
	require.Equal(t, before, m.Snapshot())
}

func TestModel_SnapshotRestore(t *testing.T) {
	m := coretest.Toy()
	snap := m.Snapshot()

	require.NoError(t, m.SetBounds(coretest.ExGlc, 0, 0))
	require.NoError(t, m.SetBounds(coretest.R2, 0, 0))
	m.Restore(snap)
	require.Equal(t, snap, m.Snapshot())

	part, err := m.SnapshotOf([]core.ReactionID{coretest.ExLac})
	require.NoError(t, err)
	require.Len(t, part, 1)
	_, err = m.SnapshotOf([]core.ReactionID{"nope"})
	require.ErrorIs(t, err, core.ErrReactionNotFound)
}

func TestModel_PerturbRestores(t *testing.T) {
	m := coretest.Toy()
	before := m.Snapshot()

	// Normal return: overrides visible inside, gone outside.
	err := m.Perturb(core.BoundSnapshot{coretest.ExGlc: {Lower: 0, Upper: 1000}}, func() error {
		b, err := m.Bounds(coretest.ExGlc)
		require.NoError(t, err)
		require.Equal(t, 0.0, b.Lower)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, before, m.Snapshot())

	// Error return propagates and still restores.
	boom := errors.New("boom")
	err = m.Perturb(core.BoundSnapshot{coretest.ExGlc: {Lower: 0, Upper: 0}}, func() error { return boom })
	require.ErrorIs(t, err, boom)
	require.Equal(t, before, m.Snapshot())

	// Panic inside the scope restores before unwinding.
	require.Panics(t, func() {
		_ = m.Perturb(core.BoundSnapshot{coretest.ExGlc: {Lower: 0, Upper: 0}}, func() error { panic("solver crashed") })
	})
	require.Equal(t, before, m.Snapshot())

	// Invalid overrides fail before mutation and never call fn.
	called := false
	err = m.Perturb(core.BoundSnapshot{coretest.ExGlc: {Lower: 1, Upper: 0}}, func() error { called = true; return nil })
	require.ErrorIs(t, err, core.ErrInvalidBounds)
	require.False(t, called)
	require.Equal(t, before, m.Snapshot())
}

func TestModel_SetObjective(t *testing.T) {
	m := coretest.Toy()
	require.Equal(t, map[core.ReactionID]float64{coretest.Biomass: 1}, m.Objective())

	require.NoError(t, m.SetObjective(map[core.ReactionID]float64{coretest.ExLac: 1}))
	require.Equal(t, map[core.ReactionID]float64{coretest.ExLac: 1}, m.Objective())

	require.ErrorIs(t, m.SetObjective(map[core.ReactionID]float64{"nope": 1}), core.ErrReactionNotFound)
	require.Equal(t, map[core.ReactionID]float64{coretest.ExLac: 1}, m.Objective())
}

func TestModel_RemoveReactionsPrunesOrphans(t *testing.T) {
	m := coretest.Toy()

	_, err := m.RemoveReactions([]core.ReactionID{coretest.Dead, "nope"}, true)
	require.ErrorIs(t, err, core.ErrReactionNotFound)
	require.True(t, m.HasReaction(coretest.Dead))

	pruned, err := m.RemoveReactions([]core.ReactionID{coretest.Dead}, true)
	require.NoError(t, err)
	require.Equal(t, []core.MetaboliteID{"C", "D"}, pruned)
	require.False(t, m.HasReaction(coretest.Dead))
	require.False(t, m.HasMetabolite("C"))
	require.True(t, m.HasMetabolite("A"))

	pruned, err = m.RemoveReactions([]core.ReactionID{coretest.PYRt}, false)
	require.NoError(t, err)
	require.Nil(t, pruned)
	require.True(t, m.HasMetabolite("pyr_e"))
}

func TestModel_AddBoundary(t *testing.T) {
	m := coretest.Toy()

	id, err := m.AddBoundary("A", core.RoleSink)
	require.NoError(t, err)
	require.Equal(t, core.ReactionID("SK_A"), id)
	b, _ := m.Bounds(id)
	require.Equal(t, core.Bounds{Lower: -core.DefaultFluxLimit, Upper: core.DefaultFluxLimit}, b)
	require.False(t, m.IsExchange(id))

	id, err = m.AddBoundary("B", core.RoleDemand)
	require.NoError(t, err)
	require.Equal(t, core.ReactionID("DM_B"), id)
	b, _ = m.Bounds(id)
	require.Equal(t, 0.0, b.Lower)

	id, err = m.AddBoundary("C", core.RoleExchange)
	require.NoError(t, err)
	require.Equal(t, core.ReactionID("EX_C"), id)
	require.True(t, m.IsExchange(id))

	_, err = m.AddBoundary("zz", core.RoleSink)
	require.ErrorIs(t, err, core.ErrMetaboliteNotFound)
	_, err = m.AddBoundary("A", core.RoleSink)
	require.ErrorIs(t, err, core.ErrDuplicateReaction)
	_, err = m.AddBoundary("A", core.RoleInternal)
	require.Error(t, err)
}

func TestModel_CloneIsDeep(t *testing.T) {
	m := coretest.Toy()
	c := m.Clone()

	require.NoError(t, c.SetBounds(coretest.ExGlc, 0, 0))
	_, err := c.RemoveReactions([]core.ReactionID{coretest.Dead}, true)
	require.NoError(t, err)

	b, _ := m.Bounds(coretest.ExGlc)
	require.Equal(t, -10.0, b.Lower)
	require.True(t, m.HasReaction(coretest.Dead))
	require.Equal(t, m.Name(), c.Name())

	cw, err := m.CloneWithBounds(core.BoundSnapshot{coretest.ExLac: {Lower: 1, Upper: 2}})
	require.NoError(t, err)
	b, _ = cw.Bounds(coretest.ExLac)
	require.Equal(t, core.Bounds{Lower: 1, Upper: 2}, b)
}

func TestParseRole(t *testing.T) {
	for _, r := range []core.Role{core.RoleInternal, core.RoleExchange, core.RoleSink, core.RoleDemand} {
		got, err := core.ParseRole(r.String())
		require.NoError(t, err)
		require.Equal(t, r, got)
	}
	_, err := core.ParseRole("bogus")
	require.Error(t, err)
}
