// SPDX-License-Identifier: MIT

package media_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvflux/core"
	"github.com/katalvlaran/lvflux/media"
)

// openModel returns a model holding every exchange of every built-in
// profile, fully open, plus one unlisted exchange and one internal reaction.
func openModel(t *testing.T) *core.Model {
	t.Helper()
	reg := media.DefaultRegistry()
	m := core.NewModel()
	seen := map[core.ReactionID]bool{}
	for _, id := range reg.IDs() {
		p, err := reg.Get(id)
		require.NoError(t, err)
		for _, rid := range p.Components() {
			if seen[rid] {
				continue
			}
			seen[rid] = true
			met := core.MetaboliteID(strings.TrimPrefix(string(rid), "EX_"))
			require.NoError(t, m.AddReaction(core.Reaction{ID: rid, Lower: -1000, Upper: 1000,
				Stoichiometry: map[core.MetaboliteID]float64{met: -1}}))
		}
	}
	require.NoError(t, m.AddReaction(core.Reaction{ID: "EX_other_e", Lower: -1000, Upper: 1000,
		Stoichiometry: map[core.MetaboliteID]float64{"other_e": -1}}))
	require.NoError(t, m.AddReaction(core.Reaction{ID: "INT", Lower: -1000, Upper: 1000,
		Stoichiometry: map[core.MetaboliteID]float64{"other_e": -1, "glc_D_e": 1}}))

	return m
}

func TestDefaultRegistryContents(t *testing.T) {
	reg := media.DefaultRegistry()
	require.Equal(t, []media.ProfileID{media.DM13, media.DM16, media.DM25, media.DM57, media.SUN2019}, reg.IDs())

	sizes := map[media.ProfileID]int{media.DM57: 52, media.DM25: 25, media.DM16: 19, media.DM13: 16, media.SUN2019: 44}
	for id, n := range sizes {
		p, err := reg.Get(id)
		require.NoError(t, err)
		require.Len(t, p.Components(), n, id)
		require.Equal(t, -10.0, p.Bounds["EX_glc_D_e"], id)
		require.Equal(t, media.DefaultVersion, p.Version)
	}

	// The later of two SUN2019 potassium entries is the one kept.
	sun, _ := reg.Get(media.SUN2019)
	require.Equal(t, -0.48, sun.Bounds["EX_k_e"])

	// Each reduced DM formulation is a subset of its predecessor.
	chain := []media.ProfileID{media.DM57, media.DM25, media.DM16, media.DM13}
	for i := 1; i < len(chain); i++ {
		big, _ := reg.Get(chain[i-1])
		small, _ := reg.Get(chain[i])
		for rid, v := range small.Bounds {
			require.Contains(t, big.Bounds, rid, "%s ⊄ %s", chain[i], chain[i-1])
			require.Equal(t, big.Bounds[rid], v)
		}
	}
}

func TestGetReturnsCopy(t *testing.T) {
	reg := media.DefaultRegistry()
	p, err := reg.Get(media.DM13)
	require.NoError(t, err)
	p.Bounds["EX_glc_D_e"] = 0

	again, _ := reg.Get(media.DM13)
	require.Equal(t, -10.0, again.Bounds["EX_glc_D_e"])

	_, err = reg.Get("DM99")
	require.ErrorIs(t, err, media.ErrUnknownProfile)
}

func TestNewRegistryValidation(t *testing.T) {
	_, err := media.NewRegistry(media.Profile{ID: "A"}, media.Profile{ID: "A"})
	require.ErrorIs(t, err, media.ErrDuplicateProfile)

	_, err = media.NewRegistry(media.Profile{})
	require.ErrorIs(t, err, media.ErrInvalidProfile)

	_, err = media.NewRegistry(media.Profile{ID: "A", Bounds: map[core.ReactionID]float64{"EX_a": math.NaN()}})
	require.ErrorIs(t, err, media.ErrInvalidProfile)

	reg, err := media.NewRegistry(media.Profile{ID: "A"})
	require.NoError(t, err)
	id, err := reg.Parse("A")
	require.NoError(t, err)
	require.Equal(t, media.ProfileID("A"), id)
	_, err = reg.Parse("B")
	require.ErrorIs(t, err, media.ErrUnknownProfile)
}

func TestApplyClosedWorldReset(t *testing.T) {
	reg := media.DefaultRegistry()
	m := openModel(t)

	applied, err := reg.Apply(m, media.DM13)
	require.NoError(t, err)
	require.Equal(t, media.DM13, applied.Profile)
	require.Equal(t, media.DefaultVersion, applied.Version)
	require.Len(t, applied.Bounds, 16)

	for _, rid := range m.Exchanges() {
		b, err := m.Bounds(rid)
		require.NoError(t, err)
		if want, ok := applied.Bounds[rid]; ok {
			require.Equal(t, want, b.Lower, rid)
			continue
		}
		require.Equal(t, 0.0, b.Lower, "exchange %s outside the profile must be closed", rid)
		require.Equal(t, 1000.0, b.Upper, "secretion stays open on %s", rid)
	}

	// Internal reactions are never touched.
	b, _ := m.Bounds("INT")
	require.Equal(t, core.Bounds{Lower: -1000, Upper: 1000}, b)
}

func TestApplyIsIdempotentAndHistoryFree(t *testing.T) {
	reg := media.DefaultRegistry()

	direct := openModel(t)
	_, err := reg.Apply(direct, media.DM16)
	require.NoError(t, err)
	want := direct.Snapshot()

	// Same profile twice.
	twice := openModel(t)
	_, err = reg.Apply(twice, media.DM16)
	require.NoError(t, err)
	_, err = reg.Apply(twice, media.DM16)
	require.NoError(t, err)
	require.Equal(t, want, twice.Snapshot())

	// After a different profile.
	switched := openModel(t)
	_, err = reg.Apply(switched, media.DM57)
	require.NoError(t, err)
	_, err = reg.Apply(switched, media.DM16)
	require.NoError(t, err)
	require.Equal(t, want, switched.Snapshot())
}

func TestApplyUndo(t *testing.T) {
	reg := media.DefaultRegistry()
	m := openModel(t)
	before := m.Snapshot()

	applied, err := reg.Apply(m, media.SUN2019)
	require.NoError(t, err)
	require.NotEqual(t, before, m.Snapshot())
	applied.Undo(m)
	require.Equal(t, before, m.Snapshot())
}

func TestApplyFailsBeforeMutation(t *testing.T) {
	reg := media.DefaultRegistry()

	m := openModel(t)
	before := m.Snapshot()
	_, err := reg.Apply(m, "DM99")
	require.ErrorIs(t, err, media.ErrUnknownProfile)
	require.Equal(t, before, m.Snapshot())

	// A model without EX_hco3_e cannot take any DM profile.
	small := core.NewModel()
	require.NoError(t, small.AddReaction(core.Reaction{ID: "EX_glc_D_e", Lower: -5, Upper: 1000,
		Stoichiometry: map[core.MetaboliteID]float64{"glc_D_e": -1}}))
	before = small.Snapshot()
	_, err = reg.Apply(small, media.DM13)
	require.ErrorIs(t, err, media.ErrMissingExchange)
	require.Equal(t, before, small.Snapshot())
}

func TestApplyLiftsNegativeUpperBounds(t *testing.T) {
	reg, err := media.NewRegistry(media.Profile{ID: "P", Bounds: map[core.ReactionID]float64{"EX_a_e": -2}})
	require.NoError(t, err)
	m := core.NewModel()
	require.NoError(t, m.AddReaction(core.Reaction{ID: "EX_a_e", Lower: -5, Upper: 1000, Stoichiometry: map[core.MetaboliteID]float64{"a_e": -1}}))
	require.NoError(t, m.AddReaction(core.Reaction{ID: "EX_b_e", Lower: -5, Upper: -1, Stoichiometry: map[core.MetaboliteID]float64{"b_e": -1}}))

	_, err = reg.Apply(m, "P")
	require.NoError(t, err)
	b, _ := m.Bounds("EX_b_e")
	require.Equal(t, core.Bounds{Lower: 0, Upper: 0}, b)
	a, _ := m.Bounds("EX_a_e")
	require.Equal(t, core.Bounds{Lower: -2, Upper: 1000}, a)
}

func TestLoadRegistry(t *testing.T) {
	doc := `
version: v1
profiles:
  - id: MIN
    description: glucose only
    bounds:
      EX_glc_D_e: -10
  - id: RICH
    version: v2
    bounds:
      EX_glc_D_e: -10
      EX_ala_L_e: -1.5
`
	reg, err := media.LoadRegistry(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, []media.ProfileID{"MIN", "RICH"}, reg.IDs())

	minimal, _ := reg.Get("MIN")
	require.Equal(t, "v1", minimal.Version)
	require.Equal(t, "glucose only", minimal.Description)
	rich, _ := reg.Get("RICH")
	require.Equal(t, "v2", rich.Version)
	require.Equal(t, -1.5, rich.Bounds["EX_ala_L_e"])

	_, err = media.LoadRegistry(strings.NewReader("profiles:\n  - id: X\n    bogus: 1\n"))
	require.Error(t, err)
	_, err = media.LoadRegistry(strings.NewReader(""))
	require.Error(t, err)
	_, err = media.LoadRegistry(strings.NewReader("profiles:\n  - id: X\n  - id: X\n"))
	require.ErrorIs(t, err, media.ErrDuplicateProfile)
}

func TestEncodeThenLoad(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, media.DefaultRegistry().Encode(&buf))

	reg, err := media.LoadRegistry(&buf)
	require.NoError(t, err)
	dm57, err := reg.Get(media.DM57)
	require.NoError(t, err)
	require.Equal(t, -0.238239650186896, dm57.Bounds["EX_4abut_e"])
}
