// SPDX-License-Identifier: MIT

package modelio_test

import (
	"bytes"
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvflux/core"
	"github.com/katalvlaran/lvflux/core/coretest"
	"github.com/katalvlaran/lvflux/fba"
	"github.com/katalvlaran/lvflux/modelio"
	"github.com/katalvlaran/lvflux/solver"
)

func TestWriteThenReadPreservesModel(t *testing.T) {
	src := coretest.Toy()
	require.NoError(t, src.SetBounds(coretest.Biomass, 0, math.Inf(1)))

	var buf bytes.Buffer
	require.NoError(t, modelio.Write(&buf, src))
	require.Contains(t, buf.String(), ".inf")

	got, err := modelio.Read(&buf)
	require.NoError(t, err)
	require.Equal(t, "toy", got.Name())
	require.Empty(t, cmp.Diff(src.Reactions(), got.Reactions()))
	require.Empty(t, cmp.Diff(src.Metabolites(), got.Metabolites()))
	require.Equal(t, src.Objective(), got.Objective())
	require.Equal(t, src.Exchanges(), got.Exchanges())

	sol, err := fba.New(solver.NewSimplex()).Solve(context.Background(), got, coretest.Biomass, fba.Maximize)
	require.NoError(t, err)
	require.InDelta(t, 10, sol.Objective(), 1e-6)
}

func TestWriteThenReadKeepsDisabledPrefix(t *testing.T) {
	src := core.NewModel(core.WithName("noprefix"), core.WithExchangePrefix(""))
	require.NoError(t, src.AddReaction(core.Reaction{
		ID: "EX_internal_like", Lower: 0, Upper: 10,
		Stoichiometry: map[core.MetaboliteID]float64{"a_c": -1},
	}))
	require.Empty(t, src.Exchanges())

	var buf bytes.Buffer
	require.NoError(t, modelio.Write(&buf, src))
	require.Contains(t, buf.String(), `exchange_prefix: ""`)

	got, err := modelio.Read(&buf)
	require.NoError(t, err)
	require.Equal(t, "", got.ExchangePrefix())
	require.Empty(t, got.Exchanges())
	require.False(t, got.IsExchange("EX_internal_like"))
}

func TestWriteOmitsDefaultPrefix(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, modelio.Write(&buf, coretest.Toy()))
	require.NotContains(t, buf.String(), "exchange_prefix")

	got, err := modelio.Read(&buf)
	require.NoError(t, err)
	require.Equal(t, core.DefaultExchangePrefix, got.ExchangePrefix())
}

func TestReadDocument(t *testing.T) {
	doc := `
name: tiny
exchange_prefix: "R_EX_"
metabolites:
  - id: a_c
    name: A
    compartment: c
reactions:
  - id: R_EX_a
    lower: -5
    upper: 5
    stoichiometry: {a_c: -1}
  - id: SK_a_c
    lower: -1
    upper: .inf
    role: sink
    stoichiometry: {a_c: -1}
`
	m, err := modelio.Read(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, "R_EX_", m.ExchangePrefix())
	require.True(t, m.IsExchange("R_EX_a"))
	r, err := m.Reaction("SK_a_c")
	require.NoError(t, err)
	require.Equal(t, core.RoleSink, r.Role)
	require.True(t, math.IsInf(r.Upper, 1))
	mets := m.Metabolites()
	require.Len(t, mets, 1)
	require.Equal(t, "c", mets[0].Compartment)
}

func TestReadErrors(t *testing.T) {
	_, err := modelio.Read(strings.NewReader(""))
	require.ErrorIs(t, err, modelio.ErrEmptyDocument)

	_, err = modelio.Read(strings.NewReader("reactions:\n  - id: R\n    bogus: 1\n"))
	require.Error(t, err)

	_, err = modelio.Read(strings.NewReader("reactions:\n  - id: R\n    role: pump\n"))
	require.Error(t, err)

	_, err = modelio.Read(strings.NewReader("reactions:\n  - id: R\n    lower: 2\n    upper: 1\n"))
	require.ErrorIs(t, err, core.ErrInvalidBounds)

	_, err = modelio.Read(strings.NewReader("reactions:\n  - id: R\n  - id: R\n"))
	require.ErrorIs(t, err, core.ErrDuplicateReaction)
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toy.yaml")
	require.NoError(t, modelio.WriteFile(path, coretest.Toy()))
	m, err := modelio.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 11, m.NumReactions())

	_, err = modelio.ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
