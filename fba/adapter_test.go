// SPDX-License-Identifier: MIT

package fba_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/lvflux/core"
	"github.com/katalvlaran/lvflux/core/coretest"
	"github.com/katalvlaran/lvflux/fba"
	"github.com/katalvlaran/lvflux/solver"
)

const tol = 1e-6

type AdapterSuite struct {
	suite.Suite
	ctx context.Context
	a   *fba.Adapter
	m   *core.Model
}

func (s *AdapterSuite) SetupTest() {
	s.ctx = context.Background()
	s.a = fba.New(solver.NewSimplex())
	s.m = coretest.Toy()
}

func (s *AdapterSuite) TestMaximizeBiomass() {
	sol, err := s.a.Solve(s.ctx, s.m, coretest.Biomass, fba.Maximize)
	s.Require().NoError(err)
	s.Require().True(sol.Optimal())
	s.Require().InDelta(10, sol.Objective(), tol)
	s.Require().InDelta(10, sol.Flux(coretest.Biomass), tol)
	s.Require().InDelta(-10, sol.Flux(coretest.ExGlc), tol)
	s.Require().InDelta(-1, sol.Flux(coretest.ExNH4), tol)
	s.Require().InDelta(0, sol.Flux(coretest.Dead), tol)
}

func (s *AdapterSuite) TestSolveRewritesObjective() {
	sol, err := s.a.Solve(s.ctx, s.m, coretest.ExLac, fba.Maximize)
	s.Require().NoError(err)
	s.Require().InDelta(10, sol.Objective(), tol)
	s.Require().Equal(map[core.ReactionID]float64{coretest.ExLac: 1}, s.m.Objective())

	sol, err = s.a.Solve(s.ctx, s.m, coretest.ExGlc, fba.Minimize)
	s.Require().NoError(err)
	s.Require().InDelta(-10, sol.Objective(), tol)
}

func (s *AdapterSuite) TestUnknownObjectiveLeavesModelUntouched() {
	before := s.m.Objective()
	_, err := s.a.Solve(s.ctx, s.m, "nope", fba.Maximize)
	s.Require().ErrorIs(err, fba.ErrUnknownReaction)
	s.Require().ErrorIs(err, core.ErrReactionNotFound)
	s.Require().Equal(before, s.m.Objective())
}

func (s *AdapterSuite) TestInfeasibleIsData() {
	// Force biomass to 20 while glucose allows 10.
	s.Require().NoError(s.m.SetBounds(coretest.Biomass, 20, 1000))
	sol, err := s.a.Solve(s.ctx, s.m, coretest.Biomass, fba.Maximize)
	s.Require().NoError(err)
	s.Require().Equal(fba.StatusInfeasible, sol.Status)
	s.Require().Nil(sol.ObjectiveValue)
	s.Require().True(math.IsNaN(sol.Objective()))
}

func (s *AdapterSuite) TestUnboundedIsData() {
	inf := math.Inf(1)
	s.Require().NoError(s.m.ApplyBounds(core.BoundSnapshot{
		coretest.ExGlc:   {Lower: -inf, Upper: 1000},
		coretest.GLCt:    {Lower: 0, Upper: inf},
		coretest.R2:      {Lower: 0, Upper: inf},
		coretest.Biomass: {Lower: 0, Upper: inf},
		coretest.ExNH4:   {Lower: -inf, Upper: inf},
	}))

	sol, err := s.a.Solve(s.ctx, s.m, coretest.Biomass, fba.Maximize)
	s.Require().NoError(err)
	s.Require().Equal(fba.StatusUnbounded, sol.Status)
	s.Require().Nil(sol.ObjectiveValue)
}

func (s *AdapterSuite) TestSolverFault() {
	boom := errors.New("lu factorization failed")
	a := fba.New(solver.OptimizerFunc(func(context.Context, *solver.Problem) (solver.Result, error) {
		return solver.Result{}, boom
	}))
	sol, err := a.Solve(s.ctx, s.m, coretest.Biomass, fba.Maximize)
	s.Require().ErrorIs(err, fba.ErrSolverFault)
	s.Require().ErrorIs(err, boom)
	s.Require().Equal(fba.StatusError, sol.Status)
}

func (s *AdapterSuite) TestShadowPrices() {
	a := fba.New(solver.NewSimplex(), fba.WithDuals(true))
	sol, err := a.Solve(s.ctx, s.m, coretest.Biomass, fba.Maximize)
	s.Require().NoError(err)
	s.Require().True(sol.Optimal())
	s.Require().Len(sol.ShadowPrices, s.m.NumMetabolites())
	s.Require().Len(sol.ReducedCosts, s.m.NumReactions())
	// Forcing net accumulation of extracellular glucose costs biomass one for one.
	s.Require().InDelta(-1, sol.ShadowPrices["glc_e"], tol)
	s.Require().InDelta(-1, sol.ShadowPrices["B"], tol)
	s.Require().InDelta(0, sol.ReducedCosts[coretest.R2], tol)
}

func (s *AdapterSuite) TestParsimonious() {
	sol, err := s.a.Parsimonious(s.ctx, s.m, coretest.Biomass, 1)
	s.Require().NoError(err)
	s.Require().True(sol.Optimal())
	s.Require().InDelta(10, sol.Objective(), 1e-5)
	// EX_glc 10 + GLCt 10 + R2 10 + BIOMASS 10 + EX_nh4 1.
	s.Require().InDelta(41, sol.TotalFlux, 1e-5)
	s.Require().InDelta(0, sol.Flux(coretest.LDH), 1e-6)

	_, err = s.a.Parsimonious(s.ctx, s.m, coretest.Biomass, 0)
	s.Require().ErrorIs(err, fba.ErrInvalidFraction)
	_, err = s.a.Parsimonious(s.ctx, s.m, "nope", 1)
	s.Require().ErrorIs(err, fba.ErrUnknownReaction)
}

func (s *AdapterSuite) TestParsimoniousHalfOptimum() {
	sol, err := s.a.Parsimonious(s.ctx, s.m, coretest.Biomass, 0.5)
	s.Require().NoError(err)
	s.Require().InDelta(5, sol.Objective(), 1e-5)
	s.Require().InDelta(20.5, sol.TotalFlux, 1e-5)
}

func TestAdapterSuite(t *testing.T) {
	suite.Run(t, new(AdapterSuite))
}

func TestBuildProblemLayout(t *testing.T) {
	net := coretest.Toy().Network()
	p := fba.BuildProblem(net, fba.Maximize)

	require.Equal(t, net.NumReactions(), p.NumVars())
	require.Len(t, p.Eq, net.NumMetabolites())
	require.NoError(t, p.Validate())
	// Metabolite C only appears in R_dead.
	require.Len(t, p.Eq[7], 1)
}

func TestCompareFluxes(t *testing.T) {
	a := map[core.ReactionID]float64{"R1": 10, "R2": 5, "R3": 1}
	b := map[core.ReactionID]float64{"R1": 20, "R2": 10, "R4": 4}

	got := fba.CompareFluxes(a, b, 10, 20, 0.01)
	require.Len(t, got, 2)
	require.Equal(t, core.ReactionID("R4"), got[0].Reaction)
	require.InDelta(t, 0.2, got[0].Delta, 1e-12)
	require.Equal(t, core.ReactionID("R3"), got[1].Reaction)
	require.InDelta(t, -0.1, got[1].Delta, 1e-12)

	raw := fba.CompareFluxes(a, b, 0, 0, 0)
	require.Len(t, raw, 4)
	require.Equal(t, core.ReactionID("R1"), raw[0].Reaction)
}
