// SPDX-License-Identifier: MIT

package fva_test

import (
	"context"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"

	"github.com/katalvlaran/lvflux/core"
	"github.com/katalvlaran/lvflux/core/coretest"
	"github.com/katalvlaran/lvflux/fba"
	"github.com/katalvlaran/lvflux/fva"
	"github.com/katalvlaran/lvflux/solver"
)

const tol = 1e-6

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type VariabilitySuite struct {
	suite.Suite
	ctx context.Context
	a   *fba.Adapter
	m   *core.Model
}

func (s *VariabilitySuite) SetupTest() {
	s.ctx = context.Background()
	s.a = fba.New(solver.NewSimplex())
	s.m = coretest.Toy()
}

func (s *VariabilitySuite) requireRange(res fva.Result, id core.ReactionID, lo, hi float64) {
	r, ok := res[id]
	s.Require().True(ok, id)
	s.Require().InDelta(lo, r.Min, tol, "%s min", id)
	s.Require().InDelta(hi, r.Max, tol, "%s max", id)
}

func (s *VariabilitySuite) TestFullPass() {
	res, err := fva.Analyze(s.ctx, s.a, s.m, fva.DefaultOptions())
	s.Require().NoError(err)
	s.Require().Len(res, s.m.NumReactions())

	s.requireRange(res, coretest.ExGlc, -10, 0)
	s.requireRange(res, coretest.ExNH4, -1, 0)
	s.requireRange(res, coretest.Biomass, 0, 10)
	s.requireRange(res, coretest.LDH, 0, 10)
	s.requireRange(res, coretest.ExLac, 0, 10)
	for _, id := range []core.ReactionID{coretest.ExPyr, coretest.ExH2O, coretest.PYRt, coretest.Dead} {
		s.requireRange(res, id, 0, 0)
		s.Require().True(res[id].Blocked(fva.DefaultEpsilon), id)
	}
	for id, r := range res {
		s.Require().LessOrEqual(r.Min, r.Max, id)
	}
}

func (s *VariabilitySuite) TestFractionOfOptimum() {
	res, err := fva.Analyze(s.ctx, s.a, s.m, fva.Options{FractionOfOptimum: 1, Workers: 2})
	s.Require().NoError(err)
	s.requireRange(res, coretest.Biomass, 10, 10)
	s.requireRange(res, coretest.ExGlc, -10, -10)
	s.requireRange(res, coretest.LDH, 0, 0)

	res, err = fva.Analyze(s.ctx, s.a, s.m, fva.Options{FractionOfOptimum: 0.5, Reactions: []core.ReactionID{coretest.LDH}})
	s.Require().NoError(err)
	s.Require().Len(res, 1)
	s.requireRange(res, coretest.LDH, 0, 5)

	_, err = fva.Analyze(s.ctx, s.a, s.m, fva.Options{FractionOfOptimum: 1.5})
	s.Require().ErrorIs(err, fba.ErrInvalidFraction)
}

func (s *VariabilitySuite) TestSubsetAndUnknown() {
	res, err := fva.Analyze(s.ctx, s.a, s.m, fva.Options{Reactions: []core.ReactionID{coretest.R2, coretest.R2}})
	s.Require().NoError(err)
	s.Require().Len(res, 1)
	s.requireRange(res, coretest.R2, 0, 10)

	_, err = fva.Analyze(s.ctx, s.a, s.m, fva.Options{Reactions: []core.ReactionID{"nope"}})
	s.Require().ErrorIs(err, fba.ErrUnknownReaction)
}

func (s *VariabilitySuite) TestInfeasibleSnapshotIsNaN() {
	s.Require().NoError(s.m.SetBounds(coretest.Biomass, 20, 1000))
	res, err := fva.Analyze(s.ctx, s.a, s.m, fva.DefaultOptions())
	s.Require().NoError(err)
	s.Require().Len(res, s.m.NumReactions())
	for id, r := range res {
		s.Require().True(math.IsNaN(r.Min) && math.IsNaN(r.Max), id)
		s.Require().True(r.Infeasible())
	}

	reduced, removed, err := fva.Reduce(s.m, res, fva.DefaultReduceOptions())
	s.Require().NoError(err)
	s.Require().Empty(removed)
	s.Require().Equal(s.m.NumReactions(), reduced.NumReactions())
}

func (s *VariabilitySuite) TestUnboundedSide() {
	inf := math.Inf(1)
	s.Require().NoError(s.m.ApplyBounds(core.BoundSnapshot{
		coretest.ExGlc:   {Lower: -inf, Upper: 1000},
		coretest.GLCt:    {Lower: 0, Upper: inf},
		coretest.R2:      {Lower: 0, Upper: inf},
		coretest.Biomass: {Lower: 0, Upper: inf},
		coretest.ExNH4:   {Lower: -inf, Upper: inf},
	}))
	res, err := fva.Analyze(s.ctx, s.a, s.m, fva.Options{Reactions: []core.ReactionID{coretest.Biomass}})
	s.Require().NoError(err)
	s.Require().InDelta(0, res[coretest.Biomass].Min, tol)
	s.Require().True(math.IsInf(res[coretest.Biomass].Max, 1))
}

func (s *VariabilitySuite) TestWorkerCountDoesNotChangeResult() {
	one, err := fva.Analyze(s.ctx, s.a, s.m, fva.Options{Workers: 1})
	s.Require().NoError(err)
	many, err := fva.Analyze(s.ctx, s.a, s.m, fva.Options{Workers: 8})
	s.Require().NoError(err)
	s.Require().Empty(cmp.Diff(one, many, cmpopts.EquateApprox(0, tol)))
}

func (s *VariabilitySuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err := fva.Analyze(ctx, s.a, s.m, fva.DefaultOptions())
	s.Require().ErrorIs(err, context.Canceled)
}

func (s *VariabilitySuite) TestDoesNotMutateModel() {
	before := s.m.Snapshot()
	obj := s.m.Objective()
	_, err := fva.Analyze(s.ctx, s.a, s.m, fva.Options{FractionOfOptimum: 0.9})
	s.Require().NoError(err)
	s.Require().Equal(before, s.m.Snapshot())
	s.Require().Equal(obj, s.m.Objective())
}

func TestVariabilitySuite(t *testing.T) {
	suite.Run(t, new(VariabilitySuite))
}

func TestWorkerLimit(t *testing.T) {
	var active, peak int32
	opt := solver.OptimizerFunc(func(ctx context.Context, p *solver.Problem) (solver.Result, error) {
		n := atomic.AddInt32(&active, 1)
		defer atomic.AddInt32(&active, -1)
		for {
			old := atomic.LoadInt32(&peak)
			if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		return solver.Result{Status: solver.StatusOptimal, X: make([]float64, p.NumVars())}, nil
	})

	res, err := fva.Analyze(context.Background(), fba.New(opt), coretest.Toy(), fva.Options{Workers: 2})
	require.NoError(t, err)
	require.Len(t, res, 11)
	require.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestSolverFaultAbortsPass(t *testing.T) {
	calls := int32(0)
	opt := solver.OptimizerFunc(func(ctx context.Context, p *solver.Problem) (solver.Result, error) {
		if atomic.AddInt32(&calls, 1) > 3 {
			return solver.Result{}, solver.ErrSolverFault
		}
		return solver.Result{Status: solver.StatusOptimal, X: make([]float64, p.NumVars())}, nil
	})
	_, err := fva.Analyze(context.Background(), fba.New(opt), coretest.Toy(), fva.Options{Workers: 3})
	require.ErrorIs(t, err, fba.ErrSolverFault)
}
