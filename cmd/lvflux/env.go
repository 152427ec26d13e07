// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os/signal"
	"sort"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/lvflux/core"
	"github.com/katalvlaran/lvflux/fba"
	"github.com/katalvlaran/lvflux/media"
	"github.com/katalvlaran/lvflux/modelio"
	"github.com/katalvlaran/lvflux/solver"
	"github.com/katalvlaran/lvflux/store"
)

// commandContext honours the configured timeout and SIGINT/SIGTERM.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	d, _ := cfg.TimeoutDuration()
	if d <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, d)

	return ctx, func() { cancel(); stop() }
}

func loadModel() (*core.Model, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("no model: pass --model or set model in the config")
	}
	m, err := modelio.ReadFile(cfg.Model)
	if err != nil {
		return nil, err
	}
	logger.Debug("model loaded",
		zap.String("path", cfg.Model),
		zap.Int("reactions", m.NumReactions()),
		zap.Int("metabolites", m.NumMetabolites()))

	return m, nil
}

func loadRegistry() (*media.Registry, error) {
	if cfg.Profiles == "" {
		return media.DefaultRegistry(), nil
	}

	return media.LoadRegistryFile(cfg.Profiles)
}

// loadModelWithProfile reads the model and, when profile is non-empty,
// applies it.
func loadModelWithProfile(profile string) (*core.Model, *media.Registry, error) {
	m, err := loadModel()
	if err != nil {
		return nil, nil, err
	}
	reg, err := loadRegistry()
	if err != nil {
		return nil, nil, err
	}
	if profile == "" {
		return m, reg, nil
	}
	id, err := reg.Parse(profile)
	if err != nil {
		return nil, nil, err
	}
	applied, err := reg.Apply(m, id)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("profile applied",
		zap.String("profile", string(applied.Profile)),
		zap.String("version", applied.Version),
		zap.Int("components", len(applied.Bounds)))

	return m, reg, nil
}

// applySinks adds a sink per metabolite (or reuses an existing one) and
// sets its lower bound; a negative bound supplies the metabolite.
func applySinks(m *core.Model, sinks map[string]string) error {
	mets := make([]string, 0, len(sinks))
	for met := range sinks {
		mets = append(mets, met)
	}
	sort.Strings(mets)

	for _, met := range mets {
		lb, err := strconv.ParseFloat(sinks[met], 64)
		if err != nil {
			return fmt.Errorf("sink %s: lower bound %q: %w", met, sinks[met], err)
		}
		id := core.ReactionID(core.SinkPrefix + met)
		if !m.HasReaction(id) {
			if id, err = m.AddBoundary(core.MetaboliteID(met), core.RoleSink); err != nil {
				return fmt.Errorf("sink %s: %w", met, err)
			}
		}
		if err := m.SetLowerBound(id, lb); err != nil {
			return fmt.Errorf("sink %s: %w", met, err)
		}
		logger.Info("sink supplied", zap.String("reaction", string(id)), zap.Float64("lower", lb))
	}

	return nil
}

func newAdapter(duals bool) *fba.Adapter {
	opt := solver.NewSimplex(
		solver.WithOptions(cfg.SolverOptions()),
		solver.WithLogger(logger.Named("solver")),
		solver.WithMetrics(metrics),
	)

	return fba.New(opt, fba.WithLogger(logger), fba.WithDuals(duals))
}

func openStore(ctx context.Context) (*store.Store, error) {
	return store.Open(ctx, cfg.Store.Path, store.WithLogger(logger.Named("store")))
}

// modelLabel is what stored runs record as their model.
func modelLabel() string {
	if cfg.Model == "" {
		return "-"
	}

	return cfg.Model
}
