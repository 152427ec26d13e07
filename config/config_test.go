// SPDX-License-Identifier: MIT

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/katalvlaran/lvflux/config"
	"github.com/katalvlaran/lvflux/core"
	"github.com/katalvlaran/lvflux/envelope"
	"github.com/katalvlaran/lvflux/media"
	"github.com/katalvlaran/lvflux/solver"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvStorePath, "")
	t.Setenv(config.EnvMetricsAddr, "")
	t.Setenv(config.EnvLogLevel, "")
}

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, solver.DefaultOptions(), cfg.SolverOptions())
	require.Positive(t, cfg.WorkerCount())

	d, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	require.Zero(t, d)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(config.Default(), cfg))
}

func TestLoadLayersOverDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "lvflux.yaml")
	doc := `
workers: 3
timeout: 90s
envelope:
  points: 11
phase:
  curve: min
  absolute: true
validation:
  protocols:
    DM13:
      floor: 0.2
      exclusions: [EX_ala_L_e]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, 3, cfg.WorkerCount())
	require.Equal(t, 11, cfg.Envelope.Points)
	// Keys absent from the file keep their defaults.
	require.Equal(t, "BIOMASS", cfg.Envelope.Objective)
	require.Equal(t, config.Default().Solver, cfg.Solver)

	d, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	require.Equal(t, "1m30s", d.String())

	po := cfg.PhaseOptions()
	require.Equal(t, envelope.SideMin, po.Curve)
	require.True(t, po.Absolute)
	require.InDelta(t, 0.1, po.Threshold, 1e-12)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(config.EnvStorePath, "/tmp/runs.db")
	t.Setenv(config.EnvMetricsAddr, ":9109")
	t.Setenv(config.EnvLogLevel, "debug")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, "/tmp/runs.db", cfg.Store.Path)
	require.Equal(t, ":9109", cfg.Metrics.Addr)
	require.Equal(t, "debug", cfg.Logging.Level)
}

func TestSaveThenLoad(t *testing.T) {
	clearEnv(t)
	floor := 0.05
	want := config.Default()
	want.Workers = 2
	want.Validation.Protocols = map[string]config.ProtocolConfig{
		"DM16": {Floor: &floor},
	}

	path := filepath.Join(t.TempDir(), "nested", "lvflux.yaml")
	require.NoError(t, want.Save(path))

	got, err := config.Load(path)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(want, got, cmpopts.EquateEmpty()))
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: [1, 2\n"), 0o644))
	_, err := config.Load(path)
	require.Error(t, err)
}

func TestValidateRejects(t *testing.T) {
	neg := -1.0
	cases := map[string]func(*config.Config){
		"workers":       func(c *config.Config) { c.Workers = -1 },
		"timeout":       func(c *config.Config) { c.Timeout = "soon" },
		"tolerance":     func(c *config.Config) { c.Solver.Tolerance = 0 },
		"penalty":       func(c *config.Config) { c.Solver.PenaltyScale = 1 },
		"fraction":      func(c *config.Config) { c.Variability.FractionOfOptimum = 1.5 },
		"epsilon":       func(c *config.Config) { c.Variability.Epsilon = 0 },
		"points":        func(c *config.Config) { c.Envelope.Points = 1 },
		"curve":         func(c *config.Config) { c.Phase.Curve = "upper" },
		"phase":         func(c *config.Config) { c.Phase.Threshold = -0.1 },
		"effect":        func(c *config.Config) { c.Validation.EffectThreshold = -0.1 },
		"protocolFloor": func(c *config.Config) { c.Validation.Protocols = map[string]config.ProtocolConfig{"DM13": {Floor: &neg}} },
		"logLevel":      func(c *config.Config) { c.Logging.Level = "chatty" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(cfg)
			require.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)
		})
	}
}

func TestProtocolsMerge(t *testing.T) {
	floor := 0.2
	cfg := config.Default()
	cfg.Validation.EffectThreshold = 0.7
	cfg.Validation.Protocols = map[string]config.ProtocolConfig{
		"DM13":   {Floor: &floor},
		"DM25":   {Exclusions: []string{"EX_cit_e"}},
		"CUSTOM": {Exclusions: []string{"EX_x_e"}},
	}

	got := cfg.Protocols()
	require.Len(t, got, 6)

	require.InDelta(t, 0.2, got[media.DM13].Floor, 1e-12)
	require.InDelta(t, 0.31, got[media.DM25].Floor, 1e-12)
	require.Equal(t, []core.ReactionID{"EX_cit_e"}, got[media.DM25].Exclusions)
	require.InDelta(t, 0.43, got[media.DM57].Floor, 1e-12)
	require.Len(t, got[media.DM57].Exclusions, 27)

	custom := got["CUSTOM"]
	require.Equal(t, media.ProfileID("CUSTOM"), custom.Profile)
	require.True(t, custom.Excluded("EX_x_e"))
	for id, p := range got {
		require.InDelta(t, 0.7, p.EffectThreshold(), 1e-12, id)
	}
}

func TestZeroEffectThresholdIsKept(t *testing.T) {
	cfg := config.Default()
	cfg.Validation.EffectThreshold = 0
	require.NoError(t, cfg.Validate())
	for id, p := range cfg.Protocols() {
		require.Zero(t, p.EffectThreshold(), id)
	}
}

func TestNewLogger(t *testing.T) {
	l, err := config.NewLogger(config.LoggingConfig{Level: "warn"}, false)
	require.NoError(t, err)
	require.False(t, l.Core().Enabled(zapcore.InfoLevel))
	require.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l, err = config.NewLogger(config.LoggingConfig{Level: "warn", Development: true, Encoding: "console"}, true)
	require.NoError(t, err)
	require.True(t, l.Core().Enabled(zapcore.DebugLevel))

	_, err = config.NewLogger(config.LoggingConfig{Level: "loud"}, false)
	require.Error(t, err)

	lvl, err := config.ParseLevel(" ERROR ")
	require.NoError(t, err)
	require.Equal(t, zapcore.ErrorLevel, lvl)
}
