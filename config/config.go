// SPDX-License-Identifier: MIT
//
// File: config.go
// Role: YAML run configuration layered over built-in defaults.

package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/lvflux/core"
	"github.com/katalvlaran/lvflux/envelope"
	"github.com/katalvlaran/lvflux/media"
	"github.com/katalvlaran/lvflux/phase"
	"github.com/katalvlaran/lvflux/solver"
	"github.com/katalvlaran/lvflux/validation"
)

// Environment variables consulted after the file is read.
const (
	EnvStorePath   = "LVFLUX_STORE_PATH"
	EnvMetricsAddr = "LVFLUX_METRICS_ADDR"
	EnvLogLevel    = "LVFLUX_LOG_LEVEL"
)

// ErrInvalidConfig wraps every Validate failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds every tunable of an lvflux run.
type Config struct {
	// Model is the default model document path.
	Model string `yaml:"model"`

	// Profiles is an optional YAML profile document replacing the built-ins.
	Profiles string `yaml:"profiles"`

	// Workers bounds concurrent solves in sweeps; 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`

	// Timeout caps one command, e.g. "5m". Empty means no deadline.
	Timeout string `yaml:"timeout"`

	Solver      SolverConfig      `yaml:"solver"`
	Variability VariabilityConfig `yaml:"variability"`
	Envelope    EnvelopeConfig    `yaml:"envelope"`
	Phase       PhaseConfig       `yaml:"phase"`
	Validation  ValidationConfig  `yaml:"validation"`
	Store       StoreConfig       `yaml:"store"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// SolverConfig mirrors solver.Options.
type SolverConfig struct {
	Tolerance      float64 `yaml:"tolerance"`
	FeasibilityTol float64 `yaml:"feasibility_tolerance"`
	PenaltyScale   float64 `yaml:"penalty_scale"`
	MaxEscalations int     `yaml:"max_escalations"`
}

// VariabilityConfig configures FVA and reduction.
type VariabilityConfig struct {
	FractionOfOptimum float64 `yaml:"fraction_of_optimum"`
	Epsilon           float64 `yaml:"epsilon"`
}

// EnvelopeConfig configures production envelopes.
type EnvelopeConfig struct {
	Points    int    `yaml:"points"`
	Objective string `yaml:"objective"`
	Target    string `yaml:"target"`
}

// PhaseConfig configures boundary detection.
type PhaseConfig struct {
	Curve     string  `yaml:"curve"` // min, max
	Threshold float64 `yaml:"threshold"`
	Absolute  bool    `yaml:"absolute"`
}

// ValidationConfig configures dropout validation.
type ValidationConfig struct {
	EffectThreshold float64                   `yaml:"effect_threshold"`
	Objective       string                    `yaml:"objective"`
	Protocols       map[string]ProtocolConfig `yaml:"protocols"`
}

// ProtocolConfig overrides one built-in protocol. A nil Floor keeps the
// built-in floor; a nil Exclusions keeps the built-in list.
type ProtocolConfig struct {
	Floor      *float64 `yaml:"floor"`
	Exclusions []string `yaml:"exclusions"`
}

// StoreConfig locates the run database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig configures the Prometheus endpoint. Empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	so := solver.DefaultOptions()

	return &Config{
		Solver: SolverConfig{
			Tolerance:      so.Tolerance,
			FeasibilityTol: so.FeasibilityTol,
			PenaltyScale:   so.PenaltyScale,
			MaxEscalations: so.MaxEscalations,
		},
		Variability: VariabilityConfig{FractionOfOptimum: 0, Epsilon: 1e-6},
		Envelope:    EnvelopeConfig{Points: 20, Objective: "BIOMASS", Target: "EX_lac_L_e"},
		Phase:       PhaseConfig{Curve: "max", Threshold: phase.DefaultThreshold},
		Validation:  ValidationConfig{EffectThreshold: validation.DefaultEffectThreshold},
		Store:       StoreConfig{Path: filepath.Join(".lvflux", "runs.db")},
		Logging:     LoggingConfig{Level: "info", Encoding: "json"},
	}
}

// Load reads path over the defaults. A missing file yields the defaults,
// still subject to environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvStorePath); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv(EnvMetricsAddr); v != "" {
		c.Metrics.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
}

// Validate rejects values no engine accepts.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, c.Workers)
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if c.Solver.Tolerance <= 0 || c.Solver.FeasibilityTol <= 0 {
		return fmt.Errorf("%w: solver tolerances must be positive", ErrInvalidConfig)
	}
	if c.Solver.PenaltyScale <= 1 {
		return fmt.Errorf("%w: solver.penalty_scale must exceed 1, got %g", ErrInvalidConfig, c.Solver.PenaltyScale)
	}
	if c.Solver.MaxEscalations < 0 {
		return fmt.Errorf("%w: solver.max_escalations must be >= 0", ErrInvalidConfig)
	}
	if f := c.Variability.FractionOfOptimum; f < 0 || f > 1 {
		return fmt.Errorf("%w: variability.fraction_of_optimum must be in [0,1], got %g", ErrInvalidConfig, f)
	}
	if c.Variability.Epsilon <= 0 {
		return fmt.Errorf("%w: variability.epsilon must be positive", ErrInvalidConfig)
	}
	if c.Envelope.Points < 2 {
		return fmt.Errorf("%w: envelope.points must be >= 2, got %d", ErrInvalidConfig, c.Envelope.Points)
	}
	if _, err := envelope.ParseSide(c.Phase.Curve); err != nil {
		return fmt.Errorf("%w: phase.curve: %w", ErrInvalidConfig, err)
	}
	if c.Phase.Threshold < 0 {
		return fmt.Errorf("%w: phase.threshold must be >= 0", ErrInvalidConfig)
	}
	if t := c.Validation.EffectThreshold; t < 0 || math.IsNaN(t) {
		return fmt.Errorf("%w: validation.effect_threshold must be >= 0, got %g", ErrInvalidConfig, t)
	}
	for id, p := range c.Validation.Protocols {
		if p.Floor != nil && *p.Floor < 0 {
			return fmt.Errorf("%w: protocol %s floor must be >= 0", ErrInvalidConfig, id)
		}
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// WorkerCount resolves Workers, substituting GOMAXPROCS for 0.
func (c *Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}

	return runtime.GOMAXPROCS(0)
}

// TimeoutDuration parses Timeout; empty means 0 (no deadline).
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: timeout %q", ErrInvalidConfig, c.Timeout)
	}

	return d, nil
}

// SolverOptions converts the solver section.
func (c *Config) SolverOptions() solver.Options {
	return solver.Options{
		Tolerance:      c.Solver.Tolerance,
		FeasibilityTol: c.Solver.FeasibilityTol,
		PenaltyScale:   c.Solver.PenaltyScale,
		MaxEscalations: c.Solver.MaxEscalations,
	}
}

// PhaseOptions converts the phase section. An unparsable curve falls back
// to the max curve; Validate reports it.
func (c *Config) PhaseOptions() phase.Options {
	side, err := envelope.ParseSide(c.Phase.Curve)
	if err != nil {
		side = envelope.SideMax
	}

	return phase.Options{Curve: side, Threshold: c.Phase.Threshold, Absolute: c.Phase.Absolute}
}

// Protocols merges the configured overrides into validation.DefaultProtocols.
// Profiles absent from the defaults get a protocol with the configured
// floor and exclusions. The configured effect threshold applies to all.
func (c *Config) Protocols() map[media.ProfileID]validation.Protocol {
	out := validation.DefaultProtocols()
	for raw, pc := range c.Validation.Protocols {
		id := media.ProfileID(raw)
		p, ok := out[id]
		if !ok {
			p = validation.Protocol{Profile: id}
		}
		if pc.Floor != nil {
			p.Floor = *pc.Floor
		}
		if pc.Exclusions != nil {
			p.Exclusions = make([]core.ReactionID, len(pc.Exclusions))
			for i, x := range pc.Exclusions {
				p.Exclusions[i] = core.ReactionID(x)
			}
		}
		out[id] = p
	}
	for id, p := range out {
		t := c.Validation.EffectThreshold
		p.Threshold = &t
		out[id] = p
	}

	return out
}
