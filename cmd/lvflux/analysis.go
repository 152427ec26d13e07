// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/lvflux/core"
	"github.com/katalvlaran/lvflux/envelope"
	"github.com/katalvlaran/lvflux/fba"
	"github.com/katalvlaran/lvflux/phase"
)

var (
	envTarget string
	envPoints int
	envSave   bool
	envSinks  map[string]string

	phaseRun       string
	phaseCurve     string
	phaseThreshold float64
	phaseAbsolute  bool
	phaseSave      bool
	phaseCompare   int
)

var envelopeCmd = &cobra.Command{
	Use:   "envelope",
	Short: "Production envelope of a target flux against an objective",
	Long: `Sweeps the objective from 0 to its maximum in --points evenly spaced levels
and reports the minimum and maximum target flux at each level. Infeasible
levels print as "-". --sink MET=LOWER adds a sink for MET before the sweep;
a negative lower bound supplies it.`,
	Args: cobra.NoArgs,
	RunE: runEnvelope,
}

var phasesCmd = &cobra.Command{
	Use:   "phases",
	Short: "Detect metabolic phase boundaries on an envelope curve",
	Long: `Computes an envelope (or loads a stored one with --run) and reports every
level where the secant slope of the selected curve changes by more than the
threshold, plus the objective windows between boundaries. --compare N lists
the N largest normalized flux changes between neighbouring windows.`,
	Args: cobra.NoArgs,
	RunE: runPhases,
}

func buildEnvelope(ctx context.Context, cmd *cobra.Command) (envelope.Envelope, error) {
	m, _, err := loadModelWithProfile(profileFlag)
	if err != nil {
		return envelope.Envelope{}, err
	}
	if err := applySinks(m, envSinks); err != nil {
		return envelope.Envelope{}, err
	}
	target := cfg.Envelope.Target
	if envTarget != "" {
		target = envTarget
	}
	points := cfg.Envelope.Points
	if cmd.Flags().Changed("points") {
		points = envPoints
	}

	return envelope.Build(ctx, newAdapter(false), m,
		objective(cfg.Envelope.Objective), core.ReactionID(target), points,
		envelope.Options{Workers: cfg.WorkerCount()})
}

func printEnvelope(cmd *cobra.Command, env envelope.Envelope) error {
	fmt.Fprintf(cmd.OutOrStdout(), "%s against %s\n", env.Target, env.Objective)
	tw := table(cmd.OutOrStdout())
	fmt.Fprintln(tw, "LEVEL\tMIN\tMAX")
	for _, p := range env.Points {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", num(p.Level), num(p.Min), num(p.Max))
	}

	return tw.Flush()
}

func runEnvelope(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	env, err := buildEnvelope(ctx, cmd)
	if err != nil {
		return err
	}
	if err := printEnvelope(cmd, env); err != nil {
		return err
	}
	if !envSave {
		return nil
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	id, err := st.SaveEnvelope(ctx, modelLabel(), env)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved envelope run %s\n", id)

	return nil
}

// phaseOptions layers explicitly set flags over the configured options.
func phaseOptions(cmd *cobra.Command) (phase.Options, error) {
	opts := cfg.PhaseOptions()
	if cmd.Flags().Changed("curve") {
		side, err := envelope.ParseSide(phaseCurve)
		if err != nil {
			return phase.Options{}, err
		}
		opts.Curve = side
	}
	if cmd.Flags().Changed("threshold") {
		opts.Threshold = phaseThreshold
	}
	if cmd.Flags().Changed("absolute") {
		opts.Absolute = phaseAbsolute
	}

	return opts, nil
}

func runPhases(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	opts, err := phaseOptions(cmd)
	if err != nil {
		return err
	}

	var (
		env   envelope.Envelope
		envID uuid.UUID
	)
	if phaseRun != "" {
		if envID, err = uuid.Parse(phaseRun); err != nil {
			return fmt.Errorf("run id %q: %w", phaseRun, err)
		}
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		env, err = st.LoadEnvelope(ctx, envID)
		_ = st.Close()
		if err != nil {
			return err
		}
	} else if env, err = buildEnvelope(ctx, cmd); err != nil {
		return err
	}

	bounds := phase.DetectWithOptions(env, opts)
	windows := phase.Windows(env, bounds)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d boundaries on the %s curve of %s (threshold %s)\n",
		len(bounds), opts.Curve, env.Target, num(opts.Threshold))
	tw := table(out)
	fmt.Fprintln(tw, "INDEX\tLEVEL\tSLOPE BEFORE\tSLOPE AFTER\tDIFFERENCE")
	for _, b := range bounds {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", b.Index, num(b.Mid.Level), num(b.SlopeBefore), num(b.SlopeAfter), num(b.SlopeDifference))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for i, w := range windows {
		fmt.Fprintf(out, "phase %d: %s ≤ %s ≤ %s\n", i+1, num(w.From), env.Objective, num(w.To))
	}

	if phaseCompare > 0 && len(windows) > 1 {
		if err := compareWindows(ctx, cmd, env, windows); err != nil {
			return err
		}
	}

	if !phaseSave {
		return nil
	}
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	if envID == uuid.Nil {
		if envID, err = st.SaveEnvelope(ctx, modelLabel(), env); err != nil {
			return err
		}
		fmt.Fprintf(out, "saved envelope run %s\n", envID)
	}
	id, err := st.SavePhases(ctx, envID, opts, bounds)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "saved phases run %s\n", id)

	return nil
}

// compareWindows solves at each window's midpoint and prints the largest
// per-unit-objective flux changes between neighbouring windows.
func compareWindows(ctx context.Context, cmd *cobra.Command, env envelope.Envelope, windows []phase.Window) error {
	m, _, err := loadModelWithProfile(profileFlag)
	if err != nil {
		return err
	}
	if err := applySinks(m, envSinks); err != nil {
		return err
	}
	mids := make([]float64, len(windows))
	for i, w := range windows {
		mids[i] = (w.From + w.To) / 2
	}
	sols, err := envelope.FluxesAt(ctx, newAdapter(false), m, env.Objective, mids, envelope.Options{Workers: cfg.WorkerCount()})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i := 1; i < len(sols); i++ {
		prev, cur := sols[i-1], sols[i]
		if !prev.Solution.Optimal() || !cur.Solution.Optimal() {
			fmt.Fprintf(out, "phase %d → %d: no steady state at one midpoint\n", i, i+1)
			continue
		}
		deltas := fba.CompareFluxes(prev.Solution.Fluxes, cur.Solution.Fluxes, prev.Level, cur.Level, 1e-6)
		if len(deltas) > phaseCompare {
			deltas = deltas[:phaseCompare]
		}
		fmt.Fprintf(out, "phase %d → %d (per unit %s):\n", i, i+1, env.Objective)
		tw := table(out)
		fmt.Fprintln(tw, "REACTION\tBEFORE\tAFTER\tDELTA")
		for _, d := range deltas {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Reaction, num(d.A), num(d.B), num(d.Delta))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	return nil
}

func registerAnalysisCommands(root *cobra.Command) {
	for _, c := range []*cobra.Command{envelopeCmd, phasesCmd} {
		c.Flags().StringVarP(&profileFlag, "profile", "p", "", "Apply this media profile first")
		c.Flags().StringVar(&objectiveFlag, "objective", "", "Objective reaction swept on the x axis (default from config)")
		c.Flags().StringVar(&envTarget, "target", "", "Target reaction (default from config)")
		c.Flags().IntVar(&envPoints, "points", 20, "Number of objective levels (default from config)")
		c.Flags().StringToStringVar(&envSinks, "sink", nil, "Supply metabolites through sinks, MET=LOWER (repeatable)")
	}
	envelopeCmd.Flags().BoolVar(&envSave, "save", false, "Store the envelope as a run")

	phasesCmd.Flags().StringVar(&phaseRun, "run", "", "Analyze a stored envelope run instead of computing one")
	phasesCmd.Flags().StringVar(&phaseCurve, "curve", "max", "Envelope curve: min or max (default from config)")
	phasesCmd.Flags().Float64Var(&phaseThreshold, "threshold", phase.DefaultThreshold, "Slope difference threshold (default from config)")
	phasesCmd.Flags().BoolVar(&phaseAbsolute, "absolute", false, "Report |before − after| instead of the signed difference")
	phasesCmd.Flags().BoolVar(&phaseSave, "save", false, "Store the boundaries (and a computed envelope) as runs")
	phasesCmd.Flags().IntVar(&phaseCompare, "compare", 0, "List this many flux changes between neighbouring phases")

	root.AddCommand(envelopeCmd, phasesCmd)
}
