// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/lvflux/core"
	"github.com/katalvlaran/lvflux/fba"
	"github.com/katalvlaran/lvflux/fva"
	"github.com/katalvlaran/lvflux/modelio"
)

var (
	// Shared analysis flags
	profileFlag   string
	objectiveFlag string

	profilesDump bool
	applyOut     string

	fbaMinimize bool
	fbaPFBA     float64
	fbaAll      bool

	fvaFraction  float64
	fvaReactions []string
	fvaReduce    bool
	fvaSuppress  bool
	fvaPFBA      bool

	rangeConstrained string
	rangeLower       float64
	rangeUpper       float64
	rangeTop         int
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the media profiles in the registry",
	Args:  cobra.NoArgs,
	RunE:  listProfiles,
}

var applyCmd = &cobra.Command{
	Use:   "apply PROFILE",
	Short: "Apply a media profile and write the resulting model",
	Long: `Resets every exchange's uptake, opens the profile's components at their
recorded rates and writes the model as YAML to --out (default stdout).`,
	Args: cobra.ExactArgs(1),
	RunE: applyProfile,
}

var fbaCmd = &cobra.Command{
	Use:   "fba",
	Short: "Solve one flux balance problem",
	Args:  cobra.NoArgs,
	RunE:  runFBA,
}

var fvaCmd = &cobra.Command{
	Use:   "fva",
	Short: "Flux variability analysis, optionally followed by blocked-reaction reduction",
	Args:  cobra.NoArgs,
	RunE:  runFVA,
}

var rangeCmd = &cobra.Command{
	Use:   "range",
	Short: "Shadow prices limiting an objective inside a window of another flux",
	Long: `Pins --constrained to [--lower, --upper], reduces the model, maximizes
--objective and lists the metabolites with the largest shadow prices.`,
	Args: cobra.NoArgs,
	RunE: runRange,
}

// objective resolves --objective against a default.
func objective(fallback string) core.ReactionID {
	if objectiveFlag != "" {
		return core.ReactionID(objectiveFlag)
	}

	return core.ReactionID(fallback)
}

func listProfiles(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	if profilesDump {
		return reg.Encode(cmd.OutOrStdout())
	}

	tw := table(cmd.OutOrStdout())
	fmt.Fprintln(tw, "PROFILE\tVERSION\tCOMPONENTS\tDESCRIPTION")
	for _, id := range reg.IDs() {
		p, err := reg.Get(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.ID, p.Version, len(p.Bounds), p.Description)
	}

	return tw.Flush()
}

func applyProfile(cmd *cobra.Command, args []string) error {
	m, _, err := loadModelWithProfile(args[0])
	if err != nil {
		return err
	}
	if applyOut == "" {
		return modelio.Write(cmd.OutOrStdout(), m)
	}

	return modelio.WriteFile(applyOut, m)
}

func runFBA(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	m, _, err := loadModelWithProfile(profileFlag)
	if err != nil {
		return err
	}
	a := newAdapter(false)
	obj := objective(cfg.Envelope.Objective)

	var sol fba.Solution
	switch {
	case fbaPFBA > 0:
		sol, err = a.Parsimonious(ctx, m, obj, fbaPFBA)
	case fbaMinimize:
		sol, err = a.Solve(ctx, m, obj, fba.Minimize)
	default:
		sol, err = a.Solve(ctx, m, obj, fba.Maximize)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "objective %s: %s (%s)\n", obj, num(sol.Objective()), sol.Status)
	if fbaPFBA > 0 && sol.Optimal() {
		fmt.Fprintf(out, "total flux: %s\n", num(sol.TotalFlux))
	}
	if !sol.Optimal() {
		return nil
	}

	tw := table(out)
	fmt.Fprintln(tw, "REACTION\tFLUX")
	for _, id := range m.ReactionIDs() {
		v := sol.Flux(id)
		if !fbaAll && math.Abs(v) < 1e-9 {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\n", id, num(v))
	}

	return tw.Flush()
}

func runFVA(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	m, _, err := loadModelWithProfile(profileFlag)
	if err != nil {
		return err
	}
	a := newAdapter(false)
	obj := objective(cfg.Envelope.Objective)

	opts := fva.Options{FractionOfOptimum: cfg.Variability.FractionOfOptimum, Workers: cfg.WorkerCount()}
	if cmd.Flags().Changed("fraction") {
		opts.FractionOfOptimum = fvaFraction
	}
	for _, id := range fvaReactions {
		opts.Reactions = append(opts.Reactions, core.ReactionID(id))
	}

	out := cmd.OutOrStdout()
	if fvaReduce {
		ro := fva.DefaultReduceOptions()
		ro.Epsilon = cfg.Variability.Epsilon
		ro.SuppressFermentation = fvaSuppress
		ro.Parsimonious = fvaPFBA
		ro.Variability = opts
		ro.Variability.Reactions = nil
		red, err := fva.ReduceAndSolve(ctx, a, m, obj, ro)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "removed %d blocked reactions; %d reactions, %d metabolites remain\n",
			len(red.Removed), red.Model.NumReactions(), red.Model.NumMetabolites())
		fmt.Fprintf(out, "objective %s on reduced model: %s (%s)\n", obj, num(red.Solution.Objective()), red.Solution.Status)
		if fvaPFBA && red.Solution.Optimal() {
			fmt.Fprintf(out, "total flux: %s\n", num(red.Solution.TotalFlux))
		}

		return printRanges(cmd, m, red.Variability)
	}

	if err := m.SetObjective(map[core.ReactionID]float64{obj: 1}); err != nil {
		return err
	}
	res, err := fva.Analyze(ctx, a, m, opts)
	if err != nil {
		return err
	}

	return printRanges(cmd, m, res)
}

func printRanges(cmd *cobra.Command, m *core.Model, res fva.Result) error {
	tw := table(cmd.OutOrStdout())
	fmt.Fprintln(tw, "REACTION\tMIN\tMAX\tBLOCKED")
	for _, id := range m.ReactionIDs() {
		r, ok := res[id]
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", id, num(r.Min), num(r.Max), r.Blocked(cfg.Variability.Epsilon))
	}

	return tw.Flush()
}

func runRange(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	m, _, err := loadModelWithProfile(profileFlag)
	if err != nil {
		return err
	}
	constrained := rangeConstrained
	if constrained == "" {
		constrained = cfg.Envelope.Objective
	}

	ro := fva.DefaultReduceOptions()
	ro.Epsilon = cfg.Variability.Epsilon
	ro.Variability.Workers = cfg.WorkerCount()
	rep, err := fva.RangeAnalysis(ctx, newAdapter(true), m, fva.RangeQuery{
		Constrained: core.ReactionID(constrained),
		Lower:       rangeLower,
		Upper:       rangeUpper,
		Objective:   objective(cfg.Envelope.Target),
		Reduce:      ro,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	sol := rep.Reduction.Solution
	fmt.Fprintf(out, "%s in [%s, %s]: %s = %s (%s)\n",
		constrained, num(rangeLower), num(rangeUpper), rep.Query.Objective, num(sol.Objective()), sol.Status)

	tw := table(out)
	fmt.Fprintln(tw, "METABOLITE\tSHADOW PRICE")
	for _, p := range rep.Limiting(rangeTop) {
		fmt.Fprintf(tw, "%s\t%s\n", p.ID, num(p.Value))
	}

	return tw.Flush()
}

func registerSolveCommands(root *cobra.Command) {
	profilesCmd.Flags().BoolVar(&profilesDump, "dump", false, "Write the registry as YAML instead of a table")

	applyCmd.Flags().StringVarP(&applyOut, "out", "o", "", "Write the model here instead of stdout")

	for _, c := range []*cobra.Command{fbaCmd, fvaCmd, rangeCmd} {
		c.Flags().StringVarP(&profileFlag, "profile", "p", "", "Apply this media profile first")
		c.Flags().StringVar(&objectiveFlag, "objective", "", "Objective reaction (default from config)")
	}

	fbaCmd.Flags().BoolVar(&fbaMinimize, "minimize", false, "Minimize instead of maximize")
	fbaCmd.Flags().Float64Var(&fbaPFBA, "pfba", 0, "Minimize total flux at this fraction of the optimum (0 disables)")
	fbaCmd.Flags().BoolVar(&fbaAll, "all", false, "Print zero fluxes too")

	fvaCmd.Flags().Float64Var(&fvaFraction, "fraction", 0, "Keep the objective at or above this fraction of its optimum (default from config)")
	fvaCmd.Flags().StringSliceVar(&fvaReactions, "reactions", nil, "Restrict the pass to these reactions")
	fvaCmd.Flags().BoolVar(&fvaReduce, "reduce", false, "Remove blocked reactions and re-solve")
	fvaCmd.Flags().BoolVar(&fvaSuppress, "suppress-fermentation", false, "Pin "+string(fva.DefaultFermentation)+" to zero in the reduced model")
	fvaCmd.Flags().BoolVar(&fvaPFBA, "pfba", false, "Re-solve the reduced model parsimoniously")

	rangeCmd.Flags().StringVar(&rangeConstrained, "constrained", "", "Reaction pinned to the window (default: envelope objective)")
	rangeCmd.Flags().Float64Var(&rangeLower, "lower", 0, "Window lower bound")
	rangeCmd.Flags().Float64Var(&rangeUpper, "upper", 0, "Window upper bound")
	rangeCmd.Flags().IntVar(&rangeTop, "top", 10, "Number of metabolites to list (0 for all)")

	root.AddCommand(profilesCmd, applyCmd, fbaCmd, fvaCmd, rangeCmd)
}
