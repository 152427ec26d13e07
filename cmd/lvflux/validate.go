// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/lvflux/core"
	"github.com/katalvlaran/lvflux/fba"
	"github.com/katalvlaran/lvflux/media"
	"github.com/katalvlaran/lvflux/store"
	"github.com/katalvlaran/lvflux/validation"
)

var (
	valReference string
	valColumn    string
	valAll       bool
	valRecords   string
	valSave      bool

	thrInput  string
	thrColumn string
	thrRun    string

	subGlucose float64
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Score single-nutrient dropouts against reference growth data",
	Long: `Applies a profile, removes each component in turn and labels the predicted
growth change as no_effect or deleterious. Predictions are scored against the
--reference CSV (one row per exchange, one column per profile). With --all
every configured protocol is run and the confusion matrices are also summed.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

var thresholdCmd = &cobra.Command{
	Use:   "threshold",
	Short: "Fit a two-group mixture to fold changes and report the split",
	Long: `Reads fold changes from a CSV column (--input/--column) or from a stored
validation run (--run) and fits a two-component Gaussian mixture. The density
intersection is a data-driven alternative to the fixed effect threshold.`,
	Args: cobra.NoArgs,
	RunE: runThreshold,
}

var substitutionsCmd = &cobra.Command{
	Use:   "substitutions",
	Short: "Screen amino acids as glucose substitutes at matched carbon uptake",
	Args:  cobra.NoArgs,
	RunE:  runSubstitutions,
}

func readReference(path, column string, threshold float64) (validation.Reference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference: %w", err)
	}
	defer f.Close()

	return validation.ReadReferenceCSV(f, column, threshold)
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if valReference == "" {
		return fmt.Errorf("--reference is required")
	}
	protocols := cfg.Protocols()

	var ids []media.ProfileID
	switch {
	case valAll:
		for id := range protocols {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	case profileFlag != "":
		ids = []media.ProfileID{media.ProfileID(profileFlag)}
	default:
		return fmt.Errorf("pass --profile or --all")
	}

	m, reg, err := loadModelWithProfile("")
	if err != nil {
		return err
	}
	a := newAdapter(false)

	var st *store.Store
	if valSave {
		if st, err = openStore(ctx); err != nil {
			return err
		}
		defer st.Close()
	}

	var total validation.ConfusionMatrix
	out := cmd.OutOrStdout()
	tw := table(out)
	fmt.Fprintln(tw, "PROFILE\tBASELINE\tDENOMINATOR\tTP\tTN\tFP\tFN\tUNSCORED\tACCURACY\tRECALL\tPRECISION")
	for _, id := range ids {
		p, ok := protocols[id]
		if !ok {
			t := cfg.Validation.EffectThreshold
			p = validation.Protocol{Profile: id, Threshold: &t}
		}
		rep, err := validateProfile(ctx, cmd, m, reg, p, a, st)
		if err != nil {
			if valAll {
				logger.Warn("profile skipped", zap.String("profile", string(id)), zap.Error(err))
				continue
			}
			return err
		}
		c := rep.Matrix
		total.Merge(c)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%.3f\t%.3f\t%.3f\n",
			rep.Profile, num(rep.Baseline), num(rep.Denominator), c.TP, c.TN, c.FP, c.FN,
			len(rep.Unscored), c.Accuracy(), c.Recall(), c.Precision())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if valAll {
		fmt.Fprintf(out, "all profiles: %s\n", total)
	}

	return nil
}

// validateProfile evaluates one protocol, then writes records and stores
// the report when asked. st is nil unless --save is set.
func validateProfile(ctx context.Context, cmd *cobra.Command, m *core.Model, reg *media.Registry, p validation.Protocol, a *fba.Adapter, st *store.Store) (validation.Report, error) {
	column := valColumn
	if column == "" {
		column = string(p.Profile)
	}
	ref, err := readReference(valReference, column, p.EffectThreshold())
	if err != nil {
		return validation.Report{}, err
	}

	var opts validation.Options
	switch {
	case objectiveFlag != "":
		opts.Objective = core.ReactionID(objectiveFlag)
	case cfg.Validation.Objective != "":
		opts.Objective = core.ReactionID(cfg.Validation.Objective)
	}
	rep, err := validation.Evaluate(ctx, a, m, reg, p, ref, opts)
	if err != nil {
		return validation.Report{}, err
	}

	if valRecords != "" {
		path := valRecords
		if valAll {
			path = suffixed(path, string(p.Profile))
		}
		if err := writeRecords(path, rep); err != nil {
			return validation.Report{}, err
		}
	}
	if st != nil {
		id, err := st.SaveValidation(ctx, modelLabel(), rep)
		if err != nil {
			return validation.Report{}, err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "saved validation run %s (%s)\n", id, rep.Profile)
	}

	return rep, nil
}

func writeRecords(path string, rep validation.Report) (retErr error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create records: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil && retErr == nil {
			retErr = err
		}
	}()

	return validation.WriteRecordsCSV(f, rep)
}

func runThreshold(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	var values []float64
	switch {
	case thrRun != "":
		id, err := uuid.Parse(thrRun)
		if err != nil {
			return fmt.Errorf("run id %q: %w", thrRun, err)
		}
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		rep, err := st.LoadValidation(ctx, id)
		_ = st.Close()
		if err != nil {
			return err
		}
		for _, r := range rep.Records {
			values = append(values, r.FoldChange)
		}
	case thrInput != "":
		ref, err := readReference(thrInput, thrColumn, cfg.Validation.EffectThreshold)
		if err != nil {
			return err
		}
		for _, obs := range ref {
			values = append(values, obs.Value)
		}
	default:
		return fmt.Errorf("pass --input or --run")
	}

	fit, err := validation.FitThreshold(values, validation.DefaultFitOptions())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !fit.Found {
		fmt.Fprintln(out, "no density intersection between the component means")
	} else {
		fmt.Fprintf(out, "threshold: %s (confidence %.3f)\n", num(fit.Value), fit.Confidence)
	}
	tw := table(out)
	fmt.Fprintln(tw, "COMPONENT\tMEAN\tSTDDEV\tWEIGHT")
	fmt.Fprintf(tw, "low\t%s\t%s\t%s\n", num(fit.Low.Mean), num(fit.Low.StdDev), num(fit.Low.Weight))
	fmt.Fprintf(tw, "high\t%s\t%s\t%s\n", num(fit.High.Mean), num(fit.High.StdDev), num(fit.High.Weight))
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d iterations, log-likelihood %s\n", fit.Iterations, num(fit.LogLikelihood))

	return nil
}

func runSubstitutions(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	m, _, err := loadModelWithProfile(profileFlag)
	if err != nil {
		return err
	}
	subs := validation.AminoAcidSubstitutions(m, subGlucose)
	if len(subs) == 0 {
		return fmt.Errorf("model has no amino acid exchanges")
	}

	screen, err := validation.ScanSubstitutions(ctx, newAdapter(false), m, objective(cfg.Envelope.Objective), subs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "baseline %s: %s\n", screen.Objective, num(screen.Baseline))
	tw := table(out)
	fmt.Fprintln(tw, "EXCHANGE\tUPTAKE\tSTATUS\tOBJECTIVE\tRATIO\tIMPROVED")
	for _, r := range screen.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\n", r.Reaction, num(r.Lower), r.Status, num(r.Objective), num(r.Ratio), r.Improved)
	}

	return tw.Flush()
}

func registerValidationCommands(root *cobra.Command) {
	validateCmd.Flags().StringVarP(&profileFlag, "profile", "p", "", "Profile to validate")
	validateCmd.Flags().BoolVar(&valAll, "all", false, "Validate every configured protocol")
	validateCmd.Flags().StringVar(&valReference, "reference", "", "Reference CSV (required)")
	validateCmd.Flags().StringVar(&valColumn, "column", "", "Reference column (default: the profile ID)")
	validateCmd.Flags().StringVar(&objectiveFlag, "objective", "", "Objective reaction (default: validation.objective, else the model's)")
	validateCmd.Flags().StringVar(&valRecords, "records", "", "Write per-component records to this CSV")
	validateCmd.Flags().BoolVar(&valSave, "save", false, "Store each report as a run")

	thresholdCmd.Flags().StringVar(&thrInput, "input", "", "CSV of fold changes")
	thresholdCmd.Flags().StringVar(&thrColumn, "column", "", "Column holding the fold changes")
	thresholdCmd.Flags().StringVar(&thrRun, "run", "", "Use the fold changes of a stored validation run")

	substitutionsCmd.Flags().StringVarP(&profileFlag, "profile", "p", "", "Apply this media profile first")
	substitutionsCmd.Flags().StringVar(&objectiveFlag, "objective", "", "Objective reaction (default from config)")
	substitutionsCmd.Flags().Float64Var(&subGlucose, "glucose", -10, "Glucose uptake the substitutes are carbon-matched to")

	root.AddCommand(validateCmd, thresholdCmd, substitutionsCmd)
}
