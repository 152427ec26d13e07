// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/lvflux/store"
)

var runsKind string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored envelope, phase and validation runs",
	Args:  cobra.NoArgs,
	RunE:  listRuns,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete RUN_ID",
	Short: "Delete a stored run",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteRun,
}

func listRuns(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.Runs(ctx, store.Kind(runsKind))
	if err != nil {
		return err
	}
	tw := table(cmd.OutOrStdout())
	fmt.Fprintln(tw, "ID\tKIND\tCREATED\tMODEL\tLABEL")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Kind, r.CreatedAt.Format(time.RFC3339), r.Model, r.Label)
	}

	return tw.Flush()
}

func deleteRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("run id %q: %w", args[0], err)
	}
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	return st.DeleteRun(ctx, id)
}

func registerCommands(root *cobra.Command) {
	registerSolveCommands(root)
	registerAnalysisCommands(root)
	registerValidationCommands(root)

	runsCmd.Flags().StringVar(&runsKind, "kind", "", "Only list runs of this kind (envelope, phases, validation)")
	runsCmd.AddCommand(runsDeleteCmd)
	root.AddCommand(runsCmd)
}
