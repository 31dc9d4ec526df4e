package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"catalog-importer/internal/domains/importer/model"
)

func newProgressCommand(a *app) *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show the progress of an import job",
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := a.c.ImportService.Progress(cmd.Context(), jobID)
			if err != nil {
				return err
			}
			if state == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Imported 0 of 0 products.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d products (next row %d).\n", state.Imported, state.Total, state.Cursor)
			return nil
		},
	}
	cmd.Flags().StringVar(&jobID, "job", model.DefaultJobID, "Job id")
	return cmd
}

func newResetCommand(a *app) *cobra.Command {
	var jobID string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget the cached total and progress of an import job",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.c.ImportService.Reset(cmd.Context(), jobID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Progress of job %q cleared.\n", jobID)
			return nil
		},
	}
	cmd.Flags().StringVar(&jobID, "job", model.DefaultJobID, "Job id")
	return cmd
}
