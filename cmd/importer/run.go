package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"catalog-importer/internal/domains/importer/model"
	"catalog-importer/internal/domains/importer/service"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	File      string
	JobID     string
	BatchSize int
	StartRow  int
	Delay     time.Duration
}

func newRunCommand(a *app) *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Import the catalog batch by batch until completion",
		Example: `  # Import the configured catalog in batches of 100
  importer run

  # Resume an interrupted run
  importer run --start-row 300 --batch-size 50`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.BatchSize == 0 {
				opts.BatchSize = a.c.Config.Import.BatchSize
			}
			_, err := runBatches(cmd.Context(), a.c.ImportService, *opts, cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Catalog file (defaults to IMPORT_FILE_PATH)")
	cmd.Flags().StringVar(&opts.JobID, "job", model.DefaultJobID, "Job id used for progress tracking")
	cmd.Flags().IntVarP(&opts.BatchSize, "batch-size", "b", 0, "Rows per batch (defaults to IMPORT_BATCH_SIZE)")
	cmd.Flags().IntVar(&opts.StartRow, "start-row", 0, "Data rows to skip before the first batch")
	cmd.Flags().DurationVar(&opts.Delay, "delay", 2*time.Second, "Pause between batches")

	return cmd
}

// runBatches calls RunBatch with an advancing offset until the job completes.
func runBatches(ctx context.Context, svc service.ImportService, opts RunOptions, out io.Writer) (*model.BatchResult, error) {
	start := opts.StartRow
	for {
		res, err := svc.RunBatch(ctx, model.BatchRequest{
			JobID:     opts.JobID,
			FilePath:  opts.File,
			BatchSize: opts.BatchSize,
			StartRow:  start,
		})
		if err != nil {
			return res, err
		}

		fmt.Fprintf(out, "Imported %d of %d products.\n", res.Imported, res.Total)
		if res.Completed {
			fmt.Fprintf(out, "Import completed: %d created, %d updated, %d skipped, %d failed in the last batch.\n",
				res.Created, res.Updated, res.Skipped, res.Failed)
			return res, nil
		}
		start = res.NextRow

		if opts.Delay > 0 {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-time.After(opts.Delay):
			}
		}
	}
}
