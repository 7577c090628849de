package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lefseformat/internal/runner"
)

// batchCmd formats several independent files concurrently
var batchCmd = &cobra.Command{
	Use:   "batch INPUT:OUTPUT[:TABLE]...",
	Short: "Format several input files concurrently",
	Long: `Formats each INPUT into OUTPUT with the shared options. An optional third
field names the side table for that job.

At most batch.concurrency jobs run at once; the first failure stops jobs that
have not started yet.

Example:
  lefse-format batch -c 2 -o 1000000 gut.txt:gut.json skin.txt:skin.json:skin.tsv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	jobs, err := parseJobs(args)
	if err != nil {
		return err
	}
	results, err := runner.New(cfg, logger).RunBatch(cmd.Context(), jobs)
	if err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), renderResults(results))
	}
	return nil
}

// parseJobs splits INPUT:OUTPUT[:TABLE] arguments.
func parseJobs(args []string) ([]runner.Job, error) {
	jobs := make([]runner.Job, 0, len(args))
	for _, arg := range args {
		parts := strings.Split(arg, ":")
		if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid job %q (want INPUT:OUTPUT[:TABLE])", arg)
		}
		job := runner.Job{Input: parts[0], Output: parts[1]}
		if len(parts) == 3 {
			job.Table = parts[2]
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
