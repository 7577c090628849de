package runner

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lefseformat/internal/logging"
)

// RunBatch runs jobs concurrently, at most Batch.Concurrency at a time.
// Results are returned in job order. The first failure cancels the jobs that
// have not started and is returned wrapped with its input path.
func (r *Runner) RunBatch(ctx context.Context, jobs []Job) ([]*Result, error) {
	if len(jobs) == 0 {
		return nil, ErrNoJobs
	}
	if err := checkDistinctOutputs(jobs); err != nil {
		return nil, err
	}

	limit := r.cfg.Batch.Concurrency
	if limit < 1 {
		limit = 1
	}

	results := make([]*Result, len(jobs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	for i, job := range jobs {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			res, err := r.Run(egCtx, job)
			if err != nil {
				return fmt.Errorf("job %s: %w", job.Input, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	logging.Stage(r.logger, logging.CategoryRunner).Info("batch complete",
		zap.Int("jobs", len(jobs)),
		zap.Int("concurrency", limit),
	)
	return results, nil
}

// checkDistinctOutputs rejects batches where two jobs would write the same
// file, counting side tables.
func checkDistinctOutputs(jobs []Job) error {
	seen := make(map[string]string, len(jobs))
	claim := func(path, in string) error {
		if path == "" {
			return nil
		}
		if prev, ok := seen[path]; ok {
			return fmt.Errorf("inputs %s and %s both write %s", prev, in, path)
		}
		seen[path] = in
		return nil
	}
	for _, j := range jobs {
		if err := claim(j.Output, j.Input); err != nil {
			return err
		}
		if err := claim(j.Table, j.Input); err != nil {
			return err
		}
	}
	return nil
}
