// Package runner drives one formatting job end to end: read, orient, select
// labels, apply the missing-value policy, transform and write.
package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lefseformat/internal/config"
	"lefseformat/internal/format"
	"lefseformat/internal/input"
	"lefseformat/internal/logging"
	"lefseformat/internal/output"
)

// ErrNoJobs is returned by RunBatch when it is given nothing to do.
var ErrNoJobs = errors.New("no jobs")

// Job names one input file and where its dataset goes.
type Job struct {
	Input  string
	Output string
	// Table is an optional path for the tab-separated side table.
	Table string
}

// Result summarizes a finished job.
type Result struct {
	RunID    string
	Job      Job
	Samples  int
	Features int
	// Dropped counts the rows or columns removed by the missing-value policy.
	Dropped int
}

// Runner executes jobs against a fixed configuration.
type Runner struct {
	cfg    *config.Config
	logger *zap.Logger
}

// New creates a Runner. A nil logger is replaced by a no-op logger.
func New(cfg *config.Config, logger *zap.Logger) *Runner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{cfg: cfg, logger: logger}
}

// Config returns the runner's configuration.
func (r *Runner) Config() *config.Config { return r.cfg }

// Run executes job. The context is checked between stages; a cancelled job
// writes nothing.
func (r *Runner) Run(ctx context.Context, job Job) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), Job: job}
	log := logging.Stage(r.logger, logging.CategoryRunner).With(
		zap.String("run_id", res.RunID),
		zap.String("input", job.Input),
	)

	orient, err := input.ParseOrientation(r.cfg.Format.FeaturesOn)
	if err != nil {
		return nil, err
	}
	policy, err := input.ParseMissingPolicy(r.cfg.Format.MissingPolicy)
	if err != nil {
		return nil, err
	}
	outFormat, err := output.ParseFormat(r.cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	src, err := input.ReadFile(job.Input)
	if err != nil {
		return nil, err
	}
	inLog := logging.Stage(r.logger, logging.CategoryInput).With(zap.String("run_id", res.RunID))
	inLog.Debug("input read",
		zap.String("format", string(src.Format)),
		zap.Int("rows", len(src.Matrix.Rows)),
	)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// BIOM tables always carry samples on columns.
	if src.Format != input.FormatBIOM {
		if src.Matrix, err = input.Orient(src.Matrix, orient); err != nil {
			return nil, fmt.Errorf("orient %s: %w", job.Input, err)
		}
	}

	req, diags := input.ResolveRequest(src, r.labelOptions())
	for _, d := range diags {
		inLog.Warn(d.Message, zap.String("stage", d.Stage))
	}

	raw, req := input.DropUnusedMetadata(src, req)
	raw, req, dropped := input.ApplyMissingPolicy(raw, policy, req)
	res.Dropped = dropped
	if dropped > 0 {
		inLog.Info("missing values dropped",
			zap.String("policy", string(policy)),
			zap.Int("dropped", dropped),
		)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds, err := format.Transform(raw, req, r.formatOptions(res.RunID))
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", job.Input, err)
	}
	res.Samples = ds.Features.Samples()
	res.Features = ds.Features.Len()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outLog := logging.Stage(r.logger, logging.CategoryOutput).With(zap.String("run_id", res.RunID))
	if err := output.Write(job.Output, outFormat, ds); err != nil {
		return nil, err
	}
	outLog.Debug("dataset written", zap.String("path", job.Output), zap.String("format", string(outFormat)))

	if job.Table != "" {
		if err := output.WriteTableFile(job.Table, ds); err != nil {
			return nil, err
		}
		outLog.Debug("side table written", zap.String("path", job.Table))
	}

	log.Info("job complete",
		zap.String("output", job.Output),
		zap.Int("samples", res.Samples),
		zap.Int("features", res.Features),
	)
	return res, nil
}

func (r *Runner) labelOptions() input.LabelOptions {
	f := r.cfg.Format
	return input.LabelOptions{
		Class:        f.Class,
		Subclass:     f.Subclass,
		Subject:      f.Subject,
		BIOMClass:    f.BIOMClass,
		BIOMSubclass: f.BIOMSubclass,
	}
}

func (r *Runner) formatOptions(runID string) format.Options {
	opts := format.DefaultOptions()
	opts.Norm = r.cfg.Format.NormValue
	opts.MergeSmallSubclasses = r.cfg.Format.MergeSmallSubclasses
	opts.MinSubclassSize = r.cfg.Format.SubclassMinCard
	opts.Logger = logging.Stage(r.logger, logging.CategoryFormat).With(zap.String("run_id", runID))
	return opts
}
