package format

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat marks malformed input: a non-numeric feature value or ragged rows.
	ErrFormat = errors.New("format error")

	// ErrHierarchyUnresolved is returned when ancestor completion cannot reach a fixed point.
	ErrHierarchyUnresolved = errors.New("hierarchy completion did not converge")

	// ErrNoSamples is returned for a matrix without sample columns.
	ErrNoSamples = errors.New("matrix has no samples")
)

// Stage names used in StageError and log fields.
const (
	StageValidate  = "validate"
	StageLabels    = "labels"
	StageSort      = "sort"
	StageParse     = "parse"
	StageHierarchy = "hierarchy"
	StageNormalize = "normalize"
)

// StageError records which pipeline stage failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}
