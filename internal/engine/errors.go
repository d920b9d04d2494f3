package engine

import (
	"errors"
	"fmt"

	"github.com/plenix/tikrana/internal/failure"
)

// Stage names a step of the processing pipeline.
type Stage string

const (
	StageValidate      Stage = "validate"
	StageExtractHeader Stage = "extract_header"
	StageExtractDetail Stage = "extract_detail"
	StageComplete      Stage = "completeness"
	StageRender        Stage = "render"
)

var (
	// ErrBadPattern is returned when a replacement pattern does not compile.
	ErrBadPattern = errors.New("invalid replacement pattern")

	// ErrPanic is returned when a spreadsheet reader panics mid-run.
	ErrPanic = errors.New("unexpected failure while reading the workbook")
)

func init() {
	failure.Register(ErrBadPattern, failure.NewConfig, "",
		"Replacement patterns use RE2 syntax (no lookaround or backreferences)",
		"Check the replacements of the reported property",
	)
}

// StageError records which pipeline stage failed. Its message is the
// underlying error's so categorized messages stay readable.
type StageError struct {
	// Stage is the failing pipeline step.
	Stage Stage

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying failure.
func (e *StageError) Unwrap() error {
	return e.Err
}

func stageError(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}

// StageOf returns the failing stage recorded in err, or "" if none.
// Uses errors.As to handle wrapped errors.
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

// recovered converts a recovered panic value into an error.
func recovered(v any) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("%w: %w", ErrPanic, err)
	}
	return fmt.Errorf("%w: %v", ErrPanic, v)
}
