package domain

import (
	"errors"
	"strings"
)

// BuildError reports the fatal failure of a pipeline stage.
// It unwraps to both its Kind and the underlying cause.
type BuildError struct {
	Stage Stage
	Kind  error
	Err   error
}

// NewBuildError creates a BuildError for the given stage.
func NewBuildError(stage Stage, kind, err error) *BuildError {
	return &BuildError{Stage: stage, Kind: kind, Err: err}
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Message returns the stage and kind without the cause chain.
func (e *BuildError) Message() string {
	kind := "failed"
	if e.Kind != nil {
		kind = e.Kind.Error()
	}
	return "stage " + e.Stage.String() + ": " + kind
}

// Unwrap exposes the kind and the cause to errors.Is and errors.As.
func (e *BuildError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Cause returns the underlying error.
func (e *BuildError) Cause() error {
	return e.Err
}

// ExitCode maps an error returned by the pipeline to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, ErrCancelled) {
		return 130
	}
	var be *BuildError
	if errors.As(err, &be) {
		return be.Stage.ExitCode()
	}
	return 1
}
