package pipeline

import (
	"errors"
	"fmt"
)

// ErrNoContent is returned when the page was fetched but no text could be
// extracted from it. Its message is part of the tool's output contract.
var ErrNoContent = errors.New("No content extracted from URL") //nolint:staticcheck // user-facing message

// Kind classifies a pipeline failure for logs and metrics. It never changes
// the envelope, which only carries the error message.
type Kind string

const (
	// KindNone is the kind of a successful invocation.
	KindNone         Kind = ""
	KindFetch        Kind = "fetch"
	KindEmptyContent Kind = "empty_content"
	KindInference    Kind = "inference"
	KindUnexpected   Kind = "unexpected"
)

// StageError tags an error with the pipeline stage that produced it. Its
// message is the underlying message unchanged.
type StageError struct {
	Kind Kind
	Err  error
}

func (e *StageError) Error() string {
	return e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// UnexpectedError wraps failures outside the expected taxonomy: extractor
// errors and recovered panics.
type UnexpectedError struct {
	Err error
	// Panic holds the recovered value when the failure was a panic.
	Panic any
}

func (e *UnexpectedError) Error() string {
	return e.Err.Error()
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

func newPanicError(recovered any) *UnexpectedError {
	if err, ok := recovered.(error); ok {
		return &UnexpectedError{Err: fmt.Errorf("unexpected error: %w", err), Panic: recovered}
	}
	return &UnexpectedError{Err: fmt.Errorf("unexpected error: %v", recovered), Panic: recovered}
}

// KindOf returns the classification of err, [KindNone] for nil and
// [KindUnexpected] for errors that did not come out of a stage.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Kind
	}
	return KindUnexpected
}
