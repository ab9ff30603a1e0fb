package model

import (
	"errors"
	"fmt"

	"github.com/cwbudde/spectrafit/internal/failure"
)

var (
	// ErrUnknownParameter is wrapped when an expression or a peak refers to a
	// parameter the model does not have.
	ErrUnknownParameter = errors.New("unknown parameter")
	// ErrCycle is wrapped when expressions depend on each other circularly.
	ErrCycle = errors.New("expression cycle")
	// ErrValues is returned for a value vector of the wrong length.
	ErrValues = errors.New("parameter vector length mismatch")
)

// UnknownShapeError reports a peak whose shape is not registered.
type UnknownShapeError struct {
	Key   string
	Shape string
	Err   error
}

func (e *UnknownShapeError) Error() string {
	return fmt.Sprintf("peak %s: %v", e.Key, e.Err)
}

func (e *UnknownShapeError) Unwrap() error { return e.Err }

// FailureKind implements failure.Kinded.
func (e *UnknownShapeError) FailureKind() failure.Kind { return failure.KindConfig }

func configError(format string, args ...any) error {
	return &failure.OpError{Op: "model.compose", Kind: failure.KindConfig, Err: fmt.Errorf(format, args...)}
}
