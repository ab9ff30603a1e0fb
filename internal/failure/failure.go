// Package failure classifies the errors produced along the fitting pipeline.
//
// Every stage returns errors that carry a [Kind], so the command layer can
// decide on exit codes and message formatting without importing the stage
// packages' concrete error types.
package failure

import (
	"errors"
	"fmt"
)

// Kind is a coarse-grained error category.
type Kind string

const (
	// KindConfig marks errors detected while reading or validating the
	// model configuration, before any solving happens.
	KindConfig Kind = "config"
	// KindData marks errors in the input series.
	KindData Kind = "data"
	// KindFit marks numerical failures during minimization.
	KindFit Kind = "fit"
	// KindConfInterval marks failures of confidence-interval estimation.
	KindConfInterval Kind = "conf_interval"
	// KindIO marks failures reading or writing files.
	KindIO Kind = "io"
)

// Kinded is implemented by errors that know their category.
type Kinded interface {
	FailureKind() Kind
}

// OpError wraps an underlying error with operation context and a kind.
type OpError struct {
	Op   string
	Kind Kind
	Path string
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := e.Op
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += ": " + e.Err.Error()
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// FailureKind implements [Kinded].
func (e *OpError) FailureKind() Kind { return e.Kind }

// New returns an OpError of the given kind with a formatted message.
func New(op string, kind Kind, format string, args ...any) error {
	return &OpError{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches op and kind to err. It returns nil for a nil err.
func Wrap(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Kind: kind, Err: err}
}

// KindOf returns the outermost kind found in err's chain, or "" if none.
func KindOf(err error) Kind {
	var k Kinded
	if errors.As(err, &k) {
		return k.FailureKind()
	}
	return ""
}

// IsKind reports whether err's chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if k, ok := err.(Kinded); ok && k.FailureKind() == kind {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
