package config

import (
	"errors"
	"fmt"

	"github.com/cwbudde/spectrafit/internal/failure"
)

// ErrInvalid is wrapped by every validation error of this package.
var ErrInvalid = errors.New("invalid configuration")

// UnsupportedFormatError reports a configuration file with an extension
// outside the supported set.
type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("ERROR: Input file %s has not supported file format.\n"+
		"Supported fileformats are: '*.json', '*.yaml', and '*.toml'", e.Path)
}

// FailureKind implements failure.Kinded.
func (e *UnsupportedFormatError) FailureKind() failure.Kind { return failure.KindConfig }

// MissingKeyError reports a required block absent from the parameters block.
type MissingKeyError struct {
	Key   string
	Block string
}

func (e *MissingKeyError) Error() string {
	// The two messages differ on purpose; callers match on them verbatim.
	if e.Key == "optimizer" {
		return fmt.Sprintf("Missing key '%s' in '%s'!", e.Key, e.Block)
	}
	return fmt.Sprintf("Missing '%s' in '%s'!", e.Key, e.Block)
}

func (e *MissingKeyError) Unwrap() error { return ErrInvalid }

// FailureKind implements failure.Kinded.
func (e *MissingKeyError) FailureKind() failure.Kind { return failure.KindConfig }

// FieldError reports an invalid value at a location in the document.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return "config: " + e.Msg
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Msg)
}

func (e *FieldError) Unwrap() error { return ErrInvalid }

// FailureKind implements failure.Kinded.
func (e *FieldError) FailureKind() failure.Kind { return failure.KindConfig }

func fieldErrorf(field, format string, args ...any) error {
	return &FieldError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
