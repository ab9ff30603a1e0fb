package fit

import (
	"errors"
	"fmt"

	"github.com/cwbudde/spectrafit/internal/failure"
)

var (
	// ErrMaxNfev is wrapped when the evaluation budget is exhausted.
	ErrMaxNfev = errors.New("maximum number of function evaluations exceeded")
	// ErrNonFinite is wrapped when the model yields NaN or Inf residuals
	// under the "raise" NaN policy.
	ErrNonFinite = errors.New("non-finite residuals")
	// ErrSingular is wrapped when the normal equations cannot be solved.
	ErrSingular = errors.New("singular normal matrix")
	// ErrUnknownMethod is wrapped for method names without a solver.
	ErrUnknownMethod = errors.New("unknown fit method")
	// ErrNoData is returned when the spectrum has no samples.
	ErrNoData = errors.New("no data to fit")

	errInvalidOption = errors.New("invalid option")
)

// FitFailure reports a solve that did not converge or hit a numerical error.
type FitFailure struct {
	Method string
	Nfev   int
	Err    error
}

func (e *FitFailure) Error() string {
	return fmt.Sprintf("fit failed (method=%s, nfev=%d): %v", e.Method, e.Nfev, e.Err)
}

func (e *FitFailure) Unwrap() error { return e.Err }

// FailureKind implements failure.Kinded.
func (e *FitFailure) FailureKind() failure.Kind { return failure.KindFit }

// ConfidenceIntervalFailure reports a confidence-interval estimate that
// could not be completed.
type ConfidenceIntervalFailure struct {
	Param string
	Err   error
}

func (e *ConfidenceIntervalFailure) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("confidence intervals: %v", e.Err)
	}
	return fmt.Sprintf("confidence interval of %s: %v", e.Param, e.Err)
}

func (e *ConfidenceIntervalFailure) Unwrap() error { return e.Err }

// FailureKind implements failure.Kinded.
func (e *ConfidenceIntervalFailure) FailureKind() failure.Kind { return failure.KindConfInterval }

func configError(format string, args ...any) error {
	return &failure.OpError{Op: "fit.run", Kind: failure.KindConfig, Err: fmt.Errorf(format, args...)}
}
