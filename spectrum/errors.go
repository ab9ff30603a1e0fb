package spectrum

import (
	"fmt"

	"github.com/cwbudde/spectrafit/internal/failure"
)

// EmptyRangeError reports an energy window that keeps no samples.
type EmptyRangeError struct {
	Start float64
	Stop  float64
}

func (e *EmptyRangeError) Error() string {
	return fmt.Sprintf("no samples in energy range [%g, %g]", e.Start, e.Stop)
}

// FailureKind implements failure.Kinded.
func (e *EmptyRangeError) FailureKind() failure.Kind { return failure.KindData }

// SmoothingError reports a smoothing window that does not fit the data.
type SmoothingError struct {
	Window  int
	Samples int
	Reason  string
}

func (e *SmoothingError) Error() string {
	return fmt.Sprintf("smoothing window %d over %d samples: %s", e.Window, e.Samples, e.Reason)
}

// FailureKind implements failure.Kinded.
func (e *SmoothingError) FailureKind() failure.Kind { return failure.KindData }
