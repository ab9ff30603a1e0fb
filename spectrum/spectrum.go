package spectrum

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/cwbudde/spectrafit/internal/failure"
)

// ErrInvalidSpectrum is wrapped by validation errors from [New].
var ErrInvalidSpectrum = errors.New("invalid spectrum")

// Spectrum is a pair of aligned energy and intensity samples.
type Spectrum struct {
	Energy    []float64
	Intensity []float64
}

// New validates and copies the given samples. The energy axis must be
// strictly monotonic in either direction and every value finite.
func New(energy, intensity []float64) (*Spectrum, error) {
	if len(energy) == 0 {
		return nil, invalid("no samples")
	}
	if len(energy) != len(intensity) {
		return nil, invalid("energy has %d samples, intensity %d", len(energy), len(intensity))
	}
	for i := range energy {
		if math.IsNaN(energy[i]) || math.IsInf(energy[i], 0) {
			return nil, invalid("energy[%d] is not finite", i)
		}
		if math.IsNaN(intensity[i]) || math.IsInf(intensity[i], 0) {
			return nil, invalid("intensity[%d] is not finite", i)
		}
	}
	if monotonic(energy) == 0 {
		return nil, invalid("energy axis is not strictly monotonic")
	}

	return &Spectrum{
		Energy:    slices.Clone(energy),
		Intensity: slices.Clone(intensity),
	}, nil
}

// Len returns the number of samples.
func (s *Spectrum) Len() int { return len(s.Energy) }

// Clone returns a deep copy.
func (s *Spectrum) Clone() *Spectrum {
	return &Spectrum{
		Energy:    slices.Clone(s.Energy),
		Intensity: slices.Clone(s.Intensity),
	}
}

// Span returns the first and last energy.
func (s *Spectrum) Span() (float64, float64) {
	if len(s.Energy) == 0 {
		return math.NaN(), math.NaN()
	}
	return s.Energy[0], s.Energy[len(s.Energy)-1]
}

// monotonic returns 1 for strictly ascending, -1 for strictly descending and
// 0 otherwise. A single sample counts as ascending.
func monotonic(x []float64) int {
	if len(x) < 2 {
		return 1
	}

	dir := 1
	if x[1] < x[0] {
		dir = -1
	}
	for i := 1; i < len(x); i++ {
		d := x[i] - x[i-1]
		if d == 0 || (d > 0) != (dir > 0) {
			return 0
		}
	}
	return dir
}

func invalid(format string, args ...any) error {
	return failure.Wrap("spectrum.new", failure.KindData,
		fmt.Errorf("%w: %s", ErrInvalidSpectrum, fmt.Sprintf(format, args...)))
}
