package spectrum

import (
	"slices"

	"github.com/cwbudde/spectrafit/internal/failure"
)

// Preprocess returns a new spectrum with the configured pipeline applied.
// The input is never modified.
func Preprocess(s *Spectrum, opts ...Option) (*Spectrum, error) {
	cfg := ApplyOptions(opts...)

	out, err := New(s.Energy, s.Intensity)
	if err != nil {
		return nil, err
	}

	if monotonic(out.Energy) < 0 {
		slices.Reverse(out.Energy)
		slices.Reverse(out.Intensity)
	}

	if cfg.Shift != 0 {
		for i := range out.Energy {
			out.Energy[i] += cfg.Shift
		}
	}

	out, err = clip(out, cfg.Start, cfg.Stop)
	if err != nil {
		return nil, err
	}

	if cfg.SmoothWindow > 0 {
		smoothed, err := Smooth(out.Intensity, cfg.SmoothWindow)
		if err != nil {
			return nil, failure.Wrap("spectrum.preprocess", failure.KindData, err)
		}
		out.Intensity = smoothed
	}

	if cfg.Oversampling > 0 {
		out, err = Oversample(out, cfg.Oversampling, cfg.Interpolation)
		if err != nil {
			return nil, failure.Wrap("spectrum.preprocess", failure.KindData, err)
		}
	}

	return out, nil
}

// clip keeps the samples inside [start, stop]. s must be ascending.
func clip(s *Spectrum, start, stop float64) (*Spectrum, error) {
	lo, _ := slices.BinarySearch(s.Energy, start)
	hi := lo
	for hi < len(s.Energy) && s.Energy[hi] <= stop {
		hi++
	}
	if hi == lo {
		return nil, &EmptyRangeError{Start: start, Stop: stop}
	}
	if lo == 0 && hi == len(s.Energy) {
		return s, nil
	}

	return &Spectrum{
		Energy:    slices.Clone(s.Energy[lo:hi]),
		Intensity: slices.Clone(s.Intensity[lo:hi]),
	}, nil
}
