package spectrum

import (
	"fmt"
	"math"
	"strings"
)

// Interpolation selects how oversampled points are computed.
type Interpolation int

const (
	// Linear interpolates between the two neighbouring samples.
	Linear Interpolation = iota
	// Hermite uses 4-point cubic Hermite interpolation.
	Hermite
)

func (i Interpolation) String() string {
	switch i {
	case Linear:
		return "linear"
	case Hermite:
		return "hermite"
	default:
		return "unknown"
	}
}

// ParseInterpolation maps a mode name onto an Interpolation. Case and
// surrounding space are ignored.
func ParseInterpolation(name string) (Interpolation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linear":
		return Linear, nil
	case "hermite":
		return Hermite, nil
	default:
		return Linear, fmt.Errorf("unknown interpolation %q (want linear or hermite)", name)
	}
}

// PolyOrder is the Savitzky-Golay polynomial order.
const PolyOrder = 3

// Config holds the preprocessing settings.
type Config struct {
	Shift         float64
	Start         float64
	Stop          float64
	SmoothWindow  int
	Oversampling  int
	Interpolation Interpolation
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig keeps every sample and applies nothing.
func DefaultConfig() Config {
	return Config{
		Start: math.Inf(-1),
		Stop:  math.Inf(1),
	}
}

// WithShift adds shift to every energy sample.
func WithShift(shift float64) Option {
	return func(cfg *Config) {
		if !math.IsNaN(shift) && !math.IsInf(shift, 0) {
			cfg.Shift = shift
		}
	}
}

// WithRange keeps samples with start <= energy <= stop. Infinite bounds are
// open.
func WithRange(start, stop float64) Option {
	return func(cfg *Config) {
		if !math.IsNaN(start) {
			cfg.Start = start
		}
		if !math.IsNaN(stop) {
			cfg.Stop = stop
		}
	}
}

// WithSmoothing enables Savitzky-Golay smoothing with the given window
// length. Values below 2 disable it.
func WithSmoothing(window int) Option {
	return func(cfg *Config) {
		if window >= 2 {
			cfg.SmoothWindow = window
		}
	}
}

// WithOversampling resamples onto factor times as many evenly spaced points.
// Values below 2 disable it.
func WithOversampling(factor int) Option {
	return func(cfg *Config) {
		if factor >= 2 {
			cfg.Oversampling = factor
		}
	}
}

// WithInterpolation selects the oversampling interpolation.
func WithInterpolation(mode Interpolation) Option {
	return func(cfg *Config) {
		cfg.Interpolation = mode
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
