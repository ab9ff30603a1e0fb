package spectrum

import (
	"errors"
	"fmt"
	"sort"
)

// ErrTooFewSamples is returned when oversampling a single sample.
var ErrTooFewSamples = errors.New("spectrum: oversampling needs at least two samples")

// Oversample resamples s onto len*factor evenly spaced energies spanning the
// same interval. s must be ascending.
func Oversample(s *Spectrum, factor int, mode Interpolation) (*Spectrum, error) {
	if factor < 2 {
		return nil, fmt.Errorf("spectrum: oversampling factor %d must be at least 2", factor)
	}
	n := s.Len()
	if n < 2 {
		return nil, ErrTooFewSamples
	}

	m := n * factor
	first, last := s.Span()
	step := (last - first) / float64(m-1)

	out := &Spectrum{
		Energy:    make([]float64, m),
		Intensity: make([]float64, m),
	}
	for i := 0; i < m; i++ {
		e := first + float64(i)*step
		if i == m-1 {
			e = last
		}
		out.Energy[i] = e
		out.Intensity[i] = interpolateAt(s.Energy, s.Intensity, e, mode)
	}

	return out, nil
}

// interpolateAt evaluates the sampled function (x, y) at e. x is ascending
// and e lies within its span.
func interpolateAt(x, y []float64, e float64, mode Interpolation) float64 {
	n := len(x)
	j := sort.SearchFloat64s(x, e)
	if j < n && x[j] == e {
		return y[j]
	}
	if j == 0 {
		return y[0]
	}
	if j >= n {
		return y[n-1]
	}

	i := j - 1
	t := (e - x[i]) / (x[j] - x[i])

	if mode == Hermite && n >= 4 {
		ym1 := y[max(i-1, 0)]
		y2 := y[min(j+1, n-1)]
		return Hermite4(t, ym1, y[i], y[j], y2)
	}

	return y[i] + t*(y[j]-y[i])
}

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}
