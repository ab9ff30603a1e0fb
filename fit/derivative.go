package fit

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

const (
	forwardStep = 1.5e-8
	centralStep = 6e-6
)

// diffScale returns per-component scales so that finite-difference steps
// are relative to each component's magnitude.
func diffScale(x []float64) []float64 {
	s := make([]float64, len(x))
	for i, v := range x {
		s[i] = math.Max(math.Abs(v), 1)
	}
	return s
}

// jacobian approximates the m×n Jacobian of f at x into dst. origin, if not
// nil, is f(x) and saves one evaluation for forward differences.
func jacobian(dst *mat.Dense, f func(y, x []float64), x, origin []float64, formula fd.Formula, step float64) {
	scale := diffScale(x)
	z := make([]float64, len(x))
	for i := range x {
		z[i] = x[i] / scale[i]
	}

	xs := make([]float64, len(x))
	g := func(y, zz []float64) {
		for i := range zz {
			xs[i] = zz[i] * scale[i]
		}
		f(y, xs)
	}

	fd.Jacobian(dst, g, z, &fd.JacobianSettings{Formula: formula, OriginValue: origin, Step: step})

	rows, _ := dst.Dims()
	for j, s := range scale {
		for i := 0; i < rows; i++ {
			dst.Set(i, j, dst.At(i, j)/s)
		}
	}
}

// gradient approximates the gradient of the scalar f at x by central
// differences.
func gradient(dst []float64, f func([]float64) float64, x []float64) {
	scale := diffScale(x)
	z := make([]float64, len(x))
	for i := range x {
		z[i] = x[i] / scale[i]
	}

	xs := make([]float64, len(x))
	g := func(zz []float64) float64 {
		for i := range zz {
			xs[i] = zz[i] * scale[i]
		}
		return f(xs)
	}

	fd.Gradient(dst, g, z, &fd.Settings{Formula: fd.Central, Step: centralStep})
	for i, s := range scale {
		dst[i] /= s
	}
}
