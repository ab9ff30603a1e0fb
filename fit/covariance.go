package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// estimateCovariance returns inv(JᵀJ)·redchi for the Jacobian of the
// residuals with respect to the external free values ext.
func estimateCovariance(p *problem, ext []float64, redchi float64) (*mat.SymDense, error) {
	n, m := len(ext), len(p.y)

	var evalErr error
	f := func(dst, v []float64) {
		if err := p.evalExternal(dst, v); err != nil && evalErr == nil {
			evalErr = err
		}
	}

	jac := mat.NewDense(m, n, nil)
	jacobian(jac, f, ext, nil, fd.Central, centralStep)
	if evalErr != nil {
		return nil, evalErr
	}

	var jtj mat.SymDense
	jtj.SymOuterK(1, jac.T())

	var chol mat.Cholesky
	if !chol.Factorize(&jtj) {
		return nil, ErrSingular
	}
	cov := mat.NewSymDense(n, nil)
	if err := chol.InverseTo(cov); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	cov.ScaleSym(redchi, cov)

	for i := 0; i < n; i++ {
		if d := cov.At(i, i); !(d >= 0) || math.IsInf(d, 0) {
			return nil, fmt.Errorf("%w: variance of parameter %d is %g", ErrSingular, i, d)
		}
	}
	return cov, nil
}

// correlations normalizes a covariance matrix.
func correlations(cov *mat.SymDense) *mat.SymDense {
	n := cov.SymmetricDim()
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			d := math.Sqrt(cov.At(i, i) * cov.At(j, j))
			v := math.NaN()
			if d > 0 {
				v = cov.At(i, j) / d
			}
			out.SetSym(i, j, v)
		}
	}
	return out
}

// propagatedStderr returns the standard error of the expression parameter
// at model index idx, by linear propagation of cov through the expression.
func propagatedStderr(p *problem, ext []float64, idx int, cov *mat.SymDense) float64 {
	var evalErr error
	f := func(v []float64) float64 {
		values, err := p.model.Expand(v)
		if err != nil {
			evalErr = err
			return math.NaN()
		}
		return values[idx]
	}

	g := make([]float64, len(ext))
	gradient(g, f, ext)
	if evalErr != nil {
		return math.NaN()
	}

	gv := mat.NewVecDense(len(g), g)
	var cg mat.VecDense
	cg.MulVec(cov, gv)
	v := mat.Dot(gv, &cg)
	if v < 0 {
		return math.NaN()
	}
	return math.Sqrt(v)
}
