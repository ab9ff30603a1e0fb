package fit

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	lmInitialDamping = 1e-3
	lmMaxDamping     = 1e16
	lmMinDiag        = 1e-12
)

// levenbergMarquardt minimizes the residual sum of squares with Marquardt
// diagonal scaling and Nielsen's damping update.
type levenbergMarquardt struct{}

func (levenbergMarquardt) minimize(p *problem, u0 []float64, cfg Config) (solution, error) {
	n, m := len(u0), len(p.y)
	log := cfg.Logger.WithName("leastsq")

	u := slices.Clone(u0)
	r := make([]float64, m)
	p.residuals(r, u)
	if p.err != nil {
		return solution{}, p.err
	}
	cost := p.halfSumSquares(r)
	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		return solution{}, ErrNonFinite
	}
	if n == 0 {
		return solution{u: u, message: "no free parameters"}, nil
	}

	jac := mat.NewDense(m, n, nil)
	var (
		jtj    mat.SymDense
		grad   = mat.NewVecDense(n, nil)
		aug    = mat.NewSymDense(n, nil)
		step   = mat.NewVecDense(n, nil)
		chol   mat.Cholesky
		trial  = make([]float64, n)
		rTrial = make([]float64, m)
		lambda float64
		nu     = 2.0
	)

	for iter := 1; ; iter++ {
		jacobian(jac, p.residuals, u, r, fd.Forward, forwardStep)
		if p.err != nil {
			return solution{}, p.err
		}

		jtj.SymOuterK(1, jac.T())
		grad.MulVec(jac.T(), mat.NewVecDense(m, r))

		if gmax := mat.Norm(grad, math.Inf(1)); gmax <= cfg.Gtol {
			return solution{u: u, message: "gradient below gtol", iterations: iter}, nil
		}
		if cost == 0 {
			return solution{u: u, message: "exact fit", iterations: iter}, nil
		}

		if iter == 1 {
			var dmax float64
			for i := 0; i < n; i++ {
				dmax = math.Max(dmax, jtj.At(i, i))
			}
			lambda = lmInitialDamping * math.Max(dmax, lmMinDiag)
		}

		for {
			for i := 0; i < n; i++ {
				for j := i; j < n; j++ {
					aug.SetSym(i, j, jtj.At(i, j))
				}
				aug.SetSym(i, i, jtj.At(i, i)+lambda*math.Max(jtj.At(i, i), lmMinDiag))
			}

			if !chol.Factorize(aug) {
				lambda *= nu
				nu *= 2
				if lambda > lmMaxDamping {
					return solution{}, ErrSingular
				}
				continue
			}
			if err := chol.SolveVecTo(step, grad); err != nil {
				return solution{}, ErrSingular
			}
			step.ScaleVec(-1, step)

			stepNorm := mat.Norm(step, 2)
			uNorm := floats.Norm(u, 2)
			for i := range trial {
				trial[i] = u[i] + step.AtVec(i)
			}

			p.residuals(rTrial, trial)
			if p.err != nil {
				return solution{}, p.err
			}
			costTrial := p.halfSumSquares(rTrial)

			if costTrial < cost {
				// Predicted reduction of the damped quadratic model.
				var predicted float64
				for i := 0; i < n; i++ {
					s := step.AtVec(i)
					predicted += s * (lambda*math.Max(jtj.At(i, i), lmMinDiag)*s - grad.AtVec(i))
				}
				predicted *= 0.5

				actual := cost - costTrial
				rho := actual / predicted
				lambda *= math.Max(1.0/3, 1-math.Pow(2*rho-1, 3))
				nu = 2

				copy(u, trial)
				copy(r, rTrial)
				prev := cost
				cost = costTrial

				log.V(2).Info("step accepted", "iter", iter, "cost", cost, "lambda", lambda, "nfev", p.nfev)

				if actual <= cfg.Ftol*prev {
					return solution{u: u, message: "relative reduction below ftol", iterations: iter}, nil
				}
				if stepNorm <= cfg.Xtol*(uNorm+cfg.Xtol) {
					return solution{u: u, message: "relative step below xtol", iterations: iter}, nil
				}
				break
			}

			if stepNorm <= cfg.Xtol*(uNorm+cfg.Xtol) {
				return solution{u: u, message: "relative step below xtol", iterations: iter}, nil
			}
			lambda *= nu
			nu *= 2
			if lambda > lmMaxDamping {
				return solution{u: u, message: "damping saturated", iterations: iter}, nil
			}
		}
	}
}
