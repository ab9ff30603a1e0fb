package fit

import (
	"fmt"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// gonumSolver minimizes half the residual sum of squares with a
// gonum/optimize method. Derivatives come from finite differences.
type gonumSolver struct {
	newMethod func() optimize.Method
}

func (s gonumSolver) minimize(p *problem, u0 []float64, cfg Config) (solution, error) {
	if len(u0) == 0 {
		r := make([]float64, len(p.y))
		p.residuals(r, u0)
		if p.err != nil {
			return solution{}, p.err
		}
		return solution{u: u0, message: "no free parameters"}, nil
	}

	prob := optimize.Problem{
		Func: p.cost,
		Grad: func(grad, u []float64) {
			gradient(grad, p.cost, u)
		},
		Hess: func(hess *mat.SymDense, u []float64) {
			fd.Hessian(hess, p.cost, u, nil)
		},
	}

	settings := &optimize.Settings{
		Recorder: stopRecorder{p},
		Converger: &optimize.FunctionConverge{
			Relative:   cfg.Ftol,
			Iterations: 20,
		},
	}

	res, err := optimize.Minimize(prob, u0, settings, s.newMethod())
	if p.err != nil {
		return solution{}, p.err
	}
	if res == nil {
		return solution{}, err
	}

	switch res.Status {
	case optimize.Success, optimize.FunctionConvergence, optimize.GradientThreshold,
		optimize.StepConvergence, optimize.MethodConverge:
		return solution{u: res.X, message: res.Status.String(), iterations: res.Stats.MajorIterations}, nil
	case optimize.FunctionEvaluationLimit, optimize.IterationLimit:
		return solution{}, fmt.Errorf("%w (%s)", ErrMaxNfev, res.Status)
	default:
		if err != nil {
			return solution{}, err
		}
		return solution{}, fmt.Errorf("optimizer stopped: %s", res.Status)
	}
}

// stopRecorder aborts the optimization once the problem records an error,
// for instance an exhausted evaluation budget or a cancelled context.
type stopRecorder struct {
	p *problem
}

func (r stopRecorder) Init() error { return nil }

func (r stopRecorder) Record(*optimize.Location, optimize.Operation, *optimize.Stats) error {
	return r.p.err
}
