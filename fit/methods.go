package fit

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"gonum.org/v1/gonum/optimize"
)

// Method names.
const (
	MethodLeastSq      = "leastsq"
	MethodLeastSquares = "least_squares"
	MethodNelder       = "nelder"
	MethodLBFGS        = "lbfgs"
	MethodLBFGSB       = "lbfgsb"
	MethodBFGS         = "bfgs"
	MethodCG           = "cg"
	MethodGradient     = "gradient"
	MethodNewton       = "newton"
	MethodCMAES        = "cmaes"
)

type solution struct {
	u          []float64
	message    string
	iterations int
}

type solver interface {
	minimize(p *problem, u0 []float64, cfg Config) (solution, error)
}

var solvers = map[string]solver{
	MethodLeastSq:      levenbergMarquardt{},
	MethodLeastSquares: levenbergMarquardt{},
	MethodNelder:       gonumSolver{newMethod: func() optimize.Method { return &optimize.NelderMead{} }},
	MethodLBFGS:        gonumSolver{newMethod: func() optimize.Method { return &optimize.LBFGS{} }},
	MethodLBFGSB:       gonumSolver{newMethod: func() optimize.Method { return &optimize.LBFGS{} }},
	MethodBFGS:         gonumSolver{newMethod: func() optimize.Method { return &optimize.BFGS{} }},
	MethodCG:           gonumSolver{newMethod: func() optimize.Method { return &optimize.CG{} }},
	MethodGradient:     gonumSolver{newMethod: func() optimize.Method { return &optimize.GradientDescent{} }},
	MethodNewton:       gonumSolver{newMethod: func() optimize.Method { return &optimize.Newton{} }},
	MethodCMAES:        gonumSolver{newMethod: func() optimize.Method { return &optimize.CmaEsChol{} }},
}

// Methods returns the supported method names in sorted order.
func Methods() []string {
	names := make([]string, 0, len(solvers))
	for n := range solvers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func lookupSolver(name string) (solver, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if s, ok := solvers[key]; ok {
		return s, nil
	}

	best, bestDist := "", 3
	for _, n := range Methods() {
		if d := levenshtein.ComputeDistance(key, n); d < bestDist {
			best, bestDist = n, d
		}
	}
	if best != "" {
		return nil, configError("%w %q (did you mean %q?)", ErrUnknownMethod, name, best)
	}
	return nil, configError("%w %q (supported: %s)", ErrUnknownMethod, name, strings.Join(Methods(), ", "))
}
