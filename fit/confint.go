package fit

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/cwbudde/spectrafit/config"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	errNoStderr     = errors.New("no standard error available")
	errNotFree      = errors.New("parameter is not free")
	errNoDOF        = errors.New("no degrees of freedom left")
	errPerfectFit   = errors.New("chi-square is zero")
	errLimitMissing = errors.New("limit not bracketed within maxiter steps")
)

// sigmaProb converts a level in standard deviations into a two-sided
// probability.
func sigmaProb(sigma float64) float64 {
	return math.Erf(sigma / math.Sqrt2)
}

func ciTargets(res *Result, ci *config.ConfInterval) ([]string, error) {
	if res.Nfree <= 0 {
		return nil, &ConfidenceIntervalFailure{Err: errNoDOF}
	}
	names := ci.Params
	if len(names) == 0 {
		names = res.Free
	}
	for _, n := range names {
		if !slices.Contains(res.Free, n) {
			return nil, &ConfidenceIntervalFailure{Param: n, Err: errNotFree}
		}
	}
	return slices.Clone(names), nil
}

// covarianceIntervals uses Student-t quantiles of the standard errors.
func covarianceIntervals(res *Result, ci *config.ConfInterval) (map[string][]Interval, []string, error) {
	names, err := ciTargets(res, ci)
	if err != nil {
		return nil, nil, err
	}

	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(res.Nfree)}
	out := make(map[string][]Interval, len(names))
	for _, name := range names {
		p, _ := res.Param(name)
		if math.IsNaN(p.Stderr) {
			return nil, nil, &ConfidenceIntervalFailure{Param: name, Err: errNoStderr}
		}

		for _, s := range ci.Sigmas {
			prob := sigmaProb(s)
			q := t.Quantile(0.5 + prob/2)
			out[name] = append(out[name], Interval{
				Sigma: s,
				Prob:  prob,
				Lower: p.Value - q*p.Stderr,
				Upper: p.Value + q*p.Stderr,
			})
		}
	}
	return out, names, nil
}

// profileIntervals locates, for every level, the values of each parameter
// at which the F-test probability of the refitted chi-square reaches the
// level. The other free parameters are re-optimized at every trial value.
func profileIntervals(p *problem, best []float64, res *Result, ci *config.ConfInterval, cfg Config) (map[string][]Interval, []string, error) {
	names, err := ciTargets(res, ci)
	if err != nil {
		return nil, nil, err
	}
	if res.Chisqr == 0 {
		return nil, nil, &ConfidenceIntervalFailure{Err: errPerfectFit}
	}

	dof := float64(res.Nfree)
	ftest := distuv.F{D1: 1, D2: dof}
	log := cfg.Logger.WithName("profile")

	out := make(map[string][]Interval, len(names))
	for _, name := range names {
		k := slices.Index(res.Free, name)
		pr, _ := res.Param(name)

		probAt := func(v float64) (float64, error) {
			chi, err := pinnedChisqr(p, best, k, v, cfg)
			if err != nil {
				return 0, err
			}
			return ftest.CDF((chi/res.Chisqr - 1) * dof), nil
		}

		step := pr.Stderr
		if math.IsNaN(step) || step <= 0 {
			step = math.Max(0.01*math.Abs(pr.Value), 1e-3)
		}

		for _, s := range ci.Sigmas {
			prob := sigmaProb(s)
			iv := Interval{Sigma: s, Prob: prob}

			for _, dir := range []float64{-1, 1} {
				limit, err := profileSearch(probAt, pr.Value, dir*step, p.lo[k], p.hi[k], prob, ci.MaxIter)
				if err != nil {
					return nil, nil, &ConfidenceIntervalFailure{Param: name, Err: err}
				}
				if dir < 0 {
					iv.Lower = limit
				} else {
					iv.Upper = limit
				}
			}

			log.V(1).Info("interval", "param", name, "sigma", s, "lower", iv.Lower, "upper", iv.Upper)
			out[name] = append(out[name], iv)
		}
	}
	return out, names, nil
}

// profileSearch walks from v0 in steps of step until probAt reaches target,
// then bisects. Reaching a bound returns the bound.
func profileSearch(probAt func(float64) (float64, error), v0, step, lo, hi, target float64, maxIter int) (float64, error) {
	a := v0
	for i := 0; ; i++ {
		if i >= maxIter {
			return 0, errLimitMissing
		}

		b := math.Max(lo, math.Min(hi, a+step))
		pb, err := probAt(b)
		if err != nil {
			return 0, err
		}
		if pb >= target {
			return bisect(probAt, a, b, target, math.Abs(step)*1e-6, maxIter)
		}
		if b == lo || b == hi {
			return b, nil
		}
		a = b
		step *= 1.5
	}
}

// bisect narrows [a, b] where probAt(a) < target <= probAt(b).
func bisect(probAt func(float64) (float64, error), a, b, target, tol float64, maxIter int) (float64, error) {
	for i := 0; i < maxIter && math.Abs(b-a) > tol; i++ {
		mid := 0.5 * (a + b)
		pm, err := probAt(mid)
		if err != nil {
			return 0, err
		}
		if pm < target {
			a = mid
		} else {
			b = mid
		}
	}
	return 0.5 * (a + b), nil
}

// pinnedChisqr refits with free parameter k held at v and returns the
// resulting chi-square.
func pinnedChisqr(p *problem, best []float64, k int, v float64, cfg Config) (float64, error) {
	q := p.pinned(k, v, best)
	sol, err := levenbergMarquardt{}.minimize(q, q.start(), cfg)
	if err != nil {
		return 0, fmt.Errorf("refit at %g: %w", v, err)
	}

	r := make([]float64, len(q.y))
	if err := q.evalExternal(r, q.external(sol.u)); err != nil {
		return 0, err
	}
	return floats.Dot(r, r), nil
}
