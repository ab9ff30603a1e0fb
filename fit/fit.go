package fit

import (
	"context"
	"math"
	"time"

	"github.com/cwbudde/spectrafit/config"
	"github.com/cwbudde/spectrafit/internal/failure"
	"github.com/cwbudde/spectrafit/model"
	"github.com/cwbudde/spectrafit/spectrum"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Run fits m to s. Configuration problems (unknown method, invalid NaN
// policy) are reported before solving. A solve that fails returns a
// *FitFailure.
func Run(ctx context.Context, m *model.Model, s *spectrum.Spectrum, opts ...Option) (*Result, error) {
	cfg := ApplyOptions(opts...)
	log := cfg.Logger.WithName("fit")

	if s == nil || s.Len() == 0 {
		return nil, failure.Wrap("fit.run", failure.KindData, ErrNoData)
	}
	solver, err := lookupSolver(cfg.Method)
	if err != nil {
		return nil, err
	}
	switch cfg.NaNPolicy {
	case NaNRaise, NaNPropagate, NaNOmit:
	default:
		return nil, configError("%w: nan policy %q", errInvalidOption, cfg.NaNPolicy)
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	started := time.Now()
	p := newProblem(ctx, m, s.Energy, s.Intensity, cfg)
	log.V(1).Info("starting fit", "method", cfg.Method, "ndata", s.Len(),
		"nvarys", len(p.base), "maxNfev", p.maxNfev)

	sol, err := solver.minimize(p, p.start(), cfg)
	if err != nil {
		return nil, &FitFailure{Method: cfg.Method, Nfev: p.nfev, Err: err}
	}

	ext := p.external(sol.u)
	values, err := m.Expand(ext)
	if err != nil {
		return nil, &FitFailure{Method: cfg.Method, Nfev: p.nfev, Err: err}
	}

	res := &Result{
		Method:     cfg.Method,
		Success:    true,
		Message:    sol.message,
		Iterations: sol.iterations,
		Free:       m.FreeNames(),
		Energy:     append([]float64(nil), s.Energy...),
		Data:       append([]float64(nil), s.Intensity...),
	}

	if res.Init, err = m.Eval(s.Energy, m.Initial()); err != nil {
		return nil, &FitFailure{Method: cfg.Method, Nfev: p.nfev, Err: err}
	}
	if res.Best, err = m.Eval(s.Energy, values); err != nil {
		return nil, &FitFailure{Method: cfg.Method, Nfev: p.nfev, Err: err}
	}
	if res.Components, err = m.EvalComponents(s.Energy, values); err != nil {
		return nil, &FitFailure{Method: cfg.Method, Nfev: p.nfev, Err: err}
	}
	for _, c := range m.Components() {
		res.ComponentNames = append(res.ComponentNames, c.Name)
	}

	res.Residual = make([]float64, s.Len())
	if err := p.evalExternal(res.Residual, ext); err != nil {
		return nil, &FitFailure{Method: cfg.Method, Nfev: p.nfev, Err: err}
	}
	res.Statistics = statistics(res.Residual, len(ext))
	res.Nfev = p.nfev
	res.RSquared = stat.RSquaredFrom(res.Best, res.Data, nil)

	if math.IsNaN(res.Chisqr) || math.IsInf(res.Chisqr, 0) {
		return nil, &FitFailure{Method: cfg.Method, Nfev: p.nfev, Err: ErrNonFinite}
	}

	if cfg.Covariance && len(ext) > 0 && res.Nfree > 0 {
		cov, err := estimateCovariance(p, ext, res.Redchi)
		if err != nil {
			log.Info("covariance unavailable", "reason", err.Error())
		} else {
			res.Covariance = cov
			res.Correlations = correlations(cov)
		}
	}

	res.Params = paramResults(m, p, values, ext, res.Covariance)

	if cfg.ConfInterval != nil {
		computeIntervals(res, p, ext, cfg)
	}

	res.Elapsed = time.Since(started)
	log.V(1).Info("fit finished", "message", res.Message, "nfev", res.Nfev,
		"chisqr", res.Chisqr, "redchi", res.Redchi, "elapsed", res.Elapsed)

	return res, nil
}

func paramResults(m *model.Model, p *problem, values, ext []float64, cov *mat.SymDense) []ParamResult {
	comps := m.Components()
	freePos := map[int]int{}
	for k, i := range m.FreeIndices() {
		freePos[i] = k
	}

	out := make([]ParamResult, 0, m.NumParams())
	for i, mp := range m.Params() {
		pr := ParamResult{
			Name:      mp.Name,
			Component: comps[mp.Component].Name,
			Value:     values[i],
			Stderr:    math.NaN(),
			Init:      mp.Init,
			Min:       mp.Min,
			Max:       mp.Max,
			Vary:      mp.Free(),
			Expr:      mp.Expr,
		}

		if cov != nil {
			if k, ok := freePos[i]; ok {
				pr.Stderr = math.Sqrt(cov.At(k, k))
			} else if mp.Expr != "" {
				pr.Stderr = propagatedStderr(p, ext, i, cov)
			}
		}
		out = append(out, pr)
	}
	return out
}

func computeIntervals(res *Result, p *problem, ext []float64, cfg Config) {
	ci := cfg.ConfInterval
	res.CIMethod = ci.Method

	var err error
	switch ci.Method {
	case config.CIMethodProfile:
		res.CI, res.CINames, err = profileIntervals(p, ext, res, ci, cfg)
	default:
		res.CIMethod = config.CIMethodCovariance
		res.CI, res.CINames, err = covarianceIntervals(res, ci)
	}

	if err != nil {
		res.CI, res.CINames = nil, nil
		res.CIError = err
		cfg.Logger.WithName("fit").Info("confidence intervals unavailable", "reason", err.Error())
	}
}
