package fit

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

// ParamResult is the fitted state of one model parameter. Stderr is NaN
// when no estimate is available.
type ParamResult struct {
	Name      string
	Component string
	Value     float64
	Stderr    float64
	Init      float64
	Min       float64
	Max       float64
	Vary      bool
	Expr      string
}

// Interval is a two-sided confidence interval at one level.
type Interval struct {
	Sigma float64
	Prob  float64
	Lower float64
	Upper float64
}

// Statistics are the goodness-of-fit figures of a solve.
type Statistics struct {
	Nfev     int
	Ndata    int
	Nvarys   int
	Nfree    int
	Chisqr   float64
	Redchi   float64
	AIC      float64
	BIC      float64
	RSquared float64
}

// Result is the outcome of Run.
type Result struct {
	Method     string
	Success    bool
	Message    string
	Iterations int
	Elapsed    time.Duration
	Statistics

	Params []ParamResult
	// Free lists the free parameter names; Covariance and Correlations
	// are indexed in this order and nil when unavailable.
	Free         []string
	Covariance   *mat.SymDense
	Correlations *mat.SymDense

	Energy     []float64
	Data       []float64
	Init       []float64
	Best       []float64
	Residual   []float64
	Components [][]float64
	// ComponentNames are <shape>_<key>, aligned with Components.
	ComponentNames []string

	// CI maps parameter names to intervals ordered by level; CINames keeps
	// the request order. CI is nil when intervals were not computed.
	CIMethod string
	CINames  []string
	CI       map[string][]Interval
	CIError  error
}

// Param returns the named parameter result.
func (r *Result) Param(name string) (ParamResult, bool) {
	for _, p := range r.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamResult{}, false
}

// Correlation returns the correlation of two free parameters, or NaN.
func (r *Result) Correlation(a, b string) float64 {
	if r.Correlations == nil {
		return math.NaN()
	}
	i, j := -1, -1
	for k, n := range r.Free {
		if n == a {
			i = k
		}
		if n == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return math.NaN()
	}
	return r.Correlations.At(i, j)
}

// statistics computes the fit statistics from the residuals at the
// solution. chisqr is floored for the information criteria.
func statistics(residual []float64, nvarys int) Statistics {
	var chisqr float64
	for _, r := range residual {
		chisqr += r * r
	}

	n := len(residual)
	st := Statistics{
		Ndata:  n,
		Nvarys: nvarys,
		Nfree:  n - nvarys,
		Chisqr: chisqr,
	}
	st.Redchi = chisqr / float64(max(1, st.Nfree))

	nll := float64(n) * math.Log(math.Max(chisqr, 1e-250)/float64(n))
	st.AIC = nll + 2*float64(nvarys)
	st.BIC = nll + math.Log(float64(n))*float64(nvarys)
	return st
}
