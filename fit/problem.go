package fit

import (
	"context"
	"math"
	"slices"

	"github.com/cwbudde/algo-vecmath"
	"github.com/cwbudde/spectrafit/model"
	"gonum.org/v1/gonum/floats"
)

// problem is the least-squares objective seen by the solvers. Solvers work
// on internal (unbounded) coordinates of the active free parameters; the
// remaining free parameters stay at their base values.
type problem struct {
	ctx   context.Context
	model *model.Model
	x, y  []float64

	// lo and hi are the bounds of every free parameter.
	lo, hi []float64
	// base holds the external values of every free parameter.
	base []float64
	// active lists the free-parameter positions the solver adjusts.
	active []int

	maxNfev   int
	nanPolicy string
	nfev      int
	err       error

	sq []float64
}

func newProblem(ctx context.Context, m *model.Model, x, y []float64, cfg Config) *problem {
	free := m.FreeIndices()
	params := m.Params()

	p := &problem{
		ctx:       ctx,
		model:     m,
		x:         x,
		y:         y,
		lo:        make([]float64, len(free)),
		hi:        make([]float64, len(free)),
		base:      m.InitialFree(),
		active:    make([]int, len(free)),
		maxNfev:   cfg.MaxNfev,
		nanPolicy: cfg.NaNPolicy,
		sq:        make([]float64, len(y)),
	}
	for k, i := range free {
		p.lo[k], p.hi[k] = params[i].Min, params[i].Max
		p.active[k] = k
	}
	if p.maxNfev <= 0 {
		p.maxNfev = 2000 * (len(free) + 1)
	}
	return p
}

// pinned returns a copy of p that keeps free parameter k at value and
// adjusts the others, starting from base.
func (p *problem) pinned(k int, value float64, base []float64) *problem {
	q := *p
	q.base = slices.Clone(base)
	q.base[k] = value
	q.active = make([]int, 0, len(p.active))
	for _, a := range p.active {
		if a != k {
			q.active = append(q.active, a)
		}
	}
	q.nfev, q.err = 0, nil
	q.sq = make([]float64, len(p.y))
	return &q
}

// start returns the internal coordinates of the active parameters at base.
func (p *problem) start() []float64 {
	u := make([]float64, len(p.active))
	for a, k := range p.active {
		u[a] = toInternal(p.base[k], p.lo[k], p.hi[k])
	}
	return u
}

// external maps internal coordinates onto external free values.
func (p *problem) external(u []float64) []float64 {
	ext := slices.Clone(p.base)
	for a, k := range p.active {
		ext[k] = toExternal(u[a], p.lo[k], p.hi[k])
	}
	return ext
}

// residuals writes data - model at internal coordinates u into dst. Errors
// are sticky: once set, dst is filled with NaN.
func (p *problem) residuals(dst, u []float64) {
	if p.err == nil {
		if err := p.ctx.Err(); err != nil {
			p.err = err
		} else if p.nfev >= p.maxNfev {
			p.err = ErrMaxNfev
		}
	}
	if p.err != nil {
		fillNaN(dst)
		return
	}

	p.nfev++
	if err := p.evalExternal(dst, p.external(u)); err != nil {
		p.err = err
		fillNaN(dst)
	}
}

// evalExternal writes data - model at the external free values ext into
// dst, applying the NaN policy. It does not count evaluations.
func (p *problem) evalExternal(dst, ext []float64) error {
	values, err := p.model.Expand(ext)
	if err != nil {
		return err
	}
	if err := p.model.EvalInto(dst, p.x, values); err != nil {
		return err
	}

	for i := range dst {
		dst[i] = p.y[i] - dst[i]
		if math.IsNaN(dst[i]) || math.IsInf(dst[i], 0) {
			switch p.nanPolicy {
			case NaNOmit:
				dst[i] = 0
			case NaNPropagate:
			default:
				return ErrNonFinite
			}
		}
	}
	return nil
}

// cost returns half the residual sum of squares at u, or +Inf when the
// residuals are not finite.
func (p *problem) cost(u []float64) float64 {
	r := make([]float64, len(p.y))
	p.residuals(r, u)
	c := p.halfSumSquares(r)
	if math.IsNaN(c) {
		return math.Inf(1)
	}
	return c
}

func (p *problem) halfSumSquares(r []float64) float64 {
	vecmath.MulBlock(p.sq, r, r)
	return 0.5 * floats.Sum(p.sq)
}

func fillNaN(dst []float64) {
	for i := range dst {
		dst[i] = math.NaN()
	}
}
