package model

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/cwbudde/algo-vecmath"
	"github.com/cwbudde/spectrafit/config"
	"github.com/cwbudde/spectrafit/peaks"
)

// Param is one model parameter.
type Param struct {
	Name      string
	Component int
	Field     string
	Init      float64
	Min       float64
	Max       float64
	Vary      bool
	Expr      string
}

// Free reports whether the solver adjusts the parameter.
func (p Param) Free() bool { return p.Vary && p.Expr == "" }

// Component is one configured peak.
type Component struct {
	Name  string
	Key   string
	Shape peaks.Shape
	// params holds model parameter indices in Shape.Params order.
	params []int
}

// Model is a composite of peak components and their parameters.
type Model struct {
	params     []Param
	index      map[string]int
	components []Component
	exprs      map[int]*expression
	order      []int
	free       []int
}

type composeConfig struct {
	registry *peaks.Registry
}

// Option mutates the composition settings.
type Option func(*composeConfig)

// WithRegistry resolves shapes through r instead of the built-in registry.
func WithRegistry(r *peaks.Registry) Option {
	return func(c *composeConfig) {
		if r != nil {
			c.registry = r
		}
	}
}

// Compose builds a Model from the configured peaks.
func Compose(cfg *config.Configuration, opts ...Option) (*Model, error) {
	cc := composeConfig{registry: peaks.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cc)
		}
	}

	if len(cfg.Peaks) == 0 {
		return nil, configError("no peaks configured")
	}

	m := &Model{
		index: map[string]int{},
		exprs: map[int]*expression{},
	}

	for ci, pk := range cfg.Peaks {
		shape, err := cc.registry.Lookup(pk.Shape)
		if err != nil {
			return nil, &UnknownShapeError{Key: pk.Key, Shape: pk.Shape, Err: err}
		}

		for field := range pk.Params {
			if shape.Index(field) < 0 {
				return nil, configError("%w %q for %s peak %s (parameters: %s)",
					ErrUnknownParameter, field, shape.Name, pk.Key, strings.Join(shape.Params, ", "))
			}
		}

		comp := Component{
			Name:   shape.Name + "_" + pk.Key,
			Key:    pk.Key,
			Shape:  shape,
			params: make([]int, len(shape.Params)),
		}

		for pi, field := range shape.Params {
			name := config.ParamName(shape.Name, field, pk.Key)
			if _, dup := m.index[name]; dup {
				return nil, configError("duplicate parameter %s (peak key %q used twice?)", name, pk.Key)
			}

			p := Param{
				Name:      name,
				Component: ci,
				Field:     field,
				Init:      shape.Defaults[pi],
				Min:       math.Inf(-1),
				Max:       math.Inf(1),
			}
			if cp, ok := pk.Params[field]; ok {
				p.Min, p.Max, p.Vary, p.Expr = cp.Min, cp.Max, cp.Vary, cp.Expr
				if cp.HasValue {
					p.Init = cp.Value
				}
			}
			if p.Free() {
				p.Init = clamp(p.Init, p.Min, p.Max)
			}

			m.index[name] = len(m.params)
			comp.params[pi] = len(m.params)
			m.params = append(m.params, p)
		}

		m.components = append(m.components, comp)
	}

	if err := m.compileExpressions(); err != nil {
		return nil, err
	}

	for i, p := range m.params {
		if p.Free() {
			m.free = append(m.free, i)
		}
	}

	return m, nil
}

func (m *Model) compileExpressions() error {
	for i, p := range m.params {
		if p.Expr == "" {
			continue
		}
		e, err := compile(p.Expr)
		if err != nil {
			return configError("parameter %s: invalid expression %q: %v", p.Name, p.Expr, err)
		}
		for _, ref := range e.refs {
			if _, ok := m.index[ref]; !ok {
				return configError("parameter %s: %w %q in expression %q",
					p.Name, ErrUnknownParameter, ref, p.Expr)
			}
		}
		m.exprs[i] = e
	}

	order, err := m.sortExpressions()
	if err != nil {
		return err
	}
	m.order = order

	// Evaluate once so that the initial values of tied parameters are
	// consistent and reportable.
	init := m.Initial()
	if err := m.Resolve(init); err != nil {
		return configError("%v", err)
	}
	for _, i := range m.order {
		m.params[i].Init = init[i]
	}
	return nil
}

// sortExpressions orders the expression parameters so that every expression
// is evaluated after the expressions it references (Kahn's algorithm).
func (m *Model) sortExpressions() ([]int, error) {
	indegree := make(map[int]int, len(m.exprs))
	outgoing := make(map[int][]int, len(m.exprs))
	for i := range m.exprs {
		indegree[i] = 0
	}

	for i, e := range m.exprs {
		for _, ref := range e.refs {
			j := m.index[ref]
			if _, isExpr := m.exprs[j]; !isExpr {
				continue
			}
			outgoing[j] = append(outgoing[j], i)
			indegree[i]++
		}
	}

	queue := make([]int, 0, len(m.exprs))
	for i, d := range indegree {
		if d == 0 {
			queue = append(queue, i)
		}
	}
	sort.Ints(queue)

	order := make([]int, 0, len(m.exprs))
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]

		order = append(order, i)
		next := outgoing[i]
		sort.Ints(next)
		for _, j := range next {
			indegree[j]--
			if indegree[j] == 0 {
				queue = append(queue, j)
			}
		}
	}

	if len(order) != len(m.exprs) {
		var stuck []string
		for i, d := range indegree {
			if d > 0 {
				stuck = append(stuck, m.params[i].Name)
			}
		}
		sort.Strings(stuck)
		return nil, configError("%w among %s", ErrCycle, strings.Join(stuck, ", "))
	}

	return order, nil
}

// Params returns a copy of the parameter table in model order.
func (m *Model) Params() []Param { return slices.Clone(m.params) }

// Param returns the parameter with the given name.
func (m *Model) Param(name string) (Param, bool) {
	i, ok := m.index[name]
	if !ok {
		return Param{}, false
	}
	return m.params[i], true
}

// Index returns the position of the named parameter in value vectors.
func (m *Model) Index(name string) (int, bool) {
	i, ok := m.index[name]
	return i, ok
}

// Components returns the model components in configuration order.
func (m *Model) Components() []Component { return slices.Clone(m.components) }

// NumParams returns the length of full value vectors.
func (m *Model) NumParams() int { return len(m.params) }

// FreeIndices returns the positions of the free parameters.
func (m *Model) FreeIndices() []int { return slices.Clone(m.free) }

// FreeNames returns the names of the free parameters.
func (m *Model) FreeNames() []string {
	names := make([]string, len(m.free))
	for k, i := range m.free {
		names[k] = m.params[i].Name
	}
	return names
}

// Initial returns the full vector of initial values.
func (m *Model) Initial() []float64 {
	v := make([]float64, len(m.params))
	for i, p := range m.params {
		v[i] = p.Init
	}
	return v
}

// InitialFree returns the initial values of the free parameters.
func (m *Model) InitialFree() []float64 {
	v := make([]float64, len(m.free))
	for k, i := range m.free {
		v[k] = m.params[i].Init
	}
	return v
}

// Expand builds a full value vector from free parameter values, taking
// fixed values from the initial values and evaluating expressions.
func (m *Model) Expand(free []float64) ([]float64, error) {
	if len(free) != len(m.free) {
		return nil, fmt.Errorf("%w: got %d free values, want %d", ErrValues, len(free), len(m.free))
	}

	v := m.Initial()
	for k, i := range m.free {
		v[i] = free[k]
	}
	if err := m.Resolve(v); err != nil {
		return nil, err
	}
	return v, nil
}

// Resolve evaluates every expression parameter of values in place.
func (m *Model) Resolve(values []float64) error {
	if len(values) != len(m.params) {
		return fmt.Errorf("%w: got %d values, want %d", ErrValues, len(values), len(m.params))
	}
	if len(m.order) == 0 {
		return nil
	}

	vars := make(map[string]any, len(m.params))
	for i, p := range m.params {
		vars[p.Name] = values[i]
	}
	for _, i := range m.order {
		v, err := m.exprs[i].value(vars)
		if err != nil {
			return fmt.Errorf("parameter %s: evaluating %q: %w", m.params[i].Name, m.exprs[i].source, err)
		}
		values[i] = v
		vars[m.params[i].Name] = v
	}
	return nil
}

// Eval returns the composite model on x for the full value vector values.
// Expressions are re-evaluated; values is not modified.
func (m *Model) Eval(x, values []float64) ([]float64, error) {
	out := make([]float64, len(x))
	if err := m.EvalInto(out, x, values); err != nil {
		return nil, err
	}
	return out, nil
}

// EvalInto is like Eval but writes into dst, which must have len(x).
func (m *Model) EvalInto(dst, x, values []float64) error {
	if len(dst) != len(x) {
		return fmt.Errorf("model: dst has %d samples, x has %d", len(dst), len(x))
	}
	v := slices.Clone(values)
	if err := m.Resolve(v); err != nil {
		return err
	}

	for i := range dst {
		dst[i] = 0
	}
	buf := make([]float64, len(x))
	p := make([]float64, 0, 8)
	for _, c := range m.components {
		m.evalComponent(buf, x, v, c, p)
		vecmath.AddBlockInPlace(dst, buf)
	}
	return nil
}

// EvalComponents returns one curve per component on x.
func (m *Model) EvalComponents(x, values []float64) ([][]float64, error) {
	v := slices.Clone(values)
	if err := m.Resolve(v); err != nil {
		return nil, err
	}

	out := make([][]float64, len(m.components))
	p := make([]float64, 0, 8)
	for ci, c := range m.components {
		out[ci] = make([]float64, len(x))
		m.evalComponent(out[ci], x, v, c, p)
	}
	return out, nil
}

func (m *Model) evalComponent(dst, x, values []float64, c Component, p []float64) {
	p = p[:0]
	for _, idx := range c.params {
		p = append(p, values[idx])
	}
	c.Shape.Eval(dst, x, p)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
