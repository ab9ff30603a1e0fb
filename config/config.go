package config

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// DefaultOversampling is the grid factor used when oversampling is enabled
// with a plain boolean.
const DefaultOversampling = 5

// DefaultCIMaxIter bounds the profile search per parameter and level.
const DefaultCIMaxIter = 200

// Confidence-interval methods.
const (
	CIMethodCovariance = "covariance"
	CIMethodProfile    = "profile"
)

// DefaultSigmas are the confidence levels reported when none are given.
var DefaultSigmas = []float64{1, 2, 3}

// Param is the declarative description of one model parameter.
//
// Min and Max are -Inf and +Inf when unbounded. A parameter with an
// expression is never free.
type Param struct {
	Value    float64
	HasValue bool
	Min      float64
	Max      float64
	Vary     bool
	Expr     string
}

// Free reports whether the solver adjusts the parameter.
func (p Param) Free() bool { return p.Vary && p.Expr == "" }

// Peak is one configured component: a shape name, the peak key from the
// document and the per-parameter settings.
type Peak struct {
	Key    string
	Shape  string
	Params map[string]Param
}

// ConfInterval is a confidence-interval request.
type ConfInterval struct {
	Method  string
	Sigmas  []float64
	Params  []string
	MaxIter int
}

// Range selects the energy window. Unset bounds are infinite.
type Range struct {
	Start float64
	Stop  float64
}

// Unbounded reports whether neither bound is set.
func (r Range) Unbounded() bool {
	return math.IsInf(r.Start, -1) && math.IsInf(r.Stop, 1)
}

// FullRange is the Range that keeps every sample.
func FullRange() Range { return Range{Start: math.Inf(-1), Stop: math.Inf(1)} }

// Configuration is the validated, normalized fit description.
type Configuration struct {
	Minimizer    Options
	Optimizer    Options
	ConfInterval *ConfInterval
	Report       Options
	Peaks        []Peak
	Range        Range
	Oversampling int
	// Settings holds the remaining run settings (CLI defaults) with the
	// range and oversampling keys removed.
	Settings    Options
	Description map[string]any
}

// Check re-validates the fields callers are allowed to modify after
// Validate, namely the range and the oversampling factor.
func (c *Configuration) Check() error {
	if math.IsNaN(c.Range.Start) || math.IsNaN(c.Range.Stop) {
		return fieldErrorf("settings", "energy range bounds must be numbers")
	}
	if c.Range.Start >= c.Range.Stop {
		return fieldErrorf("settings", "energy_start (%g) must be lower than energy_stop (%g)",
			c.Range.Start, c.Range.Stop)
	}
	if c.Oversampling < 0 || c.Oversampling == 1 {
		return fieldErrorf("settings.oversampling", "factor must be 0 (off) or at least 2, got %d", c.Oversampling)
	}
	return nil
}

// ValidateOption adjusts how Validate reads a document.
type ValidateOption func(*validation)

type validation struct {
	order KeyOrder
}

// WithKeyOrder supplies the declaration order recorded by Load or Decode.
// Peaks are kept in that order; without it they follow SortKeys.
func WithKeyOrder(order KeyOrder) ValidateOption {
	return func(v *validation) { v.order = order }
}

// Validate checks a decoded document and builds the Configuration. The
// document is not modified.
func Validate(raw map[string]any, opts ...ValidateOption) (*Configuration, error) {
	var val validation
	for _, opt := range opts {
		opt(&val)
	}

	raw, _ = normalize(raw).(map[string]any)

	params, _, err := block(raw, "parameters")
	if err != nil {
		return nil, err
	}

	cfg := &Configuration{Range: FullRange()}

	if cfg.Minimizer, err = requiredOptions(params, "minimizer"); err != nil {
		return nil, err
	}
	if cfg.Optimizer, err = requiredOptions(params, "optimizer"); err != nil {
		return nil, err
	}
	if cfg.ConfInterval, err = parseConfInterval(params["conf_interval"]); err != nil {
		return nil, err
	}
	if cfg.Report, err = optionalOptions("parameters.report", params["report"]); err != nil {
		return nil, err
	}
	if mc, ok := cfg.Report["min_correl"]; ok && mc != nil {
		v, ok := toFloat(mc)
		if !ok || v < 0 || v > 1 {
			return nil, fieldErrorf("parameters.report.min_correl", "must be a number in [0, 1]")
		}
	}

	peaks, peaksPath, err := block(raw, "peaks")
	if err != nil {
		return nil, err
	}
	if peaksPath == "" || len(peaks) == 0 {
		return nil, fieldErrorf("peaks", "at least one peak is required")
	}
	if cfg.Peaks, err = parsePeaks(peaks, val.order.Keys(peaksPath, peaks)); err != nil {
		return nil, err
	}

	settings, _, err := block(raw, "settings")
	if err != nil {
		return nil, err
	}
	if err := cfg.applySettings(settings); err != nil {
		return nil, err
	}

	if desc, path, err := block(raw, "description"); err != nil {
		return nil, err
	} else if path != "" {
		cfg.Description = desc
	}

	if err := cfg.Check(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// block locates a named mapping under "fitting" or at the document root and
// returns it with its dotted path, or an empty path when absent. A present
// but null block counts as found and empty.
func block(raw map[string]any, name string) (map[string]any, string, error) {
	for _, path := range []string{"fitting." + name, name} {
		v, err := jsonpath.Get("$."+path, raw)
		if err != nil {
			continue
		}
		switch t := v.(type) {
		case nil:
			return map[string]any{}, path, nil
		case map[string]any:
			return t, path, nil
		default:
			return nil, path, fieldErrorf(name, "must be a mapping, got %T", v)
		}
	}
	return nil, "", nil
}

func requiredOptions(params map[string]any, key string) (Options, error) {
	v, ok := params[key]
	if !ok {
		return nil, &MissingKeyError{Key: key, Block: "parameters"}
	}
	return optionalOptions("parameters."+key, v)
}

func optionalOptions(field string, v any) (Options, error) {
	switch t := v.(type) {
	case nil:
		return Options{}, nil
	case map[string]any:
		out := make(Options, len(t))
		for k, val := range t {
			out[strings.ToLower(k)] = val
		}
		return out, nil
	default:
		return nil, fieldErrorf(field, "must be a mapping, got %T", v)
	}
}

func parseConfInterval(v any) (*ConfInterval, error) {
	const field = "parameters.conf_interval"

	switch t := v.(type) {
	case nil:
		return nil, nil
	case bool:
		if !t {
			return nil, nil
		}
		return &ConfInterval{
			Method:  CIMethodCovariance,
			Sigmas:  append([]float64(nil), DefaultSigmas...),
			MaxIter: DefaultCIMaxIter,
		}, nil
	case map[string]any:
		opts, _ := optionalOptions(field, t)
		ci := &ConfInterval{
			Method:  strings.ToLower(opts.String("method", CIMethodCovariance)),
			MaxIter: opts.Int("maxiter", DefaultCIMaxIter),
		}
		if ci.Method != CIMethodCovariance && ci.Method != CIMethodProfile {
			return nil, fieldErrorf(field+".method", "unknown method %q (want %q or %q)",
				ci.Method, CIMethodCovariance, CIMethodProfile)
		}
		if ci.MaxIter <= 0 {
			return nil, fieldErrorf(field+".maxiter", "must be positive")
		}

		sigmas, err := floatList(field+".sigmas", opts["sigmas"])
		if err != nil {
			return nil, err
		}
		if len(sigmas) == 0 {
			sigmas = append(sigmas, DefaultSigmas...)
		}
		for _, s := range sigmas {
			if !(s > 0) || math.IsInf(s, 0) {
				return nil, fieldErrorf(field+".sigmas", "levels must be positive, got %g", s)
			}
		}
		ci.Sigmas = sigmas

		names, err := stringList(field+".p_names", opts["p_names"])
		if err != nil {
			return nil, err
		}
		ci.Params = names
		return ci, nil
	default:
		return nil, fieldErrorf(field, "must be a boolean or a mapping, got %T", v)
	}
}

func floatList(field string, v any) ([]float64, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]float64, 0, len(t))
		for _, e := range t {
			f, ok := toFloat(e)
			if !ok {
				return nil, fieldErrorf(field, "expected numbers, got %T", e)
			}
			out = append(out, f)
		}
		return out, nil
	default:
		if f, ok := toFloat(v); ok {
			return []float64{f}, nil
		}
		return nil, fieldErrorf(field, "expected a list of numbers, got %T", v)
	}
}

func stringList(field string, v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{t}, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, fieldErrorf(field, "expected strings, got %T", e)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fieldErrorf(field, "expected a list of strings, got %T", v)
	}
}

func parsePeaks(peaks map[string]any, keys []string) ([]Peak, error) {
	out := make([]Peak, 0, len(keys))
	for _, key := range keys {
		field := "peaks." + key

		body, ok := peaks[key].(map[string]any)
		if !ok || len(body) != 1 {
			return nil, fieldErrorf(field, "must map exactly one shape name to its parameters")
		}

		for shape, rawParams := range body {
			p := Peak{
				Key:    key,
				Shape:  strings.ToLower(strings.TrimSpace(shape)),
				Params: map[string]Param{},
			}

			switch ps := rawParams.(type) {
			case nil:
			case map[string]any:
				for name, rp := range ps {
					name = strings.ToLower(strings.TrimSpace(name))
					param, err := parseParam(field+"."+p.Shape+"."+name, rp)
					if err != nil {
						return nil, err
					}
					p.Params[name] = param
				}
			default:
				return nil, fieldErrorf(field+"."+shape, "parameters must be a mapping, got %T", rawParams)
			}

			out = append(out, p)
		}
	}

	return out, nil
}

func parseParam(field string, v any) (Param, error) {
	p := Param{Min: math.Inf(-1), Max: math.Inf(1), Vary: true}

	if v == nil {
		return p, nil
	}
	if f, ok := toFloat(v); ok {
		p.Value, p.HasValue = f, true
		return p, checkParam(field, p)
	}

	m, ok := v.(map[string]any)
	if !ok {
		return p, fieldErrorf(field, "must be a number or a mapping, got %T", v)
	}
	opts, _ := optionalOptions(field, m)

	if opts.Has("value") {
		f, ok := toFloat(opts["value"])
		if !ok {
			return p, fieldErrorf(field+".value", "must be a number")
		}
		p.Value, p.HasValue = f, true
	}
	for _, bound := range []struct {
		key string
		dst *float64
	}{{"min", &p.Min}, {"max", &p.Max}} {
		if !opts.Has(bound.key) {
			continue
		}
		f, ok := toFloat(opts[bound.key])
		if !ok || math.IsNaN(f) {
			return p, fieldErrorf(field+"."+bound.key, "must be a number")
		}
		*bound.dst = f
	}

	varySet := opts.Has("vary")
	if varySet {
		b, ok := opts["vary"].(bool)
		if !ok {
			return p, fieldErrorf(field+".vary", "must be a boolean")
		}
		p.Vary = b
	}

	if opts.Has("expr") {
		expr, ok := opts["expr"].(string)
		if !ok {
			return p, fieldErrorf(field+".expr", "must be a string")
		}
		p.Expr = strings.TrimSpace(expr)
	}
	if p.Expr != "" {
		if varySet && p.Vary {
			return p, fieldErrorf(field, "a parameter with an expression cannot vary")
		}
		p.Vary = false
	}

	return p, checkParam(field, p)
}

func checkParam(field string, p Param) error {
	if math.IsNaN(p.Value) || (p.HasValue && math.IsInf(p.Value, 0)) {
		return fieldErrorf(field+".value", "must be finite")
	}
	if p.Min > p.Max {
		return fieldErrorf(field, "min (%g) is greater than max (%g)", p.Min, p.Max)
	}
	if p.Free() && p.HasValue && (p.Value < p.Min || p.Value > p.Max) {
		return fieldErrorf(field, "value %g outside bounds [%g, %g]", p.Value, p.Min, p.Max)
	}
	return nil
}

func (c *Configuration) applySettings(settings map[string]any) error {
	opts, err := optionalOptions("settings", settings)
	if err != nil {
		return err
	}

	for _, bound := range []struct {
		key string
		dst *float64
	}{{"energy_start", &c.Range.Start}, {"energy_stop", &c.Range.Stop}} {
		if opts.Has(bound.key) {
			f, ok := toFloat(opts[bound.key])
			if !ok {
				return fieldErrorf("settings."+bound.key, "must be a number")
			}
			*bound.dst = f
		}
		delete(opts, bound.key)
	}

	if opts.Has("oversampling") {
		n, err := ParseOversampling(opts["oversampling"])
		if err != nil {
			return err
		}
		c.Oversampling = n
	}
	delete(opts, "oversampling")

	c.Settings = opts
	return nil
}

// ParseOversampling interprets an oversampling setting: false or 0 disables
// it, true selects DefaultOversampling and an integer >= 2 is the factor.
func ParseOversampling(v any) (int, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case bool:
		if t {
			return DefaultOversampling, nil
		}
		return 0, nil
	}

	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) || f < 0 || f == 1 {
		return 0, fieldErrorf("settings.oversampling", "must be a boolean or an integer >= 2, got %v", v)
	}
	return int(f), nil
}

// SortKeys orders peak keys naturally: numeric keys first and numerically,
// everything else lexicographically afterwards. It is the fallback for
// documents built without a recorded KeyOrder.
func SortKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		a, aErr := strconv.ParseFloat(keys[i], 64)
		b, bErr := strconv.ParseFloat(keys[j], 64)
		switch {
		case aErr == nil && bErr == nil:
			if a != b {
				return a < b
			}
			return keys[i] < keys[j]
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
}

// Document renders the Configuration back into a generic document and the
// key order that, passed to Validate through WithKeyOrder, maps onto an
// equal Configuration.
func (c *Configuration) Document() (map[string]any, KeyOrder) {
	params := map[string]any{
		"minimizer": map[string]any(c.Minimizer.Clone()),
		"optimizer": map[string]any(c.Optimizer.Clone()),
	}
	if c.ConfInterval != nil {
		ci := map[string]any{
			"method":  c.ConfInterval.Method,
			"maxiter": c.ConfInterval.MaxIter,
		}
		sigmas := make([]any, len(c.ConfInterval.Sigmas))
		for i, s := range c.ConfInterval.Sigmas {
			sigmas[i] = s
		}
		ci["sigmas"] = sigmas
		if c.ConfInterval.Params != nil {
			names := make([]any, len(c.ConfInterval.Params))
			for i, n := range c.ConfInterval.Params {
				names[i] = n
			}
			ci["p_names"] = names
		}
		params["conf_interval"] = ci
	}
	if len(c.Report) > 0 {
		params["report"] = map[string]any(c.Report.Clone())
	}

	peaks := make(map[string]any, len(c.Peaks))
	order := KeyOrder{}
	for _, pk := range c.Peaks {
		order.add([]string{"fitting", "peaks"}, pk.Key)
		ps := make(map[string]any, len(pk.Params))
		for name, p := range pk.Params {
			ps[name] = p.document()
		}
		peaks[pk.Key] = map[string]any{pk.Shape: ps}
	}

	fitting := map[string]any{"parameters": params, "peaks": peaks}
	if c.Description != nil {
		fitting["description"] = c.Description
	}

	settings := map[string]any(c.Settings.Clone())
	if settings == nil {
		settings = map[string]any{}
	}
	if !math.IsInf(c.Range.Start, 0) {
		settings["energy_start"] = c.Range.Start
	}
	if !math.IsInf(c.Range.Stop, 0) {
		settings["energy_stop"] = c.Range.Stop
	}
	if c.Oversampling > 0 {
		settings["oversampling"] = c.Oversampling
	}

	return map[string]any{"fitting": fitting, "settings": settings}, order
}

func (p Param) document() map[string]any {
	m := map[string]any{}
	if p.HasValue {
		m["value"] = p.Value
	}
	if !math.IsInf(p.Min, -1) {
		m["min"] = p.Min
	}
	if !math.IsInf(p.Max, 1) {
		m["max"] = p.Max
	}
	if p.Expr != "" {
		m["expr"] = p.Expr
	} else {
		m["vary"] = p.Vary
	}
	return m
}

// ParamName is the namespaced identifier of a peak parameter.
func ParamName(shape, param, key string) string {
	return fmt.Sprintf("%s_%s_%s", shape, param, key)
}
