package report

import (
	"errors"
	"math"
	"sort"

	"github.com/cwbudde/spectrafit/fit"
	"github.com/cwbudde/spectrafit/spectrum"
)

// DefaultMinCorrel hides parameter correlations below this magnitude.
const DefaultMinCorrel = 0.1

// Fit frame column names.
const (
	ColEnergy    = "energy"
	ColIntensity = "intensity"
	ColFit       = "fit"
	ColResidual  = "residual"
)

// ErrNoResult is returned when Aggregate is called without a result.
var ErrNoResult = errors.New("report: nil fit result")

type aggregateConfig struct {
	minCorrel   float64
	metadata    Metadata
	description map[string]any
}

// Option mutates the aggregation settings.
type Option func(*aggregateConfig)

// WithMinCorrel sets the correlation listing threshold.
func WithMinCorrel(v float64) Option {
	return func(c *aggregateConfig) {
		if v >= 0 && v <= 1 {
			c.minCorrel = v
		}
	}
}

// WithMetadata attaches run metadata to the summary.
func WithMetadata(m Metadata) Option {
	return func(c *aggregateConfig) {
		c.metadata = m
	}
}

// WithDescription attaches the configuration's description block.
func WithDescription(d map[string]any) Option {
	return func(c *aggregateConfig) {
		c.description = d
	}
}

// Aggregate builds the output tables for res. input is the spectrum as read,
// before preprocessing; it may be nil.
func Aggregate(res *fit.Result, input *spectrum.Spectrum, opts ...Option) (*Tables, error) {
	if res == nil {
		return nil, ErrNoResult
	}

	ac := aggregateConfig{minCorrel: DefaultMinCorrel}
	for _, opt := range opts {
		if opt != nil {
			opt(&ac)
		}
	}

	t := &Tables{
		Fit: Frame{Columns: []Column{
			{Name: ColEnergy, Values: res.Energy},
			{Name: ColIntensity, Values: res.Data},
			{Name: ColFit, Values: res.Best},
			{Name: ColResidual, Values: res.Residual},
		}},
	}

	t.Components.Columns = append(t.Components.Columns, Column{Name: ColEnergy, Values: res.Energy})
	for i, name := range res.ComponentNames {
		t.Components.Columns = append(t.Components.Columns, Column{Name: name, Values: res.Components[i]})
	}

	for _, p := range res.Params {
		t.Parameters = append(t.Parameters, ParameterRow{
			Name:      p.Name,
			Component: p.Component,
			Value:     p.Value,
			Stderr:    p.Stderr,
			Init:      p.Init,
			Min:       p.Min,
			Max:       p.Max,
			Vary:      p.Vary,
			Expr:      p.Expr,
			CI:        res.CI[p.Name],
		})
	}

	t.Summary = summarize(res, input, &t.Fit, ac)
	return t, nil
}

func summarize(res *fit.Result, input *spectrum.Spectrum, frame *Frame, ac aggregateConfig) Summary {
	s := Summary{
		Metadata:    ac.metadata,
		Description: ac.description,
		Fit: FitInfo{
			Method:         res.Method,
			Success:        res.Success,
			Message:        res.Message,
			Iterations:     res.Iterations,
			ElapsedSeconds: res.Elapsed.Seconds(),
		},
		Statistics: Statistics{
			Nfev:     res.Nfev,
			Ndata:    res.Ndata,
			Nvarys:   res.Nvarys,
			Nfree:    res.Nfree,
			Chisqr:   Float(res.Chisqr),
			Redchi:   Float(res.Redchi),
			AIC:      Float(res.AIC),
			BIC:      Float(res.BIC),
			RSquared: Float(res.RSquared),
		},
		Metrics:           regressionMetrics(res.Data, res.Best, res.RSquared),
		Variables:         make(map[string]Variable, len(res.Params)),
		Correlations:      correlationList(res, ac.minCorrel),
		Descriptive:       make(map[string]Descriptive, len(frame.Columns)),
		LinearCorrelation: linearCorrelation(frame),
	}

	for _, p := range res.Params {
		s.Variables[p.Name] = Variable{
			Value:  Float(p.Value),
			Stderr: Float(p.Stderr),
			Init:   Float(p.Init),
			Min:    Float(p.Min),
			Max:    Float(p.Max),
			Vary:   p.Vary,
			Expr:   p.Expr,
		}
	}

	for _, c := range frame.Columns {
		s.Descriptive[c.Name] = describe(c.Values)
	}
	if input != nil {
		s.InputStatistics = map[string]Descriptive{
			ColEnergy:    describe(input.Energy),
			ColIntensity: describe(input.Intensity),
		}
	}

	if res.CI != nil {
		ci := &ConfidenceIntervals{Method: res.CIMethod, Parameters: map[string][]Interval{}}
		for _, name := range res.CINames {
			for _, iv := range res.CI[name] {
				ci.Parameters[name] = append(ci.Parameters[name], Interval{
					Sigma: Float(iv.Sigma),
					Prob:  Float(iv.Prob),
					Lower: Float(iv.Lower),
					Upper: Float(iv.Upper),
				})
			}
		}
		s.ConfidenceIntervals = ci
	}
	if res.CIError != nil {
		s.ConfIntervalError = res.CIError.Error()
	}

	return s
}

// correlationList returns the pairs of free parameters whose correlation
// magnitude reaches minCorrel, strongest first.
func correlationList(res *fit.Result, minCorrel float64) []Correlation {
	out := []Correlation{}
	if res.Correlations == nil {
		return out
	}

	for i := range res.Free {
		for j := i + 1; j < len(res.Free); j++ {
			c := res.Correlations.At(i, j)
			if math.IsNaN(c) || math.Abs(c) < minCorrel {
				continue
			}
			out = append(out, Correlation{A: res.Free[i], B: res.Free[j], Value: Float(c)})
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		return math.Abs(float64(out[a].Value)) > math.Abs(float64(out[b].Value))
	})
	return out
}
