package report

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func describe(x []float64) Descriptive {
	d := Descriptive{Count: len(x)}
	if len(x) == 0 {
		nan := Float(math.NaN())
		d.Mean, d.Std, d.Min, d.Q25, d.Q50, d.Q75, d.Max = nan, nan, nan, nan, nan, nan, nan
		return d
	}

	sorted := slices.Clone(x)
	slices.Sort(sorted)

	d.Mean = Float(stat.Mean(x, nil))
	d.Std = Float(math.NaN())
	if len(x) > 1 {
		d.Std = Float(stat.StdDev(x, nil))
	}
	d.Min = Float(sorted[0])
	d.Max = Float(sorted[len(sorted)-1])
	d.Q25 = Float(quantile(sorted, 0.25))
	d.Q50 = Float(quantile(sorted, 0.50))
	d.Q75 = Float(quantile(sorted, 0.75))
	return d
}

// quantile interpolates linearly between order statistics of the sorted
// sample.
func quantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := min(lo+1, len(sorted)-1)
	return sorted[lo] + (pos-float64(lo))*(sorted[hi]-sorted[lo])
}

func regressionMetrics(data, best []float64, r2 float64) Metrics {
	n := float64(len(data))
	diff := make([]float64, len(data))
	floats.SubTo(diff, data, best)

	var abs, sq, maxErr float64
	for _, d := range diff {
		abs += math.Abs(d)
		sq += d * d
		maxErr = math.Max(maxErr, math.Abs(d))
	}

	ev := math.NaN()
	if v := stat.Variance(data, nil); v > 0 {
		ev = 1 - stat.Variance(diff, nil)/v
	}

	return Metrics{
		MAE:               Float(abs / n),
		MSE:               Float(sq / n),
		RMSE:              Float(math.Sqrt(sq / n)),
		MaxError:          Float(maxErr),
		ExplainedVariance: Float(ev),
		R2:                Float(r2),
	}
}

func linearCorrelation(f *Frame) map[string]map[string]Float {
	out := make(map[string]map[string]Float, len(f.Columns))
	for _, a := range f.Columns {
		row := make(map[string]Float, len(f.Columns))
		for _, b := range f.Columns {
			c := math.NaN()
			if len(a.Values) > 1 {
				c = stat.Correlation(a.Values, b.Values, nil)
			}
			row[b.Name] = Float(c)
		}
		out[a.Name] = row
	}
	return out
}
