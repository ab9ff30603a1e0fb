package fit

import "math"

// The MINUIT transforms map a bounded external value onto an unbounded
// internal one:
//
//	both bounds:  u = asin(2(v-lo)/(hi-lo) - 1),  v = lo + (sin(u)+1)(hi-lo)/2
//	lower only:   u = sqrt((v-lo+1)^2 - 1),       v = lo - 1 + sqrt(u^2+1)
//	upper only:   u = sqrt((hi-v+1)^2 - 1),       v = hi + 1 - sqrt(u^2+1)

func toInternal(v, lo, hi float64) float64 {
	loInf, hiInf := math.IsInf(lo, -1), math.IsInf(hi, 1)
	switch {
	case loInf && hiInf:
		return v
	case !loInf && !hiInf:
		if hi == lo {
			return 0
		}
		r := 2*(v-lo)/(hi-lo) - 1
		return math.Asin(math.Max(-1, math.Min(1, r)))
	case !loInf:
		d := math.Max(v-lo, 0) + 1
		return math.Sqrt(d*d - 1)
	default:
		d := math.Max(hi-v, 0) + 1
		return math.Sqrt(d*d - 1)
	}
}

func toExternal(u, lo, hi float64) float64 {
	loInf, hiInf := math.IsInf(lo, -1), math.IsInf(hi, 1)
	switch {
	case loInf && hiInf:
		return u
	case !loInf && !hiInf:
		return lo + (math.Sin(u)+1)*(hi-lo)/2
	case !loInf:
		return lo - 1 + math.Sqrt(u*u+1)
	default:
		return hi + 1 - math.Sqrt(u*u+1)
	}
}
