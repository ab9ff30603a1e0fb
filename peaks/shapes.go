package peaks

import "math"

// Shape names of the built-in family.
const (
	Gaussian    = "gaussian"
	Lorentzian  = "lorentzian"
	Voigt       = "voigt"
	PseudoVoigt = "pseudovoigt"
	Exponential = "exponential"
	Power       = "power"
	Linear      = "linear"
	Constant    = "constant"
	Erf         = "erf"
	Heaviside   = "heaviside"
	Atan        = "atan"
	Log         = "log"
)

const (
	// FWHMToSigma converts a Gaussian full width at half maximum to its
	// standard deviation: 1 / (2*sqrt(2*ln 2)).
	FWHMToSigma = 0.42466090014400953

	// tiny keeps widths away from zero during evaluation.
	tiny = 1.0e-15
)

var (
	sqrt2   = math.Sqrt2
	sqrt2Pi = math.Sqrt(2 * math.Pi)
)

func builtins() []Shape {
	return []Shape{
		{Name: Gaussian, Params: []string{"amplitude", "center", "fwhmg"}, Defaults: []float64{1, 0, 1}, Eval: evalGaussian},
		{Name: Lorentzian, Params: []string{"amplitude", "center", "fwhml"}, Defaults: []float64{1, 0, 1}, Eval: evalLorentzian},
		{Name: Voigt, Params: []string{"amplitude", "center", "fwhmv", "gamma"}, Defaults: []float64{1, 0, 1, 0.5}, Eval: evalVoigt},
		{Name: PseudoVoigt, Params: []string{"amplitude", "center", "fwhmg", "fwhml"}, Defaults: []float64{1, 0, 1, 1}, Eval: evalPseudoVoigt},
		{Name: Exponential, Params: []string{"amplitude", "decay", "intercept"}, Defaults: []float64{1, 1, 0}, Eval: evalExponential},
		{Name: Power, Params: []string{"amplitude", "exponent"}, Defaults: []float64{1, 1}, Eval: evalPower},
		{Name: Linear, Params: []string{"slope", "intercept"}, Defaults: []float64{1, 0}, Eval: evalLinear},
		{Name: Constant, Params: []string{"amplitude"}, Defaults: []float64{1}, Eval: evalConstant},
		{Name: Erf, Params: []string{"amplitude", "center", "sigma"}, Defaults: []float64{1, 0, 1}, Eval: evalErf},
		{Name: Heaviside, Params: []string{"amplitude", "center"}, Defaults: []float64{1, 0}, Eval: evalHeaviside},
		{Name: Atan, Params: []string{"amplitude", "center", "sigma"}, Defaults: []float64{1, 0, 1}, Eval: evalAtan},
		{Name: Log, Params: []string{"amplitude", "center", "sigma"}, Defaults: []float64{1, 0, 1}, Eval: evalLog},
	}
}

func width(w float64) float64 {
	return math.Max(math.Abs(w), tiny)
}

func gaussianInto(dst, x []float64, amplitude, center, fwhm float64) {
	sigma := width(fwhm * FWHMToSigma)
	norm := amplitude / (sigma * sqrt2Pi)
	for i, v := range x {
		d := (v - center) / sigma
		dst[i] = norm * math.Exp(-0.5*d*d)
	}
}

func lorentzianInto(dst, x []float64, amplitude, center, fwhm float64) {
	gamma := width(fwhm / 2)
	norm := amplitude / (math.Pi * gamma)
	for i, v := range x {
		d := (v - center) / gamma
		dst[i] = norm / (1 + d*d)
	}
}

func evalGaussian(dst, x, p []float64) {
	gaussianInto(dst, x, p[0], p[1], p[2])
}

func evalLorentzian(dst, x, p []float64) {
	lorentzianInto(dst, x, p[0], p[1], p[2])
}

func evalVoigt(dst, x, p []float64) {
	amplitude, center := p[0], p[1]
	sigma := width(p[2] * FWHMToSigma)
	gamma := p[3]
	scale := complex(sigma*sqrt2, 0)
	norm := amplitude / (sigma * sqrt2Pi)
	for i, v := range x {
		w := Faddeeva(complex(v-center, gamma) / scale)
		dst[i] = norm * real(w)
	}
}

// pseudoVoigtMix returns the combined width and Lorentzian fraction of the
// Thompson-Cox-Hastings pseudo-Voigt approximation.
func pseudoVoigtMix(fg, fl float64) (f, eta float64) {
	fg, fl = math.Abs(fg), math.Abs(fl)
	f = math.Pow(math.Pow(fg, 5)+
		2.69269*math.Pow(fg, 4)*fl+
		2.42843*math.Pow(fg, 3)*fl*fl+
		4.47163*fg*fg*math.Pow(fl, 3)+
		0.07842*fg*math.Pow(fl, 4)+
		math.Pow(fl, 5), 0.2)
	f = width(f)
	r := fl / f
	eta = 1.36603*r - 0.47719*r*r + 0.11116*r*r*r
	return f, eta
}

func evalPseudoVoigt(dst, x, p []float64) {
	amplitude, center := p[0], p[1]
	f, eta := pseudoVoigtMix(p[2], p[3])
	sigma := width(f * FWHMToSigma)
	gamma := width(f / 2)
	gNorm := amplitude / (sigma * sqrt2Pi)
	lNorm := amplitude / (math.Pi * gamma)
	for i, v := range x {
		dg := (v - center) / sigma
		dl := (v - center) / gamma
		dst[i] = eta*lNorm/(1+dl*dl) + (1-eta)*gNorm*math.Exp(-0.5*dg*dg)
	}
}

func evalExponential(dst, x, p []float64) {
	amplitude, decay, intercept := p[0], p[1], p[2]
	if decay == 0 {
		decay = tiny
	}
	for i, v := range x {
		dst[i] = amplitude*math.Exp(-v/decay) + intercept
	}
}

func evalPower(dst, x, p []float64) {
	for i, v := range x {
		dst[i] = p[0] * math.Pow(v, p[1])
	}
}

func evalLinear(dst, x, p []float64) {
	for i, v := range x {
		dst[i] = p[0]*v + p[1]
	}
}

func evalConstant(dst, _, p []float64) {
	for i := range dst {
		dst[i] = p[0]
	}
}

func evalErf(dst, x, p []float64) {
	amplitude, center, sigma := p[0], p[1], width(p[2])
	for i, v := range x {
		dst[i] = amplitude * 0.5 * (1 + math.Erf((v-center)/sigma))
	}
}

func evalHeaviside(dst, x, p []float64) {
	amplitude, center := p[0], p[1]
	for i, v := range x {
		switch {
		case v > center:
			dst[i] = amplitude
		case v < center:
			dst[i] = 0
		default:
			dst[i] = 0.5 * amplitude
		}
	}
}

func evalAtan(dst, x, p []float64) {
	amplitude, center, sigma := p[0], p[1], width(p[2])
	for i, v := range x {
		dst[i] = amplitude * (0.5 + math.Atan((v-center)/sigma)/math.Pi)
	}
}

func evalLog(dst, x, p []float64) {
	amplitude, center, sigma := p[0], p[1], width(p[2])
	for i, v := range x {
		dst[i] = amplitude * (1 - 1/(1+math.Exp((v-center)/sigma)))
	}
}
