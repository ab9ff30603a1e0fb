package peaks

import (
	"math"
	"testing"

	"github.com/cwbudde/spectrafit/internal/testutil"
)

func eval(t *testing.T, name string, x []float64, p ...float64) []float64 {
	t.Helper()
	s, err := Default().Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%s): %v", name, err)
	}
	out := make([]float64, len(x))
	s.Eval(out, x, p)
	return out
}

func trapezoid(x, y []float64) float64 {
	area := 0.0
	for i := 1; i < len(x); i++ {
		area += 0.5 * (y[i] + y[i-1]) * (x[i] - x[i-1])
	}
	return area
}

func TestGaussianMatchesReference(t *testing.T) {
	x := testutil.Linspace(-5, 5, 101)
	got := eval(t, Gaussian, x, 2, 0.5, 1.2)
	testutil.RequireSliceNearlyEqual(t, got, testutil.Gaussian(x, 2, 0.5, 1.2), 1e-12)
}

func TestLorentzianMatchesReference(t *testing.T) {
	x := testutil.Linspace(-5, 5, 101)
	got := eval(t, Lorentzian, x, 2, -0.5, 0.8)
	testutil.RequireSliceNearlyEqual(t, got, testutil.Lorentzian(x, 2, -0.5, 0.8), 1e-12)
}

func TestGaussianHalfMaximum(t *testing.T) {
	got := eval(t, Gaussian, []float64{0, 0.75}, 1, 0, 1.5)
	testutil.RequireNearlyEqual(t, "half max ratio", got[1]/got[0], 0.5, 1e-12)
}

func TestPeakShapesAreAreaNormalized(t *testing.T) {
	x := testutil.Linspace(-400, 400, 400001)
	for _, tc := range []struct {
		name string
		p    []float64
		eps  float64
	}{
		{name: Gaussian, p: []float64{3, 1, 2}, eps: 1e-6},
		{name: Lorentzian, p: []float64{3, 1, 2}, eps: 1e-2},
		{name: Voigt, p: []float64{3, 1, 2, 0.5}, eps: 1e-2},
		{name: PseudoVoigt, p: []float64{3, 1, 2, 1}, eps: 1e-2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			y := eval(t, tc.name, x, tc.p...)
			testutil.RequireFinite(t, y)
			testutil.RequireNearlyEqual(t, "area", trapezoid(x, y), tc.p[0], tc.eps)
		})
	}
}

func TestVoigtApproachesGaussian(t *testing.T) {
	x := testutil.Linspace(-3, 3, 61)
	got := eval(t, Voigt, x, 1, 0, 1, 1e-9)
	testutil.RequireSliceNearlyEqual(t, got, testutil.Gaussian(x, 1, 0, 1), 1e-6)
}

func TestPseudoVoigtLimits(t *testing.T) {
	x := testutil.Linspace(-3, 3, 61)

	pureGauss := eval(t, PseudoVoigt, x, 1, 0, 1, 0)
	testutil.RequireSliceNearlyEqual(t, pureGauss, testutil.Gaussian(x, 1, 0, 1), 1e-9)

	f, eta := pseudoVoigtMix(0, 1)
	testutil.RequireNearlyEqual(t, "width", f, 1, 1e-12)
	testutil.RequireNearlyEqual(t, "eta", eta, 1.36603-0.47719+0.11116, 1e-12)
}

func TestBackgroundShapes(t *testing.T) {
	x := []float64{0, 1, 2}

	testutil.RequireSliceNearlyEqual(t, eval(t, Linear, x, 2, 1), []float64{1, 3, 5}, 0)
	testutil.RequireSliceNearlyEqual(t, eval(t, Constant, x, 4), []float64{4, 4, 4}, 0)
	testutil.RequireSliceNearlyEqual(t, eval(t, Power, x, 3, 2), []float64{0, 3, 12}, 1e-12)
	testutil.RequireSliceNearlyEqual(t, eval(t, Exponential, x, 1, 1, 0.5),
		[]float64{1.5, math.Exp(-1) + 0.5, math.Exp(-2) + 0.5}, 1e-12)
}

func TestStepShapes(t *testing.T) {
	x := []float64{-1e6, 1, 1e6}
	for _, name := range []string{Erf, Atan, Log} {
		y := eval(t, name, x, 2, 1, 0.5)
		testutil.RequireNearlyEqual(t, name+" low", y[0], 0, 1e-5)
		testutil.RequireNearlyEqual(t, name+" mid", y[1], 1, 1e-12)
		testutil.RequireNearlyEqual(t, name+" high", y[2], 2, 1e-5)
	}
	testutil.RequireSliceNearlyEqual(t, eval(t, Heaviside, x, 2, 1), []float64{0, 1, 2}, 0)
}

func TestZeroWidthStaysFinite(t *testing.T) {
	x := []float64{-1, 0.5, 1}
	for _, name := range []string{Gaussian, Lorentzian, PseudoVoigt} {
		testutil.RequireFinite(t, eval(t, name, x, 1, 0, 0, 0))
	}
}
