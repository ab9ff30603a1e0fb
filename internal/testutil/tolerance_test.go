package testutil

import (
	"math"
	"testing"
)

func TestRequireNearlyEqualBoundary(t *testing.T) {
	RequireNearlyEqual(t, "exact", 1.5, 1.5, 0)
	RequireNearlyEqual(t, "at eps", 1.25, 1, 0.25)
	RequireNearlyEqual(t, "below", -2.0000001, -2, 1e-6)
}

func TestRequireSliceNearlyEqualPeaks(t *testing.T) {
	x := Linspace(-4, 4, 81)
	got := Add(Gaussian(x, 2, 0.5, 1), Lorentzian(x, 1, -1, 0.6))

	sigma := 1 / (2 * math.Sqrt(2*math.Ln2))
	want := make([]float64, len(x))
	for i, xi := range x {
		g := 2 / (sigma * math.Sqrt(2*math.Pi)) * math.Exp(-4*math.Ln2*(xi-0.5)*(xi-0.5))
		l := 1 / math.Pi * 0.3 / ((xi+1)*(xi+1) + 0.09)
		want[i] = g + l
	}

	RequireSliceNearlyEqual(t, got, want, 1e-12)
	RequireFinite(t, got)
}

func TestRequireFiniteNoise(t *testing.T) {
	noise := DeterministicNoise(7, 0.01, 256)
	if len(noise) != 256 {
		t.Fatalf("len = %d, want 256", len(noise))
	}
	RequireFinite(t, noise)
	for _, v := range noise {
		RequireNearlyEqual(t, "amplitude", v, 0, 0.01)
	}
}
