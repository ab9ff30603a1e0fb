package spectrum

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"gonum.org/v1/gonum/mat"
)

// SavitzkyGolay returns the smoothing coefficients of a window of odd length
// for a least-squares polynomial of the given order. The coefficients are
// symmetric and sum to one.
func SavitzkyGolay(window, order int) ([]float64, error) {
	if window%2 == 0 || window < 1 {
		return nil, fmt.Errorf("savitzky-golay: window %d must be odd and positive", window)
	}
	if order < 0 || order >= window {
		return nil, fmt.Errorf("savitzky-golay: order %d must be in [0, %d)", order, window)
	}

	half := window / 2
	a := mat.NewDense(window, order+1, nil)
	for i := 0; i < window; i++ {
		z := float64(i - half)
		v := 1.0
		for j := 0; j <= order; j++ {
			a.Set(i, j, v)
			v *= z
		}
	}

	// Row 0 of the pseudo-inverse evaluates the fitted polynomial at z = 0.
	eye := mat.NewDiagDense(window, nil)
	for i := 0; i < window; i++ {
		eye.SetDiag(i, 1)
	}
	var pinv mat.Dense
	if err := pinv.Solve(a, eye); err != nil {
		return nil, fmt.Errorf("savitzky-golay: %w", err)
	}

	return mat.Row(nil, 0, &pinv), nil
}

// Smooth applies cubic Savitzky-Golay smoothing with mirrored edges.
func Smooth(y []float64, window int) ([]float64, error) {
	n := len(y)
	if window%2 == 0 {
		return nil, &SmoothingError{Window: window, Samples: n, Reason: "window length must be odd"}
	}
	if window <= PolyOrder {
		return nil, &SmoothingError{Window: window, Samples: n,
			Reason: fmt.Sprintf("window length must exceed the polynomial order %d", PolyOrder)}
	}
	if window > n {
		return nil, &SmoothingError{Window: window, Samples: n, Reason: "window longer than the data"}
	}

	coeffs, err := SavitzkyGolay(window, PolyOrder)
	if err != nil {
		return nil, err
	}

	half := window / 2
	padded := mirrorPad(y, half)

	full, err := convolveFFT(padded, coeffs)
	if err != nil {
		return nil, err
	}

	out := make([]float64, n)
	copy(out, full[2*half:2*half+n])
	return out, nil
}

// mirrorPad extends x by pad samples on each side, reflecting about the
// first and last sample. Requires pad < len(x).
func mirrorPad(x []float64, pad int) []float64 {
	n := len(x)
	out := make([]float64, n+2*pad)
	for i := 0; i < pad; i++ {
		out[pad-1-i] = x[i+1]
		out[pad+n+i] = x[n-2-i]
	}
	copy(out[pad:], x)
	return out
}

var errEmptyConvolution = errors.New("spectrum: empty convolution operand")

// convolveFFT returns the full linear convolution of signal and kernel.
func convolveFFT(signal, kernel []float64) ([]float64, error) {
	if len(signal) == 0 || len(kernel) == 0 {
		return nil, errEmptyConvolution
	}

	outLen := len(signal) + len(kernel) - 1
	size := nextPowerOf2(outLen)

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("spectrum: failed to create FFT plan: %w", err)
	}

	a := make([]complex128, size)
	b := make([]complex128, size)
	for i, v := range signal {
		a[i] = complex(v, 0)
	}
	for i, v := range kernel {
		b[i] = complex(v, 0)
	}

	if err := plan.Forward(a, a); err != nil {
		return nil, fmt.Errorf("spectrum: forward FFT failed: %w", err)
	}
	if err := plan.Forward(b, b); err != nil {
		return nil, fmt.Errorf("spectrum: forward FFT failed: %w", err)
	}
	for i := range a {
		a[i] *= b[i]
	}
	if err := plan.Inverse(a, a); err != nil {
		return nil, fmt.Errorf("spectrum: inverse FFT failed: %w", err)
	}

	out := make([]float64, outLen)
	for i := range out {
		out[i] = real(a[i])
	}
	return out, nil
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}
