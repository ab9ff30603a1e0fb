package peaks

import (
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// weidemanTerms is the number of terms N in Weideman's expansion.
const weidemanTerms = 32

var (
	weidemanOnce   sync.Once
	weidemanCoeffs []float64
	weidemanL      = math.Sqrt(weidemanTerms / math.Sqrt2)
	invSqrtPi      = 1 / math.Sqrt(math.Pi)
)

// weidemanCoefficients computes the polynomial coefficients of Weideman's
// approximation. The coefficients are the real part of the DFT of the
// sampled, fftshift-ordered kernel exp(-t^2)*(L^2+t^2) with
// t = L*tan(theta/2).
func weidemanCoefficients(n int) ([]float64, error) {
	m := 2 * n
	size := 2 * m
	l := math.Sqrt(float64(n) / math.Sqrt2)

	buf := make([]complex128, size)
	for i := range buf {
		if i == m {
			continue
		}
		k := i
		if i > m {
			k = i - size
		}
		t := l * math.Tan(float64(k)*math.Pi/float64(m)/2)
		buf[i] = complex(math.Exp(-t*t)*(l*l+t*t), 0)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("peaks: failed to create FFT plan: %w", err)
	}

	err = plan.Forward(buf, buf)
	if err != nil {
		return nil, fmt.Errorf("peaks: forward FFT failed: %w", err)
	}

	coeffs := make([]float64, n)
	for j := range coeffs {
		coeffs[j] = real(buf[j+1]) / float64(size)
	}
	return coeffs, nil
}

func coefficients() []float64 {
	weidemanOnce.Do(func() {
		c, err := weidemanCoefficients(weidemanTerms)
		if err != nil {
			panic(err)
		}
		weidemanCoeffs = c
	})
	return weidemanCoeffs
}

// Faddeeva returns w(z) = exp(-z^2) * erfc(-iz).
//
// Values in the lower half plane are obtained from the reflection
// w(z) = 2*exp(-z^2) - w(-z).
func Faddeeva(z complex128) complex128 {
	if imag(z) < 0 {
		return 2*cmplx.Exp(-z*z) - Faddeeva(-z)
	}

	c := coefficients()
	l := complex(weidemanL, 0)
	iz := complex(-imag(z), real(z))
	d := l - iz
	zz := (l + iz) / d

	var p complex128
	for j := len(c) - 1; j >= 0; j-- {
		p = p*zz + complex(c[j], 0)
	}

	return 2*p/(d*d) + complex(invSqrtPi, 0)/d
}
