package testutil

import (
	"math"
	"math/rand"
)

const fwhmToSigma = 0.42466090014400953 // 1 / (2*sqrt(2*ln 2))

// Linspace returns n evenly spaced samples over [start, stop].
func Linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	out[n-1] = stop
	return out
}

// Gaussian evaluates an area-normalized Gaussian line on x.
func Gaussian(x []float64, amplitude, center, fwhm float64) []float64 {
	sigma := fwhm * fwhmToSigma
	out := make([]float64, len(x))
	for i, v := range x {
		d := (v - center) / sigma
		out[i] = amplitude / (sigma * math.Sqrt(2*math.Pi)) * math.Exp(-0.5*d*d)
	}
	return out
}

// Lorentzian evaluates an area-normalized Lorentzian line on x.
func Lorentzian(x []float64, amplitude, center, fwhm float64) []float64 {
	gamma := fwhm / 2
	out := make([]float64, len(x))
	for i, v := range x {
		d := (v - center) / gamma
		out[i] = amplitude / (math.Pi * gamma * (1 + d*d))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Add returns the elementwise sum of the given equally long series.
func Add(series ...[]float64) []float64 {
	if len(series) == 0 {
		return nil
	}
	out := make([]float64, len(series[0]))
	for _, s := range series {
		for i, v := range s {
			out[i] += v
		}
	}
	return out
}
