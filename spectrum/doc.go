// Package spectrum holds a measured one-dimensional spectrum and the
// preprocessing applied to it before fitting.
//
// [Preprocess] runs a fixed pipeline on a copy of the input:
//
//  1. descending energy axes are reversed to ascending order
//  2. the energy shift is added to every energy sample
//  3. samples outside the inclusive energy window are dropped
//  4. optional Savitzky-Golay smoothing (cubic, FFT convolution)
//  5. optional oversampling onto an evenly spaced grid
package spectrum
