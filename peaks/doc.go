// Package peaks provides the closed-form line shapes used as basis functions
// when fitting spectra.
//
// Every shape is a pure function of the energy axis and its own ordered
// parameter vector. Shapes are looked up by name through a [Registry]; the
// [Default] registry carries the built-in family:
//
//   - gaussian:    amplitude, center, fwhmg
//   - lorentzian:  amplitude, center, fwhml
//   - voigt:       amplitude, center, fwhmv, gamma
//   - pseudovoigt: amplitude, center, fwhmg, fwhml
//   - exponential: amplitude, decay, intercept
//   - power:       amplitude, exponent
//   - linear:      slope, intercept
//   - constant:    amplitude
//   - erf, atan, log: amplitude, center, sigma (step functions)
//   - heaviside:   amplitude, center
//
// Peak shapes are area-normalized, so amplitude is the integrated intensity.
// Widths are full widths at half maximum.
//
// The Voigt profile is computed from the real part of the Faddeeva function,
// evaluated with Weideman's rational approximation.
package peaks
