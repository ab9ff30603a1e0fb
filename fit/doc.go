// Package fit drives the least-squares minimization of a composed model
// against a preprocessed spectrum.
//
// The residual is data minus model. The default method is a
// Levenberg-Marquardt solver on gonum/mat with a finite-difference
// Jacobian; the gonum/optimize methods are available by name (see
// [Methods]). Parameter bounds are enforced by the MINUIT transforms in
// bounds.go, so every method works on an unconstrained problem.
//
// After a successful solve, [Run] estimates the covariance matrix, standard
// errors and correlations, and optionally confidence intervals. A failing
// confidence-interval estimate is recorded in the Result and logged; it
// does not fail the fit.
package fit
