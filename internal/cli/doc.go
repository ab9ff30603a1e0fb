// Package cli implements the spectrafit command.
//
// A run reads a data file and a fit description, fits the described peak
// model to the data and writes four artifacts next to the output basename:
//
//	<base>_summary.json     statistics, variables, correlations, intervals
//	<base>_fit.csv          energy, intensity, fit, residual
//	<base>_components.csv   energy plus one column per peak
//	<base>_parameters.csv   one row per parameter
//
// Run settings come from the description's settings block, SPECTRAFIT_*
// environment variables and flags, later sources overriding earlier ones.
package cli
