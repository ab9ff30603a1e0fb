// Package report turns a fit result into output tables and a JSON summary.
//
// [Aggregate] is pure: it only reads the result and the input spectrum.
// Writing the tables to disk is left to internal/output.
package report
