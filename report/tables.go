package report

import (
	"fmt"
	"strconv"

	"github.com/cwbudde/spectrafit/fit"
)

// Column is a named series.
type Column struct {
	Name   string
	Values []float64
}

// Frame is a set of equally long columns.
type Frame struct {
	Columns []Column
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if len(f.Columns) == 0 {
		return 0
	}
	return len(f.Columns[0].Values)
}

// Names returns the column names.
func (f *Frame) Names() []string {
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the values of the named column.
func (f *Frame) Column(name string) ([]float64, bool) {
	for _, c := range f.Columns {
		if c.Name == name {
			return c.Values, true
		}
	}
	return nil, false
}

// Records renders the frame with a header row.
func (f *Frame) Records() [][]string {
	out := make([][]string, 0, f.Len()+1)
	out = append(out, f.Names())
	for i := 0; i < f.Len(); i++ {
		row := make([]string, len(f.Columns))
		for j, c := range f.Columns {
			row[j] = FormatFloat(c.Values[i])
		}
		out = append(out, row)
	}
	return out
}

// ParameterRow is one line of the parameter table.
type ParameterRow struct {
	Name      string
	Component string
	Value     float64
	Stderr    float64
	Init      float64
	Min       float64
	Max       float64
	Vary      bool
	Expr      string
	CI        []fit.Interval
}

// Tables is everything written for a run.
type Tables struct {
	Fit        Frame
	Components Frame
	Parameters []ParameterRow
	Summary    Summary
}

// ParameterRecords renders the parameter table with a header row. Interval
// columns are added per requested level when intervals were computed.
func (t *Tables) ParameterRecords() [][]string {
	header := []string{"name", "component", "value", "stderr", "init", "min", "max", "vary", "expr"}

	var sigmas []float64
	for _, r := range t.Parameters {
		if len(r.CI) > len(sigmas) {
			sigmas = sigmas[:0]
			for _, iv := range r.CI {
				sigmas = append(sigmas, iv.Sigma)
			}
		}
	}
	for _, s := range sigmas {
		label := strconv.FormatFloat(s, 'g', -1, 64)
		header = append(header, fmt.Sprintf("ci_lower_%ssigma", label), fmt.Sprintf("ci_upper_%ssigma", label))
	}

	out := [][]string{header}
	for _, r := range t.Parameters {
		row := []string{
			r.Name, r.Component,
			FormatFloat(r.Value), FormatFloat(r.Stderr), FormatFloat(r.Init),
			FormatFloat(r.Min), FormatFloat(r.Max),
			strconv.FormatBool(r.Vary), r.Expr,
		}
		for i := range sigmas {
			if i < len(r.CI) {
				row = append(row, FormatFloat(r.CI[i].Lower), FormatFloat(r.CI[i].Upper))
			} else {
				row = append(row, "", "")
			}
		}
		out = append(out, row)
	}
	return out
}
