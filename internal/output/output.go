// Package output writes the artifacts of a fitting run.
package output

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cwbudde/spectrafit/internal/failure"
	"github.com/cwbudde/spectrafit/report"
)

// File name suffixes appended to the output basename.
const (
	SuffixSummary    = "_summary.json"
	SuffixFit        = "_fit.csv"
	SuffixComponents = "_components.csv"
	SuffixParameters = "_parameters.csv"
)

// Artifacts are the four files produced per run.
type Artifacts struct {
	Summary    string
	Fit        string
	Components string
	Parameters string
}

// Paths returns the artifact paths for basename.
func Paths(basename string) Artifacts {
	return Artifacts{
		Summary:    basename + SuffixSummary,
		Fit:        basename + SuffixFit,
		Components: basename + SuffixComponents,
		Parameters: basename + SuffixParameters,
	}
}

// All lists the paths in write order.
func (a Artifacts) All() []string {
	return []string{a.Summary, a.Fit, a.Components, a.Parameters}
}

// Existing returns the artifact paths that already exist.
func (a Artifacts) Existing() ([]string, error) {
	var out []string
	for _, p := range a.All() {
		_, err := os.Stat(p)
		switch {
		case err == nil:
			out = append(out, p)
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, ioError(p, err)
		}
	}
	return out, nil
}

// Write writes all tables of t.
func (a Artifacts) Write(t *report.Tables) error {
	if err := WriteJSON(a.Summary, t.Summary); err != nil {
		return err
	}
	if err := WriteCSV(a.Fit, t.Fit.Records()); err != nil {
		return err
	}
	if err := WriteCSV(a.Components, t.Components.Records()); err != nil {
		return err
	}
	return WriteCSV(a.Parameters, t.ParameterRecords())
}

// WriteCSV writes records to path, creating parent directories.
func WriteCSV(path string, records [][]string) (err error) {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = ioError(path, cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return ioError(path, err)
	}
	return nil
}

// WriteJSON writes v to path as indented JSON.
func WriteJSON(path string, v any) (err error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return failure.Wrap("output.write", failure.KindIO, fmt.Errorf("encode %s: %w", path, err))
	}
	data = append(data, '\n')

	f, err := create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = ioError(path, cerr)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return ioError(path, err)
	}
	return nil
}

func create(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, ioError(path, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, ioError(path, err)
	}
	return f, nil
}

func ioError(path string, err error) error {
	return &failure.OpError{Op: "output.write", Kind: failure.KindIO, Path: path, Err: err}
}
