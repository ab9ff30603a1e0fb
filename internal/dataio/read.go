// Package dataio reads two-column spectra from delimited text files.
package dataio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cwbudde/spectrafit/internal/failure"
	"github.com/cwbudde/spectrafit/spectrum"
)

// ErrNoData is returned when a file holds no numeric rows.
var ErrNoData = errors.New("no numeric rows")

const (
	commentMark = '#'
	readerSize  = 64 << 10
)

// ReadFile reads a spectrum from path. Files ending in .txt or .dat default
// to whitespace separation.
func ReadFile(path string, opts ...Option) (*spectrum.Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &failure.OpError{Op: "dataio.read", Kind: failure.KindIO, Path: path, Err: err}
	}
	defer f.Close()

	cfg := ApplyOptions(opts...)
	if cfg.Separator == SeparatorAuto {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".dat":
			cfg.Separator = SeparatorWhitespace
		}
	}

	s, err := read(f, cfg)
	if err != nil {
		return nil, &failure.OpError{Op: "dataio.read", Kind: failure.KindData, Path: path, Err: err}
	}
	return s, nil
}

// Read reads a spectrum from r.
func Read(r io.Reader, opts ...Option) (*spectrum.Spectrum, error) {
	s, err := read(r, ApplyOptions(opts...))
	if err != nil {
		return nil, failure.Wrap("dataio.read", failure.KindData, err)
	}
	return s, nil
}

func read(r io.Reader, cfg Config) (*spectrum.Spectrum, error) {
	rows, err := records(r, cfg)
	if err != nil {
		return nil, err
	}

	skip := cfg.Header
	var header []string
	if skip == HeaderAuto {
		skip = 0
		for skip < len(rows) && !numericRow(rows[skip], cfg.Columns, cfg.Decimal) {
			skip++
		}
	}
	if skip > len(rows) {
		return nil, fmt.Errorf("header of %d rows exceeds %d rows", skip, len(rows))
	}
	if skip > 0 {
		header = rows[skip-1]
	}
	rows = rows[skip:]
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	xi, err := columnIndex(cfg.Columns[0], header)
	if err != nil {
		return nil, err
	}
	yi, err := columnIndex(cfg.Columns[1], header)
	if err != nil {
		return nil, err
	}

	energy := make([]float64, 0, len(rows))
	intensity := make([]float64, 0, len(rows))
	for n, row := range rows {
		line := n + skip + 1
		if xi >= len(row) || yi >= len(row) {
			return nil, fmt.Errorf("row %d: has %d fields, need column %d", line, len(row), max(xi, yi))
		}
		x, err := parseFloat(row[xi], cfg.Decimal)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		y, err := parseFloat(row[yi], cfg.Decimal)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		energy = append(energy, x)
		intensity = append(intensity, y)
	}

	return spectrum.New(energy, intensity)
}

// records splits the input into trimmed fields, dropping comments and blank
// lines.
func records(r io.Reader, cfg Config) ([][]string, error) {
	br := bufio.NewReaderSize(r, readerSize)
	sep := cfg.Separator
	if sep == SeparatorAuto {
		detected, err := detect(br, cfg.Decimal)
		if err != nil {
			return nil, err
		}
		sep = detected
	}

	if sep == SeparatorWhitespace {
		var out [][]string
		sc := bufio.NewScanner(br)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || line[0] == commentMark {
				continue
			}
			out = append(out, strings.Fields(line))
		}
		return out, sc.Err()
	}

	comma := []rune(sep)
	if len(comma) != 1 {
		return nil, fmt.Errorf("separator %q must be a single character", sep)
	}
	if comma[0] == cfg.Decimal {
		return nil, fmt.Errorf("separator and decimal mark are both %q", sep)
	}

	cr := csv.NewReader(br)
	cr.Comma = comma[0]
	cr.Comment = commentMark
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
	}
	return rows, nil
}

// detect peeks at the first data line and picks the separator it uses.
func detect(br *bufio.Reader, decimal rune) (string, error) {
	for size := 512; size <= readerSize; size *= 2 {
		buf, err := br.Peek(size)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return "", err
		}
		lines := strings.Split(string(buf), "\n")
		if err == nil {
			// the last line may be cut off
			lines = lines[:len(lines)-1]
		}
		for _, line := range lines {
			line = strings.TrimSpace(line)
			if line == "" || line[0] == commentMark {
				continue
			}
			for _, c := range []string{"\t", ";", ","} {
				if c == string(decimal) {
					continue
				}
				if strings.Contains(line, c) {
					return c, nil
				}
			}
			return SeparatorWhitespace, nil
		}
		if err != nil {
			break
		}
	}
	return SeparatorWhitespace, nil
}

func columnIndex(sel string, header []string) (int, error) {
	if i, err := strconv.Atoi(sel); err == nil {
		if i < 0 {
			return 0, fmt.Errorf("column %d is negative", i)
		}
		return i, nil
	}
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), sel) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %q not found in header", sel)
}

// numericRow reports whether the selected columns of row parse as numbers.
// Columns selected by name require every field to be numeric.
func numericRow(row []string, cols [2]string, decimal rune) bool {
	if len(row) == 0 {
		return false
	}
	fields := row
	xi, errX := strconv.Atoi(cols[0])
	yi, errY := strconv.Atoi(cols[1])
	if errX == nil && errY == nil && xi >= 0 && yi >= 0 {
		if xi >= len(row) || yi >= len(row) {
			return false
		}
		fields = []string{row[xi], row[yi]}
	}
	for _, f := range fields {
		if _, err := parseFloat(f, decimal); err != nil {
			return false
		}
	}
	return true
}

func parseFloat(field string, decimal rune) (float64, error) {
	if decimal != '.' {
		field = strings.ReplaceAll(field, string(decimal), ".")
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", field)
	}
	return v, nil
}
