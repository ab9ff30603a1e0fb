package dataio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/spectrafit/internal/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSeparators(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opts []Option
	}{
		{name: "comma", in: "0,1\n1,2\n2,3\n"},
		{name: "tab", in: "0\t1\n1\t2\n2\t3\n"},
		{name: "semicolon", in: "0;1\n1;2\n2;3\n"},
		{name: "whitespace", in: "0   1\n 1 2\n2\t3\n"},
		{name: "explicit tab", in: "0\t1\n1\t2\n2\t3\n", opts: []Option{WithSeparator(`\t`)}},
		{name: "comments and blanks", in: "# energy intensity\n\n0,1\n# mid\n1,2\n2,3\n"},
		{name: "header row", in: "energy,intensity\n0,1\n1,2\n2,3\n"},
		{name: "decimal comma", in: "0,0;1,0\n1,0;2,0\n2,0;3,0\n", opts: []Option{WithDecimal(',')}},
		{name: "no trailing newline", in: "0,1\n1,2\n2,3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Read(strings.NewReader(tt.in), tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, []float64{0, 1, 2}, s.Energy)
			assert.Equal(t, []float64{1, 2, 3}, s.Intensity)
		})
	}
}

func TestReadColumns(t *testing.T) {
	in := "id,intensity,energy\n7,10,1\n8,20,2\n9,30,3\n"

	s, err := Read(strings.NewReader(in), WithColumns("energy", "intensity"))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, s.Energy)
	assert.Equal(t, []float64{10, 20, 30}, s.Intensity)

	s, err = Read(strings.NewReader(in), WithColumns("2", "0"))
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 8, 9}, s.Intensity)

	_, err = Read(strings.NewReader(in), WithColumns("energy", "counts"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "counts" not found`)
}

func TestReadExplicitHeader(t *testing.T) {
	in := "title line\nunits: eV counts\n0 5\n1 6\n"

	s, err := Read(strings.NewReader(in), WithHeader(2))
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 6}, s.Intensity)

	_, err = Read(strings.NewReader(in), WithHeader(0))
	require.Error(t, err)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		opts []Option
		want string
	}{
		{name: "empty", in: "# nothing\n", want: "no numeric rows"},
		{name: "short row", in: "0,1\n1\n", want: "row 2"},
		{name: "bad number", in: "0,1\n1,x\n", want: `"x" is not a number`},
		{name: "not monotonic", in: "0,1\n2,2\n1,3\n", want: "monotonic"},
		{name: "separator clash", in: "0,1\n", opts: []Option{WithSeparator(","), WithDecimal(',')}, want: "both"},
		{name: "long separator", in: "0::1\n", opts: []Option{WithSeparator("::")}, want: "single character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.in), tt.opts...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.True(t, failure.IsKind(err, failure.KindData))
		})
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	txt := filepath.Join(dir, "data.txt")
	require.NoError(t, os.WriteFile(txt, []byte("0 1\n1 4\n2 9\n"), 0o644))
	s, err := ReadFile(txt)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 4, 9}, s.Intensity)

	_, err = ReadFile(filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	assert.True(t, failure.IsKind(err, failure.KindIO))
}

func TestDescendingAxisIsAccepted(t *testing.T) {
	s, err := Read(strings.NewReader("3,1\n2,2\n1,3\n"))
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 2, 1}, s.Energy)
}
