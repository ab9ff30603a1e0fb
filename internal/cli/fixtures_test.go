package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	. "github.com/onsi/gomega"

	"github.com/cwbudde/spectrafit/internal/testutil"
)

// workspace is a temporary directory holding generated inputs.
type workspace struct {
	dir  string
	data string
}

func newWorkspace(dir string) *workspace {
	w := &workspace{dir: dir, data: filepath.Join(dir, "test_data.csv")}

	x := make([]float64, 151)
	for i := range x {
		x[i] = float64(i)/10 - 5
	}
	y := testutil.Add(testutil.Gaussian(x, 3, 2, 1), testutil.Lorentzian(x, 1, 6, 0.8))

	var b strings.Builder
	b.WriteString("energy,intensity\n")
	for i := range x {
		b.WriteString(strconv.FormatFloat(x[i], 'g', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(y[i]+0.1+0.002*math.Sin(7*x[i]), 'g', -1, 64))
		b.WriteByte('\n')
	}
	Expect(os.WriteFile(w.data, []byte(b.String()), 0o644)).To(Succeed())
	return w
}

func (w *workspace) path(name string) string { return filepath.Join(w.dir, name) }

func (w *workspace) write(name, content string) string {
	p := w.path(name)
	Expect(os.WriteFile(p, []byte(content), 0o644)).To(Succeed())
	return p
}

const yamlConfig = `
fitting:
  parameters:
    minimizer:
      nan_policy: propagate
    optimizer:
      method: leastsq
      max_nfev: 2000
  peaks:
    1:
      gaussian:
        amplitude: {value: 2.5, min: 0, max: 10}
        center: {value: 1.8, min: 0, max: 4}
        fwhmg: {value: 1.2, min: 0.1, max: 3}
    2:
      lorentzian:
        amplitude: {value: 0.8, min: 0, max: 10}
        center: {value: 6.1, min: 5, max: 7}
        fwhml: {value: 1, min: 0.1, max: 3}
    3:
      constant:
        amplitude: {value: 0.1, vary: false}
`

const jsonConfig = `{
  "parameters": {
    "minimizer": {"nan_policy": "propagate"},
    "optimizer": {"method": "leastsq", "max_nfev": 2000}
  },
  "peaks": {
    "1": {"gaussian": {
      "amplitude": {"value": 2.5, "min": 0, "max": 10},
      "center": {"value": 1.8, "min": 0, "max": 4},
      "fwhmg": {"value": 1.2, "min": 0.1, "max": 3}
    }},
    "2": {"lorentzian": {
      "amplitude": {"value": 0.8, "min": 0, "max": 10},
      "center": {"value": 6.1, "min": 5, "max": 7},
      "fwhml": {"value": 1, "min": 0.1, "max": 3}
    }},
    "3": {"constant": {"amplitude": {"value": 0.1, "vary": false}}}
  }
}
`

const tomlConfig = `
[parameters.minimizer]
nan_policy = "propagate"

[parameters.optimizer]
method = "leastsq"
max_nfev = 2000

[peaks.1.gaussian]
amplitude = {value = 2.5, min = 0, max = 10}
center = {value = 1.8, min = 0, max = 4}
fwhmg = {value = 1.2, min = 0.1, max = 3}

[peaks.2.lorentzian]
amplitude = {value = 0.8, min = 0, max = 10}
center = {value = 6.1, min = 5, max = 7}
fwhml = {value = 1, min = 0.1, max = 3}

[peaks.3.constant]
amplitude = {value = 0.1, vary = false}
`

// withCI adds a conf_interval block to the YAML configuration.
func withCI(cfg string) string {
	return strings.Replace(cfg, "      max_nfev: 2000\n",
		"      max_nfev: 2000\n    conf_interval:\n      method: covariance\n      sigmas: [1, 2]\n", 1)
}

// withSettings appends a top-level settings block to the YAML configuration.
func withSettings(cfg, settings string) string {
	return cfg + "settings:\n" + settings
}

const allShapesConfig = `
parameters:
  minimizer: {nan_policy: propagate}
  optimizer: {method: leastsq}
peaks:
  1:
    gaussian:
      amplitude: {value: 2.5, min: 0, max: 10}
      center: {value: 1.8, min: 0, max: 4}
      fwhmg: {value: 1.2, min: 0.1, max: 3}
  2:
    lorentzian:
      amplitude: {value: 0.8, min: 0, max: 10}
      center: {value: 6.1, min: 5, max: 7}
      fwhml: {expr: gaussian_fwhmg_1 * 0.8}
  3:
    voigt:
      amplitude: {value: 0.01, vary: false}
      center: {value: 8, vary: false}
      fwhmv: {value: 0.5, vary: false}
      gamma: {value: 0.2, vary: false}
  4:
    pseudovoigt:
      amplitude: {value: 0.01, vary: false}
      center: {value: -2, vary: false}
      fwhmg: {value: 0.5, vary: false}
      fwhml: {value: 0.5, vary: false}
  5:
    exponential:
      amplitude: {value: 0.01, vary: false}
      decay: {value: 5, vary: false}
      intercept: {value: 0, vary: false}
  6:
    power:
      amplitude: {value: 0.0001, vary: false}
      exponent: {value: 2, vary: false}
  7:
    linear:
      slope: {value: 0, min: -1, max: 1}
      intercept: {value: 0.1, min: -1, max: 1}
  8:
    constant:
      amplitude: {value: 0, vary: false}
  9:
    erf:
      amplitude: {value: 0.01, vary: false}
      center: {value: 9, vary: false}
      sigma: {value: 1, vary: false}
  10:
    heaviside:
      amplitude: {value: 0.01, vary: false}
      center: {value: 9.5, vary: false}
  11:
    atan:
      amplitude: {value: 0.01, vary: false}
      center: {value: 9, vary: false}
      sigma: {value: 1, vary: false}
  12:
    log:
      amplitude: {value: 0.01, vary: false}
      center: {value: 9, vary: false}
      sigma: {value: 1, vary: false}
`

// invocation is one captured command run.
type invocation struct {
	code   int
	stdout string
	stderr string
}

func execute(stdin string, args ...string) invocation {
	var stdout, stderr bytes.Buffer
	app := &App{
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
		Now:    func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
	code := app.Run(context.Background(), append([]string{"spectrafit"}, args...))
	return invocation{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func readCSV(path string) [][]string {
	f, err := os.Open(path)
	Expect(err).NotTo(HaveOccurred())
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	Expect(err).NotTo(HaveOccurred())
	return rows
}

// energyColumn returns the first column of a fit table without its header.
func energyColumn(path string) []float64 {
	rows := readCSV(path)
	Expect(rows[0][0]).To(Equal("energy"))
	out := make([]float64, 0, len(rows)-1)
	for _, r := range rows[1:] {
		v, err := strconv.ParseFloat(r[0], 64)
		Expect(err).NotTo(HaveOccurred())
		out = append(out, v)
	}
	return out
}

func readSummary(path string) map[string]any {
	data, err := os.ReadFile(path)
	Expect(err).NotTo(HaveOccurred())
	var out map[string]any
	Expect(json.Unmarshal(data, &out)).To(Succeed())
	return out
}

func outputsOf(base string) (jsonFiles, csvFiles []string) {
	jsonFiles, _ = filepath.Glob(base + "*.json")
	csvFiles, _ = filepath.Glob(base + "*.csv")
	return jsonFiles, csvFiles
}
