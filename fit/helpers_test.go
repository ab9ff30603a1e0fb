package fit

import (
	"testing"

	"github.com/cwbudde/spectrafit/config"
	"github.com/cwbudde/spectrafit/model"
	"github.com/cwbudde/spectrafit/spectrum"
)

func composeModel(t *testing.T, peakBlock map[string]any) *model.Model {
	t.Helper()

	cfg, err := config.Validate(map[string]any{
		"parameters": map[string]any{"minimizer": nil, "optimizer": nil},
		"peaks":      peakBlock,
	})
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	m, err := model.Compose(cfg)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	return m
}

func mustSpectrum(t *testing.T, x, y []float64) *spectrum.Spectrum {
	t.Helper()

	s, err := spectrum.New(x, y)
	if err != nil {
		t.Fatalf("spectrum: %v", err)
	}
	return s
}

func gaussianBlock() map[string]any {
	return map[string]any{"1": map[string]any{"gaussian": map[string]any{
		"amplitude": map[string]any{"value": 1.0, "min": 0.0},
		"center":    map[string]any{"value": 0.0, "min": -2.0, "max": 2.0},
		"fwhmg":     map[string]any{"value": 1.0, "min": 0.1},
	}}}
}

func requireParam(t *testing.T, res *Result, name string) ParamResult {
	t.Helper()

	p, ok := res.Param(name)
	if !ok {
		t.Fatalf("missing parameter %s", name)
	}
	return p
}
