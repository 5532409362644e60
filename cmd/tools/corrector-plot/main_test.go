package main

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/photomatch/internal/geometry"
	"github.com/banshee-data/photomatch/internal/orientation"
	"github.com/banshee-data/photomatch/internal/units"
)

func defaultOptions(dir string) Options {
	return Options{
		OutputDir:   dir,
		Methods:     "fixed_step, bisection",
		TargetPitch: 70.5,
		FocalLength: 1000,
		Width:       1920,
		Height:      1080,
		StartPitch:  60,
		Tolerance:   0.5,
		MaxIter:     50,
		AngleUnits:  units.Degrees,
	}
}

func TestRunAll(t *testing.T) {
	dir := t.TempDir()
	results, err := runAll(context.Background(), defaultOptions(dir))
	if err != nil {
		t.Fatalf("runAll: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Status != orientation.MaxIterExceeded || results[0].Iterations != 50 {
		t.Errorf("fixed_step: status %s after %d iterations, want max_iter_exceeded after 50", results[0].Status, results[0].Iterations)
	}
	if results[1].Status != orientation.Converged {
		t.Errorf("bisection: status %s, want converged", results[1].Status)
	}

	for _, name := range []string{"corrector_fixed_step.png", "corrector_fixed_step.html", "corrector_bisection.png", "corrector_bisection.html"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("missing %s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestRunAll_WithConfig(t *testing.T) {
	o := defaultOptions(t.TempDir())
	o.ConfigPath = "../../../config/calibration.defaults.json"
	o.Methods = "bisection"
	results, err := runAll(context.Background(), o)
	if err != nil {
		t.Fatalf("runAll: %v", err)
	}
	if len(results) != 1 || results[0].Method != orientation.Bisection {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestRunAll_UnknownMethod(t *testing.T) {
	o := defaultOptions(t.TempDir())
	o.Methods = "newton"
	if _, err := runAll(context.Background(), o); err == nil {
		t.Error("expected error for unknown method")
	}
}

func TestRunAll_InvalidUnits(t *testing.T) {
	o := defaultOptions(t.TempDir())
	o.AngleUnits = "grad"
	if _, err := runAll(context.Background(), o); err == nil || !strings.Contains(err.Error(), "deg, rad") {
		t.Errorf("expected units error, got %v", err)
	}
}

func TestSummary(t *testing.T) {
	res := orientation.CorrectorResult{
		Method:     orientation.Bisection,
		Status:     orientation.Converged,
		Iterations: 13,
		Euler:      geometry.EulerXYZ{X: math.Pi / 4},
		Residual:   0.25,
	}
	tests := []struct {
		unit string
		want string
	}{
		{units.Degrees, "pitch=45.0000deg"},
		{units.Radians, "pitch=0.7854rad"},
	}
	for _, tt := range tests {
		got := summary(res, tt.unit)
		if !strings.Contains(got, tt.want) {
			t.Errorf("summary(%s) = %q, want it to contain %q", tt.unit, got, tt.want)
		}
		if !strings.Contains(got, "converged") || !strings.Contains(got, "iterations=13") {
			t.Errorf("summary(%s) = %q missing status or iterations", tt.unit, got)
		}
	}
}
