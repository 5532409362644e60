// Command corrector-plot runs the pitch corrector against the vanishing
// points of a synthetic camera and writes the trace as PNG and HTML.
//
// The default target (70.5° pitch, corrector starting at 60°) is one the
// fixed-step method cannot reach, which makes its oscillation visible next
// to the bisection run.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/photomatch/internal/camera"
	"github.com/banshee-data/photomatch/internal/config"
	"github.com/banshee-data/photomatch/internal/diagnostics"
	"github.com/banshee-data/photomatch/internal/geometry"
	"github.com/banshee-data/photomatch/internal/orientation"
	"github.com/banshee-data/photomatch/internal/units"
	"github.com/banshee-data/photomatch/internal/vanishing"
)

// Options holds the command-line settings.
type Options struct {
	ConfigPath  string
	OutputDir   string
	Methods     string
	TargetPitch float64
	TargetRoll  float64
	FocalLength float64
	Width       int
	Height      int
	StartPitch  float64
	Tolerance   float64
	MaxIter     int
	AngleUnits  string
}

func parseFlags() Options {
	o := Options{}
	flag.StringVar(&o.ConfigPath, "config", "", "Calibration config JSON for corrector defaults")
	flag.StringVar(&o.OutputDir, "output", ".", "Output directory for plots")
	flag.StringVar(&o.Methods, "methods", "fixed_step,bisection", "Comma-separated corrector methods to run")
	flag.Float64Var(&o.TargetPitch, "pitch", 70.5, "Target camera pitch in degrees (0 = looking down)")
	flag.Float64Var(&o.TargetRoll, "roll", 0, "Target camera roll in degrees")
	flag.Float64Var(&o.FocalLength, "focal", 1000, "Focal length in pixels")
	flag.IntVar(&o.Width, "width", 1920, "Image width in pixels")
	flag.IntVar(&o.Height, "height", 1080, "Image height in pixels")
	flag.Float64Var(&o.StartPitch, "start", 60, "Initial corrector pitch in degrees")
	flag.Float64Var(&o.Tolerance, "tolerance", 0.5, "Residual tolerance in pixels")
	flag.IntVar(&o.MaxIter, "max-iter", 200, "Maximum corrector iterations")
	flag.StringVar(&o.AngleUnits, "units", units.Degrees, "Units for reported angles: "+units.GetValidUnitsString())
	flag.Parse()
	return o
}

// baseConfig starts from the config file when one is given and applies the
// flag overrides.
func baseConfig(o Options) (orientation.Config, error) {
	cfg := orientation.DefaultConfig()
	if o.ConfigPath != "" {
		c, err := config.LoadCalibrationConfig(o.ConfigPath)
		if err != nil {
			return cfg, err
		}
		cfg = c.CorrectorConfig()
	}
	cfg.InitialPitchDeg = o.StartPitch
	cfg.TolerancePixels = o.Tolerance
	cfg.MaxIterations = o.MaxIter
	cfg.Trace = true
	return cfg, nil
}

func targetPair(o Options) (vanishing.Pair, camera.Intrinsics, error) {
	size := geometry.ImageSize{Width: o.Width, Height: o.Height}
	intr := camera.IntrinsicsForImage(o.FocalLength, size)
	e := geometry.EulerXYZ{
		X: units.DegToRad(o.TargetPitch),
		Y: units.DegToRad(o.TargetRoll),
		Z: units.DegToRad(45),
	}
	fu, fv, err := camera.New(geometry.Point3D{}, e.Matrix(), intr).VanishingPoints()
	if err != nil {
		return vanishing.Pair{}, intr, err
	}
	return vanishing.Pair{Fu: fu, Fv: fv}, intr, nil
}

func writeTrace(dir string, res orientation.CorrectorResult, tolerance float64) error {
	base := filepath.Join(dir, fmt.Sprintf("corrector_%s", res.Method))

	pngFile, err := os.Create(base + ".png")
	if err != nil {
		return err
	}
	if err := diagnostics.WriteTracePNG(pngFile, res, tolerance); err != nil {
		pngFile.Close()
		return err
	}
	if err := pngFile.Close(); err != nil {
		return err
	}

	htmlFile, err := os.Create(base + ".html")
	if err != nil {
		return err
	}
	if err := diagnostics.WriteTraceHTML(htmlFile, res); err != nil {
		htmlFile.Close()
		return err
	}
	return htmlFile.Close()
}

// summary is the one-line report for a corrector run.
func summary(res orientation.CorrectorResult, angleUnits string) string {
	return fmt.Sprintf("%-10s %-17s iterations=%-4d pitch=%.4f%s residual=%.4fpx",
		res.Method, res.Status, res.Iterations, units.ConvertAngle(res.Euler.X, angleUnits), angleUnits, res.Residual)
}

func runAll(ctx context.Context, o Options) ([]orientation.CorrectorResult, error) {
	if !units.IsValid(o.AngleUnits) {
		return nil, fmt.Errorf("invalid -units %q: must be one of %s", o.AngleUnits, units.GetValidUnitsString())
	}
	cfg, err := baseConfig(o)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	target, intr, err := targetPair(o)
	if err != nil {
		return nil, fmt.Errorf("target camera: %w", err)
	}
	if err := os.MkdirAll(o.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	var results []orientation.CorrectorResult
	for _, name := range strings.Split(o.Methods, ",") {
		m, err := orientation.ParseMethod(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		cfg.Method = m
		c, err := orientation.NewCorrector(cfg)
		if err != nil {
			return nil, err
		}
		res, err := c.Run(ctx, target, intr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m, err)
		}
		if err := writeTrace(o.OutputDir, res, cfg.TolerancePixels); err != nil {
			return nil, fmt.Errorf("%s: failed to write trace: %w", m, err)
		}
		results = append(results, res)
	}
	return results, nil
}

func main() {
	o := parseFlags()
	results, err := runAll(context.Background(), o)
	if err != nil {
		log.Fatalf("corrector-plot: %v", err)
	}
	for _, res := range results {
		log.Print(summary(res, o.AngleUnits))
	}
	log.Printf("Plots written to %s", o.OutputDir)
}
