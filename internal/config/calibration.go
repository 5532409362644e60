package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/photomatch/internal/calibrator"
	"github.com/banshee-data/photomatch/internal/orientation"
	"github.com/banshee-data/photomatch/internal/units"
)

// DefaultConfigPath is the path to the canonical calibration defaults file.
const DefaultConfigPath = "config/calibration.defaults.json"

// CalibrationConfig is the root configuration for the calibrator and its
// pitch corrector. Every field is optional; the Get* methods supply the
// default for anything left out of the JSON.
type CalibrationConfig struct {
	// Geometry params
	ParallelEpsilon     *float64 `json:"parallel_epsilon,omitempty"`
	AlignerToleranceDeg *float64 `json:"aligner_tolerance_deg,omitempty"`

	// Corrector params
	Refine               *bool    `json:"refine,omitempty"`
	CorrectorMethod      *string  `json:"corrector_method,omitempty"` // "bisection" or "fixed_step"
	ErrorTolerancePixels *float64 `json:"error_tolerance_pixels,omitempty"`
	MaxIterations        *int     `json:"max_iterations,omitempty"`
	StepDegrees          *float64 `json:"step_degrees,omitempty"`
	InitialYawDeg        *float64 `json:"initial_yaw_deg,omitempty"`
	InitialPitchDeg      *float64 `json:"initial_pitch_deg,omitempty"`
	BracketLowDeg        *float64 `json:"bracket_low_deg,omitempty"`
	BracketHighDeg       *float64 `json:"bracket_high_deg,omitempty"`

	// Output params
	AngleUnits *string `json:"angle_units,omitempty"` // "deg" or "rad"
}

// EmptyCalibrationConfig returns a CalibrationConfig with all fields nil.
func EmptyCalibrationConfig() *CalibrationConfig {
	return &CalibrationConfig{}
}

// LoadCalibrationConfig loads a CalibrationConfig from a JSON file.
// The file must have a .json extension and be under 1MB. Fields omitted
// from the file keep their defaults, so partial configs are safe.
func LoadCalibrationConfig(path string) (*CalibrationConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyCalibrationConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the calibration defaults from DefaultConfigPath,
// searching the current directory and its parents. Panics if the file cannot
// be loaded; intended for test setup.
func MustLoadDefaultConfig() *CalibrationConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/tools/corrector-plot/
	}
	for _, path := range candidates {
		if cfg, err := LoadCalibrationConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the values that are set.
func (c *CalibrationConfig) Validate() error {
	if c.ParallelEpsilon != nil && *c.ParallelEpsilon < 0 {
		return fmt.Errorf("parallel_epsilon must be non-negative, got %f", *c.ParallelEpsilon)
	}
	if c.AlignerToleranceDeg != nil && (*c.AlignerToleranceDeg <= 0 || *c.AlignerToleranceDeg >= 90) {
		return fmt.Errorf("aligner_tolerance_deg must be in (0, 90), got %f", *c.AlignerToleranceDeg)
	}
	if c.CorrectorMethod != nil {
		if _, err := orientation.ParseMethod(*c.CorrectorMethod); err != nil {
			return fmt.Errorf("corrector_method: %w", err)
		}
	}
	if c.ErrorTolerancePixels != nil && *c.ErrorTolerancePixels < 0 {
		return fmt.Errorf("error_tolerance_pixels must be non-negative, got %f", *c.ErrorTolerancePixels)
	}
	if c.MaxIterations != nil && *c.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be positive, got %d", *c.MaxIterations)
	}
	if c.StepDegrees != nil && *c.StepDegrees <= 0 {
		return fmt.Errorf("step_degrees must be positive, got %f", *c.StepDegrees)
	}
	if c.InitialPitchDeg != nil && (*c.InitialPitchDeg <= 0 || *c.InitialPitchDeg >= 180) {
		return fmt.Errorf("initial_pitch_deg must be in (0, 180), got %f", *c.InitialPitchDeg)
	}
	if c.GetBracketLowDeg() <= 0 || c.GetBracketHighDeg() >= 180 {
		return fmt.Errorf("bracket_low_deg and bracket_high_deg must be in (0, 180), got %f and %f", c.GetBracketLowDeg(), c.GetBracketHighDeg())
	}
	if c.GetBracketLowDeg() >= c.GetBracketHighDeg() {
		return fmt.Errorf("bracket_low_deg %f must be below bracket_high_deg %f", c.GetBracketLowDeg(), c.GetBracketHighDeg())
	}
	if c.AngleUnits != nil && !units.IsValid(*c.AngleUnits) {
		return fmt.Errorf("angle_units must be one of %s, got %q", units.GetValidUnitsString(), *c.AngleUnits)
	}
	return nil
}

// GetParallelEpsilon returns the parallel_epsilon value or the default.
func (c *CalibrationConfig) GetParallelEpsilon() float64 {
	if c.ParallelEpsilon == nil {
		return 0 // exact test
	}
	return *c.ParallelEpsilon
}

// GetAlignerToleranceDeg returns the aligner_tolerance_deg value or the default.
func (c *CalibrationConfig) GetAlignerToleranceDeg() float64 {
	if c.AlignerToleranceDeg == nil {
		return 0.5
	}
	return *c.AlignerToleranceDeg
}

// GetRefine returns the refine value or the default.
func (c *CalibrationConfig) GetRefine() bool {
	if c.Refine == nil {
		return false
	}
	return *c.Refine
}

// GetCorrectorMethod returns the corrector_method value or the default.
// An unparseable value falls back to the default.
func (c *CalibrationConfig) GetCorrectorMethod() orientation.Method {
	if c.CorrectorMethod == nil {
		return orientation.Bisection
	}
	m, err := orientation.ParseMethod(*c.CorrectorMethod)
	if err != nil {
		return orientation.Bisection
	}
	return m
}

// GetErrorTolerancePixels returns the error_tolerance_pixels value or the default.
func (c *CalibrationConfig) GetErrorTolerancePixels() float64 {
	if c.ErrorTolerancePixels == nil {
		return 1.0
	}
	return *c.ErrorTolerancePixels
}

// GetMaxIterations returns the max_iterations value or the default.
func (c *CalibrationConfig) GetMaxIterations() int {
	if c.MaxIterations == nil {
		return 1000
	}
	return *c.MaxIterations
}

// GetStepDegrees returns the step_degrees value or the default.
func (c *CalibrationConfig) GetStepDegrees() float64 {
	if c.StepDegrees == nil {
		return 1.0
	}
	return *c.StepDegrees
}

// GetInitialYawDeg returns the initial_yaw_deg value or the default.
func (c *CalibrationConfig) GetInitialYawDeg() float64 {
	if c.InitialYawDeg == nil {
		return 45.0 // keeps both axis vanishing points in frame
	}
	return *c.InitialYawDeg
}

// GetInitialPitchDeg returns the initial_pitch_deg value or the default.
func (c *CalibrationConfig) GetInitialPitchDeg() float64 {
	if c.InitialPitchDeg == nil {
		return 90.0 // level
	}
	return *c.InitialPitchDeg
}

// GetBracketLowDeg returns the bracket_low_deg value or the default.
func (c *CalibrationConfig) GetBracketLowDeg() float64 {
	if c.BracketLowDeg == nil {
		return 1.0
	}
	return *c.BracketLowDeg
}

// GetBracketHighDeg returns the bracket_high_deg value or the default.
func (c *CalibrationConfig) GetBracketHighDeg() float64 {
	if c.BracketHighDeg == nil {
		return 179.0
	}
	return *c.BracketHighDeg
}

// GetAngleUnits returns the angle_units value or the default.
func (c *CalibrationConfig) GetAngleUnits() string {
	if c.AngleUnits == nil {
		return units.Degrees
	}
	return *c.AngleUnits
}

// CorrectorConfig maps the corrector fields onto an orientation.Config.
func (c *CalibrationConfig) CorrectorConfig() orientation.Config {
	return orientation.Config{
		Method:          c.GetCorrectorMethod(),
		TolerancePixels: c.GetErrorTolerancePixels(),
		MaxIterations:   c.GetMaxIterations(),
		StepDeg:         c.GetStepDegrees(),
		YawDeg:          c.GetInitialYawDeg(),
		InitialPitchDeg: c.GetInitialPitchDeg(),
		BracketLowDeg:   c.GetBracketLowDeg(),
		BracketHighDeg:  c.GetBracketHighDeg(),
	}
}

// CalibratorOptions maps the whole configuration onto calibrator.Options.
func (c *CalibrationConfig) CalibratorOptions() calibrator.Options {
	return calibrator.Options{
		ParallelEpsilon:     c.GetParallelEpsilon(),
		AlignerToleranceDeg: c.GetAlignerToleranceDeg(),
		Refine:              c.GetRefine(),
		Corrector:           c.CorrectorConfig(),
		AngleUnits:          c.GetAngleUnits(),
	}
}
