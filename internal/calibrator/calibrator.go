// Package calibrator composes vanishing point extraction, focal length
// recovery and rotation reconstruction into a single calibration call.
//
// The host supplies everything through explicit values: the projected
// aligner (or the world aligner and the camera to project it through) and a
// HostContext with render size and the camera state that distance rescaling
// needs. Nothing is read from ambient state, and a Calibrator may be shared
// between goroutines.
package calibrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/banshee-data/photomatch/internal/camera"
	"github.com/banshee-data/photomatch/internal/distance"
	"github.com/banshee-data/photomatch/internal/focal"
	"github.com/banshee-data/photomatch/internal/geometry"
	"github.com/banshee-data/photomatch/internal/monitoring"
	"github.com/banshee-data/photomatch/internal/orientation"
	"github.com/banshee-data/photomatch/internal/units"
	"github.com/banshee-data/photomatch/internal/vanishing"
)

// ErrInvalidImageSize is returned for a render size with a non-positive side.
var ErrInvalidImageSize = errors.New("image size must be positive")

// Solver stages reported in SolverError.
const (
	StageInput           = "input"
	StageAligner         = "aligner"
	StageVanishingPoints = "vanishing_points"
	StageFocalLength     = "focal_length"
	StageOrientation     = "orientation"
	StageDistance        = "distance"
	StageRefine          = "refine"
)

// SolverError wraps the cause of a failed calibration with the stage that
// produced it. Use errors.Is / errors.As to reach the cause, for example
// *geometry.ParallelLinesError or focal.ErrInfeasible.
type SolverError struct {
	Stage string
	Err   error
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("calibration failed at %s: %v", e.Stage, e.Err)
}

func (e *SolverError) Unwrap() error { return e.Err }

// Options configure a Calibrator.
type Options struct {
	// ParallelEpsilon is the relative parallelism threshold for line
	// intersection. Zero means only exactly parallel lines fail.
	ParallelEpsilon float64
	// AlignerToleranceDeg is the angular tolerance of SolveAligner's
	// parallel-edge check.
	AlignerToleranceDeg float64
	// Refine runs the pitch corrector after the closed-form solve.
	Refine    bool
	Corrector orientation.Config
	// AngleUnits selects the unit of Extrinsics.Angles, units.Degrees or
	// units.Radians.
	AngleUnits string
}

// DefaultOptions returns the options used when no config file is given.
func DefaultOptions() Options {
	return Options{
		AlignerToleranceDeg: vanishing.DefaultAlignerToleranceDeg,
		Corrector:           orientation.DefaultConfig(),
		AngleUnits:          units.Degrees,
	}
}

// HostContext carries the host state a calibration needs. Only Size is
// required. Focal lengths are in pixels.
type HostContext struct {
	Size            geometry.ImageSize `json:"size"`
	CameraPosition  geometry.Point3D   `json:"camera_position"`
	OrigFocalLength float64            `json:"focal_length,omitempty"`
	PlateDistance   float64            `json:"plate_distance,omitempty"`
}

// Extrinsics is the recovered camera placement.
type Extrinsics struct {
	Position geometry.Point3D `json:"position"`
	// Orientation maps camera to world, where world X and Y are the
	// aligner's edge 0-1 and edge 0-2 directions.
	Orientation geometry.Rotation `json:"orientation"`
	Euler       geometry.EulerXYZ `json:"euler"` // radians
	Angles      Angles            `json:"angles"`
}

// Angles is Euler in the host's preferred unit.
type Angles struct {
	Units string  `json:"units"`
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
	Yaw   float64 `json:"yaw"`
}

func anglesIn(e geometry.EulerXYZ, unit string) Angles {
	return Angles{
		Units: unit,
		Pitch: units.ConvertAngle(e.X, unit),
		Roll:  units.ConvertAngle(e.Y, unit),
		Yaw:   units.ConvertAngle(e.Z, unit),
	}
}

// FieldOfView is the angular coverage implied by the solved focal length.
type FieldOfView struct {
	HorizontalDeg float64 `json:"horizontal_deg"`
	VerticalDeg   float64 `json:"vertical_deg"`
}

// Result is a complete calibration.
type Result struct {
	RunID           string             `json:"run_id"`
	Size            geometry.ImageSize `json:"size"`
	VanishingPoints vanishing.Pair     `json:"vanishing_points"`
	Intrinsics      camera.Intrinsics  `json:"intrinsics"`
	Extrinsics      Extrinsics         `json:"extrinsics"`
	FieldOfView     FieldOfView        `json:"field_of_view"`
	// RecommendedDistance and PlatePosition are set when the host supplied
	// an original focal length and plate distance.
	RecommendedDistance *float64                     `json:"recommended_distance,omitempty"`
	PlatePosition       *geometry.Point3D            `json:"plate_position,omitempty"`
	Correction          *orientation.CorrectorResult `json:"correction,omitempty"`
	// RefineError is set when refinement was requested but the corrector
	// failed. The closed-form orientation above is still valid.
	RefineError string `json:"refine_error,omitempty"`
}

// Calibrator runs calibrations with fixed options.
type Calibrator struct {
	opts      Options
	corrector *orientation.Corrector
}

// New validates opts and returns a Calibrator.
func New(opts Options) (*Calibrator, error) {
	if opts.ParallelEpsilon < 0 {
		return nil, fmt.Errorf("parallel epsilon must be non-negative, got %v", opts.ParallelEpsilon)
	}
	if opts.AlignerToleranceDeg <= 0 {
		return nil, fmt.Errorf("aligner tolerance must be positive, got %v", opts.AlignerToleranceDeg)
	}
	if !units.IsValid(opts.AngleUnits) {
		return nil, fmt.Errorf("angle units must be one of %s, got %q", units.GetValidUnitsString(), opts.AngleUnits)
	}
	c := &Calibrator{opts: opts}
	if opts.Refine {
		corr, err := orientation.NewCorrector(opts.Corrector)
		if err != nil {
			return nil, err
		}
		c.corrector = corr
	}
	return c, nil
}

// Options returns the options the calibrator was built with.
func (c *Calibrator) Options() Options { return c.opts }

// Solve calibrates from a projected aligner q (pixels) in an image of the
// given size.
func (c *Calibrator) Solve(q vanishing.Quad, size geometry.ImageSize) (*Result, error) {
	return c.SolveWithHost(context.Background(), q, HostContext{Size: size})
}

// SolveAligner checks the world aligner's edge pairing, projects it through
// the host camera and calibrates from the projection. The camera's focal
// length is used as the original focal length when host leaves it unset.
func (c *Calibrator) SolveAligner(ctx context.Context, a vanishing.Aligner, cam camera.Camera, host HostContext) (*Result, error) {
	if err := vanishing.ValidateAligner(a, c.opts.AlignerToleranceDeg); err != nil {
		return nil, &SolverError{Stage: StageAligner, Err: err}
	}
	q, err := vanishing.Project(a, cam)
	if err != nil {
		return nil, &SolverError{Stage: StageAligner, Err: err}
	}
	if host.OrigFocalLength == 0 {
		host.OrigFocalLength = cam.FocalLength
	}
	return c.SolveWithHost(ctx, q, host)
}

// SolveWithHost calibrates from q and fills in the host-dependent parts of
// the result. ctx only matters when refinement is enabled.
func (c *Calibrator) SolveWithHost(ctx context.Context, q vanishing.Quad, host HostContext) (*Result, error) {
	size := host.Size
	if !size.Valid() {
		return nil, &SolverError{Stage: StageInput, Err: fmt.Errorf("%w: %s", ErrInvalidImageSize, size)}
	}

	pair, err := vanishing.ExtractEpsilon(q, c.opts.ParallelEpsilon)
	if err != nil {
		return nil, &SolverError{Stage: StageVanishingPoints, Err: err}
	}

	f, ok := focal.Solve2VP(pair, size)
	if !ok {
		return nil, &SolverError{Stage: StageFocalLength, Err: fmt.Errorf("%w: fu=%v fv=%v", focal.ErrInfeasible, pair.Fu, pair.Fv)}
	}

	worldToCamera := orientation.FacingCamera(orientation.FromPair(pair, f, size))
	if !worldToCamera.IsOrthonormal(geometry.RotationTolerance) {
		return nil, &SolverError{Stage: StageOrientation, Err: fmt.Errorf("rotation is not orthonormal (det %.9f)", worldToCamera.Det())}
	}
	camToWorld := orientation.CameraToWorld(worldToCamera)
	euler := geometry.EulerFromRotation(camToWorld)

	intr := camera.IntrinsicsForImage(f, size)
	h, v := camera.FieldOfView(f, size)
	res := &Result{
		RunID:           uuid.New().String(),
		Size:            size,
		VanishingPoints: pair,
		Intrinsics:      intr,
		Extrinsics: Extrinsics{
			Position:    host.CameraPosition,
			Orientation: camToWorld,
			Euler:       euler,
			Angles:      anglesIn(euler, c.opts.AngleUnits),
		},
		FieldOfView: FieldOfView{HorizontalDeg: h, VerticalDeg: v},
	}

	if host.OrigFocalLength != 0 && host.PlateDistance != 0 {
		d, err := distance.Rescale(host.PlateDistance, host.OrigFocalLength, f)
		if err != nil {
			return nil, &SolverError{Stage: StageDistance, Err: err}
		}
		plate := distance.PlatePosition(host.CameraPosition, camToWorld, d)
		res.RecommendedDistance = &d
		res.PlatePosition = &plate
	}

	if c.corrector != nil {
		corr, err := c.corrector.Run(ctx, pair, intr)
		switch {
		case err == nil:
			if corr.Status == orientation.MaxIterExceeded {
				monitoring.Logf("calibrator: run %s: corrector stopped after %d iterations with residual %.3fpx",
					res.RunID, corr.Iterations, corr.Residual)
			}
			res.Correction = &corr
		case ctx.Err() != nil:
			return nil, &SolverError{Stage: StageRefine, Err: err}
		default:
			monitoring.Logf("calibrator: run %s: refinement skipped: %v", res.RunID, err)
			res.RefineError = err.Error()
			if corr.Status != orientation.StatusUnknown {
				res.Correction = &corr
			}
		}
	}

	monitoring.Debugf("calibrator: run %s size=%s f=%.3fpx fu=%v fv=%v", res.RunID, size, f, pair.Fu, pair.Fv)
	return res, nil
}
