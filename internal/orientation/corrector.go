package orientation

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/photomatch/internal/camera"
	"github.com/banshee-data/photomatch/internal/geometry"
	"github.com/banshee-data/photomatch/internal/monitoring"
	"github.com/banshee-data/photomatch/internal/units"
	"github.com/banshee-data/photomatch/internal/vanishing"
)

// ErrNotBracketed is returned by the bisection corrector when the pitch
// residual has the same sign at both ends of the bracket.
var ErrNotBracketed = errors.New("pitch residual does not change sign across bracket")

// Method selects the pitch search used by the Corrector.
type Method string

const (
	// Bisection halves a pitch bracket on the sign of the residual.
	Bisection Method = "bisection"
	// FixedStep moves pitch by a constant step toward the target and can
	// oscillate around a target that is not a whole number of steps away.
	FixedStep Method = "fixed_step"
)

// ParseMethod maps a config string to a Method.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case Bisection, FixedStep:
		return m, nil
	}
	return "", fmt.Errorf("unknown corrector method %q (want %q or %q)", s, Bisection, FixedStep)
}

// Status is the terminal state of a corrector run.
type Status int

const (
	// StatusUnknown means the run failed before evaluating any pitch.
	StatusUnknown Status = iota
	// Converged means the residual is within tolerance.
	Converged
	// MaxIterExceeded means the run stopped outside tolerance, either at the
	// iteration cap or at the edge of the pitch range.
	MaxIterExceeded
)

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case Converged:
		return "converged"
	case MaxIterExceeded:
		return "max_iter_exceeded"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText renders the status by name in JSON output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name written by MarshalText.
func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "unknown":
		*s = StatusUnknown
	case "converged":
		*s = Converged
	case "max_iter_exceeded":
		*s = MaxIterExceeded
	default:
		return fmt.Errorf("unknown corrector status %q", b)
	}
	return nil
}

// Config holds the corrector parameters. Angles are in degrees.
type Config struct {
	Method          Method
	TolerancePixels float64
	MaxIterations   int
	StepDeg         float64
	YawDeg          float64
	InitialPitchDeg float64
	BracketLowDeg   float64
	BracketHighDeg  float64
	// Trace records every evaluated pitch in CorrectorResult.Trace.
	Trace bool
}

// DefaultConfig returns the corrector defaults.
func DefaultConfig() Config {
	return Config{
		Method:          Bisection,
		TolerancePixels: 1,
		MaxIterations:   1000,
		StepDeg:         1,
		YawDeg:          45,
		InitialPitchDeg: 90,
		BracketLowDeg:   1,
		BracketHighDeg:  179,
	}
}

// Validate checks the configuration for values the corrector cannot use.
func (c Config) Validate() error {
	if _, err := ParseMethod(string(c.Method)); err != nil {
		return err
	}
	if c.TolerancePixels < 0 || math.IsNaN(c.TolerancePixels) {
		return fmt.Errorf("tolerance must be non-negative, got %v", c.TolerancePixels)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("max iterations must be positive, got %d", c.MaxIterations)
	}
	if c.Method == FixedStep && !(c.StepDeg > 0) {
		return fmt.Errorf("step must be positive, got %v", c.StepDeg)
	}
	if c.Method == FixedStep && !inPitchRange(c.InitialPitchDeg) {
		return fmt.Errorf("initial pitch must be in (%v, %v), got %v", minPitchDeg, maxPitchDeg, c.InitialPitchDeg)
	}
	if c.Method == Bisection {
		if !(c.BracketLowDeg < c.BracketHighDeg) {
			return fmt.Errorf("bracket low %v must be below bracket high %v", c.BracketLowDeg, c.BracketHighDeg)
		}
		if !inPitchRange(c.BracketLowDeg) || !inPitchRange(c.BracketHighDeg) {
			return fmt.Errorf("bracket [%v, %v] must lie in (%v, %v)", c.BracketLowDeg, c.BracketHighDeg, minPitchDeg, maxPitchDeg)
		}
	}
	return nil
}

// At pitch 0° and 180° the camera looks straight down or up and the ground
// axes have no vanishing points.
const (
	minPitchDeg = 0
	maxPitchDeg = 180
)

func inPitchRange(deg float64) bool {
	return deg > minPitchDeg && deg < maxPitchDeg
}

// TraceSample is one evaluated pitch.
type TraceSample struct {
	Iteration int     `json:"iteration"`
	PitchDeg  float64 `json:"pitch_deg"`
	Residual  float64 `json:"residual_px"`
}

// CorrectorResult is the orientation reached by a corrector run. It is
// populated for both terminal states.
type CorrectorResult struct {
	Method     Method            `json:"method"`
	Euler      geometry.EulerXYZ `json:"euler"`
	Rotation   geometry.Rotation `json:"rotation"` // camera -> world
	Status     Status            `json:"status"`
	Iterations int               `json:"iterations"`
	// Residual is the last vertical midpoint offset in pixels.
	Residual float64       `json:"residual_px"`
	Trace    []TraceSample `json:"trace,omitempty"`
}

// Corrector adjusts a camera's pitch until the midpoint of its vanishing
// points lines up vertically with the midpoint of a target pair.
//
// Yaw is fixed so that both vanishing points of the world X and Y axes stay
// in frame, and roll is taken directly from the slope of the target horizon.
// Only pitch is searched. A Corrector is safe for concurrent use.
type Corrector struct {
	cfg Config
}

// NewCorrector validates cfg and returns a Corrector.
func NewCorrector(cfg Config) (*Corrector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid corrector config: %w", err)
	}
	return &Corrector{cfg: cfg}, nil
}

// Config returns the configuration the corrector was built with.
func (c *Corrector) Config() Config { return c.cfg }

type run struct {
	cfg    Config
	target geometry.Point2D
	intr   camera.Intrinsics
	roll   float64 // radians
	res    CorrectorResult
	// recorded is set once a pitch has been evaluated.
	recorded bool
}

// residual evaluates the camera at pitchDeg and returns the vertical offset
// of its vanishing point midpoint from the target midpoint, in pixels.
func (r *run) residual(pitchDeg float64) (float64, error) {
	e := r.euler(pitchDeg)
	cam := camera.New(geometry.Point3D{}, e.Matrix(), r.intr)
	fu, fv, err := cam.VanishingPoints()
	if err != nil {
		return 0, fmt.Errorf("pitch %.4f°: %w", pitchDeg, err)
	}
	return geometry.Midpoint(fu, fv).Y - r.target.Y, nil
}

func (r *run) euler(pitchDeg float64) geometry.EulerXYZ {
	return geometry.EulerXYZ{
		X: units.DegToRad(pitchDeg),
		Y: r.roll,
		Z: units.DegToRad(r.cfg.YawDeg),
	}
}

// record makes pitchDeg the current state of the run.
func (r *run) record(pitchDeg, residual float64) {
	r.recorded = true
	r.res.Euler = r.euler(pitchDeg)
	r.res.Residual = residual
	if r.cfg.Trace {
		r.res.Trace = append(r.res.Trace, TraceSample{
			Iteration: r.res.Iterations,
			PitchDeg:  pitchDeg,
			Residual:  residual,
		})
	}
	monitoring.Debugf("corrector %s iter=%d pitch=%.6f° residual=%.4fpx",
		r.cfg.Method, r.res.Iterations, pitchDeg, residual)
}

func (r *run) converged() bool {
	return math.Abs(r.res.Residual) <= r.cfg.TolerancePixels
}

func (r *run) finish() CorrectorResult {
	if !r.recorded {
		r.res.Status = StatusUnknown
		return r.res
	}
	r.res.Rotation = r.res.Euler.Matrix()
	if r.converged() {
		r.res.Status = Converged
	} else {
		r.res.Status = MaxIterExceeded
	}
	return r.res
}

// Run searches for the pitch that aligns a camera with intrinsics intr to
// the target vanishing points (pixels).
//
// Hitting MaxIterations is not an error: the last orientation is returned
// with Status MaxIterExceeded. The same holds when a fixed-step walk would
// leave the open pitch range (0°, 180°). ctx is checked between iterations;
// when it is done the partial result is returned together with ctx.Err().
// Other errors also come with whatever was reached, which has Status
// StatusUnknown if no pitch could be evaluated.
func (c *Corrector) Run(ctx context.Context, target vanishing.Pair, intr camera.Intrinsics) (CorrectorResult, error) {
	r := &run{
		cfg:    c.cfg,
		target: target.Midpoint(),
		intr:   intr,
		roll:   math.Atan2(target.Fv.Y-target.Fu.Y, target.Fv.X-target.Fu.X),
		res:    CorrectorResult{Method: c.cfg.Method},
	}

	var err error
	switch c.cfg.Method {
	case FixedStep:
		err = r.fixedStep(ctx)
	default:
		err = r.bisect(ctx)
	}
	return r.finish(), err
}

func (r *run) fixedStep(ctx context.Context) error {
	pitch := r.cfg.InitialPitchDeg
	g, err := r.residual(pitch)
	if err != nil {
		return err
	}
	r.record(pitch, g)

	for !r.converged() && r.res.Iterations < r.cfg.MaxIterations {
		if err := ctx.Err(); err != nil {
			return err
		}
		// The camera midpoint moves down as pitch rises toward the horizon.
		next := pitch - r.cfg.StepDeg
		if g > 0 {
			next = pitch + r.cfg.StepDeg
		}
		if !inPitchRange(next) {
			monitoring.Debugf("corrector %s stopped at pitch %.6f°: next step %.6f° is out of range",
				r.cfg.Method, pitch, next)
			return nil
		}
		pitch = next
		if g, err = r.residual(pitch); err != nil {
			return err
		}
		r.res.Iterations++
		r.record(pitch, g)
	}
	return nil
}

func (r *run) bisect(ctx context.Context) error {
	lo, hi := r.cfg.BracketLowDeg, r.cfg.BracketHighDeg
	glo, err := r.residual(lo)
	if err != nil {
		return err
	}
	ghi, err := r.residual(hi)
	if err != nil {
		return err
	}

	// Endpoints are not counted as iterations.
	switch {
	case math.Abs(glo) <= r.cfg.TolerancePixels:
		r.record(lo, glo)
		return nil
	case math.Abs(ghi) <= r.cfg.TolerancePixels:
		r.record(hi, ghi)
		return nil
	case math.Signbit(glo) == math.Signbit(ghi):
		return fmt.Errorf("%w: residual %.3fpx at %.2f°, %.3fpx at %.2f°", ErrNotBracketed, glo, lo, ghi, hi)
	}
	if math.Abs(glo) < math.Abs(ghi) {
		r.record(lo, glo)
	} else {
		r.record(hi, ghi)
	}

	for !r.converged() && r.res.Iterations < r.cfg.MaxIterations {
		if err := ctx.Err(); err != nil {
			return err
		}
		mid := lo + (hi-lo)/2
		g, err := r.residual(mid)
		if err != nil {
			return err
		}
		r.res.Iterations++
		r.record(mid, g)
		if math.Signbit(g) == math.Signbit(glo) {
			lo, glo = mid, g
		} else {
			hi = mid
		}
	}
	return nil
}
