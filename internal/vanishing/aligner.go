package vanishing

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/photomatch/internal/camera"
	"github.com/banshee-data/photomatch/internal/geometry"
	"github.com/banshee-data/photomatch/internal/units"
)

// DefaultAlignerToleranceDeg is the default angular tolerance for
// ValidateAligner.
const DefaultAlignerToleranceDeg = 0.5

// ErrPrecondition is matched by every *PreconditionError via errors.Is.
var ErrPrecondition = errors.New("aligner precondition violated")

// PreconditionError reports an aligner that does not satisfy the vertex
// ordering contract.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "aligner precondition violated: " + e.Reason
}

// Is makes errors.Is(err, ErrPrecondition) true.
func (e *PreconditionError) Is(target error) bool {
	return target == ErrPrecondition
}

// Aligner is the world-space rectangle used as the calibration reference.
// Edges 0-1 ∥ 2-3 and 0-2 ∥ 1-3.
type Aligner [4]geometry.Point3D

// UnitGroundSquare is the aligner spanning the world X and Y axes on the
// ground plane. Its vanishing points are those of the world X and Y axes.
var UnitGroundSquare = Aligner{
	{X: 1, Y: 0, Z: 0},
	{X: 0, Y: 0, Z: 0},
	{X: 1, Y: 1, Z: 0},
	{X: 0, Y: 1, Z: 0},
}

// ValidateAligner checks that both edge pairs are parallel within tolDeg
// degrees and that no edge is degenerate.
func ValidateAligner(a Aligner, tolDeg float64) error {
	pairs := [2][2][2]int{
		{{0, 1}, {2, 3}},
		{{0, 2}, {1, 3}},
	}
	for _, pair := range pairs {
		e1 := a[pair[0][1]].Sub(a[pair[0][0]])
		e2 := a[pair[1][1]].Sub(a[pair[1][0]])
		if e1.Norm() == 0 || e2.Norm() == 0 {
			return &PreconditionError{Reason: fmt.Sprintf("edge %d-%d or %d-%d has zero length",
				pair[0][0], pair[0][1], pair[1][0], pair[1][1])}
		}
		// Parallel in either sense: vertex order may run the two edges
		// opposite ways.
		cos := math.Abs(e1.Dot(e2)) / (e1.Norm() * e2.Norm())
		angle := units.RadToDeg(math.Acos(math.Min(1, cos)))
		if angle > tolDeg {
			return &PreconditionError{Reason: fmt.Sprintf("edges %d-%d and %d-%d differ by %.3f° (tolerance %.3f°)",
				pair[0][0], pair[0][1], pair[1][0], pair[1][1], angle, tolDeg)}
		}
	}
	u := a[1].Sub(a[0])
	v := a[2].Sub(a[0])
	if u.Cross(v).Norm() <= 1e-12*u.Norm()*v.Norm() {
		return &PreconditionError{Reason: "edge directions 0-1 and 0-2 are collinear"}
	}
	return nil
}

// Project maps the aligner vertices to pixels through cam. This is the
// host's job in production; it is provided for synthetic scenes and for
// hosts without their own projection.
func Project(a Aligner, cam camera.Camera) (Quad, error) {
	var q Quad
	for i, v := range a {
		p, err := cam.Project(v)
		if err != nil {
			return Quad{}, fmt.Errorf("vertex %d: %w", i, err)
		}
		q[i] = p
	}
	return q, nil
}
