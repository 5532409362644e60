// Package vanishing turns an aligner rectangle into the two vanishing points
// of its edge directions.
//
// Vertex order is load-bearing: edges 0-1 and 2-3 must be parallel in 3D, and
// so must edges 0-2 and 1-3. Supplying the vertices in cyclic polygon order
// instead pairs a side with a diagonal and produces meaningless results.
package vanishing

import (
	"fmt"

	"github.com/banshee-data/photomatch/internal/geometry"
)

// Quad is an aligner already projected to pixels, in aligner vertex order.
type Quad [4]geometry.Point2D

// Pair holds the two vanishing points of a quad, in pixels. Fu is the
// vanishing point of edges 0-1/2-3, Fv that of edges 0-2/1-3.
type Pair struct {
	Fu geometry.Point2D `json:"fu"`
	Fv geometry.Point2D `json:"fv"`
}

// Midpoint returns the midpoint of Fu and Fv.
func (p Pair) Midpoint() geometry.Point2D {
	return geometry.Midpoint(p.Fu, p.Fv)
}

// Extract intersects line(0,1) with line(2,3) for Fu and line(0,2) with
// line(1,3) for Fv. It does not check that the quad images a rectangle.
// A *geometry.ParallelLinesError is returned, wrapped, when a pair of
// opposite edges projects to parallel lines.
func Extract(q Quad) (Pair, error) {
	return ExtractEpsilon(q, 0)
}

// ExtractEpsilon is Extract with the relative parallelism threshold of
// geometry.IntersectEpsilon.
func ExtractEpsilon(q Quad, eps float64) (Pair, error) {
	fu, err := geometry.IntersectEpsilon(
		geometry.NewLine2D(q[0], q[1]),
		geometry.NewLine2D(q[2], q[3]), eps)
	if err != nil {
		return Pair{}, fmt.Errorf("edges 0-1/2-3: %w", err)
	}
	fv, err := geometry.IntersectEpsilon(
		geometry.NewLine2D(q[0], q[2]),
		geometry.NewLine2D(q[1], q[3]), eps)
	if err != nil {
		return Pair{}, fmt.Errorf("edges 0-2/1-3: %w", err)
	}
	return Pair{Fu: fu, Fv: fv}, nil
}
