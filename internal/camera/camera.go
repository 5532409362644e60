// Package camera is the pinhole camera model used to project aligner
// vertices into the image and to evaluate a camera's own vanishing points.
//
// Conventions: the camera looks down its local -Z axis with +Y up and +X to
// the right. Image points are pixels with the origin at the bottom-left of the
// render and y growing upward. Orientation maps camera coordinates to world
// coordinates.
package camera

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/photomatch/internal/geometry"
)

// ErrBehindCamera is returned when projecting a point at or behind the image
// plane.
var ErrBehindCamera = errors.New("point is behind the camera")

// Intrinsics describe a pinhole camera with square pixels.
type Intrinsics struct {
	// FocalLength is the relative focal length in pixels.
	FocalLength float64 `json:"focal_length"`
	// Principal is the principal point in pixels.
	Principal geometry.Point2D `json:"principal_point"`
}

// IntrinsicsForImage places the principal point at the image centre.
func IntrinsicsForImage(focalLength float64, size geometry.ImageSize) Intrinsics {
	return Intrinsics{FocalLength: focalLength, Principal: size.Center()}
}

// Camera is a posed pinhole camera.
type Camera struct {
	Position    geometry.Point3D
	Orientation geometry.Rotation // camera -> world
	Intrinsics
}

// New creates a camera from its pose and intrinsics.
func New(position geometry.Point3D, orientation geometry.Rotation, intr Intrinsics) Camera {
	return Camera{Position: position, Orientation: orientation, Intrinsics: intr}
}

// ToCamera transforms a world point into camera coordinates.
func (c Camera) ToCamera(world geometry.Point3D) geometry.Point3D {
	return c.Orientation.Transpose().Apply(world.Sub(c.Position))
}

// Forward returns the world-space viewing direction (unit length).
func (c Camera) Forward() geometry.Point3D {
	return c.Orientation.Apply(geometry.Point3D{Z: -1})
}

// Project maps a world point to pixels.
func (c Camera) Project(world geometry.Point3D) (geometry.Point2D, error) {
	pc := c.ToCamera(world)
	if pc.Z >= 0 {
		return geometry.Point2D{}, fmt.Errorf("project %v: %w", world, ErrBehindCamera)
	}
	return c.imagePoint(pc), nil
}

func (c Camera) imagePoint(pc geometry.Point3D) geometry.Point2D {
	s := c.FocalLength / -pc.Z
	return geometry.Point2D{X: c.Principal.X + pc.X*s, Y: c.Principal.Y + pc.Y*s}
}

// Unproject returns the world point seen at pixel p at the given depth along
// the optical axis.
func (c Camera) Unproject(p geometry.Point2D, depth float64) geometry.Point3D {
	k := depth / c.FocalLength
	pc := geometry.Point3D{
		X: (p.X - c.Principal.X) * k,
		Y: (p.Y - c.Principal.Y) * k,
		Z: -depth,
	}
	return c.Orientation.Apply(pc).Add(c.Position)
}

// VanishingPoint returns the pixel where images of world lines with
// direction dir converge. Directions parallel to the image plane have no
// finite vanishing point; the error then matches geometry.ErrParallelLines
// because the projected lines are parallel.
func (c Camera) VanishingPoint(dir geometry.Point3D) (geometry.Point2D, error) {
	dc := c.Orientation.Transpose().Apply(dir)
	if math.Abs(dc.Z) <= 1e-12*dc.Norm() {
		return geometry.Point2D{}, fmt.Errorf("direction %v is parallel to the image plane: %w", dir, geometry.ErrParallelLines)
	}
	// d and -d share a vanishing point, so the sign of dc.Z does not matter.
	return c.imagePoint(dc), nil
}

// VanishingPoints returns the vanishing points of the world X and Y axes,
// the directions of the edges of a ground-plane rectangle.
func (c Camera) VanishingPoints() (fu, fv geometry.Point2D, err error) {
	if fu, err = c.VanishingPoint(geometry.Point3D{X: 1}); err != nil {
		return
	}
	fv, err = c.VanishingPoint(geometry.Point3D{Y: 1})
	return
}
