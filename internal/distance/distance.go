// Package distance keeps a background plate the same apparent size when the
// camera's focal length changes.
package distance

import (
	"errors"
	"fmt"

	"github.com/banshee-data/photomatch/internal/geometry"
)

var (
	ErrZeroFocalLength = errors.New("original focal length is zero")
	ErrZeroDistance    = errors.New("original distance is zero")
)

// NewDistance returns newFocal / (origFocal / origDistance): the distance
// scales linearly with focal length. It is undefined for a zero origFocal;
// use Rescale when the inputs are not known to be valid.
func NewDistance(origDistance, origFocal, newFocal float64) float64 {
	return newFocal / (origFocal / origDistance)
}

// Rescale is NewDistance with the zero inputs rejected.
func Rescale(origDistance, origFocal, newFocal float64) (float64, error) {
	if origFocal == 0 {
		return 0, ErrZeroFocalLength
	}
	if origDistance == 0 {
		return 0, ErrZeroDistance
	}
	if newFocal <= 0 {
		return 0, fmt.Errorf("new focal length must be positive, got %v", newFocal)
	}
	return NewDistance(origDistance, origFocal, newFocal), nil
}

// PlatePosition places the plate centre on the camera's optical axis at the
// given distance. cameraToWorld is the camera orientation; the camera looks
// down its local -Z axis.
func PlatePosition(cameraPos geometry.Point3D, cameraToWorld geometry.Rotation, distance float64) geometry.Point3D {
	forward := cameraToWorld.Apply(geometry.Point3D{Z: -1})
	return cameraPos.Add(forward.Mul(distance))
}
