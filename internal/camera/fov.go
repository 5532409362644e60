package camera

import (
	"math"

	"github.com/banshee-data/photomatch/internal/geometry"
	"github.com/banshee-data/photomatch/internal/units"
)

// FieldOfView returns the horizontal and vertical field of view in degrees
// for a relative focal length in pixels.
// Formula: FOV = 2 × arctan(size / (2 × focal_length))
func FieldOfView(focalLength float64, size geometry.ImageSize) (horizontalDeg, verticalDeg float64) {
	horizontalDeg = units.RadToDeg(2 * math.Atan(float64(size.Width)/(2*focalLength)))
	verticalDeg = units.RadToDeg(2 * math.Atan(float64(size.Height)/(2*focalLength)))
	return
}

// FocalLengthForFOV is the inverse of FieldOfView for the horizontal axis.
func FocalLengthForFOV(horizontalDeg float64, size geometry.ImageSize) float64 {
	return float64(size.Width) / (2 * math.Tan(units.DegToRad(horizontalDeg)/2))
}
