// Package orientation reconstructs a camera's rotation from two vanishing
// points, either in closed form or with an iterative pitch corrector that
// works on Euler angles.
package orientation

import (
	"github.com/banshee-data/photomatch/internal/geometry"
	"github.com/banshee-data/photomatch/internal/vanishing"
)

// FromVanishingPoints builds the rotation whose columns are the unit
// directions from the projection centre to fu and fv and their cross
// product:
//
//	OFu = (Fu - P, -f)   u = OFu/|OFu|
//	OFv = (Fv - P, -f)   v = OFv/|OFv|
//	w   = u × v          R = [u v w]
//
// fu, fv, p and f must share one isotropic unit, such as pixels or the
// relative units of geometry.PixelToRelative. Normalized [0,1] coordinates
// are not isotropic for non-square images and skew the result.
//
// R maps the aligner axes (edge 0-1, edge 0-2, plane normal) into camera
// coordinates. Each column is only known up to sign, since a direction and
// its opposite share a vanishing point; w = u × v keeps det(R) = +1. R is
// orthonormal when f was computed from the same fu, fv and p.
func FromVanishingPoints(fu, fv geometry.Point2D, f float64, p geometry.Point2D) geometry.Rotation {
	ofu := geometry.Point3D{X: fu.X - p.X, Y: fu.Y - p.Y, Z: -f}
	ofv := geometry.Point3D{X: fv.X - p.X, Y: fv.Y - p.Y, Z: -f}
	u := ofu.Normalize()
	v := ofv.Normalize()
	return geometry.RotationFromColumns(u, v, u.Cross(v))
}

// FromPair converts a pixel vanishing point pair and focal length to
// relative units and calls FromVanishingPoints with the image centre as the
// principal point.
func FromPair(pair vanishing.Pair, focalLength float64, size geometry.ImageSize) geometry.Rotation {
	return FromVanishingPoints(
		geometry.PixelToRelative(pair.Fu, size),
		geometry.PixelToRelative(pair.Fv, size),
		geometry.LengthToRelative(focalLength, size),
		geometry.Point2D{},
	)
}

// CameraToWorld returns the camera orientation (camera to world) for a
// world-to-camera rotation from FromVanishingPoints.
func CameraToWorld(worldToCamera geometry.Rotation) geometry.Rotation {
	return worldToCamera.Transpose()
}

// FacingCamera resolves the sign ambiguity of the plane normal: if the third
// column of worldToCamera points away from the camera, the first and third
// columns are negated. This selects the solution with the camera on the
// front side of the aligner plane, such as above a ground-plane rectangle.
// The remaining ambiguity, a half turn about the normal, cannot be resolved
// from a rectangle.
func FacingCamera(worldToCamera geometry.Rotation) geometry.Rotation {
	if worldToCamera.Column(2).Z >= 0 {
		return worldToCamera
	}
	r := worldToCamera
	for row := 0; row < 3; row++ {
		r[row][0] = -r[row][0]
		r[row][2] = -r[row][2]
	}
	return r
}
