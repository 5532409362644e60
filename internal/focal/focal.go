// Package focal recovers the relative focal length of a pinhole camera from
// the two vanishing points of a rectangle.
//
// The principal point is the orthocentre of the triangle formed by the two
// vanishing points and the projection centre, which fixes the distance from
// the projection centre to the image plane. All inputs and the result share
// one unit: pixels in, pixels out.
package focal

import (
	"errors"
	"math"

	"github.com/banshee-data/photomatch/internal/geometry"
	"github.com/banshee-data/photomatch/internal/vanishing"
)

// ErrInfeasible is used by callers that turn an absent focal length into an
// error. The solvers themselves report absence through their bool result.
var ErrInfeasible = errors.New("vanishing points give no real focal length")

// ComputeFocalLength returns the focal length for vanishing points fu and fv
// and principal point p.
//
// P is projected orthogonally onto the line through fu and fv, giving the
// foot Puv. With tU and tV the signed positions of fu and fv along that line
// measured from Puv,
//
//	f² = -tU·tV - |P - Puv|²
//
// For a real camera fu and fv lie on opposite sides of Puv, so -tU·tV is the
// product of the two distances. The second result is false when f² is not
// positive, when any input is NaN, or when fu and fv coincide.
func ComputeFocalLength(fu, fv, p geometry.Point2D) (float64, bool) {
	d := fv.Sub(fu)
	n := d.Norm()
	if n == 0 || math.IsNaN(n) {
		return 0, false
	}
	dir := d.Mul(1 / n)

	puv := fu.Add(dir.Mul(p.Sub(fu).Dot(dir)))
	tU := fu.Sub(puv).Dot(dir)
	tV := fv.Sub(puv).Dot(dir)
	h := p.Sub(puv).Norm()

	return sqrtPositive(-tU*tV - h*h)
}

// ComputeFocalLengthDot is the dot-product form of ComputeFocalLength:
//
//	f² = (Fv - P) · -(Fu - P)
//
// It is algebraically identical and cheaper, but ComputeFocalLength is the
// reference; tests hold the two to 1e-6 relative agreement.
func ComputeFocalLengthDot(fu, fv, p geometry.Point2D) (float64, bool) {
	return sqrtPositive(fv.Sub(p).Dot(fu.Sub(p).Mul(-1)))
}

func sqrtPositive(f2 float64) (float64, bool) {
	if math.IsNaN(f2) || math.IsInf(f2, 0) || f2 <= 0 {
		return 0, false
	}
	return math.Sqrt(f2), true
}

// Solve2VP computes the focal length in pixels for a vanishing point pair
// from an image of the given size, taking the image centre as principal
// point.
func Solve2VP(pair vanishing.Pair, size geometry.ImageSize) (float64, bool) {
	return ComputeFocalLength(pair.Fu, pair.Fv, size.Center())
}
