package geometry

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// Point2D is an image-plane point. The unit depends on context; see the
// package documentation.
type Point2D = r2.Point

// Point3D is a world-space point or direction.
type Point3D = r3.Vector

// Line2D is the infinite line through A and B. It is not a segment.
type Line2D struct {
	A Point2D
	B Point2D
}

// NewLine2D creates a line through two points.
func NewLine2D(a, b Point2D) Line2D {
	return Line2D{A: a, B: b}
}

// Direction returns B - A.
func (l Line2D) Direction() Point2D {
	return l.B.Sub(l.A)
}

// ImageSize is a render size in pixels.
type ImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Valid reports whether both dimensions are positive.
func (s ImageSize) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Center returns the principal point in pixels (the image centre).
func (s ImageSize) Center() Point2D {
	return Point2D{X: float64(s.Width) / 2, Y: float64(s.Height) / 2}
}

func (s ImageSize) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// PixelToNormalized converts pixels to normalized [0,1] coordinates.
func PixelToNormalized(p Point2D, size ImageSize) Point2D {
	return Point2D{X: p.X / float64(size.Width), Y: p.Y / float64(size.Height)}
}

// NormalizedToPixel converts normalized coordinates back to pixels.
func NormalizedToPixel(p Point2D, size ImageSize) Point2D {
	return Point2D{X: p.X * float64(size.Width), Y: p.Y * float64(size.Height)}
}

// PixelToRelative converts pixels to coordinates relative to the principal
// point (the image centre), scaled by the image width on both axes.
func PixelToRelative(p Point2D, size ImageSize) Point2D {
	return p.Sub(size.Center()).Mul(1 / float64(size.Width))
}

// RelativeToPixel is the inverse of PixelToRelative.
func RelativeToPixel(p Point2D, size ImageSize) Point2D {
	return p.Mul(float64(size.Width)).Add(size.Center())
}

// LengthToRelative scales a pixel length (such as a focal length) into the
// relative unit.
func LengthToRelative(length float64, size ImageSize) float64 {
	return length / float64(size.Width)
}

// Midpoint returns (p1+p2)/2. Any unit, as long as both points share it.
func Midpoint(p1, p2 Point2D) Point2D {
	return Point2D{X: (p1.X + p2.X) / 2, Y: (p1.Y + p2.Y) / 2}
}
