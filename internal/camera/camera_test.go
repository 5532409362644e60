package camera

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/photomatch/internal/geometry"
	"github.com/banshee-data/photomatch/internal/units"
)

var testSize = geometry.ImageSize{Width: 1920, Height: 1080}

func testCamera(pitchDeg, rollDeg, yawDeg float64) Camera {
	e := geometry.EulerXYZ{X: units.DegToRad(pitchDeg), Y: units.DegToRad(rollDeg), Z: units.DegToRad(yawDeg)}
	return New(geometry.Point3D{X: 6, Y: -6, Z: 4}, e.Matrix(), IntrinsicsForImage(1000, testSize))
}

func TestProject_PrincipalAxis(t *testing.T) {
	cam := testCamera(60, 0, 45)
	p, err := cam.Project(cam.Position.Add(cam.Forward().Mul(10)))
	require.NoError(t, err)
	assert.InDelta(t, 960, p.X, 1e-9)
	assert.InDelta(t, 540, p.Y, 1e-9)
}

func TestProject_BehindCamera(t *testing.T) {
	cam := testCamera(60, 0, 45)
	_, err := cam.Project(cam.Position.Sub(cam.Forward()))
	assert.ErrorIs(t, err, ErrBehindCamera)
}

func TestProjectUnprojectRoundTrip(t *testing.T) {
	cam := testCamera(70, 5, -30)
	for _, px := range []geometry.Point2D{{X: 0, Y: 0}, {X: 960, Y: 540}, {X: 1919, Y: 17}, {X: 250.5, Y: 900.25}} {
		world := cam.Unproject(px, 12.5)
		got, err := cam.Project(world)
		require.NoError(t, err)
		assert.InDelta(t, px.X, got.X, 1e-9)
		assert.InDelta(t, px.Y, got.Y, 1e-9)
		assert.InDelta(t, -12.5, cam.ToCamera(world).Z, 1e-9)
	}
}

func TestVanishingPoints_ClosedForm(t *testing.T) {
	// With yaw 45° and no roll both vanishing points sit on the horizon,
	// f/sinθ either side of the principal point and f·cotθ above it.
	for _, pitch := range []float64{30, 60, 75, 89, 110} {
		cam := testCamera(pitch, 0, 45)
		fu, fv, err := cam.VanishingPoints()
		require.NoError(t, err)

		th := units.DegToRad(pitch)
		f := cam.FocalLength
		assert.InDelta(t, 960-f/math.Sin(th), fu.X, 1e-6, "fu.x at pitch %v", pitch)
		assert.InDelta(t, 960+f/math.Sin(th), fv.X, 1e-6, "fv.x at pitch %v", pitch)
		assert.InDelta(t, 540+f/math.Tan(th), fu.Y, 1e-6, "fu.y at pitch %v", pitch)
		assert.InDelta(t, 540+f/math.Tan(th), fv.Y, 1e-6, "fv.y at pitch %v", pitch)
	}
}

func TestVanishingPoint_IsLimitOfProjection(t *testing.T) {
	cam := testCamera(65, 8, 30)
	dir := geometry.Point3D{X: 1, Y: 2, Z: 0}.Normalize()
	vp, err := cam.VanishingPoint(dir)
	require.NoError(t, err)

	// Walk along whichever sense of the line stays in front of the camera.
	if cam.ToCamera(cam.Position.Add(dir)).Z > 0 {
		dir = dir.Mul(-1)
	}
	far, err := cam.Project(cam.Position.Add(geometry.Point3D{Z: -1}).Add(dir.Mul(1e9)))
	require.NoError(t, err)
	assert.InDelta(t, vp.X, far.X, 1e-3)
	assert.InDelta(t, vp.Y, far.Y, 1e-3)
}

func TestVanishingPoint_ParallelToImagePlane(t *testing.T) {
	// Looking straight down, horizontal directions never converge.
	cam := testCamera(0, 0, 0)
	_, err := cam.VanishingPoint(geometry.Point3D{X: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, geometry.ErrParallelLines))

	_, _, err = cam.VanishingPoints()
	assert.ErrorIs(t, err, geometry.ErrParallelLines)
}

func TestFieldOfView(t *testing.T) {
	h, v := FieldOfView(960, testSize)
	assert.InDelta(t, 90.0, h, 1e-9)
	assert.InDelta(t, units.RadToDeg(2*math.Atan(540.0/960.0)), v, 1e-9)

	assert.InDelta(t, 960.0, FocalLengthForFOV(90, testSize), 1e-9)
}
