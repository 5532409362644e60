package orientation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/photomatch/internal/camera"
	"github.com/banshee-data/photomatch/internal/focal"
	"github.com/banshee-data/photomatch/internal/geometry"
	"github.com/banshee-data/photomatch/internal/units"
	"github.com/banshee-data/photomatch/internal/vanishing"
)

var testSize = geometry.ImageSize{Width: 1920, Height: 1080}

func randomCamera(rng *rand.Rand) camera.Camera {
	e := geometry.EulerXYZ{
		X: units.DegToRad(25 + rng.Float64()*60),
		Y: units.DegToRad(-5 + rng.Float64()*10),
		Z: units.DegToRad(15 + rng.Float64()*60),
	}
	f := 400 + rng.Float64()*2600
	return camera.New(geometry.Point3D{}, e.Matrix(), camera.IntrinsicsForImage(f, testSize))
}

func TestFromVanishingPoints_Orthonormal(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		cam := randomCamera(rng)
		fu, fv, err := cam.VanishingPoints()
		require.NoError(t, err)

		p := testSize.Center()
		f, ok := focal.ComputeFocalLength(fu, fv, p)
		require.True(t, ok, "case %d", i)

		r := FromVanishingPoints(fu, fv, f, p)
		for a := 0; a < 3; a++ {
			assert.InDelta(t, 1, r.Column(a).Norm(), 1e-6, "case %d column %d", i, a)
			for b := a + 1; b < 3; b++ {
				assert.InDelta(t, 0, r.Column(a).Dot(r.Column(b)), 1e-6, "case %d columns %d,%d", i, a, b)
			}
		}
		assert.True(t, r.IsOrthonormal(1e-6), "case %d", i)
	}
}

func TestFromVanishingPoints_RecoversCamera(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		cam := randomCamera(rng)
		fu, fv, err := cam.VanishingPoints()
		require.NoError(t, err)
		f, ok := focal.Solve2VP(vanishing.Pair{Fu: fu, Fv: fv}, testSize)
		require.True(t, ok)
		assert.InEpsilon(t, cam.FocalLength, f, 1e-6)

		// Columns agree with the true world-to-camera axes up to sign.
		got := FromPair(vanishing.Pair{Fu: fu, Fv: fv}, f, testSize)
		want := cam.Orientation.Transpose()
		for c := 0; c < 2; c++ {
			assert.InDelta(t, 1, math.Abs(got.Column(c).Dot(want.Column(c))), 1e-6, "case %d column %d", i, c)
		}
		assert.InDelta(t, 1, math.Abs(got.Column(2).Dot(want.Column(2))), 1e-6, "case %d normal", i)
	}
}

func TestFromPair_MatchesPixelUnits(t *testing.T) {
	// Both units are isotropic, so the rotation does not depend on which one
	// is used.
	pair := vanishing.Pair{Fu: geometry.Point2D{X: -350, Y: 900}, Fv: geometry.Point2D{X: 2400, Y: 1000}}
	f, ok := focal.Solve2VP(pair, testSize)
	require.True(t, ok)

	rel := FromPair(pair, f, testSize)
	px := FromVanishingPoints(pair.Fu, pair.Fv, f, testSize.Center())
	assert.True(t, rel.EqualApprox(px, 1e-12))
	assert.True(t, CameraToWorld(rel).Mul(rel).EqualApprox(geometry.IdentityRotation(), 1e-9))
}

func TestFacingCamera(t *testing.T) {
	// Camera above the ground looking down at 60°.
	cam := camera.New(geometry.Point3D{Z: 5},
		geometry.EulerXYZ{X: units.DegToRad(60), Z: units.DegToRad(30)}.Matrix(),
		camera.IntrinsicsForImage(1000, testSize))
	truth := cam.Orientation.Transpose()
	require.Greater(t, truth.Column(2).Z, 0.0)

	flipped := truth
	for row := 0; row < 3; row++ {
		flipped[row][0] = -flipped[row][0]
		flipped[row][2] = -flipped[row][2]
	}
	assert.True(t, FacingCamera(flipped).EqualApprox(truth, 1e-12))
	assert.True(t, FacingCamera(truth).EqualApprox(truth, 1e-12))
	assert.InDelta(t, 1, FacingCamera(flipped).Det(), 1e-12)
}
