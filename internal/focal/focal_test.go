package focal

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/photomatch/internal/camera"
	"github.com/banshee-data/photomatch/internal/geometry"
	"github.com/banshee-data/photomatch/internal/units"
	"github.com/banshee-data/photomatch/internal/vanishing"
)

func TestComputeFocalLength_Scenario(t *testing.T) {
	fu := geometry.Point2D{X: 100, Y: 200}
	fv := geometry.Point2D{X: 500, Y: 200}
	p := geometry.Point2D{X: 300, Y: 240}

	f, ok := ComputeFocalLength(fu, fv, p)
	require.True(t, ok)
	assert.InDelta(t, 195.959, f, 1e-3)
	assert.InDelta(t, 38400, f*f, 1e-6)

	fd, ok := ComputeFocalLengthDot(fu, fv, p)
	require.True(t, ok)
	assert.InDelta(t, f, fd, 1e-9)
}

func TestComputeFocalLength_Infeasible(t *testing.T) {
	tests := []struct {
		name      string
		fu, fv, p geometry.Point2D
	}{
		{"vanishing points on the principal point", geometry.Point2D{X: 300, Y: 240}, geometry.Point2D{X: 301, Y: 240}, geometry.Point2D{X: 300, Y: 240}},
		{"same side of principal point", geometry.Point2D{X: 400, Y: 240}, geometry.Point2D{X: 600, Y: 240}, geometry.Point2D{X: 300, Y: 240}},
		{"coincident vanishing points", geometry.Point2D{X: 10, Y: 10}, geometry.Point2D{X: 10, Y: 10}, geometry.Point2D{X: 0, Y: 0}},
		{"NaN", geometry.Point2D{X: math.NaN(), Y: 0}, geometry.Point2D{X: 500, Y: 0}, geometry.Point2D{X: 0, Y: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := ComputeFocalLength(tt.fu, tt.fv, tt.p)
			assert.False(t, ok)
			assert.Zero(t, f)
			assert.False(t, math.IsNaN(f))

			f, ok = ComputeFocalLengthDot(tt.fu, tt.fv, tt.p)
			assert.False(t, ok)
			assert.Zero(t, f)
		})
	}
}

func TestComputeFocalLength_FootOutsideSegment(t *testing.T) {
	// The foot of P lands beyond Fv. The product of unsigned distances would
	// give f² > 0 here; the signed form agrees with the dot form and rejects it.
	fu := geometry.Point2D{X: 0, Y: 0}
	fv := geometry.Point2D{X: 100, Y: 0}
	p := geometry.Point2D{X: 150, Y: 10}

	_, ok := ComputeFocalLength(fu, fv, p)
	assert.False(t, ok)
	_, ok = ComputeFocalLengthDot(fu, fv, p)
	assert.False(t, ok)
}

func TestComputeFocalLength_FormulasAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	size := geometry.ImageSize{Width: 1920, Height: 1080}
	checked := 0
	for i := 0; i < 2000; i++ {
		f := 300 + rng.Float64()*3000
		e := geometry.EulerXYZ{
			X: units.DegToRad(25 + rng.Float64()*60),
			Y: units.DegToRad(-5 + rng.Float64()*10),
			Z: units.DegToRad(15 + rng.Float64()*60),
		}
		cam := camera.New(geometry.Point3D{}, e.Matrix(), camera.IntrinsicsForImage(f, size))
		fu, fv, err := cam.VanishingPoints()
		require.NoError(t, err)

		p := size.Center()
		got, ok := ComputeFocalLength(fu, fv, p)
		require.True(t, ok, "case %d", i)
		dot, ok := ComputeFocalLengthDot(fu, fv, p)
		require.True(t, ok, "case %d", i)

		assert.InEpsilon(t, got, dot, 1e-6, "case %d", i)
		assert.InEpsilon(t, f, got, 1e-6, "case %d", i)
		checked++
	}
	assert.Equal(t, 2000, checked)
}

func TestSolve2VP(t *testing.T) {
	size := geometry.ImageSize{Width: 600, Height: 480}
	pair := vanishing.Pair{Fu: geometry.Point2D{X: 100, Y: 200}, Fv: geometry.Point2D{X: 500, Y: 200}}

	f, ok := Solve2VP(pair, size)
	require.True(t, ok)
	assert.InDelta(t, math.Sqrt(38400), f, 1e-9)
}
