package distance

import (
	"math"
	"testing"

	"github.com/banshee-data/photomatch/internal/geometry"
	"github.com/banshee-data/photomatch/internal/testutil"
)

func TestNewDistance(t *testing.T) {
	tests := []struct {
		name                          string
		origDist, origFocal, newFocal float64
		want                          float64
	}{
		{"doubling focal doubles distance", 10, 18, 36, 20},
		{"unchanged focal", 7.5, 50, 50, 7.5},
		{"halving focal", 12, 35, 17.5, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertNear(t, "NewDistance", NewDistance(tt.origDist, tt.origFocal, tt.newFocal), tt.want, 1e-12)
		})
	}
}

func TestNewDistance_ExactScenario(t *testing.T) {
	if got := NewDistance(10.0, 18.0, 36.0); got != 20.0 {
		t.Errorf("NewDistance(10, 18, 36) = %v, want exactly 20", got)
	}
}

func TestRescale(t *testing.T) {
	got, err := Rescale(10, 18, 36)
	testutil.AssertNoError(t, err)
	if got != 20 {
		t.Errorf("Rescale = %v, want 20", got)
	}

	if _, err := Rescale(10, 0, 36); err != ErrZeroFocalLength {
		t.Errorf("zero focal: err = %v, want ErrZeroFocalLength", err)
	}
	if _, err := Rescale(0, 18, 36); err != ErrZeroDistance {
		t.Errorf("zero distance: err = %v, want ErrZeroDistance", err)
	}
	if _, err := Rescale(10, 18, -1); err == nil {
		t.Error("negative new focal: expected error")
	}
}

func TestPlatePosition(t *testing.T) {
	// Rotating 90° about X turns the -Z view direction into +Y.
	pos := geometry.Point3D{X: 1, Y: 2, Z: 3}
	got := PlatePosition(pos, geometry.RotationX(math.Pi/2), 4)
	want := geometry.Point3D{X: 1, Y: 6, Z: 3}
	testutil.AssertVectorNear(t, "PlatePosition", got, want, 1e-12)

	if got := PlatePosition(pos, geometry.IdentityRotation(), 2); got != (geometry.Point3D{X: 1, Y: 2, Z: 1}) {
		t.Errorf("identity PlatePosition = %v", got)
	}
}
