// Package testutil provides shared numeric assertions for geometry tests.
package testutil

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertNear checks |got - want| <= tol. NaN never matches.
func AssertNear(t testing.TB, name string, got, want, tol float64) {
	t.Helper()
	if math.IsNaN(got) || math.IsNaN(want) || math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v (±%g)", name, got, want, tol)
	}
}

// AssertPointNear checks that two 2D points are within tol of each other.
func AssertPointNear(t testing.TB, name string, got, want r2.Point, tol float64) {
	t.Helper()
	if d := got.Sub(want).Norm(); math.IsNaN(d) || d > tol {
		t.Errorf("%s = %v, want %v (distance %g > %g)", name, got, want, d, tol)
	}
}

// AssertVectorNear checks that two 3D vectors are within tol of each other.
func AssertVectorNear(t testing.TB, name string, got, want r3.Vector, tol float64) {
	t.Helper()
	if d := got.Sub(want).Norm(); math.IsNaN(d) || d > tol {
		t.Errorf("%s = %v, want %v (distance %g > %g)", name, got, want, d, tol)
	}
}
