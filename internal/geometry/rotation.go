package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// RotationTolerance is the default tolerance for orthonormality checks.
const RotationTolerance = 1e-6

// Rotation is a 3x3 matrix stored row-major as R[row][col].
type Rotation [3][3]float64

// IdentityRotation returns the identity.
func IdentityRotation() Rotation {
	return Rotation{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// RotationFromColumns builds a matrix whose columns are c0, c1, c2.
func RotationFromColumns(c0, c1, c2 Point3D) Rotation {
	return Rotation{
		{c0.X, c1.X, c2.X},
		{c0.Y, c1.Y, c2.Y},
		{c0.Z, c1.Z, c2.Z},
	}
}

// RotationX returns a right-handed rotation about the X axis.
func RotationX(rad float64) Rotation {
	s, c := math.Sincos(rad)
	return Rotation{{1, 0, 0}, {0, c, -s}, {0, s, c}}
}

// RotationY returns a right-handed rotation about the Y axis.
func RotationY(rad float64) Rotation {
	s, c := math.Sincos(rad)
	return Rotation{{c, 0, s}, {0, 1, 0}, {-s, 0, c}}
}

// RotationZ returns a right-handed rotation about the Z axis.
func RotationZ(rad float64) Rotation {
	s, c := math.Sincos(rad)
	return Rotation{{c, -s, 0}, {s, c, 0}, {0, 0, 1}}
}

// At returns element (row, col).
func (r Rotation) At(row, col int) float64 {
	return r[row][col]
}

// Column returns column i as a vector.
func (r Rotation) Column(i int) Point3D {
	return Point3D{X: r[0][i], Y: r[1][i], Z: r[2][i]}
}

// Row returns row i as a vector.
func (r Rotation) Row(i int) Point3D {
	return Point3D{X: r[i][0], Y: r[i][1], Z: r[i][2]}
}

// Transpose returns Rᵀ, which is the inverse of a proper rotation.
func (r Rotation) Transpose() Rotation {
	var t Rotation
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[i][j] = r[j][i]
		}
	}
	return t
}

// Mul returns r * o.
func (r Rotation) Mul(o Rotation) Rotation {
	var m Rotation
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = r[i][0]*o[0][j] + r[i][1]*o[1][j] + r[i][2]*o[2][j]
		}
	}
	return m
}

// Apply returns r * v.
func (r Rotation) Apply(v Point3D) Point3D {
	return Point3D{
		X: r[0][0]*v.X + r[0][1]*v.Y + r[0][2]*v.Z,
		Y: r[1][0]*v.X + r[1][1]*v.Y + r[1][2]*v.Z,
		Z: r[2][0]*v.X + r[2][1]*v.Y + r[2][2]*v.Z,
	}
}

// Dense returns the matrix as a gonum dense matrix.
func (r Rotation) Dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		r[0][0], r[0][1], r[0][2],
		r[1][0], r[1][1], r[1][2],
		r[2][0], r[2][1], r[2][2],
	})
}

// RotationFromDense copies a 3x3 gonum matrix. It panics on other shapes.
func RotationFromDense(m mat.Matrix) Rotation {
	rows, cols := m.Dims()
	if rows != 3 || cols != 3 {
		panic(mat.ErrShape)
	}
	var r Rotation
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m.At(i, j)
		}
	}
	return r
}

// Det returns the determinant.
func (r Rotation) Det() float64 {
	return mat.Det(r.Dense())
}

// IsOrthonormal reports whether RᵀR equals the identity within tol and the
// determinant is +1 within tol, i.e. whether r is a proper rotation.
func (r Rotation) IsOrthonormal(tol float64) bool {
	d := r.Dense()
	var rtr mat.Dense
	rtr.Mul(d.T(), d)
	identity := mat.NewDiagDense(3, []float64{1, 1, 1})
	if !mat.EqualApprox(&rtr, identity, tol) {
		return false
	}
	return math.Abs(mat.Det(d)-1) <= tol
}

// EqualApprox reports element-wise equality within tol.
func (r Rotation) EqualApprox(o Rotation, tol float64) bool {
	return mat.EqualApprox(r.Dense(), o.Dense(), tol)
}

// EulerXYZ holds rotation angles in radians about the X, Y and Z axes,
// composed as R = Rz(Z) * Ry(Y) * Rx(X). This is the convention of the
// scene graphs the results are handed to; internally orientations are kept
// as matrices.
type EulerXYZ struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Matrix returns Rz(Z) * Ry(Y) * Rx(X).
func (e EulerXYZ) Matrix() Rotation {
	return RotationZ(e.Z).Mul(RotationY(e.Y)).Mul(RotationX(e.X))
}

// EulerFromRotation decomposes r into XYZ Euler angles. At gimbal lock
// (|cos Y| ~ 0) X is set to zero and the remaining angle goes to Z.
func EulerFromRotation(r Rotation) EulerXYZ {
	// r = Rz*Ry*Rx gives r[2][0] = -sin(Y).
	sy := -r[2][0]
	if sy > 1 {
		sy = 1
	} else if sy < -1 {
		sy = -1
	}
	y := math.Asin(sy)
	if math.Abs(math.Cos(y)) < 1e-9 {
		return EulerXYZ{X: 0, Y: y, Z: math.Atan2(-r[0][1], r[1][1])}
	}
	return EulerXYZ{
		X: math.Atan2(r[2][1], r[2][2]),
		Y: y,
		Z: math.Atan2(r[1][0], r[0][0]),
	}
}
