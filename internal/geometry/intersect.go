package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrParallelLines is matched by every *ParallelLinesError via errors.Is.
var ErrParallelLines = errors.New("lines do not intersect")

// ParallelLinesError reports an intersection attempted on parallel or
// coincident lines.
type ParallelLinesError struct {
	L1, L2 Line2D
	// Det is the direction determinant that failed the parallel test.
	Det float64
}

func (e *ParallelLinesError) Error() string {
	return fmt.Sprintf("lines do not intersect: (%v,%v) and (%v,%v) are parallel (det=%g)",
		e.L1.A, e.L1.B, e.L2.A, e.L2.B, e.Det)
}

// Is makes errors.Is(err, ErrParallelLines) true.
func (e *ParallelLinesError) Is(target error) bool {
	return target == ErrParallelLines
}

func det(ax, ay, bx, by float64) float64 {
	return ax*by - ay*bx
}

// Intersect returns the point where two infinite lines cross, in the unit of
// the inputs. It fails with *ParallelLinesError only when the direction
// determinant is exactly zero; nearly parallel lines yield a far-away point.
func Intersect(l1, l2 Line2D) (Point2D, error) {
	return IntersectEpsilon(l1, l2, 0)
}

// IntersectEpsilon is Intersect with a relative parallelism threshold: lines
// are treated as parallel when |det| <= eps * |dir1| * |dir2|, i.e. when the
// sine of the angle between them is at most eps. eps = 0 gives the exact test.
func IntersectEpsilon(l1, l2 Line2D, eps float64) (Point2D, error) {
	xdiff1, xdiff2 := l1.A.X-l1.B.X, l2.A.X-l2.B.X
	ydiff1, ydiff2 := l1.A.Y-l1.B.Y, l2.A.Y-l2.B.Y

	div := det(xdiff1, xdiff2, ydiff1, ydiff2)
	if div == 0 || math.Abs(div) <= eps*l1.Direction().Norm()*l2.Direction().Norm() {
		return Point2D{}, &ParallelLinesError{L1: l1, L2: l2, Det: div}
	}

	d1 := det(l1.A.X, l1.A.Y, l1.B.X, l1.B.Y)
	d2 := det(l2.A.X, l2.A.Y, l2.B.X, l2.B.Y)
	return Point2D{
		X: det(d1, d2, xdiff1, xdiff2) / div,
		Y: det(d1, d2, ydiff1, ydiff2) / div,
	}, nil
}
