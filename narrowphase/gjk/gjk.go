// Package gjk implements the Gilbert-Johnson-Keerthi (GJK) algorithm for
// convex-convex overlap detection.
//
// GJK detects whether two convex shapes overlap by testing if their
// Minkowski difference contains the origin. The algorithm builds a simplex
// incrementally, converging toward the origin in typically 3-6 iterations.
//
// References:
//   - Gilbert, Johnson, Keerthi: "A Fast Procedure for Computing the Distance Between
//     Complex Objects in Three-Dimensional Space" (1988)
//   - Van den Bergen: "Collision Detection in Interactive 3D Environments" (2003)
package gjk

import (
	"github.com/akmonengine/rigidstep/shape"
	"github.com/go-gl/mathgl/mgl64"
)

// Body is the minimal pose+geometry pair GJK/EPA need from a collidable:
// either a dynamic BodyView or a static TriggerView satisfies this by
// exposing its current world pose and shape.
type Body struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Shape    shape.Shape
}

// SupportWorld returns the world-space support point of the body's shape
// along dir.
func (b Body) SupportWorld(dir mgl64.Vec3) mgl64.Vec3 {
	return shape.SupportWorld(b.Shape, b.Position, b.Rotation, dir)
}

// Simplex represents a set of 1-4 points in the Minkowski difference space.
// The simplex evolves during GJK iterations, always containing the most
// recent support points. Size progression: 1 point → 2 (line) → 3
// (triangle) → 4 (tetrahedron).
type Simplex struct {
	Points [4]mgl64.Vec3
	Count  int
}

func (s *Simplex) Reset() {
	s.Count = 0
}

// MinkowskiSupport computes a support point in the Minkowski difference
// A - B: furthestPoint(A, direction) - furthestPoint(B, -direction). This
// is the only query GJK needs from either shape, which is what lets it
// work uniformly over any convex primitive.
func MinkowskiSupport(a, b Body, direction mgl64.Vec3) mgl64.Vec3 {
	supportA := a.SupportWorld(direction)
	supportB := b.SupportWorld(direction.Mul(-1))
	return supportA.Sub(supportB)
}

// GJK performs overlap detection between two convex bodies. The simplex is
// built in place and, on a true return, is always a tetrahedron (4 points)
// containing the origin — EPA uses it as its initial polytope.
func GJK(a, b Body, simplex *Simplex) bool {
	direction := b.Position.Sub(a.Position)
	if direction.LenSqr() < 1e-8 {
		direction = mgl64.Vec3{1, 0, 0}
	}

	simplex.Points[0] = MinkowskiSupport(a, b, direction)
	simplex.Count = 1

	direction = simplex.Points[0].Mul(-1)
	if direction.LenSqr() < 1e-16 {
		return true
	}

	const maxIterations = 32
	for i := 0; i < maxIterations; i++ {
		newPoint := MinkowskiSupport(a, b, direction)

		// If the new point doesn't pass the origin in the search direction,
		// the origin cannot be reached: the shapes are separated.
		if newPoint.Dot(direction) <= 0 {
			return false
		}

		simplex.Points[simplex.Count] = newPoint
		simplex.Count++

		if containsOrigin(simplex, &direction) {
			return true
		}
	}

	return false
}

// containsOrigin tests if the simplex contains the origin and refines it,
// reducing to the feature (point, edge, face) closest to the origin and
// updating the search direction for the next iteration.
func containsOrigin(simplex *Simplex, direction *mgl64.Vec3) bool {
	switch simplex.Count {
	case 2:
		return line(simplex, direction)
	case 3:
		return triangle(simplex, direction)
	case 4:
		return tetrahedron(simplex, direction)
	}
	return false
}

// line handles the 2-point simplex case. A line cannot contain the origin
// in 3D; it only ever narrows the simplex and redirects the search.
func line(simplex *Simplex, direction *mgl64.Vec3) bool {
	a := simplex.Points[1]
	b := simplex.Points[0]
	ab := b.Sub(a)
	ao := a.Mul(-1)

	if ab.LenSqr() < 1e-8 {
		if ao.LenSqr() < 1e-8 {
			return true
		}
		simplex.Points[0] = a
		simplex.Count = 1
		*direction = ao
		return false
	}

	if ab.Dot(ao) <= 0 {
		simplex.Points[0] = a
		simplex.Count = 1
		*direction = ao
		return false
	}

	abPerp := ab.Cross(ao).Cross(ab)
	if abPerp.LenSqr() < 1e-8 {
		return true // origin lies on the segment
	}

	*direction = abPerp
	return false
}

// triangle handles the 3-point simplex case. A triangle cannot contain the
// origin in 3D (we need a tetrahedron); it reduces to the closest edge or
// flips orientation toward the origin.
func triangle(simplex *Simplex, direction *mgl64.Vec3) bool {
	a := simplex.Points[2]
	b := simplex.Points[1]
	c := simplex.Points[0]

	ab := b.Sub(a)
	ac := c.Sub(a)
	ao := a.Mul(-1)

	abc := ab.Cross(ac)

	if abc.LenSqr() < 1e-10 {
		// Degenerate (collinear) triangle: fall back to a line test.
		simplex.Points[0] = b
		simplex.Points[1] = a
		simplex.Count = 2
		return line(simplex, direction)
	}

	abPerp := ab.Cross(abc)
	if abPerp.Dot(ao) > 0 {
		simplex.Points[0] = b
		simplex.Points[1] = a
		simplex.Count = 2
		*direction = ab.Cross(ao).Cross(ab)
		return false
	}

	acPerp := abc.Cross(ac)
	if acPerp.Dot(ao) > 0 {
		simplex.Points[0] = c
		simplex.Points[1] = a
		simplex.Count = 2
		*direction = ac.Cross(ao).Cross(ac)
		return false
	}

	if abc.Dot(ao) > 0 {
		*direction = abc
	} else {
		simplex.Points[0] = a
		simplex.Points[1] = c
		simplex.Points[2] = b
		simplex.Count = 3
		*direction = abc.Mul(-1)
	}

	return false
}

// tetrahedron handles the 4-point simplex case, the only one that can
// return true: the origin is checked against each of the four faces, whose
// normals are oriented outward (away from the opposite vertex).
func tetrahedron(simplex *Simplex, direction *mgl64.Vec3) bool {
	a := simplex.Points[3]
	b := simplex.Points[2]
	c := simplex.Points[1]
	d := simplex.Points[0]

	ab := b.Sub(a)
	ac := c.Sub(a)
	ad := d.Sub(a)
	ao := a.Mul(-1)

	abc := ab.Cross(ac)
	if abc.Dot(ad) > 0 {
		abc = abc.Mul(-1)
	}

	acd := ac.Cross(ad)
	if acd.Dot(ab) > 0 {
		acd = acd.Mul(-1)
	}

	adb := ad.Cross(ab)
	if adb.Dot(ac) > 0 {
		adb = adb.Mul(-1)
	}

	if abc.LenSqr() < 1e-10 || acd.LenSqr() < 1e-10 || adb.LenSqr() < 1e-10 {
		simplex.Points[0] = c
		simplex.Points[1] = b
		simplex.Points[2] = a
		simplex.Count = 3
		return triangle(simplex, direction)
	}

	if abc.Dot(ao) > 0 {
		simplex.Points[0] = c
		simplex.Points[1] = b
		simplex.Points[2] = a
		simplex.Count = 3
		return triangle(simplex, direction)
	}

	if acd.Dot(ao) > 0 {
		simplex.Points[0] = d
		simplex.Points[1] = c
		simplex.Points[2] = a
		simplex.Count = 3
		return triangle(simplex, direction)
	}

	if adb.Dot(ao) > 0 {
		simplex.Points[0] = b
		simplex.Points[1] = d
		simplex.Points[2] = a
		simplex.Count = 3
		return triangle(simplex, direction)
	}

	return true
}
