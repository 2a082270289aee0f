package shape

import (
	"math"

	"github.com/akmonengine/rigidstep/mathx"
	"github.com/go-gl/mathgl/mgl64"
)

// HalfSpace is an infinite plane; bodies live on the side the Normal points
// toward. Grounded on actor/shape.go's Plane, generalized from a single
// fixed axis-aligned thickness box to the same "treat as a very large
// cuboid" trick for Support/AABB (there is no way to give GJK a literal
// unbounded shape, so both the teacher and the original's parry3d-backed
// engine proxy the half-space with a large finite box for convex queries).
type HalfSpace struct {
	Normal mgl64.Vec3
}

func (p *HalfSpace) Kind() Kind { return KindHalfSpace }

func (p *HalfSpace) unitNormal() mgl64.Vec3 {
	return mathx.NormalizeOrZero(p.Normal)
}

func (p *HalfSpace) AABB(pos mgl64.Vec3, rot mgl64.Quat) AABB {
	const thickness = 1.0
	const infinity = 1e10

	n := rot.Rotate(p.unitNormal())
	a := pos
	b := pos.Sub(n.Mul(thickness))
	min := mgl64.Vec3{math.Min(a.X(), b.X()), math.Min(a.Y(), b.Y()), math.Min(a.Z(), b.Z())}
	max := mgl64.Vec3{math.Max(a.X(), b.X()), math.Max(a.Y(), b.Y()), math.Max(a.Z(), b.Z())}

	absN := mgl64.Vec3{math.Abs(n.X()), math.Abs(n.Y()), math.Abs(n.Z())}
	const threshold = 1.0
	for axis := 0; axis < 3; axis++ {
		if absN[axis] < threshold {
			min[axis] = -infinity
			max[axis] = infinity
		}
	}
	return AABB{Min: min, Max: max}
}

// ComputeInertia returns the zero tensor: a static half-space never rotates
// under simulation (spec.md §4.2: "Half-space: zero tensor").
func (p *HalfSpace) ComputeInertia(_ float64) mgl64.Mat3 {
	return mgl64.Mat3{}
}

// Support proxies the infinite plane with a large finite box, following
// actor/shape.go's Plane.Support convention.
func (p *HalfSpace) Support(localDir mgl64.Vec3) mgl64.Vec3 {
	const boxHalfWidth = 1000.0
	const boxHalfHeight = 0.5
	const boxHalfDepth = 1000.0

	t1, t2 := tangentBasis(p.unitNormal())
	x := localDir.Dot(t1)
	z := localDir.Dot(t2)
	y := localDir.Dot(p.unitNormal())

	result := t1.Mul(signedExtent(x, boxHalfWidth)).
		Add(t2.Mul(signedExtent(z, boxHalfDepth)))
	if y > 0 {
		return result
	}
	return result.Sub(p.unitNormal().Mul(boxHalfHeight))
}

func signedExtent(component, extent float64) float64 {
	if component < 0 {
		return -extent
	}
	return extent
}

func tangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var t1 mgl64.Vec3
	if math.Abs(normal.X()) > 0.9 {
		t1 = mgl64.Vec3{0, 1, 0}
	} else {
		t1 = mgl64.Vec3{1, 0, 0}
	}
	t1 = mathx.NormalizeOrZero(t1.Sub(normal.Mul(t1.Dot(normal))))
	t2 := normal.Cross(t1).Normalize()
	return t1, t2
}

// RayCast solves the plane equation n.(origin + t*dir - pos) = 0.
func (p *HalfSpace) RayCast(pos mgl64.Vec3, rot mgl64.Quat, origin, dir mgl64.Vec3, tMax float64, solid bool) (Hit, bool) {
	n := rot.Rotate(p.unitNormal())
	denom := n.Dot(dir)

	toPlane := pos.Sub(origin)
	side := toPlane.Dot(n)

	if math.Abs(denom) < 1e-12 {
		if solid && side >= 0 {
			return Hit{Distance: 0, Position: origin, Normal: n}, true
		}
		return Hit{}, false
	}

	t := toPlane.Dot(n) / denom
	if solid && side >= 0 {
		return Hit{Distance: 0, Position: origin, Normal: n}, true
	}
	if t < 0 || t > tMax {
		return Hit{}, false
	}

	return Hit{Distance: t, Position: origin.Add(dir.Mul(t)), Normal: n}, true
}
