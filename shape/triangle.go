package shape

import (
	"math"

	"github.com/akmonengine/rigidstep/mathx"
	"github.com/go-gl/mathgl/mgl64"
)

// Triangle is a flat convex shape given by three local-space vertices
// (spec.md §4.2: "Triangle is specified by three vertices").
type Triangle struct {
	A, B, C mgl64.Vec3
}

func (t *Triangle) Kind() Kind { return KindTriangle }

func (t *Triangle) AABB(pos mgl64.Vec3, rot mgl64.Quat) AABB {
	wa := pos.Add(rot.Rotate(t.A))
	wb := pos.Add(rot.Rotate(t.B))
	wc := pos.Add(rot.Rotate(t.C))
	box := AABB{Min: wa, Max: wa}
	box = box.Union(AABB{Min: wb, Max: wb})
	box = box.Union(AABB{Min: wc, Max: wc})
	return box
}

func (t *Triangle) area() float64 {
	return 0.5 * t.B.Sub(t.A).Cross(t.C.Sub(t.A)).Len()
}

// ComputeInertia uses the thin-plate isotropic approximation spec.md §4.2
// accepts for triangles: `(1/6)m·A²` on every axis.
func (t *Triangle) ComputeInertia(mass float64) mgl64.Mat3 {
	a := t.area()
	i := (mass / 6.0) * a * a
	return mgl64.Mat3{i, 0, 0, 0, i, 0, 0, 0, i}
}

func (t *Triangle) Support(localDir mgl64.Vec3) mgl64.Vec3 {
	best := t.A
	bestDot := t.A.Dot(localDir)
	if d := t.B.Dot(localDir); d > bestDot {
		best, bestDot = t.B, d
	}
	if d := t.C.Dot(localDir); d > bestDot {
		best = t.C
	}
	return best
}

func (t *Triangle) normal() mgl64.Vec3 {
	return mathx.NormalizeOrZero(t.B.Sub(t.A).Cross(t.C.Sub(t.A)))
}

// RayCast implements the Möller–Trumbore ray-triangle intersection test.
// A triangle has no interior volume, so `solid` has no effect.
func (t *Triangle) RayCast(pos mgl64.Vec3, rot mgl64.Quat, origin, dir mgl64.Vec3, tMax float64, _ bool) (Hit, bool) {
	invRot := rot.Conjugate()
	lo := invRot.Rotate(origin.Sub(pos))
	ld := invRot.Rotate(dir)

	edge1 := t.B.Sub(t.A)
	edge2 := t.C.Sub(t.A)
	h := ld.Cross(edge2)
	a := edge1.Dot(h)
	if math.Abs(a) < 1e-12 {
		return Hit{}, false
	}

	f := 1.0 / a
	s := lo.Sub(t.A)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return Hit{}, false
	}

	q := s.Cross(edge1)
	v := f * ld.Dot(q)
	if v < 0 || u+v > 1 {
		return Hit{}, false
	}

	tHit := f * edge2.Dot(q)
	if tHit < 0 || tHit > tMax {
		return Hit{}, false
	}

	n := t.normal()
	if n.Dot(ld) > 0 {
		n = n.Mul(-1)
	}
	return Hit{Distance: tHit, Position: origin.Add(dir.Mul(tHit)), Normal: rot.Rotate(n)}, true
}
