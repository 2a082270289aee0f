// Package shape implements the convex primitive tagged union: per-shape
// AABB, ray casting, support functions (for GJK/EPA), and inertia tensors.
package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min, Max mgl64.Vec3
}

// Loosen expands the box by d on every side.
func (b AABB) Loosen(d float64) AABB {
	pad := mgl64.Vec3{d, d, d}
	return AABB{Min: b.Min.Sub(pad), Max: b.Max.Add(pad)}
}

// Overlaps reports whether two AABBs intersect, touching counts as overlap.
func (b AABB) Overlaps(o AABB) bool {
	return b.Min.X() <= o.Max.X() && b.Max.X() >= o.Min.X() &&
		b.Min.Y() <= o.Max.Y() && b.Max.Y() >= o.Min.Y() &&
		b.Min.Z() <= o.Max.Z() && b.Max.Z() >= o.Min.Z()
}

// ContainsPoint reports whether p lies within the box, inclusive.
func (b AABB) ContainsPoint(p mgl64.Vec3) bool {
	return p.X() >= b.Min.X() && p.X() <= b.Max.X() &&
		p.Y() >= b.Min.Y() && p.Y() <= b.Max.Y() &&
		p.Z() >= b.Min.Z() && p.Z() <= b.Max.Z()
}

// Union returns the smallest AABB enclosing both b and o.
func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: mgl64.Vec3{math.Min(b.Min.X(), o.Min.X()), math.Min(b.Min.Y(), o.Min.Y()), math.Min(b.Min.Z(), o.Min.Z())},
		Max: mgl64.Vec3{math.Max(b.Max.X(), o.Max.X()), math.Max(b.Max.Y(), o.Max.Y()), math.Max(b.Max.Z(), o.Max.Z())},
	}
}

// Centroid returns the box center.
func (b AABB) Centroid() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// RayIntersects tests a ray against the box using the slab method, returning
// the entry distance along the ray when it hits within [0, tMax].
func (b AABB) RayIntersects(origin, dir mgl64.Vec3, tMax float64) (float64, bool) {
	tMin := 0.0
	tMaxLocal := tMax

	for axis := 0; axis < 3; axis++ {
		o, d := origin[axis], dir[axis]
		lo, hi := b.Min[axis], b.Max[axis]

		if math.Abs(d) < 1e-12 {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}

		inv := 1.0 / d
		t1 := (lo - o) * inv
		t2 := (hi - o) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMaxLocal {
			tMaxLocal = t2
		}
		if tMin > tMaxLocal {
			return 0, false
		}
	}

	return tMin, true
}
