package shape

import (
	"math"

	"github.com/akmonengine/rigidstep/mathx"
	"github.com/go-gl/mathgl/mgl64"
)

// Capsule is a sphere swept along the local Y axis between
// (0,-HalfHeight,0) and (0,HalfHeight,0), per spec.md §4.2
// ("axis = Y, half_height = height/2, radius").
type Capsule struct {
	Radius     float64
	HalfHeight float64
}

func (c *Capsule) Kind() Kind { return KindCapsule }

func (c *Capsule) segment() (mgl64.Vec3, mgl64.Vec3) {
	return mgl64.Vec3{0, -c.HalfHeight, 0}, mgl64.Vec3{0, c.HalfHeight, 0}
}

func (c *Capsule) AABB(pos mgl64.Vec3, rot mgl64.Quat) AABB {
	a, b := c.segment()
	r := mgl64.Vec3{c.Radius, c.Radius, c.Radius}
	wa := pos.Add(rot.Rotate(a))
	wb := pos.Add(rot.Rotate(b))
	box := AABB{Min: wa.Sub(r), Max: wa.Add(r)}
	return box.Union(AABB{Min: wb.Sub(r), Max: wb.Add(r)})
}

// ComputeInertia uses the isotropic approximation spec.md §4.2 accepts for
// capsules: `(1/12)m(3r²+L²)` on every axis, where L is the endpoint-to-
// endpoint length.
func (c *Capsule) ComputeInertia(mass float64) mgl64.Mat3 {
	l := 2 * c.HalfHeight
	i := (mass / 12.0) * (3*c.Radius*c.Radius + l*l)
	return mgl64.Mat3{i, 0, 0, 0, i, 0, 0, 0, i}
}

func (c *Capsule) Support(localDir mgl64.Vec3) mgl64.Vec3 {
	a, b := c.segment()
	endpoint := a
	if localDir.Y() > 0 {
		endpoint = b
	}
	return endpoint.Add(mathx.NormalizeOrZero(localDir).Mul(c.Radius))
}

// RayCast tests the ray against the capsule's sphere-swept segment: the
// closest approach to the axis within [0,L] is a cylindrical-side hit, and
// outside that range it reduces to a sphere test against the nearer
// endpoint cap.
func (c *Capsule) RayCast(pos mgl64.Vec3, rot mgl64.Quat, origin, dir mgl64.Vec3, tMax float64, solid bool) (Hit, bool) {
	invRot := rot.Conjugate()
	lo := invRot.Rotate(origin.Sub(pos))
	ld := invRot.Rotate(dir)

	a, b := c.segment()
	axis := b.Sub(a)
	axisLen := axis.Len()
	if axisLen < 1e-12 {
		sphere := Sphere{Radius: c.Radius}
		return sphere.RayCast(pos.Add(rot.Rotate(a)), mgl64.QuatIdent(), origin, dir, tMax, solid)
	}

	// Solve the infinite-cylinder quadratic in the frame where the axis is Y.
	axisN := axis.Mul(1 / axisLen)
	if solid {
		along := math.Max(0, math.Min(axisLen, lo.Sub(a).Dot(axisN)))
		if lo.Sub(a.Add(axisN.Mul(along))).Len() <= c.Radius {
			return Hit{Distance: 0, Position: origin, Normal: mgl64.Vec3{}}, true
		}
	}
	// Project lo, ld onto the plane perpendicular to axisN.
	loPerp := lo.Sub(a).Sub(axisN.Mul(lo.Sub(a).Dot(axisN)))
	ldPerp := ld.Sub(axisN.Mul(ld.Dot(axisN)))

	bestT := math.Inf(1)
	var bestNormal mgl64.Vec3
	found := false

	aq := ldPerp.Dot(ldPerp)
	if aq > 1e-12 {
		bq := 2 * loPerp.Dot(ldPerp)
		cq := loPerp.Dot(loPerp) - c.Radius*c.Radius
		disc := bq*bq - 4*aq*cq
		if disc >= 0 {
			sq := math.Sqrt(disc)
			for _, t := range []float64{(-bq - sq) / (2 * aq), (-bq + sq) / (2 * aq)} {
				if t < 0 || t > tMax {
					continue
				}
				p := lo.Add(ld.Mul(t))
				along := p.Sub(a).Dot(axisN)
				if along < 0 || along > axisLen {
					continue
				}
				if t < bestT {
					bestT = t
					foot := a.Add(axisN.Mul(along))
					bestNormal = mathx.NormalizeOrZero(p.Sub(foot))
					found = true
				}
			}
		}
	}

	// Endpoint caps: sphere tests at a and b.
	for _, endpoint := range []mgl64.Vec3{a, b} {
		oc := lo.Sub(endpoint)
		aS := ld.Dot(ld)
		if aS < 1e-12 {
			continue
		}
		bS := 2 * oc.Dot(ld)
		cS := oc.Dot(oc) - c.Radius*c.Radius
		disc := bS*bS - 4*aS*cS
		if disc < 0 {
			continue
		}
		sq := math.Sqrt(disc)
		t := (-bS - sq) / (2 * aS)
		if t < 0 || t > tMax {
			continue
		}
		if t < bestT {
			bestT = t
			p := lo.Add(ld.Mul(t))
			bestNormal = mathx.NormalizeOrZero(p.Sub(endpoint))
			found = true
		}
	}

	if !found {
		return Hit{}, false
	}

	return Hit{Distance: bestT, Position: origin.Add(dir.Mul(bestT)), Normal: rot.Rotate(bestNormal)}, true
}
