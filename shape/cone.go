package shape

import (
	"math"

	"github.com/akmonengine/rigidstep/mathx"
	"github.com/go-gl/mathgl/mgl64"
)

// Cone stands apex-up along local Y: base circle of Radius at
// y=-HalfHeight, apex at y=+HalfHeight, per spec.md §4.2's
// "axis = Y, half_height = height/2, radius" convention.
type Cone struct {
	Radius     float64
	HalfHeight float64
}

func (c *Cone) Kind() Kind { return KindCone }

func (c *Cone) AABB(pos mgl64.Vec3, rot mgl64.Quat) AABB {
	he := mgl64.Vec3{c.Radius, c.HalfHeight, c.Radius}
	box := Cuboid{HalfExtents: he}
	return box.AABB(pos, rot)
}

// ComputeInertia: `I_xz = (3/20)m r²`, `I_y = (3/10)m r²` (spec.md §4.2).
func (c *Cone) ComputeInertia(mass float64) mgl64.Mat3 {
	ixz := (3.0 / 20.0) * mass * c.Radius * c.Radius
	iy := (3.0 / 10.0) * mass * c.Radius * c.Radius
	return mgl64.Mat3{ixz, 0, 0, 0, iy, 0, 0, 0, ixz}
}

// Support picks the farther of the apex and the base-rim point closest to
// dir's radial component — the two vertex classes a cone's convex hull has.
func (c *Cone) Support(localDir mgl64.Vec3) mgl64.Vec3 {
	apex := mgl64.Vec3{0, c.HalfHeight, 0}

	radial := mgl64.Vec3{localDir.X(), 0, localDir.Z()}
	radialLen := radial.Len()
	var rim mgl64.Vec3
	if radialLen < 1e-12 {
		rim = mgl64.Vec3{c.Radius, -c.HalfHeight, 0}
	} else {
		radial = radial.Mul(c.Radius / radialLen)
		rim = mgl64.Vec3{radial.X(), -c.HalfHeight, radial.Z()}
	}

	if apex.Dot(localDir) >= rim.Dot(localDir) {
		return apex
	}
	return rim
}

// RayCast solves the lateral-surface quadratic for the infinite cone rooted
// at the apex, clamped to the finite height range, plus a base-disc test.
func (c *Cone) RayCast(pos mgl64.Vec3, rot mgl64.Quat, origin, dir mgl64.Vec3, tMax float64, solid bool) (Hit, bool) {
	invRot := rot.Conjugate()
	lo := invRot.Rotate(origin.Sub(pos))
	ld := invRot.Rotate(dir)

	height := 2 * c.HalfHeight
	k := c.Radius / height // radius grows linearly with distance below the apex
	apexY := c.HalfHeight

	oy := lo.Y() - apexY
	dy := ld.Y()

	if solid {
		below := apexY - lo.Y()
		if below >= 0 && below <= height {
			radialLimit := k * below
			if lo.X()*lo.X()+lo.Z()*lo.Z() <= radialLimit*radialLimit {
				return Hit{Distance: 0, Position: origin, Normal: mgl64.Vec3{}}, true
			}
		}
	}

	bestT := math.Inf(1)
	var bestNormal mgl64.Vec3
	found := false

	k2 := k * k
	aq := ld.X()*ld.X() + ld.Z()*ld.Z() - k2*dy*dy
	bq := 2 * (lo.X()*ld.X() + lo.Z()*ld.Z()) - 2*k2*oy*dy
	cq := lo.X()*lo.X() + lo.Z()*lo.Z() - k2*oy*oy

	if math.Abs(aq) > 1e-12 {
		disc := bq*bq - 4*aq*cq
		if disc >= 0 {
			sq := math.Sqrt(disc)
			for _, t := range []float64{(-bq - sq) / (2 * aq), (-bq + sq) / (2 * aq)} {
				if t < 0 || t > tMax {
					continue
				}
				p := lo.Add(ld.Mul(t))
				below := apexY - p.Y() // distance below apex along axis
				if below < 0 || below > height {
					continue
				}
				if t < bestT {
					bestT = t
					radial := mgl64.Vec3{p.X(), 0, p.Z()}
					slope := mathx.NormalizeOrZero(radial)
					bestNormal = mathx.NormalizeOrZero(slope.Add(mgl64.Vec3{0, k, 0}))
					found = true
				}
			}
		}
	}

	baseY := -c.HalfHeight
	if math.Abs(ld.Y()) > 1e-12 {
		t := (baseY - lo.Y()) / ld.Y()
		if t >= 0 && t <= tMax {
			p := lo.Add(ld.Mul(t))
			if p.X()*p.X()+p.Z()*p.Z() <= c.Radius*c.Radius && t < bestT {
				bestT = t
				bestNormal = mgl64.Vec3{0, -1, 0}
				found = true
			}
		}
	}

	if !found {
		return Hit{}, false
	}

	return Hit{Distance: bestT, Position: origin.Add(dir.Mul(bestT)), Normal: rot.Rotate(bestNormal)}, true
}
