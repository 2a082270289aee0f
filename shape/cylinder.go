package shape

import (
	"math"

	"github.com/akmonengine/rigidstep/mathx"
	"github.com/go-gl/mathgl/mgl64"
)

// Cylinder is a finite right cylinder centered on the origin with its axis
// along local Y, per spec.md §4.2 ("axis = Y, half_height = height/2,
// radius").
type Cylinder struct {
	Radius     float64
	HalfHeight float64
}

func (c *Cylinder) Kind() Kind { return KindCylinder }

// AABB bounds the cylinder by its local axis-aligned box (radius, half
// height, radius) rotated into world space via the same corner-transform
// approach as Cuboid; conservative but exact when unrotated.
func (c *Cylinder) AABB(pos mgl64.Vec3, rot mgl64.Quat) AABB {
	he := mgl64.Vec3{c.Radius, c.HalfHeight, c.Radius}
	box := Cuboid{HalfExtents: he}
	return box.AABB(pos, rot)
}

// ComputeInertia: `I_xz = (1/12)m(3r²+h²)`, `I_y = (1/2)m r²` (spec.md §4.2).
func (c *Cylinder) ComputeInertia(mass float64) mgl64.Mat3 {
	h := 2 * c.HalfHeight
	ixz := (mass / 12.0) * (3*c.Radius*c.Radius + h*h)
	iy := 0.5 * mass * c.Radius * c.Radius
	return mgl64.Mat3{ixz, 0, 0, 0, iy, 0, 0, 0, ixz}
}

func (c *Cylinder) Support(localDir mgl64.Vec3) mgl64.Vec3 {
	radial := mgl64.Vec3{localDir.X(), 0, localDir.Z()}
	radialLen := radial.Len()

	y := -c.HalfHeight
	if localDir.Y() > 0 {
		y = c.HalfHeight
	}
	if radialLen < 1e-12 {
		return mgl64.Vec3{0, y, 0}
	}
	radial = radial.Mul(c.Radius / radialLen)
	return mgl64.Vec3{radial.X(), y, radial.Z()}
}

// RayCast solves the infinite-cylinder quadratic for side hits, clamped to
// the finite height range, plus flat top/bottom cap disc tests.
func (c *Cylinder) RayCast(pos mgl64.Vec3, rot mgl64.Quat, origin, dir mgl64.Vec3, tMax float64, solid bool) (Hit, bool) {
	invRot := rot.Conjugate()
	lo := invRot.Rotate(origin.Sub(pos))
	ld := invRot.Rotate(dir)

	if solid && lo.X()*lo.X()+lo.Z()*lo.Z() <= c.Radius*c.Radius && lo.Y() >= -c.HalfHeight && lo.Y() <= c.HalfHeight {
		return Hit{Distance: 0, Position: origin, Normal: mgl64.Vec3{}}, true
	}

	bestT := math.Inf(1)
	var bestNormal mgl64.Vec3
	found := false

	aq := ld.X()*ld.X() + ld.Z()*ld.Z()
	if aq > 1e-12 {
		bq := 2 * (lo.X()*ld.X() + lo.Z()*ld.Z())
		cq := lo.X()*lo.X() + lo.Z()*lo.Z() - c.Radius*c.Radius
		disc := bq*bq - 4*aq*cq
		if disc >= 0 {
			sq := math.Sqrt(disc)
			for _, t := range []float64{(-bq - sq) / (2 * aq), (-bq + sq) / (2 * aq)} {
				if t < 0 || t > tMax {
					continue
				}
				p := lo.Add(ld.Mul(t))
				if p.Y() < -c.HalfHeight || p.Y() > c.HalfHeight {
					continue
				}
				if t < bestT {
					bestT = t
					bestNormal = mathx.NormalizeOrZero(mgl64.Vec3{p.X(), 0, p.Z()})
					found = true
				}
			}
		}
	}

	for _, capY := range []float64{-c.HalfHeight, c.HalfHeight} {
		if math.Abs(ld.Y()) < 1e-12 {
			continue
		}
		t := (capY - lo.Y()) / ld.Y()
		if t < 0 || t > tMax {
			continue
		}
		p := lo.Add(ld.Mul(t))
		if p.X()*p.X()+p.Z()*p.Z() > c.Radius*c.Radius {
			continue
		}
		if t < bestT {
			bestT = t
			n := 1.0
			if capY < 0 {
				n = -1.0
			}
			bestNormal = mgl64.Vec3{0, n, 0}
			found = true
		}
	}

	if !found {
		return Hit{}, false
	}

	return Hit{Distance: bestT, Position: origin.Add(dir.Mul(bestT)), Normal: rot.Rotate(bestNormal)}, true
}
