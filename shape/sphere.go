package shape

import (
	"math"

	"github.com/akmonengine/rigidstep/mathx"
	"github.com/go-gl/mathgl/mgl64"
)

// Sphere is a ball of the given radius centered on the body origin.
type Sphere struct {
	Radius float64
}

func (s *Sphere) Kind() Kind { return KindSphere }

func (s *Sphere) AABB(pos mgl64.Vec3, _ mgl64.Quat) AABB {
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return AABB{Min: pos.Sub(r), Max: pos.Add(r)}
}

func (s *Sphere) ComputeInertia(mass float64) mgl64.Mat3 {
	i := (2.0 / 5.0) * mass * s.Radius * s.Radius
	return mgl64.Mat3{i, 0, 0, 0, i, 0, 0, 0, i}
}

func (s *Sphere) Support(localDir mgl64.Vec3) mgl64.Vec3 {
	return mathx.NormalizeOrZero(localDir).Mul(s.Radius)
}

// RayCast solves |origin + t*dir - pos|^2 = r^2 for the smallest t in [0, tMax].
func (s *Sphere) RayCast(pos mgl64.Vec3, _ mgl64.Quat, origin, dir mgl64.Vec3, tMax float64, solid bool) (Hit, bool) {
	oc := origin.Sub(pos)
	a := dir.Dot(dir)
	if a < 1e-12 {
		return Hit{}, false
	}
	b := 2 * oc.Dot(dir)
	c := oc.Dot(oc) - s.Radius*s.Radius

	if c < 0 && solid {
		return Hit{Distance: 0, Position: origin, Normal: mathx.NormalizeOrZero(oc)}, true
	}

	disc := b*b - 4*a*c
	if disc < 0 {
		return Hit{}, false
	}
	sq := math.Sqrt(disc)
	t := (-b - sq) / (2 * a)
	if t < 0 {
		t = (-b + sq) / (2 * a)
	}
	if t < 0 || t > tMax {
		return Hit{}, false
	}

	hitPos := origin.Add(dir.Mul(t))
	normal := mathx.NormalizeOrZero(hitPos.Sub(pos))
	return Hit{Distance: t, Position: hitPos, Normal: normal}, true
}
