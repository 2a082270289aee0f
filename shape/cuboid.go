package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Cuboid is an oriented box; HalfExtents = size/2 per spec.md §4.2.
// Grounded on actor/shape.go's Box, generalized to take an explicit pose
// at query time instead of caching a transform-dependent AABB field.
type Cuboid struct {
	HalfExtents mgl64.Vec3
}

func (c *Cuboid) Kind() Kind { return KindCuboid }

func (c *Cuboid) AABB(pos mgl64.Vec3, rot mgl64.Quat) AABB {
	he := c.HalfExtents
	corners := [8]mgl64.Vec3{
		{-he.X(), -he.Y(), -he.Z()}, {he.X(), -he.Y(), -he.Z()},
		{-he.X(), he.Y(), -he.Z()}, {he.X(), he.Y(), -he.Z()},
		{-he.X(), -he.Y(), he.Z()}, {he.X(), -he.Y(), he.Z()},
		{-he.X(), he.Y(), he.Z()}, {he.X(), he.Y(), he.Z()},
	}

	world := rot.Rotate(corners[0]).Add(pos)
	min, max := world, world
	for i := 1; i < 8; i++ {
		world = rot.Rotate(corners[i]).Add(pos)
		min = mgl64.Vec3{math.Min(min.X(), world.X()), math.Min(min.Y(), world.Y()), math.Min(min.Z(), world.Z())}
		max = mgl64.Vec3{math.Max(max.X(), world.X()), math.Max(max.Y(), world.Y()), math.Max(max.Z(), world.Z())}
	}
	return AABB{Min: min, Max: max}
}

func (c *Cuboid) ComputeInertia(mass float64) mgl64.Mat3 {
	w, h, d := c.HalfExtents.X()*2, c.HalfExtents.Y()*2, c.HalfExtents.Z()*2
	factor := mass / 12.0
	ix := factor * (h*h + d*d)
	iy := factor * (w*w + d*d)
	iz := factor * (w*w + h*h)
	return mgl64.Mat3{ix, 0, 0, 0, iy, 0, 0, 0, iz}
}

func (c *Cuboid) Support(localDir mgl64.Vec3) mgl64.Vec3 {
	hx, hy, hz := c.HalfExtents.X(), c.HalfExtents.Y(), c.HalfExtents.Z()
	if localDir.X() < 0 {
		hx = -hx
	}
	if localDir.Y() < 0 {
		hy = -hy
	}
	if localDir.Z() < 0 {
		hz = -hz
	}
	return mgl64.Vec3{hx, hy, hz}
}

// RayCast transforms the ray into the box's local frame and applies the
// standard slab test via AABB.RayIntersects.
func (c *Cuboid) RayCast(pos mgl64.Vec3, rot mgl64.Quat, origin, dir mgl64.Vec3, tMax float64, solid bool) (Hit, bool) {
	invRot := rot.Conjugate()
	localOrigin := invRot.Rotate(origin.Sub(pos))
	localDir := invRot.Rotate(dir)

	he := c.HalfExtents
	box := AABB{Min: he.Mul(-1), Max: he}

	if solid && box.ContainsPoint(localOrigin) {
		return Hit{Distance: 0, Position: origin, Normal: mgl64.Vec3{}}, true
	}

	t, ok := box.RayIntersects(localOrigin, localDir, tMax)
	if !ok {
		return Hit{}, false
	}

	localHit := localOrigin.Add(localDir.Mul(t))
	normal := faceNormal(localHit, he)
	return Hit{Distance: t, Position: origin.Add(dir.Mul(t)), Normal: rot.Rotate(normal)}, true
}

func faceNormal(p, he mgl64.Vec3) mgl64.Vec3 {
	const eps = 1e-6
	switch {
	case math.Abs(p.X()-he.X()) < eps:
		return mgl64.Vec3{1, 0, 0}
	case math.Abs(p.X()+he.X()) < eps:
		return mgl64.Vec3{-1, 0, 0}
	case math.Abs(p.Y()-he.Y()) < eps:
		return mgl64.Vec3{0, 1, 0}
	case math.Abs(p.Y()+he.Y()) < eps:
		return mgl64.Vec3{0, -1, 0}
	case math.Abs(p.Z()-he.Z()) < eps:
		return mgl64.Vec3{0, 0, 1}
	default:
		return mgl64.Vec3{0, 0, -1}
	}
}
