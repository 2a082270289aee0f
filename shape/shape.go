package shape

import "github.com/go-gl/mathgl/mgl64"

// Kind tags the concrete shape behind a Shape value.
type Kind int

const (
	KindSphere Kind = iota
	KindHalfSpace
	KindCuboid
	KindCapsule
	KindCylinder
	KindCone
	KindTriangle
)

func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindHalfSpace:
		return "half_space"
	case KindCuboid:
		return "cuboid"
	case KindCapsule:
		return "capsule"
	case KindCylinder:
		return "cylinder"
	case KindCone:
		return "cone"
	case KindTriangle:
		return "triangle"
	default:
		return "unknown"
	}
}

// Hit is a single ray intersection: distance along the ray, world position
// and outward surface normal at that position.
type Hit struct {
	Distance float64
	Position mgl64.Vec3
	Normal   mgl64.Vec3
}

// Shape is the tagged-union interface every convex primitive implements.
// Position/rotation are supplied by the caller (BodyView/TriggerView own
// the pose; shapes are pure geometry parameterized by it).
type Shape interface {
	Kind() Kind

	// AABB returns a world-space bounding box enclosing the shape at the
	// given pose (conservative, not always tight, for rotated shapes).
	AABB(pos mgl64.Vec3, rot mgl64.Quat) AABB

	// ComputeInertia returns the body-frame (diagonal) inertia tensor for
	// the given mass, per the formulas in SPEC_FULL.md §4.2.
	ComputeInertia(mass float64) mgl64.Mat3

	// Support returns the local-space support point of the shape along
	// localDir (the point of the shape farthest in that direction). Used
	// by GJK/EPA via the Minkowski-difference support function.
	Support(localDir mgl64.Vec3) mgl64.Vec3

	// RayCast intersects a world-space ray against the shape at the given
	// pose. If solid is true, a ray whose origin starts inside the shape
	// registers an immediate hit at distance 0.
	RayCast(pos mgl64.Vec3, rot mgl64.Quat, origin, dir mgl64.Vec3, tMax float64, solid bool) (Hit, bool)
}

// LoosenedAABB is the AABB dilated by d on every side, per spec.md §4.2's
// `loosened_aabb(isometry, d) = aabb ⊕ d`.
func LoosenedAABB(s Shape, pos mgl64.Vec3, rot mgl64.Quat, d float64) AABB {
	return s.AABB(pos, rot).Loosen(d)
}

// SupportWorld transforms a world-space search direction into the shape's
// local frame, evaluates Support, and transforms the result back to world
// space. This is the GJK/EPA entry point for any Shape value.
func SupportWorld(s Shape, pos mgl64.Vec3, rot mgl64.Quat, dir mgl64.Vec3) mgl64.Vec3 {
	localDir := rot.Conjugate().Rotate(dir)
	local := s.Support(localDir)
	return pos.Add(rot.Rotate(local))
}
