package rigidstep

import "github.com/akmonengine/rigidstep/shape"

// resolveShape converts a snapshot Collider's tagged parameters into the
// concrete shape.Shape value the geometry packages (bvh/broadphase/
// narrowphase) operate on.
func resolveShape(c Collider) shape.Shape {
	switch c.Kind {
	case ColliderSphere:
		return &shape.Sphere{Radius: c.Radius}
	case ColliderHalfSpace:
		return &shape.HalfSpace{Normal: c.Normal}
	case ColliderCuboid:
		return &shape.Cuboid{HalfExtents: c.HalfExtents}
	case ColliderCapsule:
		return &shape.Capsule{Radius: c.Radius, HalfHeight: c.HalfHeight}
	case ColliderCylinder:
		return &shape.Cylinder{Radius: c.Radius, HalfHeight: c.HalfHeight}
	case ColliderCone:
		return &shape.Cone{Radius: c.Radius, HalfHeight: c.HalfHeight}
	case ColliderTriangle:
		return &shape.Triangle{A: c.A, B: c.B, C: c.C}
	default:
		return nil
	}
}
