// Package rigidstep is a deterministic 3D rigid-body physics engine driven
// by an external transactional store. StepWorld advances every dynamic
// body in one world by a single fixed time increment: broad phase → XPBD
// substep loop (narrow phase, integrate, position iterations, recompute
// velocities, solve velocities) → trigger/raycast diffing → writeback. The
// engine is a pure function of the Snapshot it's given plus the supplied
// World configuration and kinematic overrides; it never reaches outside
// its call arguments other than for logging.
//
// Grounded structurally on original_source/.../tables/ (the engine's own
// row types) and on akmonengine-feather's actor package for Go field-naming
// idiom (Transform, Material, BodyType).
package rigidstep

import "github.com/go-gl/mathgl/mgl64"

// BodyType classifies how a Body participates in integration and
// constraint solving (spec.md §3).
type BodyType int

const (
	BodyTypeStatic BodyType = iota
	BodyTypeDynamic
	BodyTypeKinematic
)

// ColliderKind tags which shape.Shape a Collider's parameters describe.
type ColliderKind int

const (
	ColliderSphere ColliderKind = iota
	ColliderHalfSpace
	ColliderCuboid
	ColliderCapsule
	ColliderCylinder
	ColliderCone
	ColliderTriangle
)

// Collider is immutable per step: a tagged shape with parameters, per
// spec.md §3. Only the fields relevant to ColliderKind are populated; the
// others are zero.
type Collider struct {
	ID   uint64
	Kind ColliderKind

	Radius      float64
	HalfHeight  float64
	HalfExtents mgl64.Vec3
	Normal      mgl64.Vec3

	// Triangle vertices.
	A, B, C mgl64.Vec3
}

// MaterialProperties is mass and the friction/restitution coefficients
// shared by reference from bodies (spec.md §3).
type MaterialProperties struct {
	ID              uint64
	Mass            float64
	StaticFriction  float64
	DynamicFriction float64
	Restitution     float64
}

// InverseMass returns inv_mass = mass>0 ? 1/mass : 0, per spec.md §3.
func (m MaterialProperties) InverseMass() float64 {
	if m.Mass > 0 {
		return 1.0 / m.Mass
	}
	return 0
}

// Body is one rigid body's persistent state, per spec.md §3.
type Body struct {
	ID      uint64
	WorldID uint64

	Type BodyType

	Position mgl64.Vec3
	Rotation mgl64.Quat

	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3

	Force  mgl64.Vec3
	Torque mgl64.Vec3

	ColliderID   uint64
	PropertiesID uint64
}

// Trigger is a pose plus a collider and the three occupancy sets the
// engine maintains (spec.md §3). A trigger never affects body dynamics.
type Trigger struct {
	ID      uint64
	WorldID uint64

	Position mgl64.Vec3
	Rotation mgl64.Quat

	ColliderID uint64

	EntitiesInside []uint64
	AddedEntities  []uint64
	RemovedEntities []uint64
}

// Raycast is a persistent ray query plus the three hit sets the engine
// maintains (spec.md §3).
type Raycast struct {
	ID      uint64
	WorldID uint64

	Origin      mgl64.Vec3
	Direction   mgl64.Vec3
	MaxDistance float64
	Solid       bool

	Hits        []RayHitResult
	AddedHits   []RayHitResult
	RemovedHits []RayHitResult
}

// RayHitResult is one (distance, position, normal, body_id) hit record
// (spec.md §3). Equality for diffing purposes compares canonical float
// bit patterns (§8's "Ray diff idempotence"), implemented by hitEqual in
// rayview.go.
type RayHitResult struct {
	Distance float64
	Position mgl64.Vec3
	Normal   mgl64.Vec3
	BodyID   uint64
}

// Snapshot is the read-only view of one world's persistent state that
// StepWorld consumes (spec.md §6).
type Snapshot interface {
	Colliders() []Collider
	MaterialProperties() []MaterialProperties
	Bodies() []Body
	Triggers() []Trigger
	Raycasts() []Raycast
}

// BodyFields carries the mutated fields StepWorld writes back for one
// body: pose, velocities, and force/torque (cleared to zero at each
// integration per spec.md §3).
type BodyFields struct {
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3
	Force           mgl64.Vec3
	Torque          mgl64.Vec3
}

// TriggerFields carries a trigger's three occupancy sets after one step.
type TriggerFields struct {
	EntitiesInside  []uint64
	AddedEntities   []uint64
	RemovedEntities []uint64
}

// RaycastFields carries a raycast's three hit sets after one step.
type RaycastFields struct {
	Hits        []RayHitResult
	AddedHits   []RayHitResult
	RemovedHits []RayHitResult
}

// Writeback is the write-only sink StepWorld hands mutated state to
// (spec.md §6). Only dirty bodies/triggers/raycasts are written.
type Writeback interface {
	UpdateBody(id uint64, fields BodyFields)
	UpdateTrigger(id uint64, fields TriggerFields)
	UpdateRaycast(id uint64, fields RaycastFields)
}

// KinematicOverride replaces a Kinematic body's pose before integration,
// per spec.md §6 ("kinematic_overrides is a finite sequence of (body_id,
// position, rotation)").
type KinematicOverride struct {
	BodyID   uint64
	Position mgl64.Vec3
	Rotation mgl64.Quat
}
