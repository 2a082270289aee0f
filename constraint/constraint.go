// Package constraint implements the XPBD penetration constraint: per-pair
// contact + static-friction position projection (SolvePosition) and
// restitution + dynamic-friction velocity projection (SolveVelocity),
// per spec.md §4.6. Grounded on the exact per-constraint algorithm in
// original_source's engine/xpbd.rs and
// engine/constraints/{mod,position,penetration}.rs — the literal source the
// distilled spec.md formulas were extracted from — using the Go idiom
// (quaternion-delta correction) from the teacher's constraint/contact.go
// and actor/rigidbody.go. Body state is not mutex-guarded.
//
// Unlike the teacher's ContactConstraint, which aggregates every contact
// point of a pair into one combined correction, each Constraint here holds
// exactly one representative point (EPA returns a single manifold point per
// pair, per narrowphase's strict-penetration-only design) and accumulates
// its own Lagrange multipliers (NormalLagrange/TangentLagrange) across
// position iterations within a substep, matching PenetrationConstraint in
// penetration.rs.
package constraint

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Constraint is solved once per position-iteration pass (SolvePosition) and
// once per substep after recompute-velocities (SolveVelocity, given the
// world's gravity magnitude for the rest-threshold restitution check).
type Constraint interface {
	SolvePosition(dt float64)
	SolveVelocity(dt, gravityMagnitude float64)
}

// Body is the mutable solver-facing view of one rigid body. BodyView
// (package rigidstep) implements it by wrapping a Snapshot Body plus its
// resolved MaterialProperties.
type Body interface {
	IsDynamic() bool
	Position() mgl64.Vec3
	SetPosition(mgl64.Vec3)
	Rotation() mgl64.Quat
	SetRotation(mgl64.Quat)
	PreviousPosition() mgl64.Vec3
	PreviousRotation() mgl64.Quat
	LinearVelocity() mgl64.Vec3
	SetLinearVelocity(mgl64.Vec3)
	AngularVelocity() mgl64.Vec3
	SetAngularVelocity(mgl64.Vec3)
	PreSolveLinearVelocity() mgl64.Vec3
	PreSolveAngularVelocity() mgl64.Vec3
	InverseMass() float64
	InverseInertiaWorld() mgl64.Mat3
	StaticFriction() float64
	DynamicFriction() float64
	Restitution() float64
}

// CombineRestitution averages the two bodies' restitution coefficients,
// matching the teacher's ComputeRestitution (average option kept active;
// max and geometric-mean alternatives considered and rejected there).
func CombineRestitution(a, b Body) float64 {
	return (a.Restitution() + b.Restitution()) / 2.0
}

// CombineStaticFriction averages the two bodies' static friction
// coefficients, per spec.md's combine_static_friction (the teacher's own
// ComputeStaticFriction takes a geometric mean instead; not followed here
// since it diverges from the spec's arithmetic-mean formula).
func CombineStaticFriction(a, b Body) float64 {
	return (a.StaticFriction() + b.StaticFriction()) / 2.0
}

// CombineDynamicFriction averages the two bodies' dynamic friction
// coefficients, per spec.md's combine_dynamic_friction (same divergence
// from the teacher's geometric-mean ComputeDynamicFriction as above).
func CombineDynamicFriction(a, b Body) float64 {
	return (a.DynamicFriction() + b.DynamicFriction()) / 2.0
}

// clampSmallVelocities zeroes a body's linear/angular velocity once it's
// negligible, matching the teacher's clampSmallVelocities threshold.
func clampSmallVelocities(b Body) {
	const velocityThreshold = 1e-5

	if b.LinearVelocity().Len() < velocityThreshold {
		b.SetLinearVelocity(mgl64.Vec3{})
	}
	if b.AngularVelocity().Len() < velocityThreshold {
		b.SetAngularVelocity(mgl64.Vec3{})
	}
}

// computeGeneralizedInverseMass implements `w = inv_mass + (r×n)·I⁻¹(r×n)`,
// the generalized inverse mass used by every position correction and by
// solve_velocities' delta_v projection (position.rs::compute_generalized_inverse_mass).
func computeGeneralizedInverseMass(b Body, r, n mgl64.Vec3) float64 {
	rCrossN := r.Cross(n)
	return b.InverseMass() + b.InverseInertiaWorld().Mul3x1(rCrossN).Dot(rCrossN)
}
