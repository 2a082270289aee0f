package rigidstep

import (
	"math"

	"github.com/akmonengine/rigidstep/internal/enginelog"
	"github.com/akmonengine/rigidstep/mathx"
	"github.com/akmonengine/rigidstep/shape"
	"github.com/go-gl/mathgl/mgl64"
)

// BodyView is the per-step projection of a Body (spec.md §3): created at
// load time with derived values (body-local inertia tensor and its
// inverse, previous pose, pre-solve velocities, resolved Shape), mutated
// in place through the substep loop, and written back only if dirty.
// Grounded on akmonengine-feather's actor.RigidBody, generalized from its
// two-way Static/Dynamic split to the three-way Static/Dynamic/Kinematic
// split spec.md requires, and from teacher's permanent per-body struct to
// a step-scoped value that reads from/writes to a Snapshot/Writeback pair
// instead of being the permanent body representation itself.
//
// Fields are unexported and accessed through methods so BodyView can
// satisfy constraint.Body (whose method set needs Position()/Rotation()/…
// as methods, not fields) directly, with no adapter type in between.
type BodyView struct {
	id   uint64
	kind BodyType

	position mgl64.Vec3
	rotation mgl64.Quat

	previousPosition mgl64.Vec3
	previousRotation mgl64.Quat

	linearVelocity  mgl64.Vec3
	angularVelocity mgl64.Vec3

	preSolveLinearVelocity  mgl64.Vec3
	preSolveAngularVelocity mgl64.Vec3

	force  mgl64.Vec3
	torque mgl64.Vec3

	inertiaLocal        mgl64.Mat3
	inverseInertiaLocal mgl64.Mat3

	properties MaterialProperties
	shapeValue shape.Shape

	dirty bool
}

// newBodyView builds a BodyView from a snapshot Body, its resolved
// Collider and MaterialProperties, per spec.md §4.7 step 1 ("build
// BodyView array... derived values created at load time").
func newBodyView(b Body, c Collider, props MaterialProperties) *BodyView {
	s := resolveShape(c)
	inertiaLocal := s.ComputeInertia(props.Mass)
	return &BodyView{
		id:                      b.ID,
		kind:                    b.Type,
		position:                b.Position,
		rotation:                b.Rotation,
		previousPosition:        b.Position,
		previousRotation:        b.Rotation,
		linearVelocity:          b.LinearVelocity,
		angularVelocity:         b.AngularVelocity,
		preSolveLinearVelocity:  b.LinearVelocity,
		preSolveAngularVelocity: b.AngularVelocity,
		force:                   b.Force,
		torque:                  b.Torque,
		inertiaLocal:            inertiaLocal,
		inverseInertiaLocal:     mathx.Mat3InverseOrZero(inertiaLocal),
		properties:              props,
		shapeValue:              s,
	}
}

func (v *BodyView) ID() uint64 { return v.id }

// Pose implements broadphase.Source and narrowphase.Posed.
func (v *BodyView) Pose() (mgl64.Vec3, mgl64.Quat) { return v.position, v.rotation }

// Shape implements broadphase.Source and narrowphase.Posed.
func (v *BodyView) Shape() shape.Shape { return v.shapeValue }

// The following methods implement constraint.Body.

func (v *BodyView) IsDynamic() bool { return v.kind == BodyTypeDynamic }

func (v *BodyView) Position() mgl64.Vec3     { return v.position }
func (v *BodyView) SetPosition(p mgl64.Vec3) { v.position = p; v.dirty = true }

func (v *BodyView) Rotation() mgl64.Quat     { return v.rotation }
func (v *BodyView) SetRotation(q mgl64.Quat) { v.rotation = q.Normalize(); v.dirty = true }

func (v *BodyView) PreviousPosition() mgl64.Vec3 { return v.previousPosition }
func (v *BodyView) PreviousRotation() mgl64.Quat { return v.previousRotation }

func (v *BodyView) LinearVelocity() mgl64.Vec3     { return v.linearVelocity }
func (v *BodyView) SetLinearVelocity(l mgl64.Vec3) { v.linearVelocity = l; v.dirty = true }

func (v *BodyView) AngularVelocity() mgl64.Vec3     { return v.angularVelocity }
func (v *BodyView) SetAngularVelocity(a mgl64.Vec3) { v.angularVelocity = a; v.dirty = true }

func (v *BodyView) PreSolveLinearVelocity() mgl64.Vec3  { return v.preSolveLinearVelocity }
func (v *BodyView) PreSolveAngularVelocity() mgl64.Vec3 { return v.preSolveAngularVelocity }

// InverseMass implements constraint.Body: zero for non-Dynamic bodies
// means they never move under a position/velocity correction.
func (v *BodyView) InverseMass() float64 {
	if !v.IsDynamic() {
		return 0
	}
	return v.properties.InverseMass()
}

// InverseInertiaWorld implements constraint.Body: R·I⁻¹_body·Rᵀ, zero for
// non-dynamic bodies (spec.md §4.2, teacher's GetInverseInertiaWorld).
func (v *BodyView) InverseInertiaWorld() mgl64.Mat3 {
	if !v.IsDynamic() {
		return mgl64.Mat3{}
	}
	r := v.rotation.Mat4().Mat3()
	return r.Mul3(v.inverseInertiaLocal).Mul3(r.Transpose())
}

func (v *BodyView) inertiaWorld() mgl64.Mat3 {
	r := v.rotation.Mat4().Mat3()
	return r.Mul3(v.inertiaLocal).Mul3(r.Transpose())
}

func (v *BodyView) StaticFriction() float64  { return v.properties.StaticFriction }
func (v *BodyView) DynamicFriction() float64 { return v.properties.DynamicFriction }
func (v *BodyView) Restitution() float64     { return v.properties.Restitution }

// AddForce/AddTorque accumulate external forces/torque ahead of Integrate,
// mirroring the teacher's RigidBody.AddForce/AddTorque (minus the 1000x
// scale factor, which is a teacher-specific unit convention spec.md
// doesn't carry).
func (v *BodyView) AddForce(f mgl64.Vec3) {
	if v.IsDynamic() {
		v.force = v.force.Add(f)
	}
}

func (v *BodyView) AddTorque(t mgl64.Vec3) {
	if v.IsDynamic() {
		v.torque = v.torque.Add(t)
	}
}

// Integrate implements spec.md §4.6-i for one Dynamic body. Static and
// Kinematic bodies are never passed to this (step.go filters by kind):
// Kinematic poses are overwritten before the substep loop (§6), Static
// bodies never integrate.
func (v *BodyView) Integrate(dt float64, gravity mgl64.Vec3) {
	v.previousPosition = v.position
	v.previousRotation = v.rotation

	invMass := v.properties.InverseMass()
	totalForce := v.force.Add(gravity.Mul(v.properties.Mass))
	v.linearVelocity = v.linearVelocity.Add(totalForce.Mul(invMass * dt))
	v.position = v.position.Add(v.linearVelocity.Mul(dt))

	invInertia := v.InverseInertiaWorld()
	inertia := v.inertiaWorld()
	omega := v.angularVelocity
	gyro := omega.Cross(inertia.Mul3x1(omega))
	angularAccel := invInertia.Mul3x1(v.torque.Sub(gyro))
	v.angularVelocity = v.angularVelocity.Add(angularAccel.Mul(dt))

	omegaQuat := mgl64.Quat{W: 0, V: v.angularVelocity}
	dq := omegaQuat.Mul(v.rotation).Scale(0.5 * dt)
	v.rotation = v.rotation.Add(dq).Normalize()

	v.force = mgl64.Vec3{}
	v.torque = mgl64.Vec3{}
	v.dirty = true
}

// RecomputeVelocities implements spec.md §4.6-iii for one body after the
// position-iteration loop. Static/Kinematic bodies have both velocities
// forced to zero, and are marked dirty when that changed them.
func (v *BodyView) RecomputeVelocities(dt float64) {
	if !v.IsDynamic() {
		if v.linearVelocity != (mgl64.Vec3{}) || v.angularVelocity != (mgl64.Vec3{}) {
			v.dirty = true
		}
		v.linearVelocity = mgl64.Vec3{}
		v.angularVelocity = mgl64.Vec3{}
		return
	}

	v.preSolveLinearVelocity = v.linearVelocity
	v.linearVelocity = v.position.Sub(v.previousPosition).Mul(1.0 / dt)

	v.preSolveAngularVelocity = v.angularVelocity
	dq := v.rotation.Mul(v.previousRotation.Inverse())
	v.angularVelocity = mathx.ScaledAxisOf(dq).Mul(1.0 / dt)

	v.dirty = true
}

// applyKinematicOverride writes an externally supplied pose directly into
// position/rotation before integration (spec.md §4.7 step 2, §6).
func (v *BodyView) applyKinematicOverride(pos mgl64.Vec3, rot mgl64.Quat) {
	v.position = pos
	v.rotation = rot.Normalize()
	v.linearVelocity = mgl64.Vec3{}
	v.angularVelocity = mgl64.Vec3{}
	v.dirty = true
}

// fields snapshots the view into the Writeback payload, sanitizing any
// non-finite component of position, linear velocity and angular velocity
// to zero (rotation, force and torque are passed through as they are)
// per spec.md §7 ("Non-finite input...
// normalises them to zero... treated as momentarily at rest") and
// warning through log when sanitization actually changed something,
// per SPEC_FULL.md §9 (unconditional Warn, not gated behind a debug
// flag — non-finite state is abnormal regardless of tracing settings).
func (v *BodyView) fields(log enginelog.Logger) BodyFields {
	position, posDirty := sanitizeVec3(v.position)
	linearVelocity, linDirty := sanitizeVec3(v.linearVelocity)
	angularVelocity, angDirty := sanitizeVec3(v.angularVelocity)
	if posDirty || linDirty || angDirty {
		log.Warnf("body %d: non-finite state normalized to zero (position=%v linear_velocity=%v angular_velocity=%v)", v.id, posDirty, linDirty, angDirty)
	}
	return BodyFields{
		Position:        position,
		Rotation:        v.rotation,
		LinearVelocity:  linearVelocity,
		AngularVelocity: angularVelocity,
		Force:           v.force,
		Torque:          v.torque,
	}
}

func sanitizeVec3(v mgl64.Vec3) (mgl64.Vec3, bool) {
	out := v
	dirty := false
	for i := 0; i < 3; i++ {
		if math.IsNaN(out[i]) || math.IsInf(out[i], 0) {
			out[i] = 0
			dirty = true
		}
	}
	return out, dirty
}
