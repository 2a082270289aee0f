package constraint

import (
	"math"

	"github.com/akmonengine/rigidstep/mathx"
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultCompliance controls soft constraint stiffness for contact
// resolution. Lower values = stiffer contacts (less penetration, potential
// jitter); higher values = softer contacts (more penetration, smoother).
// Typical range: 1e-10 (very stiff) to 1e-6 (soft).
const DefaultCompliance = 1e-7

// PenetrationConstraint is one body-body contact: a single representative
// point (in each body's local frame, so it tracks rotation across
// substeps), its world-space normal (A→B), and the accumulated Lagrange
// multipliers for the normal and tangential projections. Grounded on
// original_source's PenetrationConstraint (engine/constraints/penetration.rs).
type PenetrationConstraint struct {
	A, B Body

	// LocalA/LocalB are the contact point expressed relative to each
	// body's position, in that body's local (unrotated) frame.
	LocalA, LocalB mgl64.Vec3

	// Normal points from A toward B in world space.
	Normal mgl64.Vec3

	// PenetrationDepth is the signed distance at contact creation time
	// (negative = overlapping); constant for the constraint's lifetime.
	PenetrationDepth float64

	Compliance float64

	NormalLagrange      float64
	TangentLagrange     float64
	NormalForce         mgl64.Vec3
	StaticFrictionForce mgl64.Vec3
}

// NewPenetrationConstraint builds a constraint from a world-space contact
// point pair and normal, converting to each body's local frame so the
// point tracks the body's rotation across the substep loop.
func NewPenetrationConstraint(a, b Body, worldA, worldB, normal mgl64.Vec3, depth float64) *PenetrationConstraint {
	return &PenetrationConstraint{
		A:                a,
		B:                b,
		LocalA:           a.Rotation().Inverse().Rotate(worldA.Sub(a.Position())),
		LocalB:           b.Rotation().Inverse().Rotate(worldB.Sub(b.Position())),
		Normal:           normal,
		PenetrationDepth: depth,
		Compliance:       DefaultCompliance,
	}
}

// computeLagrangeUpdate implements the two-body Lagrange-multiplier update
// `Δλ = (-C - α̃λ)/(w_a+w_b+α̃)` shared by the contact and static-friction
// projections (position.rs uses this same closed form for both).
func computeLagrangeUpdate(lagrange, c, wa, wb, compliance, dt float64) float64 {
	alphaTilde := compliance / (dt * dt)
	denom := wa + wb + alphaTilde
	if denom < 1e-12 {
		return 0
	}
	return (-c - alphaTilde*lagrange) / denom
}

// applyPositionCorrection applies the impulse `p = deltaLambda * direction`
// to both dynamic bodies: a linear correction scaled by inverse mass and an
// angular correction via the first-order quaternion delta, matching
// PositionConstraint::apply_body_correction.
func applyPositionCorrection(a, b Body, deltaLagrange float64, direction, ra, rb mgl64.Vec3) {
	if math.Abs(deltaLagrange) < 1e-12 {
		return
	}
	p := direction.Mul(deltaLagrange)

	applyBodyCorrection(a, p, ra, 1.0)
	applyBodyCorrection(b, p, rb, -1.0)
}

func applyBodyCorrection(b Body, p, r mgl64.Vec3, sign float64) {
	if !b.IsDynamic() {
		return
	}
	b.SetPosition(b.Position().Add(p.Mul(sign * b.InverseMass())))

	deltaAngle := b.InverseInertiaWorld().Mul3x1(r.Cross(p)).Mul(sign)
	dq := mathx.QuatFromScaledAxis(deltaAngle)
	b.SetRotation(dq.Mul(b.Rotation()).Normalize())
}

// SolvePosition runs one position-iteration pass of this constraint:
// contact projection, then static-friction projection, both using the
// current world-space contact arms (recomputed from each body's current
// rotation since LocalA/LocalB are constant in the body frame).
func (c *PenetrationConstraint) SolvePosition(dt float64) {
	c.solveContact(dt)
	c.solveFriction(dt)
}

func (c *PenetrationConstraint) solveContact(dt float64) {
	if c.PenetrationDepth >= 0 {
		return
	}

	ra := c.A.Rotation().Rotate(c.LocalA)
	rb := c.B.Rotation().Rotate(c.LocalB)

	wa := computeGeneralizedInverseMass(c.A, ra, c.Normal)
	wb := computeGeneralizedInverseMass(c.B, rb, c.Normal)

	deltaLagrange := computeLagrangeUpdate(c.NormalLagrange, c.PenetrationDepth, wa, wb, c.Compliance, dt)
	c.NormalLagrange += deltaLagrange
	c.NormalForce = c.Normal.Mul(c.NormalLagrange / (dt * dt))

	applyPositionCorrection(c.A, c.B, deltaLagrange, c.Normal.Mul(-1), ra, rb)
}

func (c *PenetrationConstraint) solveFriction(dt float64) {
	ra := c.A.Rotation().Rotate(c.LocalA)
	rb := c.B.Rotation().Rotate(c.LocalB)

	p1 := c.A.Position().Add(ra)
	p2 := c.B.Position().Add(rb)
	prevP1 := c.A.PreviousPosition().Add(c.A.PreviousRotation().Rotate(c.LocalA))
	prevP2 := c.B.PreviousPosition().Add(c.B.PreviousRotation().Rotate(c.LocalB))

	deltaP := p1.Sub(prevP1).Sub(p2.Sub(prevP2))
	deltaPTangent := deltaP.Sub(c.Normal.Mul(deltaP.Dot(c.Normal)))

	slidingLen := deltaPTangent.Len()
	if slidingLen <= 1e-12 {
		return
	}
	tangent := deltaPTangent.Mul(1.0 / slidingLen)

	wa := computeGeneralizedInverseMass(c.A, ra, tangent)
	wb := computeGeneralizedInverseMass(c.B, rb, tangent)

	staticCoefficient := CombineStaticFriction(c.A, c.B)

	// Apply static friction only while |delta_x_perp| < mu_s * d
	// (position.rs solve_friction's conditional projection).
	if slidingLen >= staticCoefficient*math.Abs(c.PenetrationDepth) {
		return
	}

	deltaLagrange := computeLagrangeUpdate(c.TangentLagrange, slidingLen, wa, wb, c.Compliance, dt)
	c.TangentLagrange += deltaLagrange
	applyPositionCorrection(c.A, c.B, deltaLagrange, tangent, ra, rb)
	c.StaticFrictionForce = tangent.Mul(c.TangentLagrange / (dt * dt))
}

// SolveVelocity applies restitution and dynamic friction after recompute
// velocities has derived this substep's linear/angular velocities from the
// position delta, matching xpbd.rs's solve_velocities for one constraint.
func (c *PenetrationConstraint) SolveVelocity(dt, gravityMagnitude float64) {
	a, b := c.A, c.B
	normal := c.Normal

	ra := a.Rotation().Rotate(c.LocalA)
	rb := b.Rotation().Rotate(c.LocalB)

	preSolveVel1 := contactVelocity(a.PreSolveLinearVelocity(), a.PreSolveAngularVelocity(), ra)
	preSolveVel2 := contactVelocity(b.PreSolveLinearVelocity(), b.PreSolveAngularVelocity(), rb)
	preSolveNormalVel := normal.Dot(preSolveVel1.Sub(preSolveVel2))

	vel1 := contactVelocity(a.LinearVelocity(), a.AngularVelocity(), ra)
	vel2 := contactVelocity(b.LinearVelocity(), b.AngularVelocity(), rb)
	relativeVel := vel1.Sub(vel2)
	normalVel := normal.Dot(relativeVel)
	tangentVel := relativeVel.Sub(normal.Mul(normalVel))

	frictionCoefficient := CombineDynamicFriction(a, b)
	restitutionCoefficient := CombineRestitution(a, b)

	frictionImpulse := dynamicFrictionImpulse(tangentVel, frictionCoefficient, c.NormalLagrange, dt)
	restitutionImpulse := restitutionImpulse(normal, normalVel, preSolveNormalVel, restitutionCoefficient, gravityMagnitude, dt)

	deltaV := frictionImpulse.Add(restitutionImpulse)
	deltaVLen := deltaV.Len()
	if deltaVLen <= 1e-12 {
		return
	}
	deltaVDir := deltaV.Mul(1.0 / deltaVLen)

	wa := computeGeneralizedInverseMass(a, ra, deltaVDir)
	wb := computeGeneralizedInverseMass(b, rb, deltaVDir)
	if wa+wb < 1e-12 {
		return
	}

	p := deltaV.Mul(1.0 / (wa + wb))

	if a.IsDynamic() {
		a.SetLinearVelocity(a.LinearVelocity().Add(p.Mul(a.InverseMass())))
		a.SetAngularVelocity(a.AngularVelocity().Add(a.InverseInertiaWorld().Mul3x1(ra.Cross(p))))
	}
	if b.IsDynamic() {
		b.SetLinearVelocity(b.LinearVelocity().Sub(p.Mul(b.InverseMass())))
		b.SetAngularVelocity(b.AngularVelocity().Sub(b.InverseInertiaWorld().Mul3x1(rb.Cross(p))))
	}

	clampSmallVelocities(a)
	clampSmallVelocities(b)
}

func contactVelocity(linVel, angVel, r mgl64.Vec3) mgl64.Vec3 {
	return linVel.Add(angVel.Cross(r))
}

// dynamicFrictionImpulse implements get_dynamic_friction: a velocity-space
// impulse opposing tangential sliding, bounded by the Coulomb limit derived
// from the already-converged normal Lagrange multiplier, and never
// exceeding the tangential velocity itself.
func dynamicFrictionImpulse(tangentVel mgl64.Vec3, coefficient, normalLagrange, dt float64) mgl64.Vec3 {
	tangentSpeed := tangentVel.Len()
	if tangentSpeed <= 1e-12 {
		return mgl64.Vec3{}
	}

	normalForce := normalLagrange / (dt * dt)
	dir := tangentVel.Mul(1.0 / tangentSpeed)

	magnitude := math.Min(dt*coefficient*math.Abs(normalForce), tangentSpeed)
	return dir.Mul(-magnitude)
}

// restitutionImpulse implements get_restitution, including the
// rest-threshold damping spec.md calls out: below `2|g|dt` the normal
// velocity is treated as resting contact and restitution is disabled to
// avoid jitter.
func restitutionImpulse(normal mgl64.Vec3, normalVel, preSolveNormalVel, coefficient, gravityMagnitude, dt float64) mgl64.Vec3 {
	if math.Abs(normalVel) <= 2.0*gravityMagnitude*dt {
		coefficient = 0
	}
	return normal.Mul(-normalVel + math.Min(-coefficient*preSolveNormalVel, 0))
}
