// Package mathx supplies the small set of vector/quaternion operations
// spec.md's math primitives section requires that go-gl/mathgl's mgl64
// package does not provide directly: zero-safe normalization and the
// scaled-axis quaternion construction/extraction used by the XPBD position
// corrections and velocity recomputation (SPEC_FULL.md §4.1).
package mathx

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// NormalizeOrZero normalizes v, returning the zero vector for a zero-length
// input instead of NaN (spec.md §4.1: "Zero-length normalize returns zero").
func NormalizeOrZero(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return mgl64.Vec3{}
	}
	return v.Mul(1.0 / l)
}

// Mat3InverseOrZero returns the inverse of m, or the zero matrix when m is
// (near-)singular, per spec.md §4.1 ("zero matrix if |det|<ε") and §7/§9
// ("zero-determinant inertia inversion returns a zero matrix").
func Mat3InverseOrZero(m mgl64.Mat3) mgl64.Mat3 {
	if math.Abs(m.Det()) < 1e-12 {
		return mgl64.Mat3{}
	}
	return m.Inv()
}

// QuatFromScaledAxis builds the quaternion representing a rotation whose
// axis is scaledAxis/|scaledAxis| and whose angle is |scaledAxis| radians,
// used to turn an angular correction vector (e.g. inv_I*(r×p)) into the
// incremental rotation `dq` spec.md §4.6-ii applies as `q ← dq·q`.
//
// The quaternion is built exactly, `{W: cos(angle/2), V: axis·sin(angle/2)}`,
// matching original_source's PositionConstraint::apply_body_correction,
// which uses Quat::from_scaled_axis.
func QuatFromScaledAxis(scaledAxis mgl64.Vec3) mgl64.Quat {
	angle := scaledAxis.Len()
	if angle < 1e-12 {
		return mgl64.Quat{W: 1}
	}
	axis := scaledAxis.Mul(1.0 / angle)
	half := angle * 0.5
	return mgl64.Quat{W: math.Cos(half), V: axis.Mul(math.Sin(half))}
}

// ScaledAxisOf extracts the scaled-axis (axis * angle) representation of a
// unit quaternion, used by the "recompute velocities" step
// (spec.md §4.6-iii) to turn a pose-delta quaternion into an angular
// velocity vector: `angular_velocity ← axis_of(dq) / dt`.
func ScaledAxisOf(q mgl64.Quat) mgl64.Vec3 {
	// Guard the double-cover ambiguity: always take the short-arc
	// representative (W >= 0) so the extracted angle stays in [0, pi].
	if q.W < 0 {
		q.W = -q.W
		q.V = q.V.Mul(-1)
	}
	w := q.W
	if w > 1 {
		w = 1
	} else if w < -1 {
		w = -1
	}
	angle := 2 * math.Acos(w)
	sinHalf := math.Sqrt(1 - w*w)
	if sinHalf < 1e-12 {
		return mgl64.Vec3{}
	}
	return q.V.Mul(angle / sinHalf)
}
