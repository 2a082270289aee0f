package mathx

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestNormalizeOrZero_ZeroVector(t *testing.T) {
	got := NormalizeOrZero(mgl64.Vec3{})
	if got != (mgl64.Vec3{}) {
		t.Errorf("got %v, want zero vector", got)
	}
}

func TestNormalizeOrZero_UnitLength(t *testing.T) {
	got := NormalizeOrZero(mgl64.Vec3{3, 0, 4})
	if math.Abs(got.Len()-1.0) > 1e-9 {
		t.Errorf("length = %v, want 1.0", got.Len())
	}
}

func TestMat3InverseOrZero_Singular(t *testing.T) {
	got := Mat3InverseOrZero(mgl64.Mat3{})
	if got != (mgl64.Mat3{}) {
		t.Errorf("got %v, want zero matrix", got)
	}
}

func TestMat3InverseOrZero_Identity(t *testing.T) {
	got := Mat3InverseOrZero(mgl64.Ident3())
	if got != mgl64.Ident3() {
		t.Errorf("got %v, want identity", got)
	}
}

func TestQuatFromScaledAxis_ZeroIsIdentity(t *testing.T) {
	got := QuatFromScaledAxis(mgl64.Vec3{})
	want := mgl64.Quat{W: 1}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScaledAxisOf_RoundTrip(t *testing.T) {
	axis := mgl64.Vec3{0, 1, 0}
	angle := 0.3
	q := QuatFromScaledAxis(axis.Mul(angle))

	got := ScaledAxisOf(q)
	if math.Abs(got.Len()-angle) > 1e-9 {
		t.Errorf("recovered angle = %v, want %v", got.Len(), angle)
	}
}

func TestScaledAxisOf_Identity(t *testing.T) {
	got := ScaledAxisOf(mgl64.QuatIdent())
	if got != (mgl64.Vec3{}) {
		t.Errorf("got %v, want zero vector for identity quaternion", got)
	}
}
