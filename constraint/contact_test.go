package constraint

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestSolvePositionNoPenetrationIsNoOp(t *testing.T) {
	a := newFakeBody(mgl64.Vec3{0, 0, 0}, 1)
	b := newFakeBody(mgl64.Vec3{2, 0, 0}, 1)

	c := &PenetrationConstraint{
		A: a, B: b,
		Normal:           mgl64.Vec3{1, 0, 0},
		PenetrationDepth: 0.0,
		Compliance:       0.0,
	}

	c.SolvePosition(0.016)

	if a.pos != (mgl64.Vec3{0, 0, 0}) || b.pos != (mgl64.Vec3{2, 0, 0}) {
		t.Errorf("expected no movement for zero penetration, got a=%v b=%v", a.pos, b.pos)
	}
}

func TestSolvePositionPenetratingBodiesSeparate(t *testing.T) {
	a := newFakeBody(mgl64.Vec3{0, 0, 0}, 1)
	b := newFakeBody(mgl64.Vec3{1.5, 0, 0}, 1)

	c := NewPenetrationConstraint(a, b, mgl64.Vec3{0.75, 0, 0}, mgl64.Vec3{0.75, 0, 0}, mgl64.Vec3{1, 0, 0}, -0.5)
	c.Compliance = 0

	origSep := b.pos.Sub(a.pos).Len()
	for i := 0; i < 4; i++ {
		c.SolvePosition(0.016)
	}
	newSep := b.pos.Sub(a.pos).Len()

	if newSep <= origSep {
		t.Errorf("expected bodies to separate: before=%v after=%v", origSep, newSep)
	}
	if a.pos.X() >= 0 {
		t.Errorf("expected body A to move left, got %v", a.pos)
	}
	if b.pos.X() <= 1.5 {
		t.Errorf("expected body B to move right, got %v", b.pos)
	}
}

func TestSolvePositionEqualMassesMoveEquallyOpposite(t *testing.T) {
	a := newFakeBody(mgl64.Vec3{0, 0, 0}, 2)
	b := newFakeBody(mgl64.Vec3{1, 0, 0}, 2)

	c := NewPenetrationConstraint(a, b, mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{1, 0, 0}, -0.2)
	c.Compliance = 0
	c.SolvePosition(0.016)

	deltaA := -a.pos.X()
	deltaB := b.pos.X() - 1
	if math.Abs(deltaA-deltaB) > 1e-9 {
		t.Errorf("expected equal-mass bodies to move equally: deltaA=%v deltaB=%v", deltaA, deltaB)
	}
}

func TestSolvePositionStaticBodyDoesNotMove(t *testing.T) {
	a := newFakeBody(mgl64.Vec3{0, 0, 0}, 0)
	b := newFakeBody(mgl64.Vec3{1, 0, 0}, 1)

	c := NewPenetrationConstraint(a, b, mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{1, 0, 0}, -0.3)
	c.Compliance = 0
	c.SolvePosition(0.016)

	if a.pos != (mgl64.Vec3{0, 0, 0}) {
		t.Errorf("static body moved: %v", a.pos)
	}
	if b.pos.X() <= 1 {
		t.Errorf("expected dynamic body to move away from static body, got %v", b.pos)
	}
}

func TestSolvePositionBothStaticDoesNotMove(t *testing.T) {
	a := newFakeBody(mgl64.Vec3{0, 0, 0}, 0)
	b := newFakeBody(mgl64.Vec3{1, 0, 0}, 0)

	c := NewPenetrationConstraint(a, b, mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{1, 0, 0}, -0.5)
	c.SolvePosition(0.016)

	if a.pos != (mgl64.Vec3{0, 0, 0}) || b.pos != (mgl64.Vec3{1, 0, 0}) {
		t.Errorf("static bodies moved: a=%v b=%v", a.pos, b.pos)
	}
}

func TestSolvePositionAccumulatesLagrangeAcrossIterations(t *testing.T) {
	a := newFakeBody(mgl64.Vec3{0, 0, 0}, 1)
	b := newFakeBody(mgl64.Vec3{1.5, 0, 0}, 1)
	c := NewPenetrationConstraint(a, b, mgl64.Vec3{0.75, 0, 0}, mgl64.Vec3{0.75, 0, 0}, mgl64.Vec3{1, 0, 0}, -0.5)

	if c.NormalLagrange != 0 {
		t.Fatalf("expected zero initial lagrange, got %v", c.NormalLagrange)
	}
	c.SolvePosition(0.016)
	first := c.NormalLagrange
	if first == 0 {
		t.Fatal("expected normal lagrange to accumulate after one solve")
	}
	c.SolvePosition(0.016)
	if c.NormalLagrange == first {
		t.Error("expected normal lagrange to keep accumulating across iterations")
	}
}

func TestSolveVelocityApproachingBodiesBounceApart(t *testing.T) {
	a := newFakeBody(mgl64.Vec3{0, 0, 0}, 1)
	a.linVel = mgl64.Vec3{5, 0, 0}
	a.preSolveLinVel = a.linVel
	a.restitution = 0.8

	b := newFakeBody(mgl64.Vec3{2, 0, 0}, 1)
	b.restitution = 0.8

	c := NewPenetrationConstraint(a, b, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{1, 0, 0}, -0.1)
	c.NormalLagrange = -0.01 // simulate a converged position solve this substep

	c.SolveVelocity(0.016, 9.81)

	if a.linVel.X() >= 5.0 {
		t.Errorf("expected body A to slow down after collision, got %v", a.linVel)
	}
	if b.linVel.X() <= 0.0 {
		t.Errorf("expected body B to gain velocity after collision, got %v", b.linVel)
	}
}

func TestSolveVelocityRestThresholdSuppressesRestitution(t *testing.T) {
	dt := 0.016
	gravity := 9.81

	a := newFakeBody(mgl64.Vec3{0, 0, 0}, 1)
	a.linVel = mgl64.Vec3{0.01, 0, 0}
	a.preSolveLinVel = a.linVel
	a.restitution = 1.0

	b := newFakeBody(mgl64.Vec3{2, 0, 0}, 1)
	b.restitution = 1.0

	c := NewPenetrationConstraint(a, b, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{1, 0, 0}, -0.05)
	c.NormalLagrange = -0.001

	preVel := a.linVel
	c.SolveVelocity(dt, gravity)

	// Below the 2|g|dt threshold restitution is forced to zero; the
	// resulting velocity change should be small relative to a "full bounce".
	if a.linVel.Sub(preVel).Len() > 1.0 {
		t.Errorf("expected negligible velocity change under the rest threshold, got delta %v", a.linVel.Sub(preVel))
	}
}

func TestSolveVelocityClampsNegligibleResult(t *testing.T) {
	a := newFakeBody(mgl64.Vec3{0, 0, 0}, 1)
	a.linVel = mgl64.Vec3{1e-9, 1e-9, 1e-9}
	a.preSolveLinVel = a.linVel
	b := newFakeBody(mgl64.Vec3{2, 0, 0}, 1)

	c := NewPenetrationConstraint(a, b, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{1, 0, 0}, -0.1)

	c.SolveVelocity(0.016, 9.81)

	if a.linVel.Len() >= 1e-5 {
		t.Errorf("expected negligible velocity to be clamped to zero, got %v", a.linVel)
	}
}
