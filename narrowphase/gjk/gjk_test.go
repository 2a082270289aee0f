package gjk

import (
	"testing"

	"github.com/akmonengine/rigidstep/shape"
	"github.com/go-gl/mathgl/mgl64"
)

func sphereBody(pos mgl64.Vec3, radius float64) Body {
	return Body{Position: pos, Rotation: mgl64.QuatIdent(), Shape: &shape.Sphere{Radius: radius}}
}

func boxBody(pos mgl64.Vec3, halfExtents mgl64.Vec3) Body {
	return Body{Position: pos, Rotation: mgl64.QuatIdent(), Shape: &shape.Cuboid{HalfExtents: halfExtents}}
}

func TestGJKOverlappingSpheres(t *testing.T) {
	a := sphereBody(mgl64.Vec3{0, 0, 0}, 1)
	b := sphereBody(mgl64.Vec3{1.5, 0, 0}, 1)

	var simplex Simplex
	if !GJK(a, b, &simplex) {
		t.Error("expected overlapping spheres to collide")
	}
}

func TestGJKSeparatedSpheres(t *testing.T) {
	a := sphereBody(mgl64.Vec3{0, 0, 0}, 1)
	b := sphereBody(mgl64.Vec3{10, 0, 0}, 1)

	var simplex Simplex
	if GJK(a, b, &simplex) {
		t.Error("expected far-apart spheres not to collide")
	}
}

func TestGJKOverlappingBoxes(t *testing.T) {
	a := boxBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	b := boxBody(mgl64.Vec3{1.5, 0, 0}, mgl64.Vec3{1, 1, 1})

	var simplex Simplex
	if !GJK(a, b, &simplex) {
		t.Error("expected overlapping boxes to collide")
	}
	if simplex.Count != 4 {
		t.Errorf("expected a 4-point tetrahedron simplex on collision, got %d points", simplex.Count)
	}
}

func TestGJKTouchingBoxes(t *testing.T) {
	a := boxBody(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1})
	b := boxBody(mgl64.Vec3{2, 0, 0}, mgl64.Vec3{1, 1, 1})

	var simplex Simplex
	if !GJK(a, b, &simplex) {
		t.Error("expected exactly-touching boxes to report collision")
	}
}

func TestGJKSphereVsBox(t *testing.T) {
	a := sphereBody(mgl64.Vec3{0, 0, 0}, 1)
	b := boxBody(mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{1, 1, 1})

	var simplex Simplex
	if !GJK(a, b, &simplex) {
		t.Error("expected overlapping sphere and box to collide")
	}
}

func TestMinkowskiSupportIsSupportOfAMinusSupportOfB(t *testing.T) {
	a := sphereBody(mgl64.Vec3{0, 0, 0}, 1)
	b := sphereBody(mgl64.Vec3{5, 0, 0}, 1)

	// A's support along +X is (1,0,0); B's support along -X is (4,0,0).
	support := MinkowskiSupport(a, b, mgl64.Vec3{1, 0, 0})
	if support != (mgl64.Vec3{-3, 0, 0}) {
		t.Errorf("expected Minkowski support along +X to be (-3,0,0), got %v", support)
	}
}
