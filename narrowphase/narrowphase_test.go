package narrowphase

import (
	"testing"

	"github.com/akmonengine/rigidstep/shape"
	"github.com/go-gl/mathgl/mgl64"
)

type fakePosed struct {
	pos mgl64.Vec3
	sh  shape.Shape
}

func (f fakePosed) Pose() (mgl64.Vec3, mgl64.Quat) { return f.pos, mgl64.QuatIdent() }
func (f fakePosed) Shape() shape.Shape             { return f.sh }

func TestTestBodiesPenetrating(t *testing.T) {
	a := fakePosed{pos: mgl64.Vec3{0, 0, 0}, sh: &shape.Sphere{Radius: 1}}
	b := fakePosed{pos: mgl64.Vec3{1.5, 0, 0}, sh: &shape.Sphere{Radius: 1}}

	contact, ok := TestBodies(a, b, 0)
	if !ok {
		t.Fatal("expected penetrating spheres to produce a contact")
	}
	if contact.SignedDistance >= 0 {
		t.Errorf("expected negative signed_distance, got %f", contact.SignedDistance)
	}
}

func TestTestBodiesSeparated(t *testing.T) {
	a := fakePosed{pos: mgl64.Vec3{0, 0, 0}, sh: &shape.Sphere{Radius: 1}}
	b := fakePosed{pos: mgl64.Vec3{10, 0, 0}, sh: &shape.Sphere{Radius: 1}}

	if _, ok := TestBodies(a, b, 0); ok {
		t.Error("expected separated spheres to produce no contact")
	}
}

func TestIntersectsTouchingButNotPenetrating(t *testing.T) {
	a := fakePosed{pos: mgl64.Vec3{0, 0, 0}, sh: &shape.Sphere{Radius: 1}}
	b := fakePosed{pos: mgl64.Vec3{2, 0, 0}, sh: &shape.Sphere{Radius: 1}}

	if !Intersects(a, b) {
		t.Error("expected exactly-touching spheres to intersect")
	}
	if _, ok := TestBodies(a, b, 0); ok {
		t.Error("touching (non-penetrating) spheres should not produce a body-body contact")
	}
}

func TestTestRayHitsCandidate(t *testing.T) {
	bodies := []fakePosed{
		{pos: mgl64.Vec3{5, 0, 0}, sh: &shape.Sphere{Radius: 1}},
		{pos: mgl64.Vec3{100, 0, 0}, sh: &shape.Sphere{Radius: 1}},
	}
	resolve := func(idx int) (mgl64.Vec3, mgl64.Quat, shape.Shape) {
		return bodies[idx].pos, mgl64.QuatIdent(), bodies[idx].sh
	}

	hits := TestRay(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, 20, false, []int{0, 1}, resolve)

	if len(hits) != 1 || hits[0].BodyIndex != 0 {
		t.Errorf("expected exactly one hit on body 0, got %+v", hits)
	}
}
