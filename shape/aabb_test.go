package shape

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestAABB_Overlaps(t *testing.T) {
	a := AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}
	b := AABB{Min: mgl64.Vec3{0.5, 0.5, 0.5}, Max: mgl64.Vec3{2, 2, 2}}
	c := AABB{Min: mgl64.Vec3{10, 10, 10}, Max: mgl64.Vec3{11, 11, 11}}

	if !a.Overlaps(b) {
		t.Error("expected overlapping boxes to report overlap")
	}
	if a.Overlaps(c) {
		t.Error("expected distant boxes to report no overlap")
	}
}

func TestAABB_ContainsPoint(t *testing.T) {
	box := AABB{Min: mgl64.Vec3{-1, -1, -1}, Max: mgl64.Vec3{1, 1, 1}}

	if !box.ContainsPoint(mgl64.Vec3{0, 0, 0}) {
		t.Error("expected origin to be contained")
	}
	if box.ContainsPoint(mgl64.Vec3{5, 0, 0}) {
		t.Error("expected far point to be outside")
	}
}

func TestAABB_Union(t *testing.T) {
	a := AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}
	b := AABB{Min: mgl64.Vec3{-1, -1, -1}, Max: mgl64.Vec3{0.5, 0.5, 0.5}}

	u := a.Union(b)
	want := AABB{Min: mgl64.Vec3{-1, -1, -1}, Max: mgl64.Vec3{1, 1, 1}}
	if u != want {
		t.Errorf("got %+v, want %+v", u, want)
	}
}

func TestAABB_RayIntersects(t *testing.T) {
	box := AABB{Min: mgl64.Vec3{-1, -1, -1}, Max: mgl64.Vec3{1, 1, 1}}

	dist, ok := box.RayIntersects(mgl64.Vec3{-5, 0, 0}, mgl64.Vec3{1, 0, 0}, 100)
	if !ok {
		t.Fatal("expected a hit")
	}
	if dist != 4 {
		t.Errorf("distance = %v, want 4", dist)
	}

	_, ok = box.RayIntersects(mgl64.Vec3{-5, 10, 0}, mgl64.Vec3{1, 0, 0}, 100)
	if ok {
		t.Error("expected a miss for a ray passing above the box")
	}
}
