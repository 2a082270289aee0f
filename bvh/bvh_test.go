package bvh

import (
	"testing"

	"github.com/akmonengine/rigidstep/shape"
	"github.com/go-gl/mathgl/mgl64"
)

func box(minX, minY, minZ, maxX, maxY, maxZ float64) shape.AABB {
	return shape.AABB{Min: mgl64.Vec3{minX, minY, minZ}, Max: mgl64.Vec3{maxX, maxY, maxZ}}
}

func TestBuildTwoObjectsSplit(t *testing.T) {
	items := []Item{
		{Index: 0, Box: box(-100, -1, -1, -98, 1, 1)},
		{Index: 1, Box: box(100, -1, -1, 102, 1, 1)},
	}

	b := New()
	b.Build(items, 0)

	if len(b.nodes) != 3 {
		t.Fatalf("expected 3 nodes (root + 2 leaves), got %d", len(b.nodes))
	}

	root := b.nodes[0]
	if root.Min.X() > -100 || root.Max.X() < 100 {
		t.Errorf("root AABB does not enclose both objects: min=%v max=%v", root.Min, root.Max)
	}
	if root.Left == -1 || root.Right == -1 {
		t.Error("root should not be a leaf")
	}
}

func TestBuildSingleObject(t *testing.T) {
	items := []Item{{Index: 0, Box: box(0, 0, 0, 1, 1, 1)}}

	b := New()
	b.Build(items, 0)

	if len(b.nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(b.nodes))
	}
	if b.nodes[0].Left != -1 || b.nodes[0].LeafCount != 1 {
		t.Errorf("root should be a leaf referencing item 0, got %+v", b.nodes[0])
	}
}

func TestBuildEmpty(t *testing.T) {
	b := New()
	b.Build(nil, 0)

	if len(b.nodes) != 0 {
		t.Errorf("expected no nodes for an empty build, got %d", len(b.nodes))
	}
	if pairs := b.SelfPairs(); len(pairs) != 0 {
		t.Errorf("expected no pairs for an empty tree, got %v", pairs)
	}
}

func TestSelfPairsFindsOverlap(t *testing.T) {
	items := []Item{
		{Index: 0, Box: box(0, 0, 0, 2, 2, 2)},
		{Index: 1, Box: box(1, 1, 1, 3, 3, 3)}, // overlaps item 0
		{Index: 2, Box: box(100, 100, 100, 101, 101, 101)}, // isolated
	}

	b := New()
	b.Build(items, 0)
	pairs := b.SelfPairs()

	found := false
	for _, p := range pairs {
		if p == [2]int{0, 1} {
			found = true
		}
		if p[0] >= p[1] {
			t.Errorf("pair %v should have lower index first", p)
		}
		if p == [2]int{0, 2} || p == [2]int{1, 2} {
			t.Errorf("pair %v should not overlap with isolated item 2", p)
		}
	}
	if !found {
		t.Errorf("expected overlapping pair (0,1) among %v", pairs)
	}
}

func TestSelfPairsNoSelfPair(t *testing.T) {
	items := []Item{
		{Index: 0, Box: box(0, 0, 0, 1, 1, 1)},
		{Index: 1, Box: box(0, 0, 0, 1, 1, 1)},
	}

	b := New()
	b.Build(items, 0)
	pairs := b.SelfPairs()

	for _, p := range pairs {
		if p[0] == p[1] {
			t.Errorf("unexpected self-pair %v", p)
		}
	}
}

func TestRayCandidates(t *testing.T) {
	items := []Item{
		{Index: 0, Box: box(-1, -1, -1, 1, 1, 1)},
		{Index: 1, Box: box(10, -1, -1, 12, 1, 1)},
		{Index: 2, Box: box(-1, 50, -1, 1, 52, 1)},
	}

	b := New()
	b.Build(items, 0)

	hits := b.RayCandidates(mgl64.Vec3{-10, 0, 0}, mgl64.Vec3{1, 0, 0}, 100)

	hasIndex := func(idx int) bool {
		for _, h := range hits {
			if h == idx {
				return true
			}
		}
		return false
	}

	if !hasIndex(0) {
		t.Errorf("expected ray to hit item 0's AABB, got %v", hits)
	}
	if !hasIndex(1) {
		t.Errorf("expected ray to hit item 1's AABB, got %v", hits)
	}
	if hasIndex(2) {
		t.Errorf("did not expect ray to hit item 2's AABB, got %v", hits)
	}
}

func TestBuildDilatesBoxes(t *testing.T) {
	items := []Item{{Index: 0, Box: box(0, 0, 0, 1, 1, 1)}}

	b := New()
	b.Build(items, 0.5)

	root := b.nodes[0]
	if root.Min.X() != -0.5 || root.Max.X() != 1.5 {
		t.Errorf("expected dilated root AABB, got min=%v max=%v", root.Min, root.Max)
	}
}
