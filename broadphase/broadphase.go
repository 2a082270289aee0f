// Package broadphase collects the current step's bodies and triggers into
// dilated-AABB items, rebuilds the BVH, and emits candidate pairs and
// per-ray candidate sets, per spec.md §4.4. Grounded algorithmically on
// original_source's collision_detection.rs (`collect_collidables`,
// `broad_phase`, `run_broad_phase_pairs`, `run_broad_phase_raycast_pairs`),
// adapted to Go after collision.go's BroadPhase in the teacher. No pair is
// skipped by body type here: trigger and static-static pairs are dropped
// later, in the narrow phase.
package broadphase

import (
	"sort"

	"github.com/akmonengine/rigidstep/bvh"
	"github.com/akmonengine/rigidstep/shape"
	"github.com/go-gl/mathgl/mgl64"
)

// Kind tags a collidable item as belonging to the body or trigger array.
type Kind int

const (
	KindBody Kind = iota
	KindTrigger
)

// Collidable mirrors original_source's Collidable: a stable index into one
// of the body/trigger arrays, tagged by Kind, plus the CollidableIndex used
// to order the deduplicated pair set.
type Collidable struct {
	ArrayIndex     int
	Kind           Kind
	CollidableIndex int
}

// Source is anything the broad phase can collect AABB-bearing items from:
// BodyView and TriggerView both satisfy this with their shape/pose.
type Source interface {
	Pose() (pos mgl64.Vec3, rot mgl64.Quat)
	Shape() shape.Shape
}

// RaySource supplies the geometry of one pending raycast.
type RaySource interface {
	Origin() mgl64.Vec3
	Direction() mgl64.Vec3
	MaxDistance() float64
}

// Result is one step's broad-phase output: the deduplicated candidate
// pairs, and per-ray candidate item sets (bodies only; triggers are
// excluded from ray candidates per spec.md §4.4 step 5).
type Result struct {
	Pairs         [][2]Collidable
	RayCandidates [][]int // ray index -> candidate body array indices
}

// BroadPhase owns a BVH instance and reusable buffers across steps, per
// spec.md §5's "a single BVH instance ... may be reused across steps".
type BroadPhase struct {
	tree  *bvh.BVH
	items []bvh.Item
	index []Collidable
}

func New() *BroadPhase {
	return &BroadPhase{tree: bvh.New()}
}

// Run collects bodies+triggers, rebuilds the tree, and returns the pair
// set and ray candidate sets for this step.
func (bp *BroadPhase) Run(bodies, triggers []Source, rays []RaySource, predictionDistance, bvhDilationFactor float64) Result {
	bp.collect(bodies, triggers, predictionDistance)
	bp.tree.Build(bp.items, bvhDilationFactor)

	rawPairs := bp.tree.SelfPairs()
	pairs := make([][2]Collidable, 0, len(rawPairs))
	for _, p := range rawPairs {
		pairs = append(pairs, [2]Collidable{bp.index[p[0]], bp.index[p[1]]})
	}

	rayCandidates := make([][]int, len(rays))
	for i, ray := range rays {
		origin := ray.Origin()
		dir := ray.Direction()
		candidates := bp.tree.RayCandidates(origin, dir, ray.MaxDistance())

		bodyCandidates := make([]int, 0, len(candidates))
		for _, c := range candidates {
			collidable := bp.index[c]
			if collidable.Kind == KindTrigger {
				continue
			}
			bodyCandidates = append(bodyCandidates, collidable.ArrayIndex)
		}
		sort.Ints(bodyCandidates)
		rayCandidates[i] = bodyCandidates
	}

	return Result{Pairs: pairs, RayCandidates: rayCandidates}
}

func (bp *BroadPhase) collect(bodies, triggers []Source, predictionDistance float64) {
	bp.items = bp.items[:0]
	bp.index = bp.index[:0]

	idx := 0
	for i, b := range bodies {
		pos, rot := b.Pose()
		box := shape.LoosenedAABB(b.Shape(), pos, rot, predictionDistance)
		bp.items = append(bp.items, bvh.Item{Index: idx, Box: box})
		bp.index = append(bp.index, Collidable{ArrayIndex: i, Kind: KindBody, CollidableIndex: idx})
		idx++
	}
	for i, tr := range triggers {
		pos, rot := tr.Pose()
		box := shape.LoosenedAABB(tr.Shape(), pos, rot, predictionDistance)
		bp.items = append(bp.items, bvh.Item{Index: idx, Box: box})
		bp.index = append(bp.index, Collidable{ArrayIndex: i, Kind: KindTrigger, CollidableIndex: idx})
		idx++
	}
}
