package rigidstep

import (
	"sort"

	"github.com/akmonengine/rigidstep/shape"
	"github.com/go-gl/mathgl/mgl64"
)

// TriggerView is the per-step projection of a Trigger (spec.md §3, §4.5).
// Triggers never affect body dynamics; only their three occupancy sets
// are mutated, by testing overlap (not penetration depth) against every
// body broad-phase finds as a candidate.
//
// Grounded on original_source's engine/trigger_data.rs (TriggerData: the
// split between the persistent current_entities_inside and the
// per-step-scratch new_entities_inside) and its diffing in
// collision_detection.rs::narrow_phase_triggers.
type TriggerView struct {
	id uint64

	position mgl64.Vec3
	rotation mgl64.Quat

	shapeValue shape.Shape

	currentEntitiesInside map[uint64]bool
	newEntitiesInside      map[uint64]bool

	addedEntities   []uint64
	removedEntities []uint64

	dirty bool
}

func newTriggerView(t Trigger, c Collider) *TriggerView {
	current := make(map[uint64]bool, len(t.EntitiesInside))
	for _, id := range t.EntitiesInside {
		current[id] = true
	}
	return &TriggerView{
		id:                    t.ID,
		position:              t.Position,
		rotation:              t.Rotation,
		shapeValue:            resolveShape(c),
		currentEntitiesInside: current,
		newEntitiesInside:     make(map[uint64]bool, len(current)),
	}
}

// Pose implements broadphase.Source and narrowphase.Posed.
func (t *TriggerView) Pose() (mgl64.Vec3, mgl64.Quat) { return t.position, t.rotation }

// Shape implements broadphase.Source and narrowphase.Posed.
func (t *TriggerView) Shape() shape.Shape { return t.shapeValue }

// markInside records that bodyID overlaps this trigger during the
// current narrow-phase pass (spec.md §4.5: intersects → insert into
// new_entities_inside).
func (t *TriggerView) markInside(bodyID uint64) {
	t.newEntitiesInside[bodyID] = true
}

// resolve computes added/removed sets from current vs. new, then rolls
// new into current for the next step, per trigger_data.rs::update. Must
// be called exactly once per step, after every candidate body has been
// tested via markInside.
func (t *TriggerView) resolve() {
	var added, removed []uint64
	for id := range t.newEntitiesInside {
		if !t.currentEntitiesInside[id] {
			added = append(added, id)
		}
	}
	for id := range t.currentEntitiesInside {
		if !t.newEntitiesInside[id] {
			removed = append(removed, id)
		}
	}

	sort.Slice(added, func(i, j int) bool { return added[i] < added[j] })
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })

	t.dirty = len(added) > 0 || len(removed) > 0
	t.addedEntities = added
	t.removedEntities = removed
	t.currentEntitiesInside = t.newEntitiesInside
	t.newEntitiesInside = make(map[uint64]bool, len(t.currentEntitiesInside))
}

func (t *TriggerView) fields() TriggerFields {
	inside := make([]uint64, 0, len(t.currentEntitiesInside))
	for id := range t.currentEntitiesInside {
		inside = append(inside, id)
	}
	sort.Slice(inside, func(i, j int) bool { return inside[i] < inside[j] })
	return TriggerFields{
		EntitiesInside:  inside,
		AddedEntities:   t.addedEntities,
		RemovedEntities: t.removedEntities,
	}
}
