package rigidstep

import (
	"sort"

	"github.com/akmonengine/rigidstep/broadphase"
	"github.com/akmonengine/rigidstep/constraint"
	"github.com/akmonengine/rigidstep/internal/parallel"
	"github.com/akmonengine/rigidstep/narrowphase"
	"github.com/akmonengine/rigidstep/shape"
	"github.com/go-gl/mathgl/mgl64"
)

// StepWorld advances one world by a single fixed time increment, per
// spec.md §4.7: load → apply kinematic overrides → broad phase once →
// substep loop (narrow phase, integrate, position iterations, recompute
// velocities, solve velocities) → trigger/raycast diffing → writeback.
//
// It is a pure function of snap/world/kinematic other than logging
// through world.Logger: no package-level state is read or mutated, so
// multiple worlds may be stepped concurrently from different goroutines
// (spec.md §5).
//
// Grounded on original_source's engine/mod.rs::step_world for phase
// ordering and on akmonengine-feather's world.go::Step for the Go
// idiom (owned scratch slices, internal/parallel dispatch for the
// per-body integration/recompute-velocity passes).
func StepWorld(snap Snapshot, wb Writeback, world World, kinematic []KinematicOverride) error {
	log := world.logger()

	colliders := make(map[uint64]Collider, len(snap.Colliders()))
	for _, c := range snap.Colliders() {
		colliders[c.ID] = c
	}
	properties := make(map[uint64]MaterialProperties, len(snap.MaterialProperties()))
	for _, p := range snap.MaterialProperties() {
		properties[p.ID] = p
	}

	snapBodies := snap.Bodies()
	sort.Slice(snapBodies, func(i, j int) bool { return snapBodies[i].ID < snapBodies[j].ID })
	bodyViews := make([]*BodyView, 0, len(snapBodies))
	bodyByID := make(map[uint64]*BodyView, len(snapBodies))
	for _, b := range snapBodies {
		if _, ok := bodyByID[b.ID]; ok {
			return duplicateBodyIDError(b.ID)
		}
		c, ok := colliders[b.ColliderID]
		if !ok {
			return missingColliderError(b.ID)
		}
		p, ok := properties[b.PropertiesID]
		if !ok {
			return missingPropertiesError(b.ID)
		}
		v := newBodyView(b, c, p)
		bodyViews = append(bodyViews, v)
		bodyByID[b.ID] = v
	}

	snapTriggers := snap.Triggers()
	triggerViews := make([]*TriggerView, 0, len(snapTriggers))
	for _, t := range snapTriggers {
		c, ok := colliders[t.ColliderID]
		if !ok {
			continue
		}
		triggerViews = append(triggerViews, newTriggerView(t, c))
	}

	snapRays := snap.Raycasts()
	rayViews := make([]*RayView, 0, len(snapRays))
	for _, r := range snapRays {
		rayViews = append(rayViews, newRayView(r))
	}

	applyKinematicOverrides(bodyByID, kinematic)

	bp := broadphase.New()
	bodySources := make([]broadphase.Source, len(bodyViews))
	for i, v := range bodyViews {
		bodySources[i] = v
	}
	triggerSources := make([]broadphase.Source, len(triggerViews))
	for i, v := range triggerViews {
		triggerSources[i] = v
	}
	raySources := make([]broadphase.RaySource, len(rayViews))
	for i, v := range rayViews {
		raySources[i] = v
	}

	broadPhaseTimer := world.Stopwatch("broad_phase")
	result := bp.Run(bodySources, triggerSources, raySources, world.PredictionDistance(), world.BVHDilationFactor)
	broadPhaseTimer.Stop()
	if world.Debug.EnabledBroadPhase() {
		log.Debugf("broad phase: %d candidate pairs", len(result.Pairs))
	}

	dt := world.substepDuration()
	gravityMagnitude := world.Gravity.Len()

	substepTimer := world.Stopwatch("substep_loop")

	for substep := 0; substep < world.SubStep; substep++ {
		if world.Debug.EnabledSubstep() {
			log.Debugf("substep %d", substep)
		}

		constraints := narrowPhaseConstraints(bodyViews, result.Pairs, world)

		parallel.Run(world.Workers, len(bodyViews), func(start, end int) {
			for i := start; i < end; i++ {
				if bodyViews[i].kind == BodyTypeDynamic {
					bodyViews[i].Integrate(dt, world.Gravity)
				}
			}
		})

		for iter := 0; iter < world.PositionIterations; iter++ {
			for _, c := range constraints {
				c.SolvePosition(dt)
			}
		}

		parallel.Run(world.Workers, len(bodyViews), func(start, end int) {
			for i := start; i < end; i++ {
				bodyViews[i].RecomputeVelocities(dt)
			}
		})

		for _, c := range constraints {
			c.SolveVelocity(dt, gravityMagnitude)
		}
	}
	substepTimer.Stop()

	triggerTimer := world.Stopwatch("triggers")
	narrowPhaseTriggers(result, bodySources, triggerViews, world)
	triggerTimer.Stop()

	raycastTimer := world.Stopwatch("raycasts")
	narrowPhaseRaycasts(bodyViews, rayViews, result.RayCandidates, world)
	raycastTimer.Stop()

	for _, v := range bodyViews {
		if v.dirty {
			wb.UpdateBody(v.id, v.fields(log))
		}
	}
	for _, t := range triggerViews {
		if t.dirty {
			wb.UpdateTrigger(t.id, t.fields())
		}
	}
	for _, r := range rayViews {
		if r.dirty {
			wb.UpdateRaycast(r.id, r.fields())
		}
	}

	return nil
}

// narrowPhaseConstraints turns body-body candidate pairs into penetration
// constraints, per spec.md §4.5: skip trigger pairs and pairs with no
// Dynamic body, test
// with GJK/EPA, keep only strictly-penetrating results.
func narrowPhaseConstraints(bodies []*BodyView, pairs [][2]broadphase.Collidable, world World) []*constraint.PenetrationConstraint {
	var out []*constraint.PenetrationConstraint
	for _, pair := range pairs {
		a, b := pair[0], pair[1]
		if a.Kind == broadphase.KindTrigger || b.Kind == broadphase.KindTrigger {
			continue
		}
		bodyA, bodyB := bodies[a.ArrayIndex], bodies[b.ArrayIndex]
		if bodyA.kind != BodyTypeDynamic && bodyB.kind != BodyTypeDynamic {
			continue
		}

		contact, ok := narrowphase.TestBodies(bodyA, bodyB, world.PredictionDistance())
		if !ok {
			continue
		}

		c := constraint.NewPenetrationConstraint(bodyA, bodyB, contact.PointA, contact.PointB, contact.NormalFromA, contact.SignedDistance)
		c.Compliance = constraint.DefaultCompliance
		out = append(out, c)
	}

	if world.Debug.EnabledNarrowPhase() {
		world.logger().Debugf("narrow phase: %d constraints", len(out))
	}
	return out
}

// narrowPhaseTriggers tests every broad-phase pair containing a trigger
// for overlap against its candidate body, then resolves each trigger's
// occupancy diff, per spec.md §4.5 / collision_detection.rs's
// narrow_phase_triggers.
func narrowPhaseTriggers(result broadphase.Result, bodySources []broadphase.Source, triggers []*TriggerView, world World) {
	for _, pair := range result.Pairs {
		a, b := pair[0], pair[1]
		var trigger *TriggerView
		var bodyIndex int
		switch {
		case a.Kind == broadphase.KindTrigger && b.Kind == broadphase.KindBody:
			trigger, bodyIndex = triggers[a.ArrayIndex], b.ArrayIndex
		case b.Kind == broadphase.KindTrigger && a.Kind == broadphase.KindBody:
			trigger, bodyIndex = triggers[b.ArrayIndex], a.ArrayIndex
		default:
			continue
		}

		body := bodySources[bodyIndex].(*BodyView)
		if narrowphase.Intersects(trigger, body) {
			trigger.markInside(body.id)
		}
	}

	for _, t := range triggers {
		t.resolve()
		if world.Debug.EnabledTriggers() && t.dirty {
			world.logger().Debugf("trigger %d: added=%v removed=%v", t.id, t.addedEntities, t.removedEntities)
		}
	}
}

// narrowPhaseRaycasts casts each ray against its broad-phase body
// candidates and diffs the resulting hit set against the previous step's
// hits, per collision_detection.rs::narrow_phase_raycast.
func narrowPhaseRaycasts(bodies []*BodyView, rays []*RayView, candidates [][]int, world World) {
	for i, r := range rays {
		rawHits := narrowphase.TestRay(r.origin, r.direction, r.maxDistance, r.solid, candidates[i], func(idx int) (mgl64.Vec3, mgl64.Quat, shape.Shape) {
			pos, rot := bodies[idx].Pose()
			return pos, rot, bodies[idx].Shape()
		})

		hits := make([]RayHitResult, 0, len(rawHits))
		for _, h := range rawHits {
			hits = append(hits, RayHitResult{
				Distance: h.Distance,
				Position: h.Position,
				Normal:   h.Normal,
				BodyID:   bodies[h.BodyIndex].id,
			})
		}
		sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })

		r.setHits(hits)
		if world.Debug.EnabledRaycasts() && r.dirty {
			world.logger().Debugf("raycast %d: added=%v removed=%v", r.id, r.addedHits, r.removedHits)
		}
	}
}
