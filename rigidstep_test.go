package rigidstep

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// fakeSnapshot/fakeWriteback give the tests direct control over the
// store-shaped Snapshot/Writeback interfaces without a real transactional
// backend, matching the teacher's own plain-struct test fixtures.
type fakeSnapshot struct {
	colliders  []Collider
	properties []MaterialProperties
	bodies     []Body
	triggers   []Trigger
	raycasts   []Raycast
}

func (s *fakeSnapshot) Colliders() []Collider                     { return s.colliders }
func (s *fakeSnapshot) MaterialProperties() []MaterialProperties  { return s.properties }
func (s *fakeSnapshot) Bodies() []Body                            { return s.bodies }
func (s *fakeSnapshot) Triggers() []Trigger                       { return s.triggers }
func (s *fakeSnapshot) Raycasts() []Raycast                       { return s.raycasts }

type fakeWriteback struct {
	bodies   map[uint64]BodyFields
	triggers map[uint64]TriggerFields
	raycasts map[uint64]RaycastFields
}

func newFakeWriteback() *fakeWriteback {
	return &fakeWriteback{
		bodies:   make(map[uint64]BodyFields),
		triggers: make(map[uint64]TriggerFields),
		raycasts: make(map[uint64]RaycastFields),
	}
}

func (w *fakeWriteback) UpdateBody(id uint64, f BodyFields)       { w.bodies[id] = f }
func (w *fakeWriteback) UpdateTrigger(id uint64, f TriggerFields) { w.triggers[id] = f }
func (w *fakeWriteback) UpdateRaycast(id uint64, f RaycastFields) { w.raycasts[id] = f }

// applyBack folds a step's writeback into the snapshot, the way a real
// transactional store would persist it before the next step reads it.
func (s *fakeSnapshot) applyBack(wb *fakeWriteback) {
	for i, b := range s.bodies {
		if f, ok := wb.bodies[b.ID]; ok {
			s.bodies[i].Position = f.Position
			s.bodies[i].Rotation = f.Rotation
			s.bodies[i].LinearVelocity = f.LinearVelocity
			s.bodies[i].AngularVelocity = f.AngularVelocity
			s.bodies[i].Force = f.Force
			s.bodies[i].Torque = f.Torque
		}
	}
	for i, t := range s.triggers {
		if f, ok := wb.triggers[t.ID]; ok {
			s.triggers[i].EntitiesInside = f.EntitiesInside
			s.triggers[i].AddedEntities = f.AddedEntities
			s.triggers[i].RemovedEntities = f.RemovedEntities
		}
	}
	for i, r := range s.raycasts {
		if f, ok := wb.raycasts[r.ID]; ok {
			s.raycasts[i].Hits = f.Hits
			s.raycasts[i].AddedHits = f.AddedHits
			s.raycasts[i].RemovedHits = f.RemovedHits
		}
	}
}

func sphereProperties(id uint64, mass, restitution, friction float64) MaterialProperties {
	return MaterialProperties{ID: id, Mass: mass, Restitution: restitution, StaticFriction: friction, DynamicFriction: friction}
}

func runSteps(t *testing.T, snap *fakeSnapshot, world World, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		wb := newFakeWriteback()
		if err := StepWorld(snap, wb, world, nil); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		snap.applyBack(wb)
	}
}

func findBody(snap *fakeSnapshot, id uint64) Body {
	for _, b := range snap.bodies {
		if b.ID == id {
			return b
		}
	}
	panic("body not found")
}

// S1: free fall, no collisions.
func TestFreeFall(t *testing.T) {
	world := DefaultWorld()
	world.Gravity = mgl64.Vec3{0, -10, 0}
	world.TimeStep = 1.0 / 60.0
	world.SubStep = 1

	snap := &fakeSnapshot{
		colliders:  []Collider{{ID: 1, Kind: ColliderSphere, Radius: 0.5}},
		properties: []MaterialProperties{sphereProperties(1, 1, 0, 0)},
		bodies: []Body{{
			ID: 1, Type: BodyTypeDynamic, Position: mgl64.Vec3{0, 10, 0}, Rotation: mgl64.QuatIdent(),
			ColliderID: 1, PropertiesID: 1,
		}},
	}

	runSteps(t, snap, world, 60)

	b := findBody(snap, 1)
	if math.Abs(b.Position.Y()-5.0) > 0.5 {
		t.Errorf("position.y = %v, want 5.0±0.5", b.Position.Y())
	}
	if math.Abs(b.LinearVelocity.Y()-(-10)) > 0.2 {
		t.Errorf("linear_velocity.y = %v, want -10±0.2", b.LinearVelocity.Y())
	}
}

// S2: sphere comes to rest on a static half-space.
func TestRestOnPlane(t *testing.T) {
	world := DefaultWorld()

	snap := &fakeSnapshot{
		colliders: []Collider{
			{ID: 1, Kind: ColliderSphere, Radius: 1},
			{ID: 2, Kind: ColliderHalfSpace, Normal: mgl64.Vec3{0, 1, 0}},
		},
		properties: []MaterialProperties{
			sphereProperties(1, 1, 0, 0),
			sphereProperties(2, 0, 0, 0),
		},
		bodies: []Body{
			{ID: 1, Type: BodyTypeDynamic, Position: mgl64.Vec3{0, 1.0001, 0}, Rotation: mgl64.QuatIdent(), ColliderID: 1, PropertiesID: 1},
			{ID: 2, Type: BodyTypeStatic, Position: mgl64.Vec3{0, 0, 0}, Rotation: mgl64.QuatIdent(), ColliderID: 2, PropertiesID: 2},
		},
	}

	runSteps(t, snap, world, 60)

	b := findBody(snap, 1)
	if math.Abs(b.Position.Y()-1.0) > 2*world.Precision {
		t.Errorf("position.y = %v, want within %v of 1.0", b.Position.Y(), 2*world.Precision)
	}
	if math.Abs(b.LinearVelocity.Y()) > 0.01 {
		t.Errorf("linear_velocity.y = %v, want |v|<=0.01", b.LinearVelocity.Y())
	}
}

// S3: sliding sphere decelerates monotonically under friction.
func TestObliqueFrictionDecelerates(t *testing.T) {
	world := DefaultWorld()

	snap := &fakeSnapshot{
		colliders: []Collider{
			{ID: 1, Kind: ColliderSphere, Radius: 1},
			{ID: 2, Kind: ColliderHalfSpace, Normal: mgl64.Vec3{0, 1, 0}},
		},
		properties: []MaterialProperties{
			sphereProperties(1, 1, 0, 0.5),
			sphereProperties(2, 0, 0, 0.5),
		},
		bodies: []Body{
			{ID: 1, Type: BodyTypeDynamic, Position: mgl64.Vec3{0, 1.0001, 0}, Rotation: mgl64.QuatIdent(), LinearVelocity: mgl64.Vec3{5, 0, 0}, ColliderID: 1, PropertiesID: 1},
			{ID: 2, Type: BodyTypeStatic, Position: mgl64.Vec3{0, 0, 0}, Rotation: mgl64.QuatIdent(), ColliderID: 2, PropertiesID: 2},
		},
	}

	prevSpeed := math.Abs(findBody(snap, 1).LinearVelocity.X())
	for i := 0; i < 6; i++ {
		runSteps(t, snap, world, 10)
		speed := math.Abs(findBody(snap, 1).LinearVelocity.X())
		if speed > prevSpeed+1e-9 {
			t.Errorf("sample %d: |v_x|=%v increased from %v", i, speed, prevSpeed)
		}
		prevSpeed = speed
	}
}

// S4: a body crossing a static trigger produces the documented
// added/inside/removed transitions.
func TestTriggerDiff(t *testing.T) {
	world := DefaultWorld()
	world.TimeStep = 1.0 / 60.0
	world.SubStep = 1

	snap := &fakeSnapshot{
		colliders: []Collider{
			{ID: 1, Kind: ColliderCuboid, HalfExtents: mgl64.Vec3{1, 1, 1}},
			{ID: 2, Kind: ColliderSphere, Radius: 0.1},
		},
		properties: []MaterialProperties{
			sphereProperties(2, 1, 0, 0),
		},
		triggers: []Trigger{
			{ID: 100, Position: mgl64.Vec3{0, 0, 0}, Rotation: mgl64.QuatIdent(), ColliderID: 1},
		},
		bodies: []Body{
			{ID: 1, Type: BodyTypeKinematic, Position: mgl64.Vec3{5, 0, 0}, Rotation: mgl64.QuatIdent(), ColliderID: 2, PropertiesID: 2},
		},
	}

	var enteredAt, exitedAt = -1, -1
	for step := 0; step < 14; step++ {
		x := 5.0 - float64(step+1)
		override := []KinematicOverride{{BodyID: 1, Position: mgl64.Vec3{x, 0, 0}, Rotation: mgl64.QuatIdent()}}

		wb := newFakeWriteback()
		if err := StepWorld(snap, wb, world, override); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		snap.applyBack(wb)

		tr := snap.triggers[0]
		inside := len(tr.EntitiesInside) == 1 && tr.EntitiesInside[0] == 1
		if inside && enteredAt == -1 {
			enteredAt = step
			if len(tr.AddedEntities) != 1 || tr.AddedEntities[0] != 1 {
				t.Errorf("step %d: added_entities = %v, want [1]", step, tr.AddedEntities)
			}
		}
		if !inside && enteredAt != -1 && exitedAt == -1 {
			exitedAt = step
			if len(tr.RemovedEntities) != 1 || tr.RemovedEntities[0] != 1 {
				t.Errorf("step %d: removed_entities = %v, want [1]", step, tr.RemovedEntities)
			}
		}
	}

	if enteredAt == -1 {
		t.Fatal("body never entered the trigger")
	}
	if exitedAt == -1 {
		t.Fatal("body never exited the trigger")
	}
}

// S5: a ray crossing three spheres reports hits sorted by distance.
func TestRayHitSort(t *testing.T) {
	world := DefaultWorld()

	snap := &fakeSnapshot{
		colliders: []Collider{{ID: 1, Kind: ColliderSphere, Radius: 0.5}},
		properties: []MaterialProperties{
			sphereProperties(1, 0, 0, 0),
		},
		bodies: []Body{
			{ID: 10, Type: BodyTypeStatic, Position: mgl64.Vec3{2, 0, 0}, Rotation: mgl64.QuatIdent(), ColliderID: 1, PropertiesID: 1},
			{ID: 11, Type: BodyTypeStatic, Position: mgl64.Vec3{5, 0, 0}, Rotation: mgl64.QuatIdent(), ColliderID: 1, PropertiesID: 1},
			{ID: 12, Type: BodyTypeStatic, Position: mgl64.Vec3{8, 0, 0}, Rotation: mgl64.QuatIdent(), ColliderID: 1, PropertiesID: 1},
		},
		raycasts: []Raycast{
			{ID: 1000, Origin: mgl64.Vec3{0, 0, 0}, Direction: mgl64.Vec3{1, 0, 0}, MaxDistance: 100, Solid: false},
		},
	}

	wb := newFakeWriteback()
	if err := StepWorld(snap, wb, world, nil); err != nil {
		t.Fatalf("step: %v", err)
	}
	snap.applyBack(wb)

	hits := snap.raycasts[0].Hits
	if len(hits) != 3 {
		t.Fatalf("got %d hits, want 3", len(hits))
	}
	wantDistances := []float64{1.5, 4.5, 7.5}
	wantBodyIDs := []uint64{10, 11, 12}
	for i, h := range hits {
		if math.Abs(h.Distance-wantDistances[i]) > world.Precision {
			t.Errorf("hit %d: distance=%v want %v", i, h.Distance, wantDistances[i])
		}
		if h.BodyID != wantBodyIDs[i] {
			t.Errorf("hit %d: body_id=%v want %v", i, h.BodyID, wantBodyIDs[i])
		}
	}
}

// S6: a Kinematic body's pose follows its override exactly, with zeroed
// velocities, never the solver.
func TestKinematicOverride(t *testing.T) {
	world := DefaultWorld()

	snap := &fakeSnapshot{
		colliders:  []Collider{{ID: 1, Kind: ColliderSphere, Radius: 1}},
		properties: []MaterialProperties{sphereProperties(1, 0, 0, 0)},
		bodies: []Body{
			{ID: 1, Type: BodyTypeKinematic, Position: mgl64.Vec3{0, 0, 0}, ColliderID: 1, PropertiesID: 1},
		},
	}

	override := []KinematicOverride{{BodyID: 1, Position: mgl64.Vec3{3, 4, 5}, Rotation: mgl64.QuatIdent()}}
	wb := newFakeWriteback()
	if err := StepWorld(snap, wb, world, override); err != nil {
		t.Fatalf("step: %v", err)
	}
	snap.applyBack(wb)

	b := findBody(snap, 1)
	if b.Position != (mgl64.Vec3{3, 4, 5}) {
		t.Errorf("position = %v, want (3,4,5)", b.Position)
	}
	if b.LinearVelocity != (mgl64.Vec3{}) || b.AngularVelocity != (mgl64.Vec3{}) {
		t.Errorf("velocities = %v / %v, want zero", b.LinearVelocity, b.AngularVelocity)
	}
}

// Missing collider references abort the step without any writeback.
func TestMissingColliderAbortsWithoutWriteback(t *testing.T) {
	world := DefaultWorld()

	snap := &fakeSnapshot{
		properties: []MaterialProperties{sphereProperties(1, 1, 0, 0)},
		bodies: []Body{
			{ID: 1, Type: BodyTypeDynamic, Position: mgl64.Vec3{0, 1, 0}, ColliderID: 999, PropertiesID: 1},
		},
	}

	wb := newFakeWriteback()
	err := StepWorld(snap, wb, world, nil)
	if err == nil {
		t.Fatal("expected an error for a missing collider reference")
	}
	if len(wb.bodies) != 0 {
		t.Errorf("writeback was populated despite a fatal load error: %v", wb.bodies)
	}
}

// Duplicate body ids are rejected rather than silently resolved.
func TestDuplicateBodyIDsRejected(t *testing.T) {
	world := DefaultWorld()

	snap := &fakeSnapshot{
		colliders:  []Collider{{ID: 1, Kind: ColliderSphere, Radius: 1}},
		properties: []MaterialProperties{sphereProperties(1, 1, 0, 0)},
		bodies: []Body{
			{ID: 1, Type: BodyTypeDynamic, ColliderID: 1, PropertiesID: 1},
			{ID: 1, Type: BodyTypeDynamic, ColliderID: 1, PropertiesID: 1},
		},
	}

	wb := newFakeWriteback()
	if err := StepWorld(snap, wb, world, nil); err == nil {
		t.Fatal("expected an error for duplicate body ids")
	}
}

// Determinism: byte-identical snapshots step to byte-identical writeback.
func TestDeterminism(t *testing.T) {
	world := DefaultWorld()
	build := func() *fakeSnapshot {
		return &fakeSnapshot{
			colliders: []Collider{
				{ID: 1, Kind: ColliderSphere, Radius: 1},
				{ID: 2, Kind: ColliderHalfSpace, Normal: mgl64.Vec3{0, 1, 0}},
			},
			properties: []MaterialProperties{
				sphereProperties(1, 1, 0.5, 0.3),
				sphereProperties(2, 0, 0.5, 0.3),
			},
			bodies: []Body{
				{ID: 1, Type: BodyTypeDynamic, Position: mgl64.Vec3{0, 3, 0}, Rotation: mgl64.QuatIdent(), ColliderID: 1, PropertiesID: 1},
				{ID: 2, Type: BodyTypeStatic, Position: mgl64.Vec3{0, 0, 0}, Rotation: mgl64.QuatIdent(), ColliderID: 2, PropertiesID: 2},
			},
		}
	}

	snapA, snapB := build(), build()
	runSteps(t, snapA, world, 30)
	runSteps(t, snapB, world, 30)

	a, b := findBody(snapA, 1), findBody(snapB, 1)
	if a.Position != b.Position || a.LinearVelocity != b.LinearVelocity || a.Rotation != b.Rotation {
		t.Errorf("runs diverged: %+v vs %+v", a, b)
	}
}
