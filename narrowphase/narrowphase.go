// Package narrowphase turns broad-phase candidate pairs and ray candidate
// sets into penetration constraints, trigger occupancy updates, and ray
// hit sets, per spec.md §4.5. Grounded algorithmically on
// original_source's collision_detection.rs
// (narrow_phase_constraints/narrow_phase_triggers/narrow_phase_raycast),
// implemented in terms of this module's gjk/epa subpackages instead of
// parry3d's generic `contact`/`intersects` queries.
package narrowphase

import (
	"github.com/akmonengine/rigidstep/narrowphase/epa"
	"github.com/akmonengine/rigidstep/narrowphase/gjk"
	"github.com/akmonengine/rigidstep/shape"
	"github.com/go-gl/mathgl/mgl64"
)

// Posed is any collidable the narrow phase can query: its current
// world-space pose and shape.
type Posed interface {
	Pose() (pos mgl64.Vec3, rot mgl64.Quat)
	Shape() shape.Shape
}

func bodyOf(p Posed) gjk.Body {
	pos, rot := p.Pose()
	return gjk.Body{Position: pos, Rotation: rot, Shape: p.Shape()}
}

// Contact is the outcome of a body-body test that survived the
// strict-penetration filter (spec.md §4.5: "If no contact returned or
// signed_distance >= 0, skip").
type Contact = epa.Contact

// TestBodies runs GJK/EPA for one body-body pair and returns the contact
// only when the shapes are strictly penetrating, matching spec.md §4.5's
// discard rule for `signed_distance >= 0`. prediction carries the world's
// prediction distance through to match spec.md §4.2's `contact(iso_a,
// other, iso_b, prediction)` / the original's `shape_wrapper.rs::contact`
// signature; today's strict-penetration filter below never needs it (the
// original's own narrow_phase_constraints discards anything with
// signed_distance >= 0 regardless of the margin contact() was given), so
// it's accepted but otherwise unused here.
func TestBodies(a, b Posed, prediction float64) (Contact, bool) {
	_ = prediction
	ba, bb := bodyOf(a), bodyOf(b)

	var simplex gjk.Simplex
	if !gjk.GJK(ba, bb, &simplex) {
		return Contact{}, false
	}

	contact, err := epa.EPA(ba, bb, simplex)
	if err != nil || contact.SignedDistance >= 0 {
		return Contact{}, false
	}
	return contact, true
}

// Intersects reports whether two shapes overlap at all (used for
// body-trigger occupancy, spec.md §4.5's `intersects` query) — unlike
// TestBodies, a touching-but-not-penetrating pair still counts as
// intersecting, since a trigger's "inside" test has no depth threshold.
func Intersects(a, b Posed) bool {
	ba, bb := bodyOf(a), bodyOf(b)
	var simplex gjk.Simplex
	return gjk.GJK(ba, bb, &simplex)
}

// RayHit is the per-candidate outcome of a raycast narrow-phase test:
// which body was hit and at what distance/position/normal.
type RayHit struct {
	BodyIndex int
	Distance  float64
	Position  mgl64.Vec3
	Normal    mgl64.Vec3
}

// TestRay casts one ray against the given candidate body indices, each
// resolved to a pose+shape via resolve, and returns every hit (spec.md
// §4.5: "Collect hits" — the caller diffs against previous hits).
func TestRay(origin, dir mgl64.Vec3, maxDistance float64, solid bool, candidateIndices []int, resolve func(idx int) (mgl64.Vec3, mgl64.Quat, shape.Shape)) []RayHit {
	var hits []RayHit
	for _, idx := range candidateIndices {
		pos, rot, sh := resolve(idx)
		hit, ok := sh.RayCast(pos, rot, origin, dir, maxDistance, solid)
		if !ok {
			continue
		}
		hits = append(hits, RayHit{BodyIndex: idx, Distance: hit.Distance, Position: hit.Position, Normal: hit.Normal})
	}
	return hits
}
