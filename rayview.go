package rigidstep

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// RayView is the per-step projection of a Raycast (spec.md §3, §4.5):
// every candidate body the broad phase returns is narrow-phase tested,
// and the resulting hit set is diffed against the previous hits, the
// same added/removed shape as TriggerView's occupancy diff.
//
// Grounded on original_source's collision_detection.rs::narrow_phase_raycast
// (HashSet-of-hits diffing via set difference).
type RayView struct {
	id uint64

	origin      mgl64.Vec3
	direction   mgl64.Vec3
	maxDistance float64
	solid       bool

	previousHits []RayHitResult
	hits         []RayHitResult
	addedHits    []RayHitResult
	removedHits  []RayHitResult

	dirty bool
}

// Origin, Direction and MaxDistance implement broadphase.RaySource.
func (r *RayView) Origin() mgl64.Vec3   { return r.origin }
func (r *RayView) Direction() mgl64.Vec3 { return r.direction }
func (r *RayView) MaxDistance() float64 { return r.maxDistance }

func newRayView(r Raycast) *RayView {
	return &RayView{
		id:           r.ID,
		origin:       r.Origin,
		direction:    r.Direction,
		maxDistance:  r.MaxDistance,
		solid:        r.Solid,
		previousHits: r.Hits,
	}
}

// hitEqual compares two hits by exact IEEE-754 bit pattern rather than
// `==`: a NaN compares equal to an identical NaN, while +0 and -0, or
// values that differ in any bit, compare unequal.
func hitEqual(a, b RayHitResult) bool {
	return a.BodyID == b.BodyID &&
		math.Float64bits(a.Distance) == math.Float64bits(b.Distance) &&
		vec3BitsEqual(a.Position, b.Position) &&
		vec3BitsEqual(a.Normal, b.Normal)
}

func vec3BitsEqual(a, b mgl64.Vec3) bool {
	return math.Float64bits(a[0]) == math.Float64bits(b[0]) &&
		math.Float64bits(a[1]) == math.Float64bits(b[1]) &&
		math.Float64bits(a[2]) == math.Float64bits(b[2])
}

func containsHit(hits []RayHitResult, h RayHitResult) bool {
	for _, existing := range hits {
		if hitEqual(existing, h) {
			return true
		}
	}
	return false
}

// setHits replaces the current hit set with the narrow phase's result
// for this step and computes added_hits/removed_hits against the
// previous step's hits (spec.md §8's "Ray diff idempotence").
func (r *RayView) setHits(hits []RayHitResult) {
	var added, removed []RayHitResult
	for _, h := range hits {
		if !containsHit(r.previousHits, h) {
			added = append(added, h)
		}
	}
	for _, h := range r.previousHits {
		if !containsHit(hits, h) {
			removed = append(removed, h)
		}
	}

	r.dirty = len(added) > 0 || len(removed) > 0
	r.hits = hits
	r.addedHits = added
	r.removedHits = removed
}

func (r *RayView) fields() RaycastFields {
	return RaycastFields{
		Hits:        r.hits,
		AddedHits:   r.addedHits,
		RemovedHits: r.removedHits,
	}
}
