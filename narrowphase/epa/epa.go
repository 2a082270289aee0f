// Package epa implements the Expanding Polytope Algorithm for computing
// penetration depth and contact normal once GJK has confirmed two convex
// shapes overlap.
//
// EPA expands a polytope (starting from GJK's final simplex) toward the
// origin in Minkowski-difference space, finding the closest face, which
// gives the Minimum Translation Vector (MTV) separating the shapes.
//
// References:
//   - Van den Bergen: "Proximity Queries and Penetration Depth Computation on 3D Game Objects" (2001)
package epa

import (
	"fmt"
	"math"

	"github.com/akmonengine/rigidstep/narrowphase/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// EPAMaxIterations limits polytope expansion to prevent infinite loops.
	EPAMaxIterations = 32

	// EPAConvergenceTolerance defines when EPA has converged: if a new
	// support point improves the closest-face distance by less than this,
	// that face is taken as the separating one.
	EPAConvergenceTolerance = 0.001

	// EPAMinFaceDistance is the minimum face distance before a face is
	// treated as degenerate and discarded.
	EPAMinFaceDistance = 0.0001

	// NormalSnapThreshold clamps nearly-zero normal components to exactly
	// zero, which stabilizes axis-aligned collisions (e.g. a box resting
	// flat on the ground).
	NormalSnapThreshold = 1e-8

	// DegeneratePenetrationEstimate is the fallback penetration depth used
	// when GJK returns an incomplete (non-tetrahedron) simplex.
	DegeneratePenetrationEstimate = 0.01

	polytopeInitialCapacity = 16
)

// Contact is the single-point contact record spec.md §4.2's `contact()`
// returns: `(point_a, point_b, normal_from_a, signed_distance)`, with
// `signed_distance < 0` meaning penetration of depth `|signed_distance|`.
// Because narrow phase only keeps contacts where signed_distance < 0
// (spec.md §4.5), EPA never needs to build a multi-point manifold the way
// the teacher's constraint solver does — the XPBD penetration constraint
// (constraint package) consumes exactly one representative point per
// contacting pair.
type Contact struct {
	PointA, PointB mgl64.Vec3
	NormalFromA    mgl64.Vec3
	SignedDistance float64
}

// EPA computes the penetration contact for two overlapping bodies, given
// the tetrahedron simplex GJK left behind. The normal points from a
// toward b.
func EPA(a, b gjk.Body, simplex gjk.Simplex) (Contact, error) {
	if simplex.Count < 4 {
		return degenerateContact(a, b, simplex), nil
	}

	builder := polytopeBuilderPool.Get().(*PolytopeBuilder)
	defer polytopeBuilderPool.Put(builder)
	builder.Reset()

	if err := builder.BuildInitialFaces(&simplex); err != nil {
		return Contact{}, err
	}

	for i := 0; i < EPAMaxIterations; i++ {
		closestIndex := builder.FindClosestFaceIndex()
		if closestIndex < 0 {
			break
		}
		closest := builder.faces[closestIndex]

		if closest.Distance < EPAMinFaceDistance {
			builder.faces = append(builder.faces[:closestIndex], builder.faces[closestIndex+1:]...)
			continue
		}

		support := gjk.MinkowskiSupport(a, b, closest.Normal)
		distance := support.Dot(closest.Normal)

		if distance-closest.Distance < EPAConvergenceTolerance {
			normal := snapNormalToAxis(closest.Normal)
			return buildContact(a, b, normal, closest.Distance), nil
		}

		if err := builder.AddPointAndRebuildFaces(support, closestIndex); err != nil {
			return Contact{}, err
		}
	}

	return Contact{}, fmt.Errorf("epa: failed to converge after %d iterations", EPAMaxIterations)
}

// buildContact derives the representative world-space contact points from
// the converged separating normal: the support point of each shape along
// ±normal. Since the spec's contact tuple is a single point pair (not a
// manifold), the deepest point on each shape along the contact axis is the
// natural representative.
func buildContact(a, b gjk.Body, normal mgl64.Vec3, depth float64) Contact {
	pointA := a.SupportWorld(normal)
	pointB := b.SupportWorld(normal.Mul(-1))
	return Contact{
		PointA:         pointA,
		PointB:         pointB,
		NormalFromA:    normal,
		SignedDistance: -depth,
	}
}

// degenerateContact handles the rare case where GJK returns fewer than 4
// simplex points (shapes touching at a single point or edge, without a
// full tetrahedron ever forming).
func degenerateContact(a, b gjk.Body, simplex gjk.Simplex) Contact {
	if simplex.Count >= 2 {
		p0 := simplex.Points[0]
		p1 := simplex.Points[1]

		distA := p0.Len()
		distB := p1.Len()

		var penetration float64
		var normal mgl64.Vec3
		if distA < distB {
			penetration, normal = distA, p0
		} else {
			penetration, normal = distB, p1
		}
		if l := normal.Len(); l > NormalSnapThreshold {
			normal = normal.Mul(1.0 / l)
		} else {
			normal = mgl64.Vec3{0, 1, 0}
		}
		return buildContact(a, b, normal, penetration)
	}

	normal := b.Position.Sub(a.Position)
	if l := normal.Len(); l > NormalSnapThreshold {
		normal = normal.Mul(1.0 / l)
	} else {
		normal = mgl64.Vec3{0, 1, 0}
	}
	return buildContact(a, b, normal, DegeneratePenetrationEstimate)
}

// snapNormalToAxis clamps nearly-zero components of a normal vector to
// exactly zero before renormalizing, to stop tiny floating-point noise
// from becoming spurious tangent-direction drift on axis-aligned contacts.
func snapNormalToAxis(normal mgl64.Vec3) mgl64.Vec3 {
	x, y, z := normal[0], normal[1], normal[2]
	if math.Abs(x) < NormalSnapThreshold {
		x = 0
	}
	if math.Abs(y) < NormalSnapThreshold {
		y = 0
	}
	if math.Abs(z) < NormalSnapThreshold {
		z = 0
	}

	clamped := mgl64.Vec3{x, y, z}
	if length := clamped.Len(); length > 1e-8 {
		return clamped.Mul(1.0 / length)
	}
	return mgl64.Vec3{0, 1, 0}
}
