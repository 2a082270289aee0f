package rigidstep

// applyKinematicOverrides writes each override's pose into its matching
// Kinematic BodyView before the substep loop begins. Kinematic bodies
// with no matching override keep the pose they carry from the snapshot,
// and RecomputeVelocities sets their velocities to zero.
//
// Grounded on original_source's engine/mod.rs::sync_kinematic_bodies,
// generalized from its Static/Dynamic/(implicit kinematic-by-zero-mass)
// lookup to an explicit BodyTypeKinematic check.
func applyKinematicOverrides(views map[uint64]*BodyView, overrides []KinematicOverride) {
	for _, o := range overrides {
		v, ok := views[o.BodyID]
		if !ok || v.kind != BodyTypeKinematic {
			continue
		}
		v.applyKinematicOverride(o.Position, o.Rotation)
	}
}
