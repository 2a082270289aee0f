package rigidstep

import (
	"errors"
	"fmt"
)

// Sentinel errors for StepWorld's fatal preconditions (spec.md §7: "missing
// reference... fatal for the step: abort without writeback").
var (
	// ErrMissingCollider is wrapped with the offending body id when a
	// Body's collider_id has no matching Collider in the snapshot.
	ErrMissingCollider = errors.New("rigidstep: body references a missing collider")

	// ErrMissingProperties is wrapped with the offending body id when a
	// Body's properties_id has no matching MaterialProperties in the
	// snapshot.
	ErrMissingProperties = errors.New("rigidstep: body references missing material properties")

	// ErrDuplicateBodyID is returned when the snapshot contains two
	// bodies sharing an id. spec.md §7 calls this "undefined behaviour"
	// for callers; this implementation chooses to fail the step loudly
	// rather than silently picking one, since the sorted-body-array
	// invariant (§5) requires unique ids to make any sense.
	ErrDuplicateBodyID = errors.New("rigidstep: snapshot contains duplicate body ids")
)

func missingColliderError(bodyID uint64) error {
	return fmt.Errorf("%w: body id %d", ErrMissingCollider, bodyID)
}

func missingPropertiesError(bodyID uint64) error {
	return fmt.Errorf("%w: body id %d", ErrMissingProperties, bodyID)
}

func duplicateBodyIDError(bodyID uint64) error {
	return fmt.Errorf("%w: body id %d", ErrDuplicateBodyID, bodyID)
}
