package physics

import "github.com/pkg/errors"

// Every failure in the engine is a caller mistake reported at the offending call.
// Returned errors wrap one of these sentinels; match them with errors.Is.
var (
	// ErrInvalidGeometry reports bad shape parameters or material values.
	ErrInvalidGeometry = errors.New("invalid geometry")
	// ErrInvalidTimestep reports a step with dt <= 0 or a non-finite dt.
	ErrInvalidTimestep = errors.New("invalid timestep")
	// ErrDanglingReference reports an operation on a body, shape or constraint
	// that is not (or no longer, or already) owned by the space.
	ErrDanglingReference = errors.New("dangling reference")
	// ErrInvalidConstraintConfiguration reports joint anchors that cannot be solved.
	ErrInvalidConstraintConfiguration = errors.New("invalid constraint configuration")
	// ErrInvalidMass reports a dynamic body stepped with no mass or moment.
	ErrInvalidMass = errors.New("invalid mass")
	// ErrSpaceLocked reports a mutation or step attempted from inside Step.
	ErrSpaceLocked = errors.New("space is locked")
)
