package step

import "errors"

// Catalogue configuration errors. All of these are fatal at startup.
var (
	ErrEmptyCatalogue    = errors.New("catalogue has no steps")
	ErrNonSequentialID   = errors.New("step ids must be sequential from zero")
	ErrEmptyStepName     = errors.New("step name cannot be empty")
	ErrDuplicateStepName = errors.New("duplicate step name")
	ErrNilCompute        = errors.New("step compute function cannot be nil")
	ErrSelfDependency    = errors.New("step depends on itself")
	ErrForwardDependency = errors.New("step depends on a later step")
	ErrUnknownStep       = errors.New("unknown step")
)
