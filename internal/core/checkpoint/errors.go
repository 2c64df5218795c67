package checkpoint

import "errors"

// Domain errors shared by every store adapter.
var (
	ErrNilCheckpoint      = errors.New("checkpoint cannot be nil")
	ErrInvalidStepName    = errors.New("checkpoint step name cannot be empty")
	ErrInvalidStepID      = errors.New("checkpoint step id cannot be negative")
	ErrCheckpointNotFound = errors.New("checkpoint not found")
)
