package checkpoint

import "context"

// Store is the persistence contract for step checkpoints.
// PRINCIPLES:
// - ISP: small interface, one concern (checkpoint persistence)
// - DIP: the runner depends on this, never on a concrete adapter
//
// Save must be atomic from the perspective of concurrent readers: a reader
// never observes a half-written checkpoint. Load returns ErrCheckpointNotFound
// for a missing step rather than an empty value. Checkpoints are a
// resumability optimization only; their absence changes the cost of a run,
// never its correctness.
type Store interface {
	// Save durably persists a checkpoint, overwriting any prior value for
	// the same step.
	Save(ctx context.Context, cp *Checkpoint) error

	// Load retrieves the checkpoint for a step by name.
	Load(ctx context.Context, stepName string) (*Checkpoint, error)

	// List returns the names of all persisted steps.
	List(ctx context.Context) ([]string, error)

	// ClearAll removes every checkpoint. Used only on explicit request.
	ClearAll(ctx context.Context) error
}
