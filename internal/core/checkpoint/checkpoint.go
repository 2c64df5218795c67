// Package checkpoint provides the durable per-step cache entities and the
// persistence interface the pipeline runner depends on.
package checkpoint

import "time"

// Checkpoint is the persisted output of one analysis step, stored
// independently of the assembled document. It is overwritten when the step is
// re-run and removed only by an explicit clear request.
type Checkpoint struct {
	StepID    int         `json:"step_id" msgpack:"step_id"`
	StepName  string      `json:"step_name" msgpack:"step_name"`
	Value     interface{} `json:"value" msgpack:"value"`
	Timestamp time.Time   `json:"timestamp" msgpack:"timestamp"`
	Version   string      `json:"version" msgpack:"version"`
}

// Version written by the current pipeline.
const CurrentVersion = "1"

// Validate ensures checkpoint integrity before persistence.
func (c *Checkpoint) Validate() error {
	if c == nil {
		return ErrNilCheckpoint
	}
	if c.StepName == "" {
		return ErrInvalidStepName
	}
	if c.StepID < 0 {
		return ErrInvalidStepID
	}
	return nil
}
