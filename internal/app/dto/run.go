// Package dto defines the request/response shapes of a pipeline invocation.
package dto

import (
	"time"

	"github.com/Muhanzhang10/service-call-recording-analysis/internal/core/document"
)

// Mode selects which subset of the catalogue a run covers.
type Mode string

const (
	// ModeAll runs every catalogue step from scratch.
	ModeAll Mode = "all"
	// ModeExplicit runs exactly the listed step ids.
	ModeExplicit Mode = "steps"
	// ModeFrom runs every step with id >= From.
	ModeFrom Mode = "from"
)

// RunRequest is the caller's specification of which steps to (re)execute.
// Never persisted.
type RunRequest struct {
	Mode  Mode  `json:"mode"`
	Steps []int `json:"steps,omitempty"`
	From  int   `json:"from,omitempty"`
}

// Validate checks request shape; catalogue membership is the planner's job.
func (r *RunRequest) Validate() error {
	switch r.Mode {
	case ModeAll:
		return nil
	case ModeExplicit:
		if len(r.Steps) == 0 {
			return ErrEmptyStepSet
		}
		return nil
	case ModeFrom:
		if r.From < 0 {
			return ErrNegativeFrom
		}
		return nil
	default:
		return ErrInvalidMode
	}
}

// StepStatus tracks a step through the per-step state machine. Reused and
// succeeded are equivalent terminal states for downstream consumers.
type StepStatus string

const (
	StepStatusPending         StepStatus = "pending"
	StepStatusResolving       StepStatus = "resolving_dependencies"
	StepStatusExecuting       StepStatus = "executing"
	StepStatusReused          StepStatus = "reused_from_cache"
	StepStatusSucceeded       StepStatus = "succeeded"
	StepStatusFailedPermanent StepStatus = "failed_permanent"
	StepStatusFailedDependent StepStatus = "failed_dependent"
	StepStatusFailedFatal     StepStatus = "failed_fatal"
)

// Usable reports whether downstream steps can consume this step's output.
func (s StepStatus) Usable() bool {
	return s == StepStatusSucceeded || s == StepStatusReused
}

// StepResult records the outcome of one step within a run.
type StepResult struct {
	ID        int           `json:"id"`
	Name      string        `json:"name"`
	Requested bool          `json:"requested"`
	Status    StepStatus    `json:"status"`
	Error     string        `json:"error,omitempty"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
}

// RunStatus is the overall outcome of an invocation.
type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusPartial   RunStatus = "completed_with_failures"
	RunStatusFailed    RunStatus = "failed"
)

// RunResponse is the result of one pipeline invocation. The document holds
// whatever state the run reached, including error markers for failed steps.
type RunResponse struct {
	RunID     string            `json:"run_id"`
	Mode      Mode              `json:"mode"`
	Status    RunStatus         `json:"status"`
	Document  document.Document `json:"document"`
	Steps     []StepResult      `json:"steps"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time"`
	Duration  time.Duration     `json:"duration"`
	Error     string            `json:"error,omitempty"`
}
