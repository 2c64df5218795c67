// Package runner executes a planned pipeline invocation: one step at a time,
// in catalogue order, consulting the checkpoint store and the in-memory
// document before paying for a remote computation.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Muhanzhang10/service-call-recording-analysis/internal/app/dto"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/app/planner"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/core/checkpoint"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/core/document"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/core/step"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/infrastructure/inference"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/infrastructure/metrics"
)

// DocumentWriter persists the final assembled document as one unit.
type DocumentWriter interface {
	Write(ctx context.Context, doc document.Document) error
}

// Runner owns the in-memory result document for the duration of one
// invocation. The checkpoint store outlives any single run.
type Runner struct {
	catalogue *step.Catalogue
	store     checkpoint.Store
	caps      step.Capabilities
	writer    DocumentWriter
	logger    *log.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger overrides the default logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// New creates a pipeline runner. The store and generators arrive as injected
// capabilities; there is no process-wide singleton.
func New(cat *step.Catalogue, store checkpoint.Store, caps step.Capabilities, writer DocumentWriter, opts ...Option) *Runner {
	r := &Runner{
		catalogue: cat,
		store:     store,
		caps:      caps,
		writer:    writer,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// storeResolver lets the planner treat a persisted checkpoint as a resolvable
// prior result.
type storeResolver struct {
	store checkpoint.Store
}

func (r storeResolver) Resolvable(ctx context.Context, def *step.Definition) bool {
	_, err := r.store.Load(ctx, def.Name)
	return err == nil
}

// Run plans and executes the requested steps. Planning and persistence
// failures propagate as errors; per-step permanent failures are recorded in
// the document and do not abort independent steps. Even a failed run carries
// the document state it reached in the response.
func (r *Runner) Run(ctx context.Context, req *dto.RunRequest) (*dto.RunResponse, error) {
	plan, err := planner.Build(ctx, r.catalogue, req, storeResolver{r.store})
	if err != nil {
		return nil, err
	}

	doc := document.New()
	resp := &dto.RunResponse{
		RunID:     uuid.NewString(),
		Mode:      req.Mode,
		Document:  doc,
		StartTime: time.Now(),
	}
	doc.Merge(document.KeyMetadata, map[string]interface{}{
		"run_id":             resp.RunID,
		"mode":               string(req.Mode),
		"analysis_timestamp": resp.StartTime.Format(time.RFC3339),
		"catalogue_size":     r.catalogue.Len(),
	})

	inExecute := make(map[int]bool, len(plan.Execute))
	for _, id := range plan.Execute {
		inExecute[id] = true
	}
	inPull := make(map[int]bool, len(plan.Pull))
	for _, id := range plan.Pull {
		inPull[id] = true
	}

	runErr := r.executeSteps(ctx, resp, doc, inExecute, inPull)

	// A failed run still emits whatever document state it reached.
	if werr := r.writer.Write(ctx, doc); werr != nil {
		werr = fmt.Errorf("failed to persist result document: %w", werr)
		if runErr == nil {
			runErr = werr
		}
		r.logger.Printf("ERROR %v", werr)
	}

	resp.EndTime = time.Now()
	resp.Duration = resp.EndTime.Sub(resp.StartTime)

	if runErr != nil {
		resp.Status = dto.RunStatusFailed
		resp.Error = runErr.Error()
		return resp, runErr
	}

	resp.Status = dto.RunStatusCompleted
	for _, rec := range resp.Steps {
		if rec.Requested && rec.Status != dto.StepStatusSucceeded {
			resp.Status = dto.RunStatusPartial
			break
		}
	}

	// A from-scratch invocation that fully succeeded no longer needs its
	// checkpoints. Partial invocations never clear steps outside their own
	// requested set, so they never clear at all.
	if req.Mode == dto.ModeAll && resp.Status == dto.RunStatusCompleted {
		if err := r.store.ClearAll(ctx); err != nil {
			r.logger.Printf("WARN could not clear checkpoints: %v", err)
		}
	}

	return resp, nil
}

// executeSteps walks the union of the execute and pull sets in ascending
// catalogue order. Returns an error only for fatal conditions.
func (r *Runner) executeSteps(ctx context.Context, resp *dto.RunResponse, doc document.Document, inExecute, inPull map[int]bool) error {
	for id := 0; id < r.catalogue.Len(); id++ {
		if !inExecute[id] && !inPull[id] {
			continue
		}
		def, _ := r.catalogue.ByID(id)

		rec := dto.StepResult{
			ID:        def.ID,
			Name:      def.Name,
			Requested: inExecute[id],
			Status:    dto.StepStatusResolving,
			StartTime: time.Now(),
		}

		var fatal error
		if inExecute[id] {
			fatal = r.executeStep(ctx, def, doc, &rec)
		} else {
			fatal = r.pullStep(ctx, def, doc, &rec)
		}

		rec.Duration = time.Since(rec.StartTime)
		resp.Steps = append(resp.Steps, rec)
		if fatal != nil {
			return fatal
		}
	}
	return nil
}

// executeStep runs a requested step's compute, applying the failure policy.
func (r *Runner) executeStep(ctx context.Context, def *step.Definition, doc document.Document, rec *dto.StepResult) error {
	// A failed dependency cascades: this step is marked failed without ever
	// invoking its compute.
	for _, dep := range def.DependsOn {
		depDef, _ := r.catalogue.ByID(dep)
		if doc.IsFailed(depDef.Name) {
			reason := fmt.Sprintf("dependency %s failed: %s", depDef.Name, doc.FailureReason(depDef.Name))
			doc.MarkFailed(def.Name, reason)
			rec.Status = dto.StepStatusFailedDependent
			rec.Error = reason
			metrics.IncStepsFailed()
			r.logger.Printf("step %d (%s) skipped: %s", def.ID, def.Name, reason)
			return nil
		}
	}

	rec.Status = dto.StepStatusExecuting
	r.logger.Printf("step %d (%s) executing", def.ID, def.Name)

	value, err := def.Compute(ctx, doc, r.caps)
	switch {
	case err == nil:
		doc.Merge(def.Name, value)
		if serr := r.saveCheckpoint(ctx, def, value); serr != nil {
			// Silently losing a computed result is worse than failing loudly.
			rec.Status = dto.StepStatusFailedFatal
			rec.Error = serr.Error()
			return serr
		}
		rec.Status = dto.StepStatusSucceeded
		metrics.IncStepsExecuted()
		return nil

	case inference.IsPermanent(err):
		doc.MarkFailed(def.Name, err.Error())
		rec.Status = dto.StepStatusFailedPermanent
		rec.Error = err.Error()
		metrics.IncStepsFailed()
		r.logger.Printf("step %d (%s) failed permanently: %v", def.ID, def.Name, err)
		return nil

	default:
		// Transient failures have already been retried to exhaustion inside
		// the generators; whatever reaches here aborts the run.
		rec.Status = dto.StepStatusFailedFatal
		rec.Error = err.Error()
		return fmt.Errorf("step %d (%s): %w", def.ID, def.Name, err)
	}
}

// pullStep sources a dependency-only step's value: current document first,
// then its checkpoint. Anything else is a fatal unmet dependency.
func (r *Runner) pullStep(ctx context.Context, def *step.Definition, doc document.Document, rec *dto.StepResult) error {
	if doc.Usable(def.Name) {
		rec.Status = dto.StepStatusReused
		return nil
	}

	cp, err := r.store.Load(ctx, def.Name)
	if err != nil {
		rec.Status = dto.StepStatusFailedFatal
		rec.Error = err.Error()
		if errors.Is(err, checkpoint.ErrCheckpointNotFound) {
			return fmt.Errorf("dependency step %d (%s) has no prior result: %w", def.ID, def.Name, err)
		}
		return fmt.Errorf("dependency step %d (%s): %w", def.ID, def.Name, err)
	}

	doc.Merge(def.Name, cp.Value)
	rec.Status = dto.StepStatusReused
	metrics.IncStepsReused()
	r.logger.Printf("step %d (%s) reused from checkpoint", def.ID, def.Name)
	return nil
}

func (r *Runner) saveCheckpoint(ctx context.Context, def *step.Definition, value interface{}) error {
	cp := &checkpoint.Checkpoint{
		StepID:    def.ID,
		StepName:  def.Name,
		Value:     value,
		Timestamp: time.Now(),
		Version:   checkpoint.CurrentVersion,
	}
	if err := r.store.Save(ctx, cp); err != nil {
		return fmt.Errorf("failed to checkpoint step %d (%s): %w", def.ID, def.Name, err)
	}
	metrics.IncCheckpointSaves()
	return nil
}
