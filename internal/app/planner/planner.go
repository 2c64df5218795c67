// Package planner translates a run request into a concrete ordered execution
// plan and validates dependency satisfiability up front.
package planner

import (
	"context"
	"fmt"
	"sort"

	"github.com/Muhanzhang10/service-call-recording-analysis/internal/app/dto"
	"github.com/Muhanzhang10/service-call-recording-analysis/internal/core/step"
)

// Resolver answers whether a step's output is already available outside the
// planned set — from a prior result document or a persisted checkpoint.
type Resolver interface {
	Resolvable(ctx context.Context, def *step.Definition) bool
}

// UnmetDependencyError names the step whose output cannot be sourced. It is
// the caller's responsibility to widen the request.
type UnmetDependencyError struct {
	StepID      int
	StepName    string
	MissingID   int
	MissingName string
}

func (e *UnmetDependencyError) Error() string {
	return fmt.Sprintf("step %d (%s) requires step %d (%s), which is neither planned nor resolvable from a prior result",
		e.StepID, e.StepName, e.MissingID, e.MissingName)
}

// Plan is the ordered outcome of planning: the steps to execute and the
// dependency-only steps whose values must be pulled from prior results.
type Plan struct {
	// Execute holds the requested step ids in ascending catalogue order.
	Execute []int
	// Pull holds the dependency-only step ids, ascending, disjoint from
	// Execute. Their values are sourced from document or checkpoint.
	Pull []int
}

// Build resolves the requested id set against the catalogue, verifies every
// dependency is either planned or resolvable, and returns the plan in
// catalogue order. Order is never a free choice of the caller.
func Build(ctx context.Context, cat *step.Catalogue, req *dto.RunRequest, resolver Resolver) (*Plan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	requested, err := resolveRequest(cat, req)
	if err != nil {
		return nil, err
	}

	inPlan := make(map[int]bool, len(requested))
	for _, id := range requested {
		inPlan[id] = true
	}

	// Walk the transitive dependency closure of the requested set. Every
	// step outside the plan must be resolvable from a prior result.
	pullSet := make(map[int]bool)
	queue := append([]int(nil), requested...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		def, _ := cat.ByID(id)
		for _, dep := range def.DependsOn {
			if inPlan[dep] || pullSet[dep] {
				continue
			}
			depDef, _ := cat.ByID(dep)
			if !resolver.Resolvable(ctx, depDef) {
				return nil, &UnmetDependencyError{
					StepID:      def.ID,
					StepName:    def.Name,
					MissingID:   depDef.ID,
					MissingName: depDef.Name,
				}
			}
			pullSet[dep] = true
			queue = append(queue, dep)
		}
	}

	pull := make([]int, 0, len(pullSet))
	for id := range pullSet {
		pull = append(pull, id)
	}
	sort.Ints(pull)

	return &Plan{Execute: requested, Pull: pull}, nil
}

// resolveRequest maps the request onto concrete catalogue ids, ascending.
func resolveRequest(cat *step.Catalogue, req *dto.RunRequest) ([]int, error) {
	switch req.Mode {
	case dto.ModeAll:
		return cat.IDs(), nil

	case dto.ModeExplicit:
		seen := make(map[int]bool, len(req.Steps))
		ids := make([]int, 0, len(req.Steps))
		for _, id := range req.Steps {
			if _, ok := cat.ByID(id); !ok {
				return nil, fmt.Errorf("requested step %d: %w", id, step.ErrUnknownStep)
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
		sort.Ints(ids)
		return ids, nil

	case dto.ModeFrom:
		if _, ok := cat.ByID(req.From); !ok {
			return nil, fmt.Errorf("from-step %d: %w", req.From, step.ErrUnknownStep)
		}
		var ids []int
		for id := req.From; id < cat.Len(); id++ {
			ids = append(ids, id)
		}
		return ids, nil

	default:
		return nil, dto.ErrInvalidMode
	}
}
