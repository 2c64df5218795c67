package step

import "fmt"

// Catalogue is the fixed, totally ordered list of analysis steps. Order
// encodes causality: a step may only depend on steps with smaller ids.
// PRINCIPLES:
// - SRP: catalogue structure and validation only, no execution
// - KISS: slice indexed by id, no general graph machinery
type Catalogue struct {
	steps  []Definition
	byName map[string]int
}

// NewCatalogue validates the definitions and builds the catalogue. A forward
// or self reference, a gap in the id sequence, or a duplicate name is a fatal
// configuration error.
func NewCatalogue(defs []Definition) (*Catalogue, error) {
	if len(defs) == 0 {
		return nil, ErrEmptyCatalogue
	}

	byName := make(map[string]int, len(defs))
	for i, def := range defs {
		if def.ID != i {
			return nil, fmt.Errorf("step %q at position %d has id %d: %w", def.Name, i, def.ID, ErrNonSequentialID)
		}
		if def.Name == "" {
			return nil, fmt.Errorf("step %d: %w", def.ID, ErrEmptyStepName)
		}
		if _, exists := byName[def.Name]; exists {
			return nil, fmt.Errorf("step %d (%s): %w", def.ID, def.Name, ErrDuplicateStepName)
		}
		if def.Compute == nil {
			return nil, fmt.Errorf("step %d (%s): %w", def.ID, def.Name, ErrNilCompute)
		}
		for _, dep := range def.DependsOn {
			if dep == def.ID {
				return nil, fmt.Errorf("step %d (%s): %w", def.ID, def.Name, ErrSelfDependency)
			}
			if dep > def.ID {
				return nil, fmt.Errorf("step %d (%s) depends on %d: %w", def.ID, def.Name, dep, ErrForwardDependency)
			}
			if dep < 0 {
				return nil, fmt.Errorf("step %d (%s) depends on %d: %w", def.ID, def.Name, dep, ErrUnknownStep)
			}
		}
		byName[def.Name] = def.ID
	}

	return &Catalogue{steps: defs, byName: byName}, nil
}

// Len returns the number of steps.
func (c *Catalogue) Len() int { return len(c.steps) }

// Steps returns the definitions in catalogue order.
func (c *Catalogue) Steps() []Definition { return c.steps }

// ByID returns the definition with the given id.
func (c *Catalogue) ByID(id int) (*Definition, bool) {
	if id < 0 || id >= len(c.steps) {
		return nil, false
	}
	return &c.steps[id], true
}

// ByName returns the definition with the given name.
func (c *Catalogue) ByName(name string) (*Definition, bool) {
	id, ok := c.byName[name]
	if !ok {
		return nil, false
	}
	return &c.steps[id], true
}

// IDs returns every step id in ascending order.
func (c *Catalogue) IDs() []int {
	ids := make([]int, len(c.steps))
	for i := range c.steps {
		ids[i] = i
	}
	return ids
}
