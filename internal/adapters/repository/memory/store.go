// Package memory provides an in-memory checkpoint store used by tests and
// single-shot invocations that opt out of persistence.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Muhanzhang10/service-call-recording-analysis/internal/core/checkpoint"
	"github.com/Muhanzhang10/service-call-recording-analysis/pkg/serialization"
)

// Store implements checkpoint.Store with a mutex-guarded map. Values are run
// through the serializer on save and load so the round-trip behaves exactly
// like a durable store would.
type Store struct {
	mu         sync.RWMutex
	entries    map[string][]byte
	serializer *serialization.Serializer
}

// NewStore creates an empty in-memory store.
func NewStore(serializer *serialization.Serializer) *Store {
	if serializer == nil {
		serializer = serialization.DefaultSerializer()
	}
	return &Store{
		entries:    make(map[string][]byte),
		serializer: serializer,
	}
}

// Save stores a checkpoint, overwriting any prior value for the step.
func (s *Store) Save(_ context.Context, cp *checkpoint.Checkpoint) error {
	if err := cp.Validate(); err != nil {
		return err
	}

	data, err := s.serializer.Serialize(cp)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[cp.StepName] = data
	return nil
}

// Load retrieves a checkpoint by step name.
func (s *Store) Load(_ context.Context, stepName string) (*checkpoint.Checkpoint, error) {
	if stepName == "" {
		return nil, checkpoint.ErrInvalidStepName
	}

	s.mu.RLock()
	data, ok := s.entries[stepName]
	s.mu.RUnlock()
	if !ok {
		return nil, checkpoint.ErrCheckpointNotFound
	}

	var cp checkpoint.Checkpoint
	if err := s.serializer.Deserialize(data, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

// List returns the stored step names in sorted order.
func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ClearAll removes every stored checkpoint.
func (s *Store) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string][]byte)
	return nil
}
