// Package fs provides the default checkpoint store: one file per step under a
// dedicated cache directory.
package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Muhanzhang10/service-call-recording-analysis/internal/core/checkpoint"
	"github.com/Muhanzhang10/service-call-recording-analysis/pkg/serialization"
)

const fileSuffix = ".ckpt"

// Store implements checkpoint.Store on the local filesystem. Writes go
// through a temp file followed by rename, so readers never observe a
// half-written checkpoint. Single-writer access per cache directory is
// assumed; concurrent runs must use separate directories.
type Store struct {
	dir        string
	serializer *serialization.Serializer
}

// NewStore creates the cache directory if needed and returns a store over it.
func NewStore(dir string, serializer *serialization.Serializer) (*Store, error) {
	if serializer == nil {
		serializer = serialization.DefaultSerializer()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}
	return &Store{dir: dir, serializer: serializer}, nil
}

// Save persists a checkpoint atomically, overwriting any prior value.
func (s *Store) Save(_ context.Context, cp *checkpoint.Checkpoint) error {
	if err := cp.Validate(); err != nil {
		return err
	}

	data, err := s.serializer.Serialize(cp)
	if err != nil {
		return fmt.Errorf("failed to serialize checkpoint: %w", err)
	}

	target := s.path(cp.StepName)
	tmp, err := os.CreateTemp(s.dir, cp.StepName+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp checkpoint: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close checkpoint: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to publish checkpoint: %w", err)
	}
	return nil
}

// Load retrieves a checkpoint by step name.
func (s *Store) Load(_ context.Context, stepName string) (*checkpoint.Checkpoint, error) {
	if stepName == "" {
		return nil, checkpoint.ErrInvalidStepName
	}

	data, err := os.ReadFile(s.path(stepName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, checkpoint.ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	var cp checkpoint.Checkpoint
	if err := s.serializer.Deserialize(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to deserialize checkpoint: %w", err)
	}
	return &cp, nil
}

// List returns the step names with a persisted checkpoint.
func (s *Store) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileSuffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), fileSuffix))
	}
	return names, nil
}

// ClearAll removes every checkpoint file in the cache directory.
func (s *Store) ClearAll(ctx context.Context) error {
	names, err := s.List(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := os.Remove(s.path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove checkpoint %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) path(stepName string) string {
	return filepath.Join(s.dir, stepName+fileSuffix)
}
