// Package sqlite provides a checkpoint store backed by a local SQLite file,
// for deployments that prefer one database over a directory of cache files.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Muhanzhang10/service-call-recording-analysis/internal/core/checkpoint"
	"github.com/Muhanzhang10/service-call-recording-analysis/pkg/serialization"
)

// Store implements checkpoint.Store for SQLite.
type Store struct {
	db         *sql.DB
	serializer *serialization.Serializer
	tableName  string
}

// NewStore creates a SQLite checkpoint store over an open database handle.
func NewStore(db *sql.DB, serializer *serialization.Serializer) *Store {
	if serializer == nil {
		serializer = serialization.DefaultSerializer()
	}
	return &Store{
		db:         db,
		serializer: serializer,
		tableName:  "step_checkpoints",
	}
}

// Open opens (creating if needed) a SQLite database at path and prepares the
// checkpoint table.
func Open(ctx context.Context, path string, serializer *serialization.Serializer) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	s := NewStore(db, serializer)
	if err := s.CreateTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// CreateTables creates the checkpoint table when it does not exist yet.
func (s *Store) CreateTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			step_name TEXT PRIMARY KEY,
			step_id   INTEGER NOT NULL,
			value     BLOB NOT NULL,
			timestamp INTEGER NOT NULL,
			version   TEXT NOT NULL
		);
	`, s.tableName)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create checkpoint table: %w", err)
	}
	return nil
}

// Save stores a checkpoint, overwriting any prior row for the step. The
// single-statement upsert keeps the write atomic for readers.
func (s *Store) Save(ctx context.Context, cp *checkpoint.Checkpoint) error {
	if err := cp.Validate(); err != nil {
		return err
	}

	data, err := s.serializer.Serialize(cp.Value)
	if err != nil {
		return fmt.Errorf("failed to serialize checkpoint value: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (step_name, step_id, value, timestamp, version)
		VALUES (?, ?, ?, ?, ?)
	`, s.tableName)

	_, err = s.db.ExecContext(ctx, query,
		cp.StepName, cp.StepID, data, cp.Timestamp.Unix(), cp.Version)
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// Load retrieves a checkpoint by step name.
func (s *Store) Load(ctx context.Context, stepName string) (*checkpoint.Checkpoint, error) {
	if stepName == "" {
		return nil, checkpoint.ErrInvalidStepName
	}

	query := fmt.Sprintf(`
		SELECT step_name, step_id, value, timestamp, version
		FROM %s
		WHERE step_name = ?
	`, s.tableName)

	var cp checkpoint.Checkpoint
	var data []byte
	var ts int64

	err := s.db.QueryRowContext(ctx, query, stepName).Scan(
		&cp.StepName, &cp.StepID, &data, &ts, &cp.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, checkpoint.ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	cp.Timestamp = time.Unix(ts, 0)
	if err := s.serializer.Deserialize(data, &cp.Value); err != nil {
		return nil, fmt.Errorf("failed to deserialize checkpoint value: %w", err)
	}
	return &cp, nil
}

// List returns the step names with a persisted checkpoint, in step order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT step_name FROM %s ORDER BY step_id", s.tableName)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ClearAll removes every checkpoint row.
func (s *Store) ClearAll(ctx context.Context) error {
	query := fmt.Sprintf("DELETE FROM %s", s.tableName)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to clear checkpoints: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
