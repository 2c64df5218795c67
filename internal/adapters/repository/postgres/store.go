// Package postgres provides a checkpoint store backed by PostgreSQL, for
// shared deployments where multiple analysis hosts read the same cache.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Muhanzhang10/service-call-recording-analysis/internal/core/checkpoint"
	"github.com/Muhanzhang10/service-call-recording-analysis/pkg/serialization"
)

// Store implements checkpoint.Store for PostgreSQL.
type Store struct {
	pool       *pgxpool.Pool
	serializer *serialization.Serializer
	tableName  string
}

// NewStore creates a PostgreSQL checkpoint store over an existing pool.
func NewStore(pool *pgxpool.Pool, serializer *serialization.Serializer) *Store {
	if serializer == nil {
		serializer = serialization.DefaultSerializer()
	}
	return &Store{
		pool:       pool,
		serializer: serializer,
		tableName:  "step_checkpoints",
	}
}

// Connect opens a pool for the given DSN and prepares the checkpoint table.
func Connect(ctx context.Context, dsn string, serializer *serialization.Serializer) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	s := NewStore(pool, serializer)
	if err := s.CreateTables(ctx); err != nil {
		pool.Close()
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
			value     BYTEA NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL,
			version   TEXT NOT NULL
		);
	`, s.tableName)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create checkpoint table: %w", err)
	}
	return nil
}

// Save stores a checkpoint, overwriting any prior row for the step.
func (s *Store) Save(ctx context.Context, cp *checkpoint.Checkpoint) error {
	if err := cp.Validate(); err != nil {
		return err
	}

	data, err := s.serializer.Serialize(cp.Value)
	if err != nil {
		return fmt.Errorf("failed to serialize checkpoint value: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (step_name, step_id, value, timestamp, version)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (step_name) DO UPDATE SET
			step_id   = EXCLUDED.step_id,
			value     = EXCLUDED.value,
			timestamp = EXCLUDED.timestamp,
			version   = EXCLUDED.version
	`, s.tableName)

	_, err = s.pool.Exec(ctx, query,
		cp.StepName, cp.StepID, data, cp.Timestamp, cp.Version)
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
		WHERE step_name = $1
	`, s.tableName)

	var cp checkpoint.Checkpoint
	var data []byte

	err := s.pool.QueryRow(ctx, query, stepName).Scan(
		&cp.StepName, &cp.StepID, &data, &cp.Timestamp, &cp.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, checkpoint.ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	if err := s.serializer.Deserialize(data, &cp.Value); err != nil {
		return nil, fmt.Errorf("failed to deserialize checkpoint value: %w", err)
	}
	return &cp, nil
}

// List returns the step names with a persisted checkpoint, in step order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT step_name FROM %s ORDER BY step_id", s.tableName)

	rows, err := s.pool.Query(ctx, query)
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
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to clear checkpoints: %w", err)
	}
	return nil
}

// Close closes the underlying pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
