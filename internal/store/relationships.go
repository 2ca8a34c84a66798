package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SnapshotRow is one persisted relationship.
type SnapshotRow struct {
	PairKey  string
	EntityA  uuid.UUID
	EntityB  uuid.UUID
	Snapshot []byte
	Version  uint64
}

// SaveSnapshot upserts the current serialized relationship.
func (s *Store) SaveSnapshot(ctx context.Context, row SnapshotRow) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO relationships (pair_key, entity_a, entity_b, snapshot, version, saved_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (pair_key)
		DO UPDATE SET
			snapshot = $4,
			version = $5,
			saved_at = now()`,
		row.PairKey, row.EntityA, row.EntityB, row.Snapshot, row.Version,
	)
	if err != nil {
		return fmt.Errorf("upsert relationship: %w", err)
	}
	return nil
}

// LoadSnapshots streams every persisted relationship to fn, oldest pair key
// first. Used for registry hydration at startup.
func (s *Store) LoadSnapshots(ctx context.Context, fn func(snapshot []byte, savedAt time.Time) error) (int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT snapshot, saved_at FROM relationships ORDER BY pair_key`)
	if err != nil {
		return 0, fmt.Errorf("query relationships: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var snapshot []byte
		var savedAt time.Time
		if err := rows.Scan(&snapshot, &savedAt); err != nil {
			return n, fmt.Errorf("scan relationship row: %w", err)
		}
		if err := fn(snapshot, savedAt); err != nil {
			return n, err
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return n, fmt.Errorf("iterate relationship rows: %w", err)
	}
	return n, nil
}
