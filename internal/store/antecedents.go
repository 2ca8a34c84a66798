package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/dyad/internal/trust"
)

// InsertAntecedents appends the audit rows produced by one event in a
// single transaction. A nil eventID (backfill, direct injection) stores
// NULL.
func (s *Store) InsertAntecedents(ctx context.Context, pairKey string, trustor, eventID uuid.UUID, list []trust.Antecedent) error {
	if len(list) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var evtArg any
	if eventID != uuid.Nil {
		evtArg = eventID
	}

	for _, a := range list {
		var domain any
		if a.LifeDomain != nil {
			domain = string(*a.LifeDomain)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO antecedents (pair_key, trustor, ts, antecedent_type, direction, magnitude, context, life_domain, event_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			pairKey, trustor, a.Timestamp, string(a.Type), string(a.Direction), a.Magnitude, a.Context, domain, evtArg,
		); err != nil {
			return fmt.Errorf("insert antecedent: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
