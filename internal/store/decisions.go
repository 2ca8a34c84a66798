package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/dyad/internal/relationship"
	"github.com/MikeSquared-Agency/dyad/internal/trust"
)

// InsertDecision records one evaluated trust decision for audit queries.
func (s *Store) InsertDecision(ctx context.Context, pairKey string, trustor uuid.UUID, stakes trust.Stakes, d relationship.TrustDecision) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO trust_decisions (pair_key, trustor, stakes, task, support, disclosure, certainty, confidence)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		pairKey, trustor, string(stakes), d.TaskWillingness, d.SupportWillingness, d.DisclosureWillingness, d.DecisionCertainty, d.TrusteeConfidence,
	)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}
