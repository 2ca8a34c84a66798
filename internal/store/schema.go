package store

import (
	"context"
	"fmt"
)

// The in-memory antecedent history stays capped; the antecedents table is
// the uncapped long log.
const schema = `
CREATE TABLE IF NOT EXISTS relationships (
	pair_key  text PRIMARY KEY,
	entity_a  uuid NOT NULL,
	entity_b  uuid NOT NULL,
	snapshot  jsonb NOT NULL,
	version   bigint NOT NULL,
	saved_at  timestamptz NOT NULL
);

CREATE TABLE IF NOT EXISTS antecedents (
	id              bigserial PRIMARY KEY,
	pair_key        text NOT NULL,
	trustor         uuid NOT NULL,
	ts              timestamptz NOT NULL,
	antecedent_type text NOT NULL,
	direction       text NOT NULL,
	magnitude       float8 NOT NULL,
	context         text NOT NULL DEFAULT '',
	life_domain     text,
	event_id        uuid
);

CREATE INDEX IF NOT EXISTS antecedents_pair_ts_idx ON antecedents (pair_key, ts);

CREATE TABLE IF NOT EXISTS trust_decisions (
	id         bigserial PRIMARY KEY,
	pair_key   text NOT NULL,
	trustor    uuid NOT NULL,
	stakes     text NOT NULL,
	task       float8 NOT NULL,
	support    float8 NOT NULL,
	disclosure float8 NOT NULL,
	certainty  float8 NOT NULL,
	confidence float8 NOT NULL,
	decided_at timestamptz NOT NULL DEFAULT now()
);
`

// EnsureSchema creates the service's tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
