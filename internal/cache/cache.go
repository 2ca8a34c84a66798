// Package cache holds short-lived decision results in Redis so that hot
// pairs are not recomputed on every API call. Entries are keyed by the
// relationship version, so any mutation or decay tick naturally invalidates
// them. The cache is optional; callers hold a nil *Cache when Redis is not
// configured.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MikeSquared-Agency/dyad/internal/relationship"
	"github.com/MikeSquared-Agency/dyad/internal/trust"
)

// DecisionTTL bounds staleness for cached decisions. Versioned keys already
// invalidate on mutation; the TTL just keeps dead versions from lingering.
const DecisionTTL = 60 * time.Second

// Cache is a thin wrapper over a Redis client.
type Cache struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, url string) (*Cache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Cache{client: client}, nil
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Ping reports whether Redis is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// DecisionKey builds the cache key for one evaluated decision. Floats keep
// their exact shortest form so near-equal inputs never share an entry.
func DecisionKey(pairKey string, version uint64, trustor uuid.UUID, stakes trust.Stakes, propensity, contextMult float64) string {
	return fmt.Sprintf("dyad:decision:%s:%d:%s:%s:%g:%g", pairKey, version, trustor, stakes, propensity, contextMult)
}

// GetDecision looks up a cached decision. A miss returns ok false with a
// nil error; real transport failures come back as errors so the caller can
// log and fall through to computing.
func (c *Cache) GetDecision(ctx context.Context, key string) (relationship.TrustDecision, bool, error) {
	var d relationship.TrustDecision
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return d, false, nil
	}
	if err != nil {
		return d, false, fmt.Errorf("cache get: %w", err)
	}
	if err := json.Unmarshal(raw, &d); err != nil {
		return d, false, fmt.Errorf("decode cached decision: %w", err)
	}
	return d, true, nil
}

// PutDecision stores a decision under the given key for DecisionTTL.
func (c *Cache) PutDecision(ctx context.Context, key string, d relationship.TrustDecision) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode decision: %w", err)
	}
	if err := c.client.Set(ctx, key, raw, DecisionTTL).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
