// Package registry owns the live relationship set. It serializes all
// mutation and inspection of a single relationship so that NATS handlers,
// the HTTP API, the decay ticker, and backfill can run concurrently.
package registry

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/dyad/internal/relationship"
)

// ErrNotFound is returned when a pair has no live relationship.
var ErrNotFound = errors.New("relationship not found")

// entry pairs one relationship with the lock and version that guard it. The
// version bumps on every mutation and decay tick; decision caches key off it
// so stale entries become unreachable.
type entry struct {
	mu      sync.Mutex
	rel     *relationship.Relationship
	version uint64
}

// Registry maps canonical pair keys to live relationships. The registry
// mutex guards the map itself; each entry carries its own lock so distinct
// pairs never contend.
type Registry struct {
	mu       sync.Mutex
	entries  map[string]*entry
	lastTick time.Time
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// GetOrCreate ensures a relationship exists for the pair and reports
// whether this call created it.
func (r *Registry) GetOrCreate(a, b uuid.UUID) (bool, error) {
	_, created, err := r.lookup(a, b, true)
	return created, err
}

// Mutate runs fn against the pair's relationship, creating it on first
// touch. The relationship is locked for the duration of fn. On success the
// entry version bumps and the new version is returned; if fn errors the
// version is unchanged.
func (r *Registry) Mutate(a, b uuid.UUID, fn func(*relationship.Relationship) error) (uint64, error) {
	e, _, err := r.lookup(a, b, true)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := fn(e.rel); err != nil {
		return e.version, err
	}
	e.version++
	return e.version, nil
}

// View runs fn against the pair's relationship under its lock without
// bumping the version, and returns the current version. Unknown pairs
// return ErrNotFound.
func (r *Registry) View(a, b uuid.UUID, fn func(*relationship.Relationship) error) (uint64, error) {
	e, _, err := r.lookup(a, b, false)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := fn(e.rel); err != nil {
		return e.version, err
	}
	return e.version, nil
}

// Each runs fn against every relationship in canonical pair order, locking
// each in turn.
func (r *Registry) Each(fn func(*relationship.Relationship)) {
	for _, e := range r.sorted() {
		e.mu.Lock()
		fn(e.rel)
		e.mu.Unlock()
	}
}

// Pairs returns every live pair key in sorted order.
func (r *Registry) Pairs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of live relationships.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Tick decays every relationship by the time elapsed since the previous
// tick and returns that elapsed duration. The first tick only arms the
// clock; non-monotonic calls are ignored. Both return zero.
func (r *Registry) Tick(now time.Time) time.Duration {
	r.mu.Lock()
	if r.lastTick.IsZero() {
		r.lastTick = now
		r.mu.Unlock()
		return 0
	}
	elapsed := now.Sub(r.lastTick)
	if elapsed <= 0 {
		r.mu.Unlock()
		return 0
	}
	r.lastTick = now
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.Unlock()

	for _, e := range entries {
		e.mu.Lock()
		e.rel.ApplyDecay(elapsed)
		e.version++
		e.mu.Unlock()
	}
	return elapsed
}

// Hydrate restores one persisted relationship and catch-up-decays it for
// the time since it was saved. A zero savedAt skips the catch-up. An
// existing live entry for the pair is replaced.
func (r *Registry) Hydrate(snapshot []byte, savedAt time.Time) error {
	rel, err := relationship.FromSnapshot(snapshot)
	if err != nil {
		return fmt.Errorf("hydrate relationship: %w", err)
	}
	if !savedAt.IsZero() {
		if gap := time.Since(savedAt); gap > 0 {
			rel.ApplyDecay(gap)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[rel.Key()] = &entry{rel: rel}
	return nil
}

// Match is one relationship ranked by dimension similarity.
type Match struct {
	Pair       string  `json:"pair"`
	Similarity float64 `json:"similarity"`
}

// Similar ranks every other relationship by cosine similarity of its
// dimension vector against the given pair's, most similar first. Ties break
// on pair key so the ordering is stable.
func (r *Registry) Similar(a, b uuid.UUID, limit int) ([]Match, error) {
	e, _, err := r.lookup(a, b, false)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	base := dimensionVector(e.rel)
	key := e.rel.Key()
	e.mu.Unlock()

	if limit <= 0 {
		limit = 5
	}

	matches := make([]Match, 0, r.Len())
	for _, o := range r.sorted() {
		o.mu.Lock()
		k := o.rel.Key()
		if k == key {
			o.mu.Unlock()
			continue
		}
		vec := dimensionVector(o.rel)
		o.mu.Unlock()
		matches = append(matches, Match{Pair: k, Similarity: cosineSimilarity(base, vec)})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity == matches[j].Similarity {
			return matches[i].Pair < matches[j].Pair
		}
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// lookup resolves the pair's entry, optionally creating it. The second
// return reports creation.
func (r *Registry) lookup(a, b uuid.UUID, create bool) (*entry, bool, error) {
	if a == b {
		return nil, false, relationship.ErrSelfRelationship
	}
	key := relationship.PairKey(a, b)

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[key]; ok {
		return e, false, nil
	}
	if !create {
		return nil, false, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	rel, err := relationship.New(a, b)
	if err != nil {
		return nil, false, err
	}
	e := &entry{rel: rel}
	r.entries[key] = e
	return e, true, nil
}

// sorted returns every entry in canonical pair order.
func (r *Registry) sorted() []*entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]*entry, len(keys))
	for i, k := range keys {
		entries[i] = r.entries[k]
	}
	return entries
}

// dimensionVector flattens a relationship's feeling dimensions into a fixed
// layout: the five shared dimensions, then both directional sets in
// canonical entity order.
func dimensionVector(rel *relationship.Relationship) []float64 {
	s := rel.Shared
	vec := make([]float64, 0, 21)
	vec = append(vec,
		s.Affinity.Effective(),
		s.Respect.Effective(),
		s.Tension.Effective(),
		s.Intimacy.Effective(),
		s.History.Effective(),
	)
	for _, p := range rel.Perspectives {
		d := p.Dimensions
		vec = append(vec,
			d.Warmth.Effective(),
			d.Resentment.Effective(),
			d.Dependence.Effective(),
			d.Attraction.Effective(),
			d.Attachment.Effective(),
			d.Jealousy.Effective(),
			d.Fear.Effective(),
			d.Obligation.Effective(),
		)
	}
	return vec
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
