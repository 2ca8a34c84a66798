// Package dedup remembers recently seen event IDs so at-least-once bus
// delivery does not double-apply an event.
package dedup

import (
	"sync"

	"github.com/google/uuid"
)

// DefaultCapacity bounds the remembered-ID window.
const DefaultCapacity = 4096

// Set is a bounded FIFO set of event IDs. A full window evicts the oldest
// remembered ID, so a sufficiently old redelivery can slip through; the
// trade is bounded memory on an unbounded stream.
type Set struct {
	mu   sync.Mutex
	seen map[uuid.UUID]struct{}
	ring []uuid.UUID
	next int
}

// New returns a set remembering up to capacity IDs. Non-positive capacities
// fall back to DefaultCapacity.
func New(capacity int) *Set {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Set{
		seen: make(map[uuid.UUID]struct{}, capacity),
		ring: make([]uuid.UUID, capacity),
	}
}

// Seen reports whether id was already recorded, recording it otherwise. The
// zero UUID is never recorded and never reported seen.
func (s *Set) Seen(id uuid.UUID) bool {
	if id == uuid.Nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[id]; ok {
		return true
	}
	if old := s.ring[s.next]; old != uuid.Nil {
		delete(s.seen, old)
	}
	s.ring[s.next] = id
	s.next = (s.next + 1) % len(s.ring)
	s.seen[id] = struct{}{}
	return false
}

// Len returns the number of remembered IDs.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
