package dedup

import (
	"sync"
	"testing"

	"github.com/google/uuid"
)

func id(b byte) uuid.UUID {
	var u uuid.UUID
	for i := range u {
		u[i] = b
	}
	return u
}

func TestSeen(t *testing.T) {
	s := New(8)

	if s.Seen(id(1)) {
		t.Error("fresh ID reported seen")
	}
	if !s.Seen(id(1)) {
		t.Error("recorded ID not reported seen")
	}
	if s.Seen(id(2)) {
		t.Error("distinct ID reported seen")
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
}

func TestSeenIgnoresNilID(t *testing.T) {
	s := New(8)

	if s.Seen(uuid.Nil) || s.Seen(uuid.Nil) {
		t.Error("nil UUID reported seen")
	}
	if s.Len() != 0 {
		t.Errorf("nil UUID was recorded: Len = %d", s.Len())
	}
}

func TestSeenEvictsOldest(t *testing.T) {
	s := New(3)

	for b := byte(1); b <= 4; b++ {
		if s.Seen(id(b)) {
			t.Fatalf("fresh ID %d reported seen", b)
		}
	}
	// Window is now {4, 2, 3}: inserting 4 evicted 1.
	if s.Seen(id(1)) {
		t.Error("evicted ID still reported seen")
	}
	if !s.Seen(id(3)) {
		t.Error("retained ID not reported seen")
	}
	if s.Len() != 3 {
		t.Errorf("Len = %d, want capacity 3", s.Len())
	}
}

func TestNewCapacityFallback(t *testing.T) {
	s := New(0)
	for b := byte(1); b <= 100; b++ {
		s.Seen(id(b))
	}
	if s.Len() != 100 {
		t.Errorf("default capacity evicted early: Len = %d", s.Len())
	}
}

func TestSeenConcurrent(t *testing.T) {
	s := New(64)
	target := id(7)

	var wg sync.WaitGroup
	var mu sync.Mutex
	firsts := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !s.Seen(target) {
				mu.Lock()
				firsts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if firsts != 1 {
		t.Errorf("%d goroutines saw the ID as fresh, want exactly 1", firsts)
	}
}
