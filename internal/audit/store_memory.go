package audit

import (
	"context"
	"sync"
)

// MemoryStore is a mutex-guarded in-memory audit sink. It backs tests
// and the writer's retry buffer; production trails live in postgres.
type MemoryStore struct {
	mu     sync.Mutex
	events []Event
	byID   map[string]struct{}
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]struct{})}
}

// Append records the event. Duplicate ids are no-ops, matching the
// at-least-once delivery contract of the sink.
func (s *MemoryStore) Append(ctx context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.byID[ev.ID]; dup {
		return nil
	}
	s.byID[ev.ID] = struct{}{}
	s.events = append(s.events, ev)
	return nil
}

// Query returns matching events newest-first. Events are appended in
// creation order, so a reverse walk yields the ordering directly.
func (s *MemoryStore) Query(ctx context.Context, f Filter) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for i := len(s.events) - 1; i >= 0; i-- {
		if f.Matches(s.events[i]) {
			out = append(out, s.events[i])
		}
	}
	return out, nil
}

// Len reports how many events the store holds.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}
