package memory

import (
	"context"
	"slices"
	"sync"

	"evidentia/pkg/domain"
	audit "evidentia/pkg/platform/audit"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events map[domain.ProfileID][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[domain.ProfileID][]audit.Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[domain.ProfileID][]audit.Event)
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ProfileID] = append(s.events[event.ProfileID], event)
	return nil
}

// ListByProfile returns a profile's events in append order.
func (s *InMemoryStore) ListByProfile(_ context.Context, profileID domain.ProfileID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events[profileID]), nil
}

// ListByAction filters a profile's events to one action.
func (s *InMemoryStore) ListByAction(ctx context.Context, profileID domain.ProfileID, action audit.AuditEvent) ([]audit.Event, error) {
	all, err := s.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(e audit.Event) bool { return e.Action != string(action) }), nil
}
