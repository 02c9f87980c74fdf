// memory based implementation for testing purposes
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/AyushSGithub24/Custom-Event-Calendar/internal/storage"
)

// Store implements storage.Store interface using in-memory maps
type Store struct {
	mu     sync.RWMutex
	events map[string]*storage.Event // key: ownerID/eventID
}

// New creates a new in-memory store
func New() *Store {
	return &Store{
		events: make(map[string]*storage.Event),
	}
}

func (s *Store) eventKey(ownerID, eventID string) string {
	return fmt.Sprintf("%s/%s", ownerID, eventID)
}

func (s *Store) FindByOwner(_ context.Context, ownerID string) ([]*storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []*storage.Event
	for _, ev := range s.events {
		if ev.OwnerID == ownerID {
			events = append(events, ev.Clone())
		}
	}

	// Map iteration order is random; keep listings stable.
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Start.Equal(events[j].Start) {
			return events[i].Start.Before(events[j].Start)
		}
		return events[i].ID < events[j].ID
	})

	return events, nil
}

func (s *Store) FindByID(_ context.Context, ownerID, id string) (*storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.events[s.eventKey(ownerID, id)]
	if !ok {
		return nil, &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "event not found",
		}
	}

	return ev.Clone(), nil
}

func (s *Store) Insert(_ context.Context, event *storage.Event) (*storage.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.eventKey(event.OwnerID, event.ID)
	if _, exists := s.events[key]; exists {
		return nil, &storage.Error{
			Type:    storage.ErrAlreadyExists,
			Message: "event already exists",
		}
	}

	now := time.Now().UTC()
	ev := event.Clone()
	ev.Created = now
	ev.Modified = now
	s.events[key] = ev

	return ev.Clone(), nil
}

func (s *Store) Replace(_ context.Context, id string, event *storage.Event) (*storage.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.eventKey(event.OwnerID, id)
	prev, exists := s.events[key]
	if !exists {
		return nil, &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "event not found",
		}
	}

	ev := event.Clone()
	ev.ID = id
	ev.Created = prev.Created
	ev.Modified = time.Now().UTC()
	s.events[key] = ev

	return ev.Clone(), nil
}

func (s *Store) Remove(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.eventKey(ownerID, id)
	if _, exists := s.events[key]; !exists {
		return &storage.Error{
			Type:    storage.ErrNotFound,
			Message: "event not found",
		}
	}

	delete(s.events, key)
	return nil
}
