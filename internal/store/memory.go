package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"eventplanner/internal/model"
)

// MemoryStore keeps all events in process memory behind a single lock.
// Get and List hand out deep copies, so the reminder scheduler can walk a
// snapshot while request handlers keep mutating the live records.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string]*model.Event
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[string]*model.Event)}
}

// Create records a new event. Reusing an existing ID is a caller bug and
// is rejected outright.
func (s *MemoryStore) Create(ctx context.Context, event *model.Event) error {
	if err := validate(event); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.events[event.ID]; exists {
		return fmt.Errorf("event %s already exists", event.ID)
	}
	s.events[event.ID] = event.Clone()
	return nil
}

// Get returns a snapshot of one event.
func (s *MemoryStore) Get(ctx context.Context, id string) (*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	event, ok := s.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return event.Clone(), nil
}

// List returns snapshots of all events, sorted by creation time and then
// ID so the order is stable across calls.
func (s *MemoryStore) List(ctx context.Context) ([]*model.Event, error) {
	s.mu.RLock()
	events := make([]*model.Event, 0, len(s.events))
	for _, event := range s.events {
		events = append(events, event.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(events, func(i, j int) bool {
		if !events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].CreatedAt.Before(events[j].CreatedAt)
		}
		return events[i].ID < events[j].ID
	})
	return events, nil
}

// UpsertRSVP records a guest's answer under the write lock, so two upserts
// for the same event serialize and readers never observe a partial write.
func (s *MemoryStore) UpsertRSVP(ctx context.Context, eventID, contact string, response model.Response, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[eventID]
	if !ok {
		return ErrNotFound
	}
	if event.RSVPs == nil {
		event.RSVPs = make(map[string]model.RSVP)
	}
	event.RSVPs[contact] = model.RSVP{Response: response, RespondedAt: at}
	return nil
}
