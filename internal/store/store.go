// Package store implements persistence for events and their RSVPs: an
// in-memory store for single-process deployments and a PostgreSQL store
// behind the same interface.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"eventplanner/internal/model"
)

// ErrNotFound is returned when a requested event does not exist.
var ErrNotFound = errors.New("event not found")

// ErrEmptyTitle rejects events created without a title.
var ErrEmptyTitle = errors.New("event title is required")

// ErrZeroStart rejects events without a start time.
var ErrZeroStart = errors.New("event start time is required")

// Store is the logical persistence contract: writes are visible to reads
// issued after the write returns, and mutations of one event's RSVP map
// never interleave — a concurrent reader sees either the pre- or the
// post-state of an upsert, never a torn one.
type Store interface {
	// Create records a fully-populated event under its freshly minted ID.
	Create(ctx context.Context, event *model.Event) error

	// Get returns a snapshot of one event, or ErrNotFound.
	Get(ctx context.Context, id string) (*model.Event, error)

	// List returns snapshots of all events in a stable order.
	List(ctx context.Context) ([]*model.Event, error)

	// UpsertRSVP records a guest's answer, overwriting any earlier answer
	// from the same contact. Unknown event IDs yield ErrNotFound.
	UpsertRSVP(ctx context.Context, eventID, contact string, response model.Response, at time.Time) error
}

func validate(event *model.Event) error {
	if strings.TrimSpace(event.Title) == "" {
		return ErrEmptyTitle
	}
	if event.StartsAt.IsZero() {
		return ErrZeroStart
	}
	return nil
}
