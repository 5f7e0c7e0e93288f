// Package service implements the event-planning operations: create, list,
// RSVP and the read-only summaries, plus the best-effort invite and
// creator-notice messages around them.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"

	"eventplanner/internal/contact"
	"eventplanner/internal/model"
	"eventplanner/internal/notifier"
	"eventplanner/internal/store"
)

// ErrInvalidDatetime rejects event creation with an unparsable start time.
var ErrInvalidDatetime = errors.New("invalid datetime format")

const timeLayout = "2006-01-02 15:04"

// EventService orchestrates event operations over the store and the
// outbound notifier. The clock is injected so Upcoming/Past classification
// and RSVP timestamps are testable.
type EventService struct {
	store       store.Store
	notifier    notifier.Notifier
	now         func() time.Time
	ownerNumber string
	log         *slog.Logger
}

// NewEventService constructs an EventService. A nil clock means wall-clock
// time.
func NewEventService(st store.Store, n notifier.Notifier, now func() time.Time, ownerNumber string, log *slog.Logger) *EventService {
	if now == nil {
		now = time.Now
	}
	return &EventService{store: st, notifier: n, now: now, ownerNumber: ownerNumber, log: log}
}

// CreateEvent parses and validates the request, persists the event, and
// then sends one invite per attendee. Invites are best-effort: a send
// failure is logged and never rolls back the created event.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	startsAt, err := dateparse.ParseIn(strings.TrimSpace(req.Datetime), time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDatetime, req.Datetime)
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, store.ErrEmptyTitle
	}

	attendees := make([]string, 0, len(req.Attendees))
	for _, a := range req.Attendees {
		attendees = append(attendees, contact.Normalize(a))
	}
	event := &model.Event{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(req.Title),
		StartsAt:    startsAt,
		Location:    req.Location,
		Description: req.Description,
		Creator:     contact.Normalize(req.Creator),
		Attendees:   attendees,
		RSVPs:       make(map[string]model.RSVP),
		CreatedAt:   s.now(),
	}
	if err := s.store.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	for _, att := range event.Attendees {
		if _, err := s.notifier.Send(ctx, att, inviteBody(event)); err != nil {
			s.log.Error("invite dispatch failed", "event_id", event.ID, "to", att, "error", err)
		}
	}
	return event, nil
}

func inviteBody(event *model.Event) string {
	return fmt.Sprintf(
		"📅 Event: %s\n🗓 When: %s\n📍 Where: %s\n📝 %s\n\nReply with:\n/rsvp %s YES\n/rsvp %s NO\n/rsvp %s MAYBE",
		event.Title, event.StartsAt.Format(timeLayout), event.Location, event.Description,
		event.ID, event.ID, event.ID,
	)
}

// ListEvents renders one line per stored event, classified as Upcoming or
// Past against the clock at call time. The classification is computed, not
// stored.
func (s *EventService) ListEvents(ctx context.Context) (string, error) {
	events, err := s.store.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list events: %w", err)
	}
	if len(events) == 0 {
		return "No events found.", nil
	}
	now := s.now()
	lines := make([]string, 0, len(events))
	for _, event := range events {
		status := "Past"
		if event.StartsAt.After(now) {
			status = "Upcoming"
		}
		lines = append(lines, fmt.Sprintf("%s: %s at %s (%s)",
			event.ID, event.Title, event.StartsAt.Format(timeLayout), status))
	}
	return strings.Join(lines, "\n"), nil
}

// RecordRSVP validates and records a guest's answer, overwriting any
// earlier answer from the same contact, then notifies the event creator.
// The creator notice is fire-and-forget: a delivery problem must never
// fail the RSVP itself.
func (s *EventService) RecordRSVP(ctx context.Context, eventID, rawContact, rawResponse string) (string, error) {
	response, err := model.ParseResponse(rawResponse)
	if err != nil {
		return "", err
	}
	guest := contact.Normalize(rawContact)
	if err := s.store.UpsertRSVP(ctx, eventID, guest, response, s.now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("record rsvp: %w", err)
	}

	if event, getErr := s.store.Get(ctx, eventID); getErr != nil {
		s.log.Error("creator notice skipped, event lookup failed", "event_id", eventID, "error", getErr)
	} else {
		notice := fmt.Sprintf("✅ RSVP from %s: %s for event %s", guest, response, eventID)
		if _, sendErr := s.notifier.Send(ctx, event.Creator, notice); sendErr != nil {
			s.log.Error("creator notice failed", "event_id", eventID, "error", sendErr)
		}
	}
	return fmt.Sprintf("RSVP recorded for event %s: %s → %s", eventID, guest, response), nil
}

// EventDetails renders a full summary with RSVP tallies. A missing event
// yields a user-facing message rather than an error; only the mutating
// operations surface NotFound as an error.
func (s *EventService) EventDetails(ctx context.Context, eventID string) (string, error) {
	event, err := s.store.Get(ctx, eventID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Sprintf("Event %s not found.", eventID), nil
	}
	if err != nil {
		return "", fmt.Errorf("event details: %w", err)
	}
	yes, no, maybe := event.RSVPCounts()
	return fmt.Sprintf(
		"Event %s: %s\nWhen: %s\nWhere: %s\nDescription: %s\nCreated by: %s\n\nRSVP Summary:\nYES: %d\nNO: %d\nMAYBE: %d",
		event.ID, event.Title, event.StartsAt.Format(timeLayout), event.Location,
		event.Description, event.Creator, yes, no, maybe,
	), nil
}

// RSVPList renders every recorded answer for one event, sorted by guest
// for a stable order. Same not-found contract as EventDetails.
func (s *EventService) RSVPList(ctx context.Context, eventID string) (string, error) {
	event, err := s.store.Get(ctx, eventID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Sprintf("Event %s not found.", eventID), nil
	}
	if err != nil {
		return "", fmt.Errorf("rsvp list: %w", err)
	}
	if len(event.RSVPs) == 0 {
		return "No RSVPs yet.", nil
	}

	guests := make([]string, 0, len(event.RSVPs))
	for guest := range event.RSVPs {
		guests = append(guests, guest)
	}
	sort.Strings(guests)

	lines := []string{"RSVP List:"}
	for _, guest := range guests {
		r := event.RSVPs[guest]
		lines = append(lines, fmt.Sprintf("%s: %s (at %s)", guest, r.Response, r.RespondedAt.Format(timeLayout)))
	}
	return strings.Join(lines, "\n"), nil
}

// Validate returns the digits-only owner number used by the caller
// identity check.
func (s *EventService) Validate() string {
	return contact.Digits(s.ownerNumber)
}
