// Package model defines the core domain types for the event planner.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidResponse is returned when an RSVP answer is not one of the
// three accepted values.
var ErrInvalidResponse = errors.New("invalid RSVP response")

// Response is a guest's RSVP answer, stored canonical-uppercase.
type Response string

const (
	ResponseYes   Response = "YES"
	ResponseNo    Response = "NO"
	ResponseMaybe Response = "MAYBE"
)

// ParseResponse canonicalizes a raw RSVP answer. Input is matched
// case-insensitively with surrounding whitespace ignored.
func ParseResponse(raw string) (Response, error) {
	switch r := Response(strings.ToUpper(strings.TrimSpace(raw))); r {
	case ResponseYes, ResponseNo, ResponseMaybe:
		return r, nil
	default:
		return "", fmt.Errorf("%w %q: want YES, NO or MAYBE", ErrInvalidResponse, raw)
	}
}

// RSVP records one guest's answer for one event. A later answer from the
// same contact overwrites the earlier one; no history is kept.
type RSVP struct {
	Response    Response  `json:"response"`
	RespondedAt time.Time `json:"responded_at"`
}

// Event represents a scheduled gathering with invited attendees and their
// RSVPs. The ID is minted once at creation and never changes or gets
// reused. Attendees is the raw invite list and may contain duplicates;
// RSVPs is keyed by canonical contact, so each guest holds at most one
// entry per event.
type Event struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	StartsAt    time.Time       `json:"starts_at"`
	Location    string          `json:"location"`
	Description string          `json:"description"`
	Creator     string          `json:"creator"`
	Attendees   []string        `json:"attendees"`
	RSVPs       map[string]RSVP `json:"rsvps"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Clone returns a deep copy, so stores can hand out snapshots that callers
// may mutate freely.
func (e *Event) Clone() *Event {
	c := *e
	c.Attendees = append([]string(nil), e.Attendees...)
	c.RSVPs = make(map[string]RSVP, len(e.RSVPs))
	for contact, rsvp := range e.RSVPs {
		c.RSVPs[contact] = rsvp
	}
	return &c
}

// RSVPCounts tallies the recorded answers by kind.
func (e *Event) RSVPCounts() (yes, no, maybe int) {
	for _, r := range e.RSVPs {
		switch r.Response {
		case ResponseYes:
			yes++
		case ResponseNo:
			no++
		case ResponseMaybe:
			maybe++
		}
	}
	return yes, no, maybe
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Creator     string   `json:"creator"`
	Title       string   `json:"title"`
	Datetime    string   `json:"datetime"`
	Location    string   `json:"location,omitempty"`
	Description string   `json:"description,omitempty"`
	Attendees   []string `json:"attendees,omitempty"`
}

// RSVPRequest is the payload for recording an RSVP.
type RSVPRequest struct {
	Contact  string `json:"contact"`
	Response string `json:"response"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
