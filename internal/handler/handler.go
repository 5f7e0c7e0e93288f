// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer, plus the Twilio
// inbound webhook.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"eventplanner/internal/model"
	"eventplanner/internal/service"
	"eventplanner/internal/store"
)

// EventHandler holds all HTTP handlers for the event planner API.
type EventHandler struct {
	svc *service.EventService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidDatetime),
		errors.Is(err, store.ErrEmptyTitle),
		errors.Is(err, store.ErrZeroStart),
		errors.Is(err, model.ErrInvalidResponse):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// CreateEvent handles POST /events
// Creates an event and sends best-effort invites to the attendees.
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// ListEvents handles GET /events
// Returns the rendered event list with Upcoming/Past classification.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.ListEvents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

// EventDetails handles GET /events/{id}
// A missing event still answers 200 with a not-found summary; the
// read-only queries deliberately do not error on unknown IDs.
func (h *EventHandler) EventDetails(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	summary, err := h.svc.EventDetails(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get event details")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

// RecordRSVP handles POST /events/{id}/rsvp
func (h *EventHandler) RecordRSVP(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req model.RSVPRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	confirmation, err := h.svc.RecordRSVP(r.Context(), id, req.Contact, req.Response)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"result": confirmation})
}

// RSVPList handles GET /events/{id}/rsvps
func (h *EventHandler) RSVPList(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	summary, err := h.svc.RSVPList(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list rsvps")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

// Validate handles GET /validate
// Returns the digits-only owner number for the caller identity check.
func (h *EventHandler) Validate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"number": h.svc.Validate()})
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
