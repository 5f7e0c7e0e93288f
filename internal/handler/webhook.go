package handler

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"eventplanner/internal/contact"
	"eventplanner/internal/model"
	"eventplanner/internal/service"
	"eventplanner/internal/store"
)

const (
	createEventUsage = "Error creating event. Use:\n/create_event Title;YYYY-MM-DD HH:MM;Location;Description;whatsapp:+111,whatsapp:+222"
	rsvpUsage        = "Use /rsvp event_id YES|NO|MAYBE"
	helpText         = "Commands:\n/create_event Title;YYYY-MM-DD HH:MM;Location;Description;whatsapp:+111,whatsapp:+222\n/list_events\n/rsvp event_id YES|NO|MAYBE\n/event_details event_id\n/rsvp_list event_id"
)

// WebhookHandler answers Twilio's inbound message callbacks. Commands are
// parsed from the message body and the reply goes back as TwiML.
type WebhookHandler struct {
	svc *service.EventService
	log *slog.Logger
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(svc *service.EventService, log *slog.Logger) *WebhookHandler {
	return &WebhookHandler{svc: svc, log: log}
}

// Inbound handles POST /twilio-webhook
func (h *WebhookHandler) Inbound(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form body", http.StatusBadRequest)
		return
	}
	from := contact.Normalize(r.PostFormValue("From"))
	body := strings.TrimSpace(r.PostFormValue("Body"))

	writeTwiML(w, h.dispatch(r.Context(), from, body))
}

func (h *WebhookHandler) dispatch(ctx context.Context, from, body string) string {
	cmd, rest, _ := strings.Cut(body, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "/create_event":
		return h.createEvent(ctx, from, rest)

	case "/list_events":
		summary, err := h.svc.ListEvents(ctx)
		if err != nil {
			h.log.Error("webhook list events", "error", err)
			return "Error listing events."
		}
		return summary

	case "/rsvp":
		fields := strings.Fields(rest)
		if len(fields) != 2 {
			return rsvpUsage
		}
		confirmation, err := h.svc.RecordRSVP(ctx, fields[0], from, fields[1])
		switch {
		case errors.Is(err, store.ErrNotFound):
			return "Event not found."
		case errors.Is(err, model.ErrInvalidResponse):
			return rsvpUsage
		case err != nil:
			h.log.Error("webhook rsvp", "error", err)
			return "Error recording RSVP."
		}
		return confirmation

	case "/event_details":
		if len(strings.Fields(rest)) != 1 {
			return "Usage: /event_details <event_id>"
		}
		summary, err := h.svc.EventDetails(ctx, rest)
		if err != nil {
			h.log.Error("webhook event details", "error", err)
			return "Error fetching event details."
		}
		return summary

	case "/rsvp_list":
		if len(strings.Fields(rest)) != 1 {
			return "Usage: /rsvp_list <event_id>"
		}
		summary, err := h.svc.RSVPList(ctx, rest)
		if err != nil {
			h.log.Error("webhook rsvp list", "error", err)
			return "Error fetching RSVP list."
		}
		return summary

	default:
		return helpText
	}
}

// createEvent parses the semicolon-separated create command:
// Title;YYYY-MM-DD HH:MM;Location;Description;att1,att2
func (h *WebhookHandler) createEvent(ctx context.Context, from, args string) string {
	parts := strings.Split(args, ";")
	if len(parts) < 2 {
		return createEventUsage
	}
	req := model.CreateEventRequest{
		Creator:  from,
		Title:    parts[0],
		Datetime: parts[1],
	}
	if len(parts) > 2 {
		req.Location = parts[2]
	}
	if len(parts) > 3 {
		req.Description = parts[3]
	}
	if len(parts) > 4 && strings.TrimSpace(parts[4]) != "" {
		req.Attendees = strings.Split(parts[4], ",")
	}

	event, err := h.svc.CreateEvent(ctx, req)
	if err != nil {
		h.log.Error("webhook create event", "error", err)
		return createEventUsage
	}
	return fmt.Sprintf("✅ Event %s created and invites sent to %d attendees.", event.ID, len(event.Attendees))
}

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

func writeTwiML(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write([]byte(xml.Header))
	_ = xml.NewEncoder(w).Encode(twimlResponse{Message: message})
}
