package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"eventplanner/internal/model"
)

func postWebhook(t *testing.T, r http.Handler, from, body string) string {
	t.Helper()
	form := url.Values{"From": {from}, "Body": {body}}
	req := httptest.NewRequest(http.MethodPost, "/twilio-webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("webhook status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/xml" {
		t.Fatalf("content type = %q, want application/xml", ct)
	}
	return rec.Body.String()
}

func TestWebhookCreateEvent(t *testing.T) {
	r, svc := newTestRouter()

	reply := postWebhook(t, r, "+10000000000",
		"/create_event Dinner;2030-01-02 19:00;Cafe Nine;Pasta night;+10000000001,+10000000002")
	if !strings.Contains(reply, "created and invites sent to 2 attendees") {
		t.Fatalf("reply = %q", reply)
	}

	// The created event must be visible through the service.
	summary, err := svc.ListEvents(context.Background())
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if !strings.Contains(summary, "Dinner") {
		t.Errorf("ListEvents() = %q, missing created event", summary)
	}
}

func TestWebhookCreateEventBadArgs(t *testing.T) {
	r, _ := newTestRouter()

	reply := postWebhook(t, r, "+10000000000", "/create_event Dinner")
	if !strings.Contains(reply, "Error creating event") {
		t.Errorf("reply = %q, want usage help", reply)
	}
}

func TestWebhookRSVPFlow(t *testing.T) {
	r, svc := newTestRouter()
	event, err := svc.CreateEvent(context.Background(), model.CreateEventRequest{
		Creator: "+10000000000", Title: "Dinner", Datetime: "2030-01-02 19:00",
	})
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}

	t.Run("record", func(t *testing.T) {
		reply := postWebhook(t, r, "+10000000007", "/rsvp "+event.ID+" yes")
		if !strings.Contains(reply, "RSVP recorded") {
			t.Errorf("reply = %q", reply)
		}
	})

	t.Run("listed", func(t *testing.T) {
		reply := postWebhook(t, r, "+10000000000", "/rsvp_list "+event.ID)
		if !strings.Contains(reply, "whatsapp:+10000000007: YES") {
			t.Errorf("reply = %q", reply)
		}
	})

	t.Run("details_count", func(t *testing.T) {
		reply := postWebhook(t, r, "+10000000000", "/event_details "+event.ID)
		if !strings.Contains(reply, "YES: 1") {
			t.Errorf("reply = %q", reply)
		}
	})

	t.Run("unknown_event", func(t *testing.T) {
		reply := postWebhook(t, r, "+10000000007", "/rsvp nope yes")
		if !strings.Contains(reply, "Event not found.") {
			t.Errorf("reply = %q", reply)
		}
	})

	t.Run("bad_response", func(t *testing.T) {
		reply := postWebhook(t, r, "+10000000007", "/rsvp "+event.ID+" dunno")
		if !strings.Contains(reply, "Use /rsvp") {
			t.Errorf("reply = %q", reply)
		}
	})
}

func TestWebhookHelpFallback(t *testing.T) {
	r, _ := newTestRouter()

	reply := postWebhook(t, r, "+10000000000", "hello there")
	if !strings.Contains(reply, "Commands:") {
		t.Errorf("reply = %q, want help text", reply)
	}
}

func TestWebhookReplyEscapesXML(t *testing.T) {
	r, svc := newTestRouter()
	if _, err := svc.CreateEvent(context.Background(), model.CreateEventRequest{
		Creator: "+10000000000", Title: "Fish & Chips <night>", Datetime: "2030-01-02 19:00",
	}); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}

	reply := postWebhook(t, r, "+10000000000", "/list_events")
	if strings.Contains(reply, "Fish & Chips <night>") {
		t.Errorf("reply contains unescaped XML: %q", reply)
	}
	if !strings.Contains(reply, "Fish &amp; Chips") {
		t.Errorf("reply = %q, want escaped title", reply)
	}
}
