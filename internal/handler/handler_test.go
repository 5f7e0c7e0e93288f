package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"eventplanner/internal/model"
	"eventplanner/internal/notifier"
	"eventplanner/internal/service"
	"eventplanner/internal/store"
)

type fakeNotifier struct {
	mu    sync.Mutex
	sends []string
	fail  bool
}

func (f *fakeNotifier) Send(ctx context.Context, to, body string) (notifier.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, to)
	if f.fail {
		return notifier.Result{Status: notifier.StatusFailed}, errors.New("carrier down")
	}
	return notifier.Result{Status: notifier.StatusSimulated}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const testToken = "secret-token"

// newTestRouter assembles the same routes main builds, minus the global
// middleware that needs a real network peer.
func newTestRouter() (chi.Router, *service.EventService) {
	st := store.NewMemoryStore()
	clock := time.Date(2030, 1, 2, 14, 0, 0, 0, time.Local)
	svc := service.NewEventService(st, &fakeNotifier{}, func() time.Time { return clock }, "+14155550100", discardLogger())

	h := NewEventHandler(svc)
	webhook := NewWebhookHandler(svc, discardLogger())

	r := chi.NewRouter()
	r.Get("/health", HealthCheck)
	r.Post("/twilio-webhook", webhook.Inbound)
	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(testToken))
		r.Get("/validate", h.Validate)
		r.Route("/events", func(r chi.Router) {
			r.Post("/", h.CreateEvent)
			r.Get("/", h.ListEvents)
			r.Get("/{id}", h.EventDetails)
			r.Post("/{id}/rsvp", h.RecordRSVP)
			r.Get("/{id}/rsvps", h.RSVPList)
		})
	})
	return r, svc
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateEventEndpoint(t *testing.T) {
	r, _ := newTestRouter()

	t.Run("created", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/events",
			`{"creator":"+10000000000","title":"Dinner","datetime":"2030-01-02 19:00","attendees":["+10000000001"]}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
		}
		var event model.Event
		if err := json.Unmarshal(rec.Body.Bytes(), &event); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if event.ID == "" || event.Creator != "whatsapp:+10000000000" {
			t.Errorf("response event = %+v", event)
		}
	})

	t.Run("bad_datetime", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/events",
			`{"creator":"+10000000000","title":"Dinner","datetime":"whenever"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unknown_field", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/events", `{"nope":true}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestRSVPEndpointStatusMapping(t *testing.T) {
	r, svc := newTestRouter()
	event, err := svc.CreateEvent(context.Background(), model.CreateEventRequest{
		Creator: "+10000000000", Title: "Dinner", Datetime: "2030-01-02 19:00",
	})
	if err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}

	t.Run("ok", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/events/"+event.ID+"/rsvp",
			`{"contact":"+10000000007","response":"yes"}`)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200: %s", rec.Code, rec.Body)
		}
	})

	t.Run("unknown_event", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/events/nope/rsvp",
			`{"contact":"+10000000007","response":"yes"}`)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("bad_response", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/events/"+event.ID+"/rsvp",
			`{"contact":"+10000000007","response":"dunno"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestEventDetailsEndpointNotFoundIsOK(t *testing.T) {
	r, _ := newTestRouter()

	rec := doJSON(t, r, http.MethodGet, "/events/nope", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (read queries answer with a message)", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(body["summary"], "not found") {
		t.Errorf("summary = %q, want not-found message", body["summary"])
	}
}

func TestBearerAuth(t *testing.T) {
	r, _ := newTestRouter()

	t.Run("missing_token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/events/", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("wrong_token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/events/", nil)
		req.Header.Set("Authorization", "Bearer wrong")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("valid_token", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/events/", "")
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("health_is_open", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}

func TestValidateEndpoint(t *testing.T) {
	r, _ := newTestRouter()

	rec := doJSON(t, r, http.MethodGet, "/validate", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["number"] != "14155550100" {
		t.Errorf("number = %q, want digits-only owner number", body["number"])
	}
}
