// Package scheduler scans the event store on a fixed cadence and sends
// each confirmed guest a one-time reminder shortly before their event
// starts.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"eventplanner/internal/model"
	"eventplanner/internal/notifier"
	"eventplanner/internal/store"
)

// Config controls the reminder window and the scan cadence.
type Config struct {
	// Lead is how long before the event start the reminder should land.
	Lead time.Duration
	// Slack is the half-width of the reminder window. It exists because
	// the tick interval is coarse: without it an event could slip between
	// two consecutive scans.
	Slack time.Duration
	// Tick is the pause between scans.
	Tick time.Duration
}

func (c Config) withDefaults() Config {
	if c.Lead == 0 {
		c.Lead = time.Hour
	}
	if c.Slack == 0 {
		c.Slack = 5 * time.Minute
	}
	if c.Tick == 0 {
		c.Tick = 5 * time.Minute
	}
	return c
}

// Scheduler is the background reminder task. It only ever reads the event
// store; the only state it owns is its dispatch ledger.
type Scheduler struct {
	store    store.Store
	notifier notifier.Notifier
	ledger   Ledger
	now      func() time.Time
	cfg      Config
	log      *slog.Logger
}

// New constructs a Scheduler. A nil clock means wall-clock time; a nil
// ledger gets a fresh in-memory one.
func New(st store.Store, n notifier.Notifier, ledger Ledger, now func() time.Time, cfg Config, log *slog.Logger) *Scheduler {
	if now == nil {
		now = time.Now
	}
	if ledger == nil {
		ledger = NewMemoryLedger()
	}
	return &Scheduler{store: st, notifier: n, ledger: ledger, now: now, cfg: cfg.withDefaults(), log: log}
}

// Tick runs one scan-and-dispatch cycle. A fault while evaluating one
// event is logged and does not stop the scan of the remaining events.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.now()
	windowStart := now.Add(s.cfg.Lead - s.cfg.Slack)
	windowEnd := now.Add(s.cfg.Lead + s.cfg.Slack)

	events, err := s.store.List(ctx)
	if err != nil {
		s.log.Error("reminder scan: list events", "error", err)
		return
	}
	for _, event := range events {
		if err := s.remind(ctx, event, windowStart, windowEnd); err != nil {
			s.log.Error("reminder scan: event skipped", "event_id", event.ID, "error", err)
		}
	}
}

// remind dispatches reminders for one event if its start time falls inside
// the window (bounds inclusive).
func (s *Scheduler) remind(ctx context.Context, event *model.Event, windowStart, windowEnd time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic evaluating event: %v", r)
		}
	}()

	if event.StartsAt.Before(windowStart) || event.StartsAt.After(windowEnd) {
		return nil
	}
	for guest, rsvp := range event.RSVPs {
		if rsvp.Response != model.ResponseYes {
			continue
		}
		if s.ledger.Seen(event.ID, guest) {
			continue
		}
		body := fmt.Sprintf("⏰ Reminder: Event *%s* starts at %s. See you there!",
			event.Title, event.StartsAt.Format("2006-01-02 15:04"))
		// The pair is marked on any outcome: a transient delivery error
		// must not turn into a fresh attempt every tick for the rest of
		// the window.
		if _, sendErr := s.notifier.Send(ctx, guest, body); sendErr != nil {
			s.log.Error("reminder dispatch failed", "event_id", event.ID, "to", guest, "error", sendErr)
		} else {
			s.log.Info("reminder sent", "event_id", event.ID, "to", guest)
		}
		s.ledger.Mark(event.ID, guest)
	}
	return nil
}

// Run ticks on the configured cadence until ctx is cancelled, then waits
// for any in-flight tick to finish before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", s.cfg.Tick), func() { s.Tick(ctx) }); err != nil {
		return fmt.Errorf("schedule reminder job: %w", err)
	}
	// Scan once up front: an event already inside its window at startup
	// must not wait a full tick interval for its first evaluation.
	s.Tick(ctx)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}
