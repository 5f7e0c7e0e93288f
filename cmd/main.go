// cmd/main.go is the application entry point.
// It wires together all layers, starts the HTTP server and the reminder
// scheduler, and shuts both down gracefully.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"eventplanner/internal/config"
	"eventplanner/internal/handler"
	"eventplanner/internal/notifier"
	"eventplanner/internal/scheduler"
	"eventplanner/internal/service"
	"eventplanner/internal/store"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── 1. Storage ────────────────────────────────────────────────────────
	var st store.Store
	if cfg.DatabaseURL != "" {
		pool, err := store.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Error("database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		pg := store.NewPostgresStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Error("database schema", "error", err)
			os.Exit(1)
		}
		st = pg
		log.Info("using postgres store")
	} else {
		st = store.NewMemoryStore()
		log.Info("using in-memory store")
	}

	// ── 2. Outbound messaging ─────────────────────────────────────────────
	var sender notifier.Notifier
	if cfg.TwilioConfigured() {
		sender = notifier.NewTwilioNotifier(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppNumber, log)
		log.Info("twilio sender configured", "from", cfg.TwilioWhatsAppNumber)
	} else {
		sender = notifier.NewSimulatedNotifier(log)
		log.Info("twilio not configured, simulating sends")
	}

	// ── 3. Wire up layers and start the reminder scheduler ────────────────
	svc := service.NewEventService(st, sender, time.Now, cfg.OwnerNumber, log)
	sched := scheduler.New(st, sender, scheduler.NewMemoryLedger(), time.Now, scheduler.Config{
		Lead:  cfg.ReminderLead,
		Slack: cfg.ReminderSlack,
		Tick:  cfg.ReminderTick,
	}, log)

	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("scheduler", "error", err)
		}
	}()

	eventHandler := handler.NewEventHandler(svc)
	webhook := handler.NewWebhookHandler(svc, log)

	// ── 4. Build the router ───────────────────────────────────────────────
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger(log))     // structured access log
	r.Use(handler.CORS)            // permissive CORS

	// Unauthenticated: health probe and the Twilio callback.
	r.Get("/health", handler.HealthCheck)
	r.Post("/twilio-webhook", webhook.Inbound)

	// API routes behind the bearer token.
	r.Group(func(r chi.Router) {
		r.Use(handler.BearerAuth(cfg.AuthToken))
		r.Get("/validate", eventHandler.Validate)
		r.Route("/events", func(r chi.Router) {
			r.Post("/", eventHandler.CreateEvent)
			r.Get("/", eventHandler.ListEvents)
			r.Get("/{id}", eventHandler.EventDetails)
			r.Post("/{id}/rsvp", eventHandler.RecordRSVP)
			r.Get("/{id}/rsvps", eventHandler.RSVPList)
		})
	})

	// ── 5. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "error", err)
			os.Exit(1)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	// Stop the scheduler and let an in-flight tick finish.
	cancel()
	<-schedDone
	log.Info("server stopped")
}
