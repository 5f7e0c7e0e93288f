package notifier

import (
	"context"
	"log/slog"

	"eventplanner/internal/contact"
)

// SimulatedNotifier logs messages instead of sending them. Used whenever
// Twilio credentials are not configured.
type SimulatedNotifier struct {
	log *slog.Logger
}

// NewSimulatedNotifier constructs a log-only sender.
func NewSimulatedNotifier(log *slog.Logger) *SimulatedNotifier {
	return &SimulatedNotifier{log: log}
}

// Send logs the message and reports it as simulated.
func (n *SimulatedNotifier) Send(ctx context.Context, to, body string) (Result, error) {
	n.log.Info("simulated send", "to", contact.Normalize(to), "body", body)
	return Result{Status: StatusSimulated}, nil
}
