// Package notifier delivers outbound WhatsApp messages, either through
// the Twilio API or a simulated sender for local development.
package notifier

import "context"

// Status classifies the outcome of a send attempt.
type Status string

const (
	StatusDelivered Status = "delivered"
	StatusSimulated Status = "simulated"
	StatusFailed    Status = "failed"
)

// Result reports the outcome of a single send attempt.
type Result struct {
	Status Status
	// SID is the carrier message identifier when the send was real.
	SID string
}

// Notifier pushes one message to one contact. Implementations must
// tolerate redundant sends; callers do not get at-most-once delivery from
// this interface and must deduplicate themselves.
type Notifier interface {
	Send(ctx context.Context, to, body string) (Result, error)
}
