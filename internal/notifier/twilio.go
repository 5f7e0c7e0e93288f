package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"eventplanner/internal/contact"
)

// TwilioNotifier sends real WhatsApp messages through the Twilio REST API.
type TwilioNotifier struct {
	client *twilio.RestClient
	from   string
	log    *slog.Logger
}

// NewTwilioNotifier constructs a sender using the given account
// credentials and WhatsApp-enabled source number.
func NewTwilioNotifier(accountSID, authToken, from string, log *slog.Logger) *TwilioNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioNotifier{client: client, from: contact.Normalize(from), log: log}
}

// Send delivers body to the given contact. The Twilio SDK call itself does
// not take a context, so cancellation is only honored before the call
// starts.
func (n *TwilioNotifier) Send(ctx context.Context, to, body string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{Status: StatusFailed}, err
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(contact.Normalize(to))
	params.SetFrom(n.from)
	params.SetBody(body)

	msg, err := n.client.Api.CreateMessage(params)
	if err != nil {
		return Result{Status: StatusFailed}, fmt.Errorf("twilio send to %s: %w", to, err)
	}
	var sid string
	if msg.Sid != nil {
		sid = *msg.Sid
	}
	n.log.Info("sent whatsapp message", "to", to, "sid", sid)
	return Result{Status: StatusDelivered, SID: sid}, nil
}
