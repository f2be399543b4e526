// Package notifier delivers confirmation codes to freshly registered
// users.  It subscribes to the in-process registration topic, renders the
// mail and hands it to RabbitMQ for out-of-band delivery; the registration
// request itself never waits on the broker result.
package notifier

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/title-review-api/internal/auth"
	"github.com/iliyamo/title-review-api/internal/event"
	"github.com/iliyamo/title-review-api/internal/queue"
)

// Publisher sends a rendered mail job to the broker.  In production this is
// queue_publisher.PublishEmailQueued; tests substitute a recorder.
type Publisher func(ctx context.Context, ev queue.EmailQueuedEvent) error

// Notifier turns registration events into queued confirmation mails.
type Notifier struct {
	issuer  *auth.TokenIssuer
	publish Publisher
}

// New builds a notifier issuing codes with issuer and publishing through
// publish.
func New(issuer *auth.TokenIssuer, publish Publisher) *Notifier {
	return &Notifier{issuer: issuer, publish: publish}
}

// Register subscribes the notifier to registration events on the bus.
func (n *Notifier) Register(bus *event.Bus) {
	bus.SubscribeUserRegistered(n.handleUserRegistered)
}

// handleUserRegistered runs synchronously on the registering request's
// goroutine.  A broker failure is logged with the code included, so in
// development the code is still obtainable from the server log; the signup
// response has already been decided and is not affected.
func (n *Notifier) handleUserRegistered(ctx context.Context, ev event.UserRegistered) {
	code := n.issuer.ConfirmationCode(ev.User.Username)
	mail := queue.EmailQueuedEvent{
		To:               ev.User.Email,
		Username:         ev.User.Username,
		Subject:          "Your confirmation code",
		Body:             fmt.Sprintf("Hello %s, your confirmation code is: %s", ev.User.Username, code),
		ConfirmationCode: code,
		QueuedAt:         time.Now().UTC().Format(time.RFC3339),
	}
	if err := n.publish(ctx, mail); err != nil {
		log.Printf("notifier: queue mail for %s failed: %v (code %s)", ev.User.Username, err, code)
	}
}
