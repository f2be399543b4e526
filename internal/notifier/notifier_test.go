package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/title-review-api/internal/auth"
	"github.com/iliyamo/title-review-api/internal/event"
	"github.com/iliyamo/title-review-api/internal/model"
	"github.com/iliyamo/title-review-api/internal/queue"
)

func TestNotifier_QueuesSignedCode(t *testing.T) {
	t.Parallel()

	const secret = "notifier-test-secret"
	issuer := auth.NewTokenIssuer(secret, time.Hour)

	var got *queue.EmailQueuedEvent
	n := New(issuer, func(_ context.Context, ev queue.EmailQueuedEvent) error {
		got = &ev
		return nil
	})

	bus := event.New()
	n.Register(bus)
	bus.PublishUserRegistered(context.Background(), event.UserRegistered{
		User: model.User{ID: 1, Username: "alice", Email: "alice@example.com"},
	})

	require.NotNil(t, got, "a mail job must be published")
	assert.Equal(t, "alice@example.com", got.To)
	assert.Contains(t, got.Body, got.ConfirmationCode)

	// The queued code unsigns back to the username.
	payload, err := auth.NewSigner(secret).Unsign(got.ConfirmationCode)
	require.NoError(t, err)
	assert.Equal(t, "alice", payload)
}

func TestNotifier_BrokerFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	n := New(auth.NewTokenIssuer("s", time.Hour), func(context.Context, queue.EmailQueuedEvent) error {
		return errors.New("broker down")
	})

	bus := event.New()
	n.Register(bus)

	// Must not panic or propagate; registration goes on regardless.
	bus.PublishUserRegistered(context.Background(), event.UserRegistered{
		User: model.User{ID: 2, Username: "bob", Email: "bob@example.com"},
	})
}
