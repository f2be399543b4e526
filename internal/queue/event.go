// Package queue defines message payloads exchanged over the message broker
// and the background consumer that drains them.
package queue

// MailQueueName is the durable queue carrying confirmation-code mail jobs
// from the API to the mail consumer.
const MailQueueName = "auth.email"

// EmailQueuedEvent is published when a registration (or an idempotent
// re-registration) needs a confirmation code delivered.  It contains the
// fully rendered message so the consumer never touches the database or the
// signing secret.
type EmailQueuedEvent struct {
	To               string `json:"to"`
	Username         string `json:"username"`
	Subject          string `json:"subject"`
	Body             string `json:"body"`
	ConfirmationCode string `json:"confirmation_code"`
	QueuedAt         string `json:"queued_at"`
}
