// Package mail sends account notification emails. Delivery is
// fire-and-forget: requests never wait on the SMTP server and failures are
// only logged.
package mail

import "context"

// Mailer dispatches account notifications.
type Mailer interface {
	// IsEnabled returns whether outgoing mail is configured.
	IsEnabled() bool

	// SendWelcome greets a freshly registered user.
	SendWelcome(ctx context.Context, email, name string)

	// SendCancellation notifies a user whose account was deleted.
	SendCancellation(ctx context.Context, email, name string)
}
