// Package notify holds the outbound-messaging collaborators: SMS for
// alert broadcasts and e-mail for password resets. Providers are
// consumed through small call/response interfaces so handlers and
// services can be tested with fakes.
package notify

import "context"

// Messenger delivers a short text message to a phone number.
type Messenger interface {
	Send(ctx context.Context, phoneNumber, message string) error
}

// Mailer delivers a transactional e-mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
