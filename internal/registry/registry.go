// Package registry routes business events to in-app, SMS and email
// notifications according to each recipient's stored preferences.
//
// Every channel is attempted independently: a failing provider is recorded in
// the outcome and never stops the remaining channels. Callers always get a
// structured result back, never an error.
package registry

import (
	"context"
	"errors"
	"time"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/domain"
)

// ErrRecipientNotFound is reported when a notification target cannot be resolved.
var ErrRecipientNotFound = errors.New("recipient not found")

// UserDirectory resolves notification recipients.
type UserDirectory interface {
	// GetUser returns nil, nil when the id is unknown.
	GetUser(ctx context.Context, id string) (*domain.User, error)
	ListStaffAndAdmins(ctx context.Context) ([]domain.User, error)
}

// EmailSender renders and transmits an email.
type EmailSender interface {
	SendEmail(ctx context.Context, req domain.EmailRequest) error
}

// SmsSender enforces SMS consent, renders and transmits a text message.
type SmsSender interface {
	SendSMS(ctx context.Context, req domain.SMSRequest) (domain.SMSResult, error)
}

// NotificationStore persists in-app notifications. A nil record with a nil
// error counts as a failed write.
type NotificationStore interface {
	CreateNotification(ctx context.Context, rec domain.NotificationRecord) (*domain.NotificationRecord, error)
}

// Broadcaster mirrors staff-facing events to team chat. Sends are fire-and-forget.
type Broadcaster interface {
	Send(ctx context.Context, title, message string)
}

// Registry is the single entry point for order and account notifications.
type Registry struct {
	users       UserDirectory
	store       NotificationStore
	email       EmailSender
	sms         SmsSender
	broadcaster Broadcaster

	// Now is injectable for tests.
	Now func() time.Time
	// NewID generates in-app record ids.
	NewID func() string
}

// Option configures optional collaborators.
type Option func(*Registry)

// WithBroadcaster mirrors staff alerts and staff order notes to b.
func WithBroadcaster(b Broadcaster) Option {
	return func(r *Registry) { r.broadcaster = b }
}

// New builds a registry. Nil collaborators are allowed; the matching channel
// then fails with a "not configured" error on every attempt.
func New(users UserDirectory, store NotificationStore, email EmailSender, sms SmsSender, opts ...Option) *Registry {
	r := &Registry{
		users: users,
		store: store,
		email: email,
		sms:   sms,
		Now:   time.Now,
		NewID: newRecordID,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}
