// Package email renders localized order emails and delivers them through
// SendGrid or SMTP.
package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/breaker"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/domain"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/logging"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/templates"
)

// ErrNoRecipient is returned when a request carries no destination address.
var ErrNoRecipient = errors.New("email: no recipient address")

// Message is a rendered email ready for a transport.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Transport delivers a rendered message.
type Transport interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Sender implements registry.EmailSender.
type Sender struct {
	catalog   *templates.Catalog
	transport Transport
	breaker   *breaker.Breaker
}

// NewSender builds a sender. br may be nil.
func NewSender(catalog *templates.Catalog, transport Transport, br *breaker.Breaker) *Sender {
	return &Sender{catalog: catalog, transport: transport, breaker: br}
}

// SendEmail renders req.Template in req.Language and hands it to the transport.
func (s *Sender) SendEmail(ctx context.Context, req domain.EmailRequest) error {
	to := strings.TrimSpace(req.To)
	if to == "" {
		return ErrNoRecipient
	}
	rendered, err := s.catalog.RenderEmail(req.Template, req.Language, req.MessageData)
	if err != nil {
		return fmt.Errorf("render %s: %w", req.Template, err)
	}
	msg := Message{To: to, Subject: rendered.Subject, Text: rendered.Text, HTML: rendered.HTML}

	send := func(ctx context.Context) error { return s.transport.Send(ctx, msg) }
	if s.breaker != nil {
		err = s.breaker.Do(ctx, send)
	} else {
		err = send(ctx)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", s.transport.Name(), err)
	}
	logging.Get().Debug().Str("transport", s.transport.Name()).Str("template", string(req.Template)).Str("lang", req.Language).Msg("email sent")
	return nil
}
