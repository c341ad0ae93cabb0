// Package sms sends consent-gated text messages through Twilio.
package sms

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

var (
	// ErrNoConsent is returned when the recipient never agreed to receive texts.
	ErrNoConsent = errors.New("sms: recipient has not consented")
	// ErrOptedOut is returned when the recipient replied STOP.
	ErrOptedOut = errors.New("sms: recipient opted out")
	// ErrNoNumber is returned when a request carries no phone number.
	ErrNoNumber = errors.New("sms: no phone number")
)

// ConsentChecker reports a user's stored SMS consent state.
type ConsentChecker interface {
	SMSConsent(ctx context.Context, userID string) (consent, optedOut bool, err error)
}

// Transport delivers a text and returns the provider message id.
type Transport interface {
	Name() string
	Send(ctx context.Context, to, body string) (string, error)
}

// Sender implements registry.SmsSender.
type Sender struct {
	consent   ConsentChecker
	catalog   *templates.Catalog
	transport Transport
	breaker   *breaker.Breaker
}

// NewSender builds a sender. br may be nil.
func NewSender(consent ConsentChecker, catalog *templates.Catalog, transport Transport, br *breaker.Breaker) *Sender {
	return &Sender{consent: consent, catalog: catalog, transport: transport, breaker: br}
}

// SendSMS checks consent, renders the body and sends it.
func (s *Sender) SendSMS(ctx context.Context, req domain.SMSRequest) (domain.SMSResult, error) {
	to := strings.TrimSpace(req.To)
	if to == "" {
		return domain.SMSResult{}, ErrNoNumber
	}
	consent, optedOut, err := s.consent.SMSConsent(ctx, req.UserID)
	if err != nil {
		return domain.SMSResult{}, fmt.Errorf("check consent: %w", err)
	}
	if optedOut {
		return domain.SMSResult{}, ErrOptedOut
	}
	if !consent {
		return domain.SMSResult{}, ErrNoConsent
	}

	body, err := s.catalog.RenderSMS(req.Template, req.Language, req.MessageData)
	if err != nil {
		return domain.SMSResult{}, fmt.Errorf("render %s: %w", req.Template, err)
	}

	var id string
	send := func(ctx context.Context) error {
		var err error
		id, err = s.transport.Send(ctx, to, body)
		return err
	}
	if s.breaker != nil {
		err = s.breaker.Do(ctx, send)
	} else {
		err = send(ctx)
	}
	if err != nil {
		return domain.SMSResult{}, fmt.Errorf("%s: %w", s.transport.Name(), err)
	}
	logging.Get().Debug().Str("transport", s.transport.Name()).Str("template", string(req.Template)).Str("sid", id).Msg("sms sent")
	return domain.SMSResult{MessageID: id}, nil
}
