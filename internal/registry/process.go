package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/domain"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/logging"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/metrics"
)

// Channel labels used as error prefixes.
const (
	labelInApp = "In-app"
	labelSMS   = "SMS"
	labelEmail = "Email"
)

var errNotConfigured = errors.New("sender not configured")

// Options selects which channels Process may attempt for one recipient.
type Options struct {
	IncludeInApp bool
	IncludeSMS   bool
	IncludeEmail bool
	// SMSFollowsEmail attempts SMS whenever email is enabled, regardless of
	// IncludeSMS. Order confirmations and staff alerts use this; status
	// updates and notes do not.
	SMSFollowsEmail bool
}

func (o Options) attemptSMS() bool {
	return o.IncludeSMS || (o.SMSFollowsEmail && o.IncludeEmail)
}

// Outcome is the per-channel result for one recipient. A channel that was
// skipped is false with no entry in Errors.
type Outcome struct {
	InApp  bool     `json:"in_app"`
	SMS    bool     `json:"sms"`
	Email  bool     `json:"email"`
	Errors []string `json:"errors"`
}

// Success is true when any channel delivered.
func (o Outcome) Success() bool {
	return o.InApp || o.SMS || o.Email
}

func (o *Outcome) fail(label string, err error) {
	o.Errors = append(o.Errors, fmt.Sprintf("%s: %v", label, err))
}

// tryChannel runs fn and turns both returned errors and panics into an error
// value, so one channel can never abort its siblings.
func tryChannel(label string, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%s dispatch panicked: %v", label, rec)
		}
	}()
	return fn()
}

// Process dispatches payload to user over the channels allowed by opts and
// the user's contact details. Channels run in order in-app, SMS, email.
func (r *Registry) Process(ctx context.Context, user domain.User, payload domain.Payload, opts Options) Outcome {
	out := Outcome{Errors: []string{}}
	event := payload.EventType()
	log := logging.Dispatch(string(event), user.ID)
	lang := languageFor(user, payload)
	data := shapeMessage(user, payload)

	if opts.IncludeInApp {
		err := tryChannel(labelInApp, func() error { return r.createInApp(ctx, user, payload) })
		out.InApp = err == nil
		if err != nil {
			out.fail(labelInApp, err)
			log.Warn().Err(err).Str("channel", metrics.ChannelInApp).Msg("in-app notification failed")
		}
		metrics.IncChannel(metrics.ChannelInApp, out.InApp)
	} else {
		metrics.IncSkipped(metrics.ChannelInApp)
	}

	switch {
	case !opts.attemptSMS():
		metrics.IncSkipped(metrics.ChannelSMS)
	case user.Phone == "":
		log.Debug().Str("channel", metrics.ChannelSMS).Msg("no phone on file; skipping sms")
		metrics.IncSkipped(metrics.ChannelSMS)
	default:
		req := domain.SMSRequest{Template: event, Language: lang, UserID: user.ID, To: user.Phone, MessageData: data}
		var res domain.SMSResult
		err := tryChannel(labelSMS, func() error {
			if r.sms == nil {
				return errNotConfigured
			}
			var sendErr error
			res, sendErr = r.sms.SendSMS(ctx, req)
			return sendErr
		})
		out.SMS = err == nil
		if err != nil {
			out.fail(labelSMS, err)
			log.Warn().Err(err).Str("channel", metrics.ChannelSMS).Msg("sms notification failed")
		} else {
			log.Debug().Str("channel", metrics.ChannelSMS).Str("message_id", res.MessageID).Msg("sms sent")
		}
		metrics.IncChannel(metrics.ChannelSMS, out.SMS)
	}

	to := user.ContactEmail()
	switch {
	case !opts.IncludeEmail:
		metrics.IncSkipped(metrics.ChannelEmail)
	case to == "":
		log.Debug().Str("channel", metrics.ChannelEmail).Msg("no email on file; skipping email")
		metrics.IncSkipped(metrics.ChannelEmail)
	default:
		req := domain.EmailRequest{Template: event, Language: lang, To: to, MessageData: data}
		err := tryChannel(labelEmail, func() error {
			if r.email == nil {
				return errNotConfigured
			}
			return r.email.SendEmail(ctx, req)
		})
		out.Email = err == nil
		if err != nil {
			out.fail(labelEmail, err)
			log.Warn().Err(err).Str("channel", metrics.ChannelEmail).Msg("email notification failed")
		}
		metrics.IncChannel(metrics.ChannelEmail, out.Email)
	}

	return out
}

func (r *Registry) createInApp(ctx context.Context, user domain.User, payload domain.Payload) error {
	if r.store == nil {
		return errNotConfigured
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode notification data: %w", err)
	}
	now := r.Now().UTC()
	rec, err := r.store.CreateNotification(ctx, domain.NotificationRecord{
		ID:        r.NewID(),
		UserID:    user.ID,
		Type:      payload.EventType(),
		Title:     Title(payload),
		Message:   Message(payload),
		OrderID:   payload.OrderRef(),
		Data:      raw,
		IsRead:    false,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return err
	}
	if rec == nil {
		return errors.New("notification record was not created")
	}
	return nil
}

func newRecordID() string { return uuid.NewString() }

func languageFor(user domain.User, payload domain.Payload) string {
	if l := payload.LanguageOverride(); l != "" {
		return l
	}
	return user.Language()
}
