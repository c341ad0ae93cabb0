package email

import (
	"context"

	"gopkg.in/gomail.v2"
)

// dialAndSend allows tests to override SMTP delivery.
var dialAndSend = func(d *gomail.Dialer, m *gomail.Message) error {
	return d.DialAndSend(m)
}

// SMTP delivers mail through an SMTP relay.
type SMTP struct {
	Host, User, Pass string
	Port             int
	From, FromName   string
}

// Name returns the transport name.
func (s *SMTP) Name() string { return "SMTP" }

// Send sends msg as a multipart text/html email.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.From, s.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}
	return dialAndSend(gomail.NewDialer(s.Host, s.Port, s.User, s.Pass), m)
}
