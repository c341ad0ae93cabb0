package email

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/breaker"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/domain"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/templates"
)

type fakeTransport struct {
	err  error
	sent []Message
}

func (f *fakeTransport) Name() string { return "fake" }

func (f *fakeTransport) Send(_ context.Context, msg Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}

func catalog(t *testing.T) *templates.Catalog {
	t.Helper()
	c, err := templates.Default()
	if err != nil {
		t.Fatalf("load templates: %v", err)
	}
	return c
}

func statusRequest() domain.EmailRequest {
	return domain.EmailRequest{
		Template: domain.EventOrderStatusUpdate,
		Language: "en",
		To:       "a@b.com",
		MessageData: domain.MessageData{
			CustomerName: "Ana",
			OrderNumber:  "42",
			NewStatus:    "shipped",
		},
	}
}

func TestSendEmailRendersAndSends(t *testing.T) {
	tr := &fakeTransport{}
	s := NewSender(catalog(t), tr, nil)
	if err := s.SendEmail(context.Background(), statusRequest()); err != nil {
		t.Fatalf("SendEmail failed: %v", err)
	}
	if len(tr.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(tr.sent))
	}
	msg := tr.sent[0]
	if msg.To != "a@b.com" || msg.Subject != "Order #42 is now shipped" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if !strings.Contains(msg.Text, "Hi Ana") {
		t.Fatalf("body missing greeting: %q", msg.Text)
	}
}

func TestSendEmailWithoutRecipient(t *testing.T) {
	tr := &fakeTransport{}
	req := statusRequest()
	req.To = "  "
	err := NewSender(catalog(t), tr, nil).SendEmail(context.Background(), req)
	if !errors.Is(err, ErrNoRecipient) {
		t.Fatalf("expected ErrNoRecipient, got %v", err)
	}
	if len(tr.sent) != 0 {
		t.Fatal("transport must not be called")
	}
}

func TestSendEmailUnknownTemplate(t *testing.T) {
	req := statusRequest()
	req.Template = "nope"
	err := NewSender(catalog(t), &fakeTransport{}, nil).SendEmail(context.Background(), req)
	if !errors.Is(err, templates.ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
}

func TestSendEmailBreakerOpens(t *testing.T) {
	tr := &fakeTransport{err: errors.New("503")}
	s := NewSender(catalog(t), tr, breaker.New("email", 1, time.Hour, 1))
	_ = s.SendEmail(context.Background(), statusRequest())
	err := s.SendEmail(context.Background(), statusRequest())
	if !errors.Is(err, breaker.ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}
	if len(tr.sent) != 1 {
		t.Fatalf("expected transport to be called once, got %d", len(tr.sent))
	}
}

type fakeSendGrid struct {
	status int
	got    *mail.SGMailV3
}

func (f *fakeSendGrid) SendWithContext(_ context.Context, m *mail.SGMailV3) (*rest.Response, error) {
	f.got = m
	return &rest.Response{StatusCode: f.status, Body: "body"}, nil
}

func TestSendGridSend(t *testing.T) {
	fc := &fakeSendGrid{status: http.StatusAccepted}
	sg := &SendGrid{client: fc, from: mail.NewEmail("Wholesale", "orders@example.com")}
	err := sg.Send(context.Background(), Message{To: "a@b.com", Subject: "Hi", Text: "text", HTML: "<p>text</p>"})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if fc.got.Subject != "Hi" || fc.got.From.Address != "orders@example.com" {
		t.Fatalf("unexpected mail %+v", fc.got)
	}
	if got := fc.got.Personalizations[0].To[0].Address; got != "a@b.com" {
		t.Fatalf("unexpected recipient %q", got)
	}
	if len(fc.got.Content) != 2 {
		t.Fatalf("expected text and html content, got %d", len(fc.got.Content))
	}
}

func TestSendGridRejectedStatus(t *testing.T) {
	sg := &SendGrid{client: &fakeSendGrid{status: http.StatusUnauthorized}, from: mail.NewEmail("", "x@y.z")}
	if err := sg.Send(context.Background(), Message{To: "a@b.com"}); err == nil {
		t.Fatal("expected error for 401")
	}
}

func TestSMTPSend(t *testing.T) {
	orig := dialAndSend
	defer func() { dialAndSend = orig }()

	var gotHost string
	var gotMsg *gomail.Message
	dialAndSend = func(d *gomail.Dialer, m *gomail.Message) error {
		gotHost = d.Host
		gotMsg = m
		return nil
	}

	s := &SMTP{Host: "smtp.example.com", Port: 587, From: "orders@example.com", FromName: "Wholesale"}
	if err := s.Send(context.Background(), Message{To: "a@b.com", Subject: "Hi", Text: "t", HTML: "<p>t</p>"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if gotHost != "smtp.example.com" {
		t.Fatalf("unexpected host %q", gotHost)
	}
	if got := gotMsg.GetHeader("Subject"); len(got) != 1 || got[0] != "Hi" {
		t.Fatalf("unexpected subject %v", got)
	}
	if got := gotMsg.GetHeader("To"); len(got) != 1 || got[0] != "a@b.com" {
		t.Fatalf("unexpected to %v", got)
	}
}

func TestSMTPHonorsCanceledContext(t *testing.T) {
	orig := dialAndSend
	defer func() { dialAndSend = orig }()
	dialAndSend = func(*gomail.Dialer, *gomail.Message) error {
		t.Fatal("must not dial with a canceled context")
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (&SMTP{}).Send(ctx, Message{To: "a@b.com"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
