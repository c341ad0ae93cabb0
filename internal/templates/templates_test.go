package templates

import (
	"errors"
	"strings"
	"testing"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/domain"
)

func mustDefault(t *testing.T) *Catalog {
	t.Helper()
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() failed: %v", err)
	}
	return c
}

func TestEveryEventHasEnglishEmail(t *testing.T) {
	c := mustDefault(t)
	events := []domain.EventType{
		domain.EventOrderConfirmation,
		domain.EventStaffNewOrderAlert,
		domain.EventOrderStatusUpdate,
		domain.EventOrderNote,
		domain.EventAccountApproved,
		domain.EventGeneral,
	}
	for _, e := range events {
		if _, err := c.RenderEmail(e, "en", domain.MessageData{}); err != nil {
			t.Fatalf("render %s: %v", e, err)
		}
	}
}

func TestRenderOrderConfirmationSpanish(t *testing.T) {
	c := mustDefault(t)
	data := domain.MessageData{
		CustomerName:    "Ana",
		OrderNumber:     "42",
		OrderTotal:      60,
		Items:           []domain.OrderItem{{ProductName: "Rice 20lb", Quantity: 2, Price: 30}},
		DeliveryAddress: "123 Main St",
	}
	got, err := c.RenderEmail(domain.EventOrderConfirmation, "es-MX", data)
	if err != nil {
		t.Fatalf("RenderEmail failed: %v", err)
	}
	if got.Subject != "Pedido #42 confirmado" {
		t.Fatalf("unexpected subject %q", got.Subject)
	}
	for _, want := range []string{"Hola Ana", "2 x Rice 20lb @ $30.00", "$60.00", "123 Main St"} {
		if !strings.Contains(got.Text, want) {
			t.Fatalf("expected %q in body: %s", want, got.Text)
		}
	}
	if !strings.HasPrefix(got.HTML, "<p>") {
		t.Fatalf("expected html paragraphs, got %q", got.HTML)
	}
}

func TestUnknownLanguageFallsBackToEnglish(t *testing.T) {
	c := mustDefault(t)
	got, err := c.RenderSMS(domain.EventOrderStatusUpdate, "de", domain.MessageData{OrderNumber: "7", NewStatus: "shipped"})
	if err != nil {
		t.Fatalf("RenderSMS failed: %v", err)
	}
	if got != "Order #7 is now shipped. Reply STOP to opt out." {
		t.Fatalf("unexpected sms %q", got)
	}
}

func TestNoSMSTemplateForCredentials(t *testing.T) {
	c := mustDefault(t)
	_, err := c.RenderSMS(domain.EventAccountApproved, "en", domain.MessageData{Username: "u", Password: "p"})
	if !errors.Is(err, ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
}

func TestHTMLIsEscaped(t *testing.T) {
	c, err := Load([]byte("email:\n  general:\n    en:\n      subject: \"{{.Title}}\"\n      body: \"{{.Message}}\"\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	got, err := c.RenderEmail(domain.EventGeneral, "en", domain.MessageData{Title: "T", Message: "<b>hi</b>"})
	if err != nil {
		t.Fatalf("RenderEmail failed: %v", err)
	}
	if got.HTML != "<p>&lt;b&gt;hi&lt;/b&gt;</p>" {
		t.Fatalf("unexpected html %q", got.HTML)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	if _, err := Load([]byte("email: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadRejectsBadTemplate(t *testing.T) {
	_, err := Load([]byte("sms:\n  order_status_update:\n    en: \"Order {{.OrderNumber\"\n"))
	if err == nil || !strings.Contains(err.Error(), "order_status_update/en/sms") {
		t.Fatalf("expected template parse error at load, got %v", err)
	}
}

func TestTemplatesCompiledOnce(t *testing.T) {
	c := mustDefault(t)
	before := len(c.compiled)
	if before == 0 {
		t.Fatal("expected compiled templates after load")
	}
	key := templateKey{domain.EventOrderStatusUpdate, "en", partSMS}
	tpl := c.compiled[key]
	if tpl == nil {
		t.Fatalf("missing compiled template for %v", key)
	}

	for _, lang := range []string{"en", "en-US", "xx"} {
		if _, err := c.RenderSMS(domain.EventOrderStatusUpdate, lang, domain.MessageData{OrderNumber: "42", NewStatus: "shipped"}); err != nil {
			t.Fatalf("render %s: %v", lang, err)
		}
	}
	if len(c.compiled) != before || c.compiled[key] != tpl {
		t.Fatal("rendering must reuse the templates compiled by Load")
	}
}
