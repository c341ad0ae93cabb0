package notify

import (
	"context"
	"fmt"
	"html"
	"time"
)

// BotName is shown as the sender where a service supports it.
var BotName = "Wholesale Orders"

// orderColor is the accent used for order alerts in Discord embeds.
const orderColor = 0xF39C12

// --- Slack ---
type Slack struct {
	WebhookURL string
}

func (s *Slack) Name() string { return "Slack" }

// Send posts a header block with the title and a mrkdwn section with the
// message. text is the notification fallback.
func (s *Slack) Send(ctx context.Context, title, message string) error {
	payload := map[string]interface{}{
		"text": fmt.Sprintf("%s: %s", title, message),
		"blocks": []map[string]interface{}{
			{"type": "header", "text": map[string]string{"type": "plain_text", "text": title}},
			{"type": "section", "text": map[string]string{"type": "mrkdwn", "text": message}},
		},
	}
	return postJSON(ctx, s.WebhookURL, payload)
}

// --- Discord ---
type Discord struct {
	WebhookURL string
}

func (d *Discord) Name() string { return "Discord" }
func (d *Discord) Send(ctx context.Context, title, message string) error {
	payload := map[string]interface{}{
		"username": BotName,
		"embeds": []map[string]interface{}{{
			"title":       title,
			"description": message,
			"color":       orderColor,
			"footer":      map[string]string{"text": BotName},
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		}},
	}
	return postJSON(ctx, d.WebhookURL, payload)
}

// --- Teams ---
type Teams struct{ WebhookURL string }

type adaptiveCard struct {
	Schema  string      `json:"$schema"`
	Type    string      `json:"type"`
	Version string      `json:"version"`
	Body    []textBlock `json:"body"`
}

type textBlock struct {
	Type   string `json:"type"`
	Text   string `json:"text"`
	Weight string `json:"weight,omitempty"`
	Size   string `json:"size,omitempty"`
	Wrap   bool   `json:"wrap,omitempty"`
}

type teamsAttachment struct {
	ContentType string       `json:"contentType"`
	Content     adaptiveCard `json:"content"`
}

type teamsMessage struct {
	Type        string            `json:"type"`
	Attachments []teamsAttachment `json:"attachments"`
}

func (t *Teams) Name() string { return "Teams" }

// Send posts an Adaptive Card, the format accepted by Teams workflow webhooks.
func (t *Teams) Send(ctx context.Context, title, message string) error {
	card := adaptiveCard{
		Schema:  "http://adaptivecards.io/schemas/adaptive-card.json",
		Type:    "AdaptiveCard",
		Version: "1.4",
		Body: []textBlock{
			{Type: "TextBlock", Text: title, Weight: "Bolder", Size: "Medium"},
			{Type: "TextBlock", Text: message, Wrap: true},
		},
	}
	payload := teamsMessage{
		Type:        "message",
		Attachments: []teamsAttachment{{ContentType: "application/vnd.microsoft.card.adaptive", Content: card}},
	}
	return postJSON(ctx, t.WebhookURL, payload)
}

// --- Telegram ---
var telegramAPIBase = "https://api.telegram.org"

type Telegram struct{ BotToken, ChatID string }

func (t *Telegram) Name() string { return "Telegram" }

// Send uses HTML parse mode; customer names and notes are escaped.
func (t *Telegram) Send(ctx context.Context, title, message string) error {
	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", telegramAPIBase, t.BotToken)
	payload := map[string]interface{}{
		"chat_id":                  t.ChatID,
		"text":                     fmt.Sprintf("<b>%s</b>\n%s", html.EscapeString(title), html.EscapeString(message)),
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	return postJSON(ctx, apiURL, payload)
}

// --- Generic Webhook ---
type Generic struct{ WebhookURL string }

func (g *Generic) Name() string { return "GenericWebhook" }
func (g *Generic) Send(ctx context.Context, title, message string) error {
	payload := map[string]string{
		"title":   title,
		"message": message,
		"source":  BotName,
		"sent_at": time.Now().UTC().Format(time.RFC3339),
	}
	return postJSON(ctx, g.WebhookURL, payload)
}
