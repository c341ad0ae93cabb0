// Package templates renders localized email and SMS bodies from an embedded
// YAML catalog.
package templates

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/domain"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrUnknownTemplate is returned when no template exists for an event type.
var ErrUnknownTemplate = errors.New("unknown template")

// EmailTemplate is one localized email.
type EmailTemplate struct {
	Subject string `yaml:"subject"`
	Body    string `yaml:"body"`
}

// Catalog holds email and SMS templates by event type and language. Build it
// with Load so every template is parsed once up front.
type Catalog struct {
	Email map[domain.EventType]map[string]EmailTemplate `yaml:"email"`
	SMS   map[domain.EventType]map[string]string        `yaml:"sms"`

	compiled map[templateKey]*template.Template
}

type templateKey struct {
	event domain.EventType
	lang  string
	part  string
}

const (
	partSubject = "subject"
	partBody    = "body"
	partSMS     = "sms"
)

// RenderedEmail is a ready-to-send email body.
type RenderedEmail struct {
	Subject string
	Text    string
	HTML    string
}

var funcs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
}

// Default parses the embedded catalog.
func Default() (*Catalog, error) {
	return Load(defaultCatalog)
}

// Load parses a YAML catalog and compiles every template in it.
func Load(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse template catalog: %w", err)
	}
	c.compiled = make(map[templateKey]*template.Template)
	for event, byLang := range c.Email {
		for lang, tpl := range byLang {
			if err := c.compile(templateKey{event, lang, partSubject}, tpl.Subject); err != nil {
				return nil, err
			}
			if err := c.compile(templateKey{event, lang, partBody}, tpl.Body); err != nil {
				return nil, err
			}
		}
	}
	for event, byLang := range c.SMS {
		for lang, src := range byLang {
			if err := c.compile(templateKey{event, lang, partSMS}, src); err != nil {
				return nil, err
			}
		}
	}
	return &c, nil
}

func (c *Catalog) compile(key templateKey, src string) error {
	if src == "" {
		return nil
	}
	name := fmt.Sprintf("%s/%s/%s", key.event, key.lang, key.part)
	t, err := template.New(name).Funcs(funcs).Option("missingkey=zero").Parse(src)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", name, err)
	}
	c.compiled[key] = t
	return nil
}

// RenderEmail renders the email for event in lang, falling back to the base
// language ("es" for "es-MX") and then to English.
func (c *Catalog) RenderEmail(event domain.EventType, lang string, data domain.MessageData) (RenderedEmail, error) {
	byLang, ok := c.Email[event]
	if !ok {
		return RenderedEmail{}, fmt.Errorf("%w: email %s", ErrUnknownTemplate, event)
	}
	key, ok := pick(byLang, lang)
	if !ok {
		return RenderedEmail{}, fmt.Errorf("%w: email %s/%s", ErrUnknownTemplate, event, lang)
	}
	subject, err := c.render(templateKey{event, key, partSubject}, data)
	if err != nil {
		return RenderedEmail{}, err
	}
	text, err := c.render(templateKey{event, key, partBody}, data)
	if err != nil {
		return RenderedEmail{}, err
	}
	return RenderedEmail{Subject: strings.TrimSpace(subject), Text: text, HTML: toHTML(text)}, nil
}

// RenderSMS renders the SMS body for event in lang.
func (c *Catalog) RenderSMS(event domain.EventType, lang string, data domain.MessageData) (string, error) {
	byLang, ok := c.SMS[event]
	if !ok {
		return "", fmt.Errorf("%w: sms %s", ErrUnknownTemplate, event)
	}
	key, ok := pick(byLang, lang)
	if !ok {
		return "", fmt.Errorf("%w: sms %s/%s", ErrUnknownTemplate, event, lang)
	}
	out, err := c.render(templateKey{event, key, partSMS}, data)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// pick returns the catalog language to use for lang.
func pick[T any](byLang map[string]T, lang string) (string, bool) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if _, ok := byLang[lang]; ok {
		return lang, true
	}
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		if _, ok := byLang[lang[:i]]; ok {
			return lang[:i], true
		}
	}
	_, ok := byLang[domain.DefaultLanguage]
	return domain.DefaultLanguage, ok
}

// render executes a compiled template. Empty sources have no entry and render
// as "".
func (c *Catalog) render(key templateKey, data any) (string, error) {
	t, ok := c.compiled[key]
	if !ok {
		return "", nil
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}

// toHTML escapes a plain-text body and keeps its paragraph breaks.
func toHTML(text string) string {
	paras := strings.Split(strings.TrimSpace(text), "\n\n")
	var b strings.Builder
	for _, p := range paras {
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(html.EscapeString(strings.TrimSpace(p)), "\n", "<br>"))
		b.WriteString("</p>")
	}
	return b.String()
}
