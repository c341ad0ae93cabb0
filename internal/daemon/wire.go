package daemon

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/breaker"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/config"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/domain"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/email"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/logging"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/notify"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/registry"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/sms"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/store"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/store/file"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/store/memory"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/store/postgres"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/store/sqlite"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/templates"
)

const (
	defaultFilePath   = "notifications.json"
	defaultSQLitePath = "notifyd.db"
)

// openStore opens the backend named by cfg.StoreDriver.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case "", config.StoreMemory:
		return memory.New(), nil
	case config.StoreFile:
		return file.Open(orDefault(cfg.StoreDSN, defaultFilePath))
	case config.StoreSQLite:
		return sqlite.Open(ctx, orDefault(cfg.StoreDSN, defaultSQLitePath))
	case config.StorePostgres:
		if cfg.StoreDSN == "" {
			return nil, fmt.Errorf("postgres store requires store_dsn")
		}
		return postgres.Open(ctx, cfg.StoreDSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

type seedFile struct {
	Users []domain.User `yaml:"users"`
}

// seedUsers upserts the users listed in a YAML seed file and returns their ids.
func seedUsers(ctx context.Context, s store.Store, path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	ids := make([]string, 0, len(seed.Users))
	for _, u := range seed.Users {
		if u.ID == "" {
			return nil, fmt.Errorf("seed user %q has no id", u.Username)
		}
		if err := s.UpsertUser(ctx, u); err != nil {
			return nil, fmt.Errorf("seed user %s: %w", u.ID, err)
		}
		ids = append(ids, u.ID)
	}
	logging.Get().Info().Int("users", len(ids)).Str("path", path).Msg("seeded user directory")
	return ids, nil
}

func newBreaker(cfg *config.Config, name string) *breaker.Breaker {
	threshold := cfg.CircuitBreakerThreshold
	if threshold < 1 {
		threshold = 1
	}
	return breaker.New(name, threshold, cfg.CircuitBreakerCooldown, cfg.CircuitBreakerProbes)
}

// buildEmail returns nil when no provider is configured so the registry
// reports the channel as not configured.
func buildEmail(cfg *config.Config, catalog *templates.Catalog) registry.EmailSender {
	var transport email.Transport
	switch {
	case cfg.SendGridAPIKey != "":
		transport = email.NewSendGrid(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailFromName)
	case cfg.SMTPHost != "":
		transport = &email.SMTP{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Pass:     cfg.SMTPPass,
			From:     cfg.EmailFrom,
			FromName: cfg.EmailFromName,
		}
	default:
		return nil
	}
	logging.Get().Info().Str("provider", transport.Name()).Msg("email channel enabled")
	return email.NewSender(catalog, transport, newBreaker(cfg, "email:"+transport.Name()))
}

func buildSMS(cfg *config.Config, consent sms.ConsentChecker, catalog *templates.Catalog) registry.SmsSender {
	if !cfg.SMSConfigured() {
		return nil
	}
	transport := sms.NewTwilio(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom)
	logging.Get().Info().Str("provider", transport.Name()).Msg("sms channel enabled")
	return sms.NewSender(consent, catalog, transport, newBreaker(cfg, "sms:"+transport.Name()))
}

// buildMirror registers every chat service with complete settings.
func buildMirror(cfg *config.Config) *notify.Mirror {
	m := notify.NewMirror()
	if cfg.ChatCooldown > 0 {
		m.SetCooldown(cfg.ChatCooldown)
	}
	entries := []struct {
		enabled bool
		svc     notify.Service
	}{
		{cfg.SlackWebhook != "", &notify.Slack{WebhookURL: cfg.SlackWebhook}},
		{cfg.DiscordWebhook != "", &notify.Discord{WebhookURL: cfg.DiscordWebhook}},
		{cfg.TeamsWebhook != "", &notify.Teams{WebhookURL: cfg.TeamsWebhook}},
		{cfg.TelegramToken != "" && cfg.TelegramChatID != "", &notify.Telegram{BotToken: cfg.TelegramToken, ChatID: cfg.TelegramChatID}},
		{cfg.GenericWebhookURL != "", &notify.Generic{WebhookURL: cfg.GenericWebhookURL}},
	}
	for _, e := range entries {
		if e.enabled {
			m.Add(e.svc)
		}
	}
	return m
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
