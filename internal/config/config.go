package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds runtime configuration for notifyd
type Config struct {
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`

	// Logging
	LogFile       string `json:"log_file" yaml:"log_file"`
	LogLevel      string `json:"log_level" yaml:"log_level"`
	LogMaxSizeMB  int    `json:"log_max_size_mb" yaml:"log_max_size_mb"`
	LogMaxBackups int    `json:"log_max_backups" yaml:"log_max_backups"`
	LogMaxAgeDays int    `json:"log_max_age_days" yaml:"log_max_age_days"`
	LogCompress   bool   `json:"log_compress" yaml:"log_compress"`

	// Store: memory, file, sqlite or postgres. StoreDSN is a path for file and
	// sqlite, a connection string for postgres.
	StoreDriver string `json:"store_driver" yaml:"store_driver"`
	StoreDSN    string `json:"store_dsn" yaml:"store_dsn"`
	// SeedFile is an optional YAML list of users upserted at startup.
	SeedFile string `json:"seed_file" yaml:"seed_file"`

	// Redis directory cache (disabled when RedisAddr is empty)
	RedisAddr     string        `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword string        `json:"redis_password" yaml:"redis_password"`
	RedisDB       int           `json:"redis_db" yaml:"redis_db"`
	RedisTTL      time.Duration `json:"redis_ttl" yaml:"redis_ttl"`

	// NATS event intake (disabled when NATSURL is empty)
	NATSURL      string        `json:"nats_url" yaml:"nats_url"`
	NATSQueue    string        `json:"nats_queue" yaml:"nats_queue"`
	EventTimeout time.Duration `json:"event_timeout" yaml:"event_timeout"`

	// Email. SendGrid wins when both providers are configured.
	EmailFrom      string `json:"email_from" yaml:"email_from"`
	EmailFromName  string `json:"email_from_name" yaml:"email_from_name"`
	SendGridAPIKey string `json:"sendgrid_api_key" yaml:"sendgrid_api_key"`
	SMTPHost       string `json:"smtp_host" yaml:"smtp_host"`
	SMTPPort       int    `json:"smtp_port" yaml:"smtp_port"`
	SMTPUser       string `json:"smtp_user" yaml:"smtp_user"`
	SMTPPass       string `json:"smtp_pass" yaml:"smtp_pass"`

	// SMS
	TwilioAccountSID string `json:"twilio_account_sid" yaml:"twilio_account_sid"`
	TwilioAuthToken  string `json:"twilio_auth_token" yaml:"twilio_auth_token"`
	TwilioFrom       string `json:"twilio_from" yaml:"twilio_from"`

	// Team chat mirror for staff alerts
	SlackWebhook      string        `json:"slack_webhook" yaml:"slack_webhook"`
	DiscordWebhook    string        `json:"discord_webhook" yaml:"discord_webhook"`
	TeamsWebhook      string        `json:"teams_webhook" yaml:"teams_webhook"`
	TelegramToken     string        `json:"telegram_token" yaml:"telegram_token"`
	TelegramChatID    string        `json:"telegram_chat_id" yaml:"telegram_chat_id"`
	GenericWebhookURL string        `json:"generic_webhook_url" yaml:"generic_webhook_url"`
	ChatCooldown      time.Duration `json:"chat_cooldown" yaml:"chat_cooldown"`

	// Circuit breaker around each email and SMS provider
	CircuitBreakerThreshold int           `json:"circuit_breaker_threshold" yaml:"circuit_breaker_threshold"`
	CircuitBreakerCooldown  time.Duration `json:"circuit_breaker_cooldown" yaml:"circuit_breaker_cooldown"`
	CircuitBreakerProbes    int           `json:"circuit_breaker_probes" yaml:"circuit_breaker_probes"`

	// Metrics (served on ListenAddr)
	MetricsEnabled bool `json:"metrics_enabled" yaml:"metrics_enabled"`

	// InfluxDB (push)
	InfluxURL      string        `json:"influx_url" yaml:"influx_url"`
	InfluxToken    string        `json:"influx_token" yaml:"influx_token"`
	InfluxOrg      string        `json:"influx_org" yaml:"influx_org"`
	InfluxBucket   string        `json:"influx_bucket" yaml:"influx_bucket"`
	InfluxInterval time.Duration `json:"influx_interval" yaml:"influx_interval"`
}

// DefaultConfig returns a sane default configuration
func DefaultConfig() *Config {
	return &Config{
		ListenAddr: ":8080",

		LogLevel:      "info",
		LogMaxSizeMB:  50,
		LogMaxBackups: 5,
		LogMaxAgeDays: 28,

		StoreDriver: StoreMemory,

		RedisTTL: 5 * time.Minute,

		NATSQueue:    "notifyd",
		EventTimeout: 30 * time.Second,

		EmailFromName: "Wholesale Orders",
		SMTPPort:      587,

		ChatCooldown: 30 * time.Second,

		CircuitBreakerThreshold: 5,
		CircuitBreakerCooldown:  time.Minute,
		CircuitBreakerProbes:    1,

		MetricsEnabled: true,

		InfluxInterval: 1 * time.Minute,
	}
}

// EmailConfigured reports whether any email provider has credentials.
func (c *Config) EmailConfigured() bool {
	return c.SendGridAPIKey != "" || c.SMTPHost != ""
}

// SMSConfigured reports whether Twilio has a full credential set.
func (c *Config) SMSConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFrom != ""
}

// Validate returns a list of non-fatal configuration warnings, such as
// incomplete provider credential combinations.
func (c *Config) Validate() []string {
	var warnings []string
	twilioParts := 0
	for _, v := range []string{c.TwilioAccountSID, c.TwilioAuthToken, c.TwilioFrom} {
		if v != "" {
			twilioParts++
		}
	}
	checks := []struct {
		cond bool
		msg  string
	}{
		{!c.EmailConfigured(), "no email provider configured; email channel will fail"},
		{c.EmailConfigured() && c.EmailFrom == "", "email provider configured but email_from is empty"},
		{twilioParts == 0, "twilio not configured; sms channel will fail"},
		{twilioParts > 0 && twilioParts < 3, "twilio needs account SID, auth token and from number"},
		{c.TelegramToken != "" && c.TelegramChatID == "", "telegram token provided but chat id is missing"},
		{c.TelegramChatID != "" && c.TelegramToken == "", "telegram chat id provided but token is missing"},
		{c.StoreDriver == StorePostgres && c.StoreDSN == "", "postgres store selected but store_dsn is empty"},
		{c.StoreDriver == StoreMemory && c.SeedFile == "", "memory store without seed_file has no users"},
		{c.InfluxURL != "" && c.InfluxBucket == "", "influx URL provided but bucket is missing"},
		{c.CircuitBreakerThreshold < 1, "circuit_breaker_threshold below 1; using 1"},
	}
	for _, ch := range checks {
		if ch.cond {
			warnings = append(warnings, ch.msg)
		}
	}
	switch c.StoreDriver {
	case StoreMemory, StoreFile, StoreSQLite, StorePostgres:
	default:
		warnings = append(warnings, fmt.Sprintf("unknown store_driver %q (expected memory, file, sqlite or postgres)", c.StoreDriver))
	}
	return warnings
}

// LoadConfigFromFile loads config from a YAML/JSON file
func LoadConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
