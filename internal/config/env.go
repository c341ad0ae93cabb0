package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set are not overwritten. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnvOverrides reads configuration values from environment variables and
// overrides fields in the provided Config. Returns an error if parsing fails.
//
// Environment variables supported:
// - NOTIFY_LISTEN_ADDR, NOTIFY_LOG_FILE, NOTIFY_LOG_LEVEL
// - NOTIFY_STORE_DRIVER (memory|file|sqlite|postgres), NOTIFY_STORE_DSN, NOTIFY_SEED_FILE
// - NOTIFY_REDIS_ADDR, NOTIFY_REDIS_PASSWORD, NOTIFY_REDIS_DB (int), NOTIFY_REDIS_TTL (duration)
// - NOTIFY_NATS_URL, NOTIFY_NATS_QUEUE, NOTIFY_EVENT_TIMEOUT (duration)
// - NOTIFY_EMAIL_FROM, NOTIFY_EMAIL_FROM_NAME, NOTIFY_SENDGRID_API_KEY
// - NOTIFY_SMTP_HOST, NOTIFY_SMTP_PORT (int), NOTIFY_SMTP_USER, NOTIFY_SMTP_PASS
// - NOTIFY_TWILIO_ACCOUNT_SID, NOTIFY_TWILIO_AUTH_TOKEN, NOTIFY_TWILIO_FROM
// - NOTIFY_SLACK_WEBHOOK, NOTIFY_DISCORD_WEBHOOK, NOTIFY_TEAMS_WEBHOOK
// - NOTIFY_TELEGRAM_TOKEN, NOTIFY_TELEGRAM_CHAT_ID, NOTIFY_GENERIC_WEBHOOK_URL, NOTIFY_CHAT_COOLDOWN
// - NOTIFY_BREAKER_THRESHOLD (int), NOTIFY_BREAKER_COOLDOWN (duration), NOTIFY_BREAKER_PROBES (int)
// - NOTIFY_METRICS_ENABLED (bool)
// - NOTIFY_INFLUX_URL, NOTIFY_INFLUX_TOKEN, NOTIFY_INFLUX_ORG, NOTIFY_INFLUX_BUCKET, NOTIFY_INFLUX_INTERVAL
func ApplyEnvOverrides(cfg *Config) error {
	for _, apply := range []func(*Config) error{
		applyBasicEnv,
		applyStoreEnv,
		applyEventEnv,
		applyEmailEnv,
		applySMSEnv,
		applyChatEnv,
		applyBreakerEnv,
		applyMetricsEnv,
		applyInfluxEnv,
	} {
		if err := apply(cfg); err != nil {
			return err
		}
	}
	return nil
}

func applyBasicEnv(cfg *Config) error {
	setStringEnv("NOTIFY_LISTEN_ADDR", &cfg.ListenAddr)
	setStringEnv("NOTIFY_LOG_FILE", &cfg.LogFile)
	setStringEnv("NOTIFY_LOG_LEVEL", &cfg.LogLevel)
	if err := setIntEnv("NOTIFY_LOG_MAX_SIZE_MB", &cfg.LogMaxSizeMB); err != nil {
		return err
	}
	return setBoolEnv("NOTIFY_LOG_COMPRESS", func(b bool) { cfg.LogCompress = b })
}

// applyStoreEnv covers the notification store and its redis cache
func applyStoreEnv(cfg *Config) error {
	setStringEnv("NOTIFY_STORE_DRIVER", &cfg.StoreDriver)
	setStringEnv("NOTIFY_STORE_DSN", &cfg.StoreDSN)
	setStringEnv("NOTIFY_SEED_FILE", &cfg.SeedFile)
	setStringEnv("NOTIFY_REDIS_ADDR", &cfg.RedisAddr)
	setStringEnv("NOTIFY_REDIS_PASSWORD", &cfg.RedisPassword)
	if err := setIntEnv("NOTIFY_REDIS_DB", &cfg.RedisDB); err != nil {
		return err
	}
	return setDurationEnv("NOTIFY_REDIS_TTL", &cfg.RedisTTL)
}

func applyEventEnv(cfg *Config) error {
	setStringEnv("NOTIFY_NATS_URL", &cfg.NATSURL)
	setStringEnv("NOTIFY_NATS_QUEUE", &cfg.NATSQueue)
	return setDurationEnv("NOTIFY_EVENT_TIMEOUT", &cfg.EventTimeout)
}

// applyEmailEnv consolidates email-related env parsing
func applyEmailEnv(cfg *Config) error {
	setStringEnv("NOTIFY_EMAIL_FROM", &cfg.EmailFrom)
	setStringEnv("NOTIFY_EMAIL_FROM_NAME", &cfg.EmailFromName)
	setStringEnv("NOTIFY_SENDGRID_API_KEY", &cfg.SendGridAPIKey)
	setStringEnv("NOTIFY_SMTP_HOST", &cfg.SMTPHost)
	setStringEnv("NOTIFY_SMTP_USER", &cfg.SMTPUser)
	setStringEnv("NOTIFY_SMTP_PASS", &cfg.SMTPPass)
	return setIntEnv("NOTIFY_SMTP_PORT", &cfg.SMTPPort)
}

func applySMSEnv(cfg *Config) error {
	setStringEnv("NOTIFY_TWILIO_ACCOUNT_SID", &cfg.TwilioAccountSID)
	setStringEnv("NOTIFY_TWILIO_AUTH_TOKEN", &cfg.TwilioAuthToken)
	setStringEnv("NOTIFY_TWILIO_FROM", &cfg.TwilioFrom)
	return nil
}

// applyChatEnv covers the staff chat mirror
func applyChatEnv(cfg *Config) error {
	setStringEnv("NOTIFY_SLACK_WEBHOOK", &cfg.SlackWebhook)
	setStringEnv("NOTIFY_DISCORD_WEBHOOK", &cfg.DiscordWebhook)
	setStringEnv("NOTIFY_TEAMS_WEBHOOK", &cfg.TeamsWebhook)
	setStringEnv("NOTIFY_TELEGRAM_TOKEN", &cfg.TelegramToken)
	setStringEnv("NOTIFY_TELEGRAM_CHAT_ID", &cfg.TelegramChatID)
	setStringEnv("NOTIFY_GENERIC_WEBHOOK_URL", &cfg.GenericWebhookURL)
	return setDurationEnv("NOTIFY_CHAT_COOLDOWN", &cfg.ChatCooldown)
}

func applyBreakerEnv(cfg *Config) error {
	if err := setIntEnv("NOTIFY_BREAKER_THRESHOLD", &cfg.CircuitBreakerThreshold); err != nil {
		return err
	}
	if err := setIntEnv("NOTIFY_BREAKER_PROBES", &cfg.CircuitBreakerProbes); err != nil {
		return err
	}
	return setDurationEnv("NOTIFY_BREAKER_COOLDOWN", &cfg.CircuitBreakerCooldown)
}

// applyMetricsEnv consolidates metrics-related env parsing
func applyMetricsEnv(cfg *Config) error {
	return setBoolEnv("NOTIFY_METRICS_ENABLED", func(b bool) { cfg.MetricsEnabled = b })
}

// applyInfluxEnv consolidates Influx-related env parsing
func applyInfluxEnv(cfg *Config) error {
	setStringEnv("NOTIFY_INFLUX_URL", &cfg.InfluxURL)
	setStringEnv("NOTIFY_INFLUX_TOKEN", &cfg.InfluxToken)
	setStringEnv("NOTIFY_INFLUX_ORG", &cfg.InfluxOrg)
	setStringEnv("NOTIFY_INFLUX_BUCKET", &cfg.InfluxBucket)
	return setDurationEnv("NOTIFY_INFLUX_INTERVAL", &cfg.InfluxInterval)
}

func setStringEnv(env string, dst *string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setIntEnv(env string, dst *int) error {
	if v := os.Getenv(env); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env, err)
		}
		*dst = n
	}
	return nil
}

func setDurationEnv(env string, dst *time.Duration) error {
	if v := os.Getenv(env); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env, err)
		}
		*dst = d
	}
	return nil
}

// setBoolEnv is a small helper to parse boolean environment variables
func setBoolEnv(env string, setter func(bool)) error {
	if v := os.Getenv(env); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env, err)
		}
		setter(b)
	}
	return nil
}
