package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL string
	LogLevel    string
	Environment string
	MetricsAddr string

	EventsURL string // public site, used to build event links
	PlayURL   string // world client, used to build jump-in links

	CronSpecRecompute string
	CronSpecNotify    string

	NotificationLeadTime  time.Duration
	MaxEventRecurrent     int
	RecurrentHistoryLimit int
	AttendeeCacheTTL      time.Duration

	SMTPHost     string // email disabled when empty
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	VAPIDPublicKey  string // push disabled when either key is empty
	VAPIDPrivateKey string
	VAPIDSubscriber string

	TelegramToken   string // operator bot disabled when empty
	AdminTelegramID int64
}

// EmailEnabled reports whether SMTP delivery is configured.
func (c *AppConfig) EmailEnabled() bool { return c.SMTPHost != "" }

// PushEnabled reports whether Web Push delivery is configured.
func (c *AppConfig) PushEnabled() bool { return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != "" }

// BotEnabled reports whether the operator bot should start.
func (c *AppConfig) BotEnabled() bool { return c.TelegramToken != "" }

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.LogLevel = strings.ToLower(getenv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getenv("ENVIRONMENT", "development"))
	cfg.MetricsAddr = getenv("METRICS_ADDR", ":9090")

	cfg.EventsURL = strings.TrimRight(getenv("EVENTS_URL", "https://events.decentraland.org"), "/")
	cfg.PlayURL = strings.TrimRight(getenv("PLAY_URL", "https://play.decentraland.org"), "/")

	cfg.CronSpecRecompute = getenv("CRON_SPEC_RECOMPUTE", "@every 1m")
	cfg.CronSpecNotify = getenv("CRON_SPEC_NOTIFY", "@every 1m")

	if cfg.NotificationLeadTime, err = durationEnv("NOTIFICATION_LEAD_TIME", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.AttendeeCacheTTL, err = durationEnv("ATTENDEE_CACHE_TTL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.MaxEventRecurrent, err = intEnv("MAX_EVENT_RECURRENT", 1000); err != nil {
		return nil, err
	}
	if cfg.RecurrentHistoryLimit, err = intEnv("RECURRENT_HISTORY_LIMIT", 1000); err != nil {
		return nil, err
	}

	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	if cfg.SMTPPort, err = intEnv("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.SMTPFrom = getenv("SMTP_FROM", "Decentraland Events <events@decentraland.org>")

	cfg.VAPIDPublicKey = os.Getenv("VAPID_PUBLIC_KEY")
	cfg.VAPIDPrivateKey = os.Getenv("VAPID_PRIVATE_KEY")
	cfg.VAPIDSubscriber = getenv("VAPID_SUBSCRIBER", "mailto:events@decentraland.org")

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken != "" {
		adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID")
		if adminIDStr == "" {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
		}
		cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q must be a positive integer", key, v)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q must be positive", key, v)
	}
	return d, nil
}
