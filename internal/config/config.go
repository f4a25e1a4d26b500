package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full application configuration surface.
type Config struct {
	Server   ServerConfig
	AI       AIConfig
	Database DatabaseConfig
	WhatsApp WhatsAppConfig
	Reminder ReminderConfig
}

// ServerConfig holds HTTP server options.
type ServerConfig struct {
	Port           string
	AllowedOrigins string
}

// AIConfig holds settings for the intent interpreter.
type AIConfig struct {
	OpenAIKey   string
	TurnTimeout time.Duration
}

// DatabaseConfig holds the optional Postgres connection string. When empty,
// the server runs on the in-memory store and nothing survives a restart.
type DatabaseConfig struct {
	URL string
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API.
// All fields empty means the share endpoints are disabled.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
}

// ReminderConfig controls the scheduled daily-summary push.
type ReminderConfig struct {
	Enabled      bool
	CronSchedule string
	To           string
}

// Load reads environment variables (optionally from a .env file) and
// materializes a Config instance.
func Load() (*Config, error) {
	// Missing .env files are fine; configuration may come from the
	// environment directly.
	_ = godotenv.Load()

	turnTimeout, err := time.ParseDuration(getenvWithDefault("AI_TURN_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("AI_TURN_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getenvWithDefault("SERVER_PORT", "8080"),
			AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		},
		AI: AIConfig{
			OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
			TurnTimeout: turnTimeout,
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
		},
		Reminder: ReminderConfig{
			Enabled:      os.Getenv("REMINDER_ENABLED") == "true",
			CronSchedule: getenvWithDefault("REMINDER_CRON_SCHEDULE", "0 20 * * *"),
			To:           os.Getenv("REMINDER_WHATSAPP_TO"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the combinations that cannot work at runtime. The demo is
// deliberately lenient: a missing API key or database only degrades behavior.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Port == "" {
		return errors.New("SERVER_PORT must not be empty")
	}
	if c.AI.TurnTimeout <= 0 {
		return errors.New("AI_TURN_TIMEOUT must be positive")
	}
	if c.Reminder.Enabled {
		if !c.WhatsAppEnabled() {
			return errors.New("REMINDER_ENABLED requires WHATSAPP_TOKEN and WHATSAPP_PHONE_NUMBER_ID")
		}
		if c.Reminder.To == "" {
			return errors.New("REMINDER_ENABLED requires REMINDER_WHATSAPP_TO")
		}
		if c.Reminder.CronSchedule == "" {
			return errors.New("REMINDER_CRON_SCHEDULE must not be empty")
		}
	}
	return nil
}

// WhatsAppEnabled reports whether the share flow can be wired up.
func (c *Config) WhatsAppEnabled() bool {
	return c.WhatsApp.AccessToken != "" && c.WhatsApp.PhoneNumberID != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
