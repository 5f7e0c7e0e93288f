// Package config loads service configuration from the environment, with a
// .env file honored when present.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the composition root needs to wire the service.
type Config struct {
	Port        string
	AuthToken   string
	OwnerNumber string

	// DatabaseURL selects the Postgres store when set; the in-memory
	// store is used otherwise.
	DatabaseURL string

	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioWhatsAppNumber string

	ReminderLead  time.Duration
	ReminderSlack time.Duration
	ReminderTick  time.Duration
}

// FromEnv reads configuration, loading .env first if one exists.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:                 getEnv("PORT", "8080"),
		AuthToken:            os.Getenv("AUTH_TOKEN"),
		OwnerNumber:          os.Getenv("MY_NUMBER"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		TwilioAccountSID:     os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:      os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioWhatsAppNumber: os.Getenv("TWILIO_WHATSAPP_NUMBER"),
	}
	if cfg.AuthToken == "" {
		return Config{}, fmt.Errorf("AUTH_TOKEN must be set")
	}
	if cfg.OwnerNumber == "" {
		return Config{}, fmt.Errorf("MY_NUMBER must be set")
	}

	var err error
	if cfg.ReminderLead, err = getDuration("REMINDER_LEAD", time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.ReminderSlack, err = getDuration("REMINDER_SLACK", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.ReminderTick, err = getDuration("REMINDER_TICK", 5*time.Minute); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// TwilioConfigured reports whether real sends are possible.
func (c Config) TwilioConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioWhatsAppNumber != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
