package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for the headless client. Each field
// maps to an environment variable; a .env file is honored when present.
type Config struct {
	BaseURL         string `validate:"required,url"`
	QueueWSURL      string `validate:"required"`
	AuthToken       string
	PollIntervalSec int `validate:"gte=1"`

	// PubNub keys enable the live seat feed; without a subscribe key the
	// client falls back to interval polling.
	PubNubSubscribeKey string
	PubNubUserID       string
}

func Load() (*Config, error) {
	// .env is a local convenience, not a requirement
	_ = godotenv.Load()

	cfg := &Config{
		BaseURL:            getEnv("TM_API_BASE_URL", "http://localhost:8089"),
		QueueWSURL:         getEnv("TM_QUEUE_WS_URL", "ws://localhost:8089/ws/queue"),
		AuthToken:          os.Getenv("TM_AUTH_TOKEN"),
		PollIntervalSec:    getEnvInt("TM_POLL_INTERVAL_SEC", 5),
		PubNubSubscribeKey: os.Getenv("TM_PN_SUBSCRIBE_KEY"),
		PubNubUserID:       getEnv("TM_PN_USER_ID", "ticketmongo-client"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// LiveFeedEnabled reports whether the streaming sync strategy can be used.
func (c *Config) LiveFeedEnabled() bool {
	return c.PubNubSubscribeKey != ""
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSec) * time.Second
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
