package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port              int
	NatsURL           string
	NatsToken         string
	EventsSubject     string
	DatabaseURL       string
	LogLevel          string
	APIToken          string
	RedisURL          string
	NotifyWebhookURL  string
	TickInterval      time.Duration
	BackfillDir       string
	BackfillBatchSize int
	BackfillDryRun    bool
}

func Load() Config {
	return Config{
		Port:              envInt("PORT", 8791),
		NatsURL:           envStr("NATS_URL", "nats://localhost:4222"),
		NatsToken:         envStr("NATS_TOKEN", ""),
		EventsSubject:     envStr("EVENTS_SUBJECT", "sim.life.event"),
		DatabaseURL:       envStr("DATABASE_URL", ""),
		LogLevel:          envStr("LOG_LEVEL", "info"),
		APIToken:          envStr("API_TOKEN", ""),
		RedisURL:          envStr("REDIS_URL", ""),
		NotifyWebhookURL:  envStr("NOTIFY_WEBHOOK_URL", ""),
		TickInterval:      envDur("TICK_INTERVAL", 10*time.Minute),
		BackfillDir:       envStr("BACKFILL_DIR", ""),
		BackfillBatchSize: envInt("BACKFILL_BATCH_SIZE", 500),
		BackfillDryRun:    envBool("BACKFILL_DRY_RUN", false),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
