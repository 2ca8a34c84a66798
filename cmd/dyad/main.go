package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/dyad/internal/api"
	"github.com/MikeSquared-Agency/dyad/internal/backfill"
	"github.com/MikeSquared-Agency/dyad/internal/bus"
	"github.com/MikeSquared-Agency/dyad/internal/cache"
	"github.com/MikeSquared-Agency/dyad/internal/config"
	"github.com/MikeSquared-Agency/dyad/internal/events"
	"github.com/MikeSquared-Agency/dyad/internal/notify"
	"github.com/MikeSquared-Agency/dyad/internal/processor"
	"github.com/MikeSquared-Agency/dyad/internal/registry"
	"github.com/MikeSquared-Agency/dyad/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	if len(os.Args) > 1 && os.Args[1] == "backfill" {
		runBackfill(cfg)
		return
	}

	slog.Info("dyad starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected")

	// Registry hydration
	reg := registry.New()
	hydrated, err := db.LoadSnapshots(ctx, reg.Hydrate)
	if err != nil {
		slog.Error("failed to hydrate relationships", "error", err)
		os.Exit(1)
	}
	slog.Info("relationships hydrated", "count", hydrated)

	// NATS
	busClient, err := bus.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer busClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	// Webhook notifier (optional)
	var notifier *notify.Notifier
	if cfg.NotifyWebhookURL != "" {
		notifier = notify.New(cfg.NotifyWebhookURL, slog.Default())
		slog.Info("milestone notifier ready")
	} else {
		slog.Warn("NOTIFY_WEBHOOK_URL not set — running without milestone webhooks")
	}

	// Decision cache (optional)
	var decisionCache *cache.Cache
	if cfg.RedisURL != "" {
		decisionCache, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer decisionCache.Close()
		slog.Info("decision cache ready")
	} else {
		slog.Warn("REDIS_URL not set — decisions are computed on every request")
	}

	// Processor — the event pipeline
	proc := processor.New(reg, events.DefaultMapping(), db, busClient, notifier, slog.Default())

	if err := busClient.Subscribe(cfg.EventsSubject, proc.HandleLifeEvent); err != nil {
		slog.Error("failed to subscribe to life events", "subject", cfg.EventsSubject, "error", err)
		os.Exit(1)
	}

	// Decay ticker
	go func() {
		ticker := time.NewTicker(cfg.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				elapsed := reg.Tick(now)
				if elapsed > 0 {
					slog.Debug("decay tick applied", "elapsed", elapsed, "relationships", reg.Len())
				}
			}
		}
	}()

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, reg, proc, db, decisionCache, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	if err := busClient.Publish(bus.SubjectRegistered, map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"port":      cfg.Port,
		"subject":   cfg.EventsSubject,
	}); err != nil {
		slog.Warn("failed to publish registration", "error", err)
	}

	slog.Info("dyad ready", "port", cfg.Port, "relationships", reg.Len())

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("dyad stopped")
}

// runBackfill replays archived life-event logs through the processor and
// exits. No NATS connection is made; dry runs also skip Postgres.
func runBackfill(cfg config.Config) {
	if cfg.BackfillDir == "" {
		slog.Error("BACKFILL_DIR is required for backfill")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var db *store.Store
	if !cfg.BackfillDryRun {
		if cfg.DatabaseURL == "" {
			slog.Error("DATABASE_URL is required for backfill (set BACKFILL_DRY_RUN=true to skip persistence)")
			os.Exit(1)
		}
		var err error
		db, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			slog.Error("failed to ensure schema", "error", err)
			os.Exit(1)
		}
	}

	reg := registry.New()
	if db != nil {
		hydrated, err := db.LoadSnapshots(ctx, reg.Hydrate)
		if err != nil {
			slog.Error("failed to hydrate relationships", "error", err)
			os.Exit(1)
		}
		slog.Info("relationships hydrated", "count", hydrated)
	}

	proc := processor.New(reg, events.DefaultMapping(), db, nil, nil, slog.Default())
	runner := backfill.NewRunner(backfill.Config{
		Dir:       cfg.BackfillDir,
		BatchSize: cfg.BackfillBatchSize,
		DryRun:    cfg.BackfillDryRun,
	}, proc, slog.Default())

	if err := runner.Run(ctx); err != nil {
		slog.Error("backfill failed", "error", err)
		os.Exit(1)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
