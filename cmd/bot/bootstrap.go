package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"stock-signal-bot/internal/ai/aiobs"
	"stock-signal-bot/internal/ai/noop"
	"stock-signal-bot/internal/ai/openai"
	"stock-signal-bot/internal/chart"
	"stock-signal-bot/internal/interfaces"
	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/marketdata"
	"stock-signal-bot/internal/metrics"
	"stock-signal-bot/internal/notify"
	"stock-signal-bot/internal/pipeline"
	"stock-signal-bot/internal/ratelimit"
	"stock-signal-bot/internal/signallog"
	"stock-signal-bot/internal/store"
	"stock-signal-bot/internal/trace"
	"stock-signal-bot/internal/watchlist"
)

// initializeSystem initializes env, logger and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func loadConfig(ctx context.Context) (*store.Config, error) {
	path := os.Getenv("SIGBOT_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs gzips signal audit files past the retention window
func compressOldLogs(ctx context.Context, slog *signallog.Log) {
	if v := os.Getenv("SIGNAL_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := slog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old signal logs", "error", err)
		}
	}
}

// initializeConfirmer picks the AI confirmation backend and wraps it
// with observability middleware
func initializeConfirmer(ctx context.Context, cfg *store.Config, m *metrics.Metrics) interfaces.Confirmer {
	var confirmer interfaces.Confirmer

	if cfg.AI.Enabled {
		c, err := openai.NewClient(cfg)
		if err != nil {
			logger.Warn(ctx, "AI enabled but client unavailable - using noop confirmer", "error", err)
			confirmer = noop.NewConfirmer()
		} else {
			if m != nil {
				c.OnRetry = m.AIRetriesTotal.Inc
			}
			logger.Info(ctx, "AI confirmation enabled", "model", cfg.AI.Model, "vision", cfg.AI.VisionEnabled)
			confirmer = c
		}
	} else {
		logger.Info(ctx, "AI confirmation disabled - statistical scores only")
		confirmer = noop.NewConfirmer()
	}

	return aiobs.Wrap(confirmer, m)
}

func initializeNotifier(ctx context.Context, cfg *store.Config) interfaces.Notifier {
	if cfg.Notify.Channel == "TELEGRAM" {
		n, err := notify.NewTelegramNotifier()
		if err == nil {
			logger.Info(ctx, "Telegram notifications enabled")
			return n
		}
		logger.Warn(ctx, "Telegram configured but unavailable - falling back to log channel", "error", err)
	}
	return notify.NewLogNotifier()
}

func initializePipeline(ctx context.Context, cfg *store.Config, m *metrics.Metrics, wl *watchlist.Store, slog *signallog.Log) *pipeline.Pipeline {
	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - using synthetic market data")
	}

	return pipeline.New(cfg, pipeline.Options{
		Provider:  marketdata.NewStaticProvider(),
		Confirmer: initializeConfirmer(ctx, cfg, m),
		Renderer:  chart.NewNoopRenderer(),
		Notifier:  initializeNotifier(ctx, cfg),
		Watchlist: wl,
		Limiter:   ratelimit.New(cfg.AI.RateCapacity, cfg.AI.RateRefillPerSec),
		Metrics:   m,
		SignalLog: slog,
	})
}
