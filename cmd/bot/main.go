package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock-signal-bot/internal/admin"
	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/metrics"
	"stock-signal-bot/internal/signallog"
	"stock-signal-bot/internal/trace"
	"stock-signal-bot/internal/watchlist"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	must(initializeSystem())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(ctx)
	must(err)

	slog := signallog.New("")
	compressOldLogs(ctx, slog)

	m := metrics.NewMetrics()
	wl := watchlist.NewStore(cfg.WatchlistEntries())
	pipe := initializePipeline(ctx, cfg, m, wl, slog)

	adminSrv := admin.NewServer(cfg.Run.AdminAddr, pipe, wl)
	adminSrv.Start()
	logger.Info(ctx, "Admin server listening", "addr", cfg.Run.AdminAddr)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	tick := time.NewTicker(time.Duration(cfg.PollSeconds) * time.Second)
	defer tick.Stop()

	logger.Info(ctx, "Signal bot started",
		"mode", cfg.Mode,
		"universe", len(cfg.Universe),
		"watchlist", len(wl.Symbols()),
		"poll_seconds", cfg.PollSeconds,
	)

	// First pass immediately, then on the poll interval.
	pipe.RunCycle(ctx)

	for {
		select {
		case <-tick.C:
			pipe.RunCycle(ctx)
		case <-sigc:
			logger.Info(ctx, "Shutting down")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			_ = adminSrv.Shutdown(shutdownCtx)
			_ = trace.Shutdown(shutdownCtx)
			shutdownCancel()
			return
		case <-ctx.Done():
			return
		}
	}
}
