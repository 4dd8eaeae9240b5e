package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/intelicampusai/vex5hub-site/internal/app"
	"github.com/intelicampusai/vex5hub-site/internal/config"
	"github.com/intelicampusai/vex5hub-site/internal/observability"
	"github.com/intelicampusai/vex5hub-site/internal/platform/logging"
	"github.com/intelicampusai/vex5hub-site/internal/usecase"
)

func main() {
	runOnce := flag.Bool("once", false, "run a single sync pass and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("uptrace shutdown failed", "error", err)
		}
	}()

	stopProfiling, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := stopProfiling(); err != nil {
			logger.Warn("pyroscope shutdown failed", "error", err)
		}
	}()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	if *runOnce {
		if !runSync(ctx, application, logger) {
			os.Exit(1)
		}
		return
	}

	logger.Info("updater starting",
		"season_id", cfg.SeasonID,
		"interval", cfg.SyncInterval.String(),
		"workers", cfg.SyncWorkers,
	)

	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

	runSync(ctx, application, logger)
	for {
		select {
		case <-ctx.Done():
			logger.Info("updater stopping")
			return
		case <-ticker.C:
			runSync(ctx, application, logger)
		}
	}
}

func runSync(ctx context.Context, application *app.App, logger *logging.Logger) bool {
	summary, err := application.Sync.Run(ctx)
	if err != nil {
		if errors.Is(err, usecase.ErrMissingCredential) {
			logger.Error("sync aborted: credential unavailable", "error", err)
		} else {
			logger.Error("sync run failed", "error", err)
		}
		return false
	}

	logger.Info("sync run finished",
		"status", string(summary.Status),
		"updates", summary.Updates,
		"errors", len(summary.Errors),
		"teams_synced", summary.TeamsSynced,
		"matches_written", summary.MatchesWritten,
	)
	for _, stageErr := range summary.Errors {
		logger.Warn("sync stage error", "stage", stageErr.Stage, "message", stageErr.Message)
	}
	return summary.Status != usecase.StatusFailed
}
