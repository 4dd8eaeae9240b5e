package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/intelicampusai/vex5hub-site/internal/app"
	"github.com/intelicampusai/vex5hub-site/internal/config"
	"github.com/intelicampusai/vex5hub-site/internal/platform/logging"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report legacy items without deleting them")
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

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		os.Exit(1)
	}

	report, err := application.Sweeper.Sweep(ctx, *dryRun)
	if err != nil {
		logger.Error("sweep failed", "error", err,
			"scanned", report.Scanned, "deleted", report.Deleted)
		os.Exit(1)
	}

	logger.Info("sweep finished",
		"scanned", report.Scanned,
		"legacy", report.Legacy,
		"deleted", report.Deleted,
		"unclassified", report.Unclassified,
		"dry_run", *dryRun,
	)
}
