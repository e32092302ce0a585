package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/internmatch/placement-engine/internal/config"
	"github.com/internmatch/placement-engine/internal/delivery"
	"github.com/internmatch/placement-engine/internal/service"
	"github.com/internmatch/placement-engine/internal/store"
	"github.com/internmatch/placement-engine/pkg/log"
)

// engineCmd runs a single flush/discover cycle and exits. Meant for cron
// driven deployments where the api process does not own the loop.
var engineCmd = &cobra.Command{
	Use:   "engine",
	Short: "Run one engine cycle and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		logger := log.InitLog(log.Level(cfg.Service.LogLevel))
		defer func() { _ = logger.Sync() }()
		undo := zap.ReplaceGlobals(logger)
		defer undo()

		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Named("engine").Fatalf("initializing data store: %v", err)
		}

		s := store.NewStore(db)
		defer s.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		scheduler := service.NewSchedulerService(s, &delivery.StdoutWriter{}, cfg)
		report, err := scheduler.RunOnce(ctx)
		if err != nil {
			return err
		}

		zap.S().Named("engine").Infow("engine cycle finished",
			"processed", report.Flush.Processed,
			"failed", report.Flush.Failed,
			"created", report.Discover.Created)
		return nil
	},
}
