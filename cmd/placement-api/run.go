package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lthibault/jitterbug"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apiserver "github.com/internmatch/placement-engine/internal/api_server"
	"github.com/internmatch/placement-engine/internal/config"
	"github.com/internmatch/placement-engine/internal/delivery"
	"github.com/internmatch/placement-engine/internal/service"
	"github.com/internmatch/placement-engine/internal/store"
	"github.com/internmatch/placement-engine/pkg/log"
	"github.com/internmatch/placement-engine/pkg/migrations"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the placement engine api",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		logger := log.InitLog(log.Level(cfg.Service.LogLevel))
		defer func() { _ = logger.Sync() }()
		undo := zap.ReplaceGlobals(logger)
		defer undo()

		zap.S().Named("placement-api").Info("Starting placement engine")
		defer zap.S().Named("placement-api").Info("Placement engine stopped")

		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Named("placement-api").Fatalf("initializing data store: %v", err)
		}

		s := store.NewStore(db)
		defer s.Close()

		if cfg.Service.MigrationFolder != "" {
			if err := migrations.MigrateStore(db, cfg.Service.MigrationFolder); err != nil {
				zap.S().Named("placement-api").Fatalf("running database migrations: %v", err)
			}
		} else {
			if err := s.InitialMigration(); err != nil {
				zap.S().Named("placement-api").Fatalf("running initial migration: %v", err)
			}
		}

		writer := &delivery.StdoutWriter{}
		producer := delivery.NewProducer(writer)
		defer func() { _ = producer.Close() }()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.Address)
			if err != nil {
				zap.S().Named("placement-api").Fatalf("creating listener: %s", err)
			}

			server := apiserver.New(cfg, s, listener, producer, writer)
			if err := server.Run(ctx); err != nil {
				zap.S().Named("placement-api").Fatalf("Error running server: %s", err)
			}
		}()

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.MetricsAddress)
			if err != nil {
				zap.S().Named("placement-api").Fatalf("creating metrics listener: %s", err)
			}

			metricsServer := apiserver.NewMetricServer(cfg.Service.MetricsAddress, listener)
			if err := metricsServer.Run(ctx); err != nil {
				zap.S().Named("placement-api").Fatalf("Error running metrics server: %s", err)
			}
		}()

		go runEngineLoop(ctx, cfg, s, writer)

		<-ctx.Done()
		return nil
	},
}

// runEngineLoop drives the periodic flush/discover cycle. The ticker is
// jittered so multiple replicas do not wake at the same instant.
func runEngineLoop(ctx context.Context, cfg *config.Config, s store.Store, writer delivery.Writer) {
	scheduler := service.NewSchedulerService(s, writer, cfg)

	ticker := jitterbug.New(cfg.Engine.RunInterval, &jitterbug.Norm{Stdev: 30 * time.Second, Mean: 0})
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := scheduler.RunOnce(ctx); err != nil {
				zap.S().Named("engine").Errorw("engine run failed", "error", err)
			}
		}
	}
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}
