package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/internmatch/placement-engine/internal/config"
	"github.com/internmatch/placement-engine/internal/store"
	"github.com/internmatch/placement-engine/pkg/log"
	"github.com/internmatch/placement-engine/pkg/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the db",
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
			zap.S().Named("placement-api").Fatalf("initializing data store: %v", err)
		}

		s := store.NewStore(db)
		defer s.Close()

		if cfg.Service.MigrationFolder != "" {
			if err := migrations.MigrateStore(db, cfg.Service.MigrationFolder); err != nil {
				zap.S().Named("placement-api").Fatalf("running database migrations: %v", err)
			}
			zap.S().Named("placement-api").Info("Db migrated")
			return nil
		}

		if err := s.InitialMigration(); err != nil {
			zap.S().Named("placement-api").Fatalf("running initial migration: %v", err)
		}
		zap.S().Named("placement-api").Info("Db migrated")

		return nil
	},
}
