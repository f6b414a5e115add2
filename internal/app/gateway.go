package app

import (
	"context"
	"fmt"

	"marketplace/internal/repository/memory"
	"marketplace/internal/repository/postgres"
	"marketplace/internal/repository/snapshot"
	"marketplace/pkg/config"
	"marketplace/pkg/database"
	"marketplace/pkg/logger"
)

// NewGateway opens the snapshot storage selected by the configuration. The
// returned close function releases its resources.
func NewGateway(ctx context.Context, cfg *config.Config) (memory.Gateway, func() error, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := database.InitPostgres(cfg)
		if err != nil {
			return nil, nil, err
		}
		repo := postgres.NewSnapshotRepository(db, cfg.Storage.KeepVersions)
		if err := repo.Migrate(ctx); err != nil {
			return nil, nil, err
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get sql db: %w", err)
		}
		logger.Info("using postgres snapshot storage", "keep_versions", cfg.Storage.KeepVersions)
		return repo, sqlDB.Close, nil

	default:
		logger.Info("using file snapshot storage", "path", cfg.Storage.SnapshotPath)
		return snapshot.NewFileGateway(cfg.Storage.SnapshotPath), func() error { return nil }, nil
	}
}
