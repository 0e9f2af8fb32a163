package app

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderdemo/internal/config"
	"github.com/Additional-Code/orderdemo/internal/migration"
	"github.com/Additional-Code/orderdemo/internal/seeder"
)

func prepareDatabase(lc fx.Lifecycle, cfg config.Config, mig *migration.Migrator, seed *seeder.Seeder, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if cfg.Database.AutoMigrate {
				if err := mig.Up(ctx); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
			}
			if !cfg.Seed.OnStart {
				logger.Info("startup seeding disabled")
				return nil
			}
			if _, err := seed.Orders(ctx); err != nil {
				return fmt.Errorf("seed orders: %w", err)
			}
			return nil
		},
	})
}
