package migrate

import (
	"context"
	"fmt"

	"github.com/cheftrack/cheftrack-backend/pkg/config"
	"github.com/cheftrack/cheftrack-backend/pkg/database"
	"github.com/cheftrack/cheftrack-backend/pkg/logger"
)

// MaybeAutoRun applies pending migrations when database.auto_migrate is set
func MaybeAutoRun(ctx context.Context, cfg *config.Config, log *logger.Logger, db *database.DB) error {
	if !cfg.Database.AutoMigrate {
		return nil
	}

	log.Info().Str("env", cfg.Server.Environment).Msg("running goose migrations (auto-migrate)")

	if err := Run(ctx, db.DB.DB, "up"); err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	log.Info().Msg("goose migrations completed")
	return nil
}
