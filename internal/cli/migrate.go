package cli

import (
	"context"
	"errors"

	"contest_arena/internal/platform/config"
	"contest_arena/internal/platform/database"
	"contest_arena/internal/platform/database/migrations"

	"github.com/spf13/cobra"
)

// newMigrateCmd applies database migrations.
func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runMigrations(cmd.Context(), cfg)
		},
	}
}

func runMigrations(ctx context.Context, cfg *config.Config) error {
	if cfg.StoreDriver != config.StoreDriverPostgres {
		return errors.New("migrations need STORE_DRIVER=postgres")
	}
	db, err := database.Connect(ctx, cfg.DBConnStr)
	if err != nil {
		return err
	}
	defer database.Close(db)
	return migrations.Apply(ctx, db)
}
