package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joestump/promptpad/internal/db"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.New(cmd.Context(), a.cfg.DB.Driver, a.cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database, a.cfg.DB.Driver); err != nil {
				return err
			}
			version, err := db.Status(database, a.cfg.DB.Driver)
			if err != nil {
				return err
			}

			a.logger.Info("migrations complete", zap.String("driver", a.cfg.DB.Driver), zap.Int64("version", version))
			return nil
		},
	}
}
