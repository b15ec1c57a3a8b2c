package main

import (
	"invoicer/internal/database"
	"invoicer/internal/logger"

	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.WithComponent(logger.ComponentCLI)

			db, err := a.connect()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return err
			}

			log.Info().Msg("schema is up to date")
			return nil
		},
	}
}
