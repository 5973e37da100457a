package main

import (
	"github.com/deppfellow/newsletter/internal/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.FromConfig(cfg.Database)
		if err != nil {
			return err
		}

		return database.Migrate(cmd.Context(), &log, db)
	},
}
