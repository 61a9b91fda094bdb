package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stwalsh4118/playout/internal/db"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := ctx.openDatabase()
			if err != nil {
				return err
			}
			defer database.Close()

			sqlDB, err := database.GetSQLDB()
			if err != nil {
				return err
			}
			version, dirty, err := db.SchemaVersion(sqlDB)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty: %t)\n", version, dirty)
			return nil
		},
	}
}
