package main

import (
	"fmt"

	"github.com/charmbracelet/soft-mail/cmd"
	"github.com/charmbracelet/soft-mail/pkg/db"
	"github.com/charmbracelet/soft-mail/pkg/db/migrate"
	"github.com/spf13/cobra"
)

var (
	rollback bool

	migrateCmd = &cobra.Command{
		Use:                "migrate",
		Short:              "Migrate the database to the latest version",
		Args:               cobra.NoArgs,
		PersistentPreRunE:  cmd.InitDBContext,
		PersistentPostRunE: cmd.CloseDBContext,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			dbx := db.FromContext(ctx)

			if rollback {
				if err := migrate.Rollback(ctx, dbx); err != nil {
					return fmt.Errorf("rollback error: %w", err)
				}
			} else if err := migrate.Migrate(ctx, dbx); err != nil {
				return fmt.Errorf("migration error: %w", err)
			}

			version, err := migrate.Version(ctx, dbx)
			if err != nil {
				return err
			}

			c.Printf("Database at version %d\n", version)
			return nil
		},
	}
)

func init() {
	migrateCmd.Flags().BoolVar(&rollback, "rollback", false, "roll back the latest migration")
}
