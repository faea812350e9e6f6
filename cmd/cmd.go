// Package cmd holds helpers shared by the soft-mail commands.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/soft-mail/pkg/backend"
	"github.com/charmbracelet/soft-mail/pkg/config"
	"github.com/charmbracelet/soft-mail/pkg/db"
	"github.com/charmbracelet/soft-mail/pkg/db/migrate"
	"github.com/charmbracelet/soft-mail/pkg/mail"
	"github.com/charmbracelet/soft-mail/pkg/store"
	"github.com/charmbracelet/soft-mail/pkg/store/database"
	"github.com/spf13/cobra"
)

// InitDBContext opens the database and stores it in the command context.
func InitDBContext(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	if _, err := os.Stat(cfg.DataPath); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(cfg.DataPath, os.ModePerm); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}

	dbx, err := db.Open(ctx, cfg.DB.Driver, cfg.DB.DataSource)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	cmd.SetContext(db.WithContext(ctx, dbx))
	return nil
}

// InitBackendContext opens and migrates the database, then stores the
// store and backend in the command context.
func InitBackendContext(cmd *cobra.Command, args []string) error {
	if err := InitDBContext(cmd, args); err != nil {
		return err
	}

	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	dbx := db.FromContext(ctx)
	if err := migrate.Migrate(ctx, dbx); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	mailer, err := mail.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}

	dbstore := database.New(ctx, dbx)
	ctx = store.WithContext(ctx, dbstore)
	be := backend.New(ctx, cfg, dbx, dbstore,
		backend.WithMailer(mailer),
		backend.WithEmailOptions(backend.EmailOptionsFromConfig(cfg)),
	)
	ctx = backend.WithContext(ctx, be)

	cmd.SetContext(ctx)
	return nil
}

// CloseDBContext closes the database context.
func CloseDBContext(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	dbx := db.FromContext(ctx)
	if dbx != nil {
		if err := dbx.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}

	return nil
}
