package migrate

import (
	"context"

	"github.com/charmbracelet/soft-mail/pkg/db"
	"github.com/charmbracelet/soft-mail/pkg/utils"
)

const (
	createEmailTablesName    = "create email tables"
	createEmailTablesVersion = 2
)

var createEmailTables = Migration{
	Version: createEmailTablesVersion,
	Name:    createEmailTablesName,
	Migrate: func(ctx context.Context, tx *db.Tx) error {
		if err := migrateUp(ctx, tx, createEmailTablesVersion, createEmailTablesName); err != nil {
			return err
		}

		// Users created before this migration keep their address as a
		// verified primary one.
		var users []struct {
			ID    int64  `db:"id"`
			Email string `db:"email"`
		}
		if err := tx.SelectContext(ctx, &users, `SELECT id, email FROM users
			WHERE email IS NOT NULL AND email <> ''`); err != nil {
			return err //nolint:wrapcheck
		}

		insert := tx.Rebind(`INSERT INTO email_addresses (user_id, email, normalized_email, verified, "primary", updated_at)
			VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`)
		for _, u := range users {
			email := utils.SanitizeEmail(u.Email)
			if _, err := tx.ExecContext(ctx, insert, u.ID, email, utils.NormalizeEmail(email), true, true); err != nil {
				return err //nolint:wrapcheck
			}
		}

		return nil
	},
	Rollback: func(ctx context.Context, tx *db.Tx) error {
		return migrateDown(ctx, tx, createEmailTablesVersion, createEmailTablesName)
	},
}
