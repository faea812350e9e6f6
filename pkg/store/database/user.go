package database

import (
	"context"

	"github.com/charmbracelet/soft-mail/pkg/db"
	"github.com/charmbracelet/soft-mail/pkg/db/models"
	"github.com/charmbracelet/soft-mail/pkg/store"
	"github.com/charmbracelet/soft-mail/pkg/utils"
)

type userStore struct{}

var _ store.UserStore = (*userStore)(nil)

// CreateUser implements store.UserStore.
func (s *userStore) CreateUser(ctx context.Context, tx db.Handler, username string, isAdmin bool) (models.User, error) {
	username = utils.SanitizeUsername(username)
	if err := utils.ValidateUsername(username); err != nil {
		return models.User{}, err //nolint:wrapcheck
	}

	query := tx.Rebind(`INSERT INTO users (username, admin, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP) RETURNING id;`)

	var userID int64
	if err := tx.GetContext(ctx, &userID, query, username, isAdmin); err != nil {
		return models.User{}, err //nolint:wrapcheck
	}

	return s.GetUserByID(ctx, tx, userID)
}

// DeleteUserByUsername implements store.UserStore.
func (*userStore) DeleteUserByUsername(ctx context.Context, tx db.Handler, username string) error {
	username = utils.SanitizeUsername(username)
	if err := utils.ValidateUsername(username); err != nil {
		return err //nolint:wrapcheck
	}

	query := tx.Rebind(`DELETE FROM users WHERE username = ?;`)
	_, err := tx.ExecContext(ctx, query, username)
	return err //nolint:wrapcheck
}

// GetUserByID implements store.UserStore.
func (*userStore) GetUserByID(ctx context.Context, tx db.Handler, id int64) (models.User, error) {
	var m models.User
	query := tx.Rebind(`SELECT * FROM users WHERE id = ?;`)
	err := tx.GetContext(ctx, &m, query, id)
	return m, err //nolint:wrapcheck
}

// FindUserByUsername implements store.UserStore.
func (*userStore) FindUserByUsername(ctx context.Context, tx db.Handler, username string) (models.User, error) {
	username = utils.SanitizeUsername(username)
	if err := utils.ValidateUsername(username); err != nil {
		return models.User{}, err //nolint:wrapcheck
	}

	var m models.User
	query := tx.Rebind(`SELECT * FROM users WHERE username = ?;`)
	err := tx.GetContext(ctx, &m, query, username)
	return m, err //nolint:wrapcheck
}

// FindUserByAccessToken implements store.UserStore.
func (*userStore) FindUserByAccessToken(ctx context.Context, tx db.Handler, token string) (models.User, error) {
	var m models.User
	query := tx.Rebind(`SELECT users.*
			FROM users
			INNER JOIN access_tokens ON users.id = access_tokens.user_id
			WHERE access_tokens.token = ?;`)
	err := tx.GetContext(ctx, &m, query, token)
	return m, err //nolint:wrapcheck
}

// FindUserByPrimaryEmail implements store.UserStore.
func (*userStore) FindUserByPrimaryEmail(ctx context.Context, tx db.Handler, email string) (models.User, error) {
	var m models.User
	query := tx.Rebind(`SELECT users.*
			FROM users
			INNER JOIN email_addresses ON users.id = email_addresses.user_id
			WHERE email_addresses.normalized_email = ?
			AND email_addresses."primary" = ?;`)
	err := tx.GetContext(ctx, &m, query, utils.NormalizeEmail(email), true)
	return m, err //nolint:wrapcheck
}

// GetAllUsers implements store.UserStore.
func (*userStore) GetAllUsers(ctx context.Context, tx db.Handler) ([]models.User, error) {
	var ms []models.User
	query := tx.Rebind(`SELECT * FROM users ORDER BY id ASC;`)
	err := tx.SelectContext(ctx, &ms, query)
	return ms, err //nolint:wrapcheck
}

// SetAdminByUsername implements store.UserStore.
func (*userStore) SetAdminByUsername(ctx context.Context, tx db.Handler, username string, isAdmin bool) error {
	username = utils.SanitizeUsername(username)
	if err := utils.ValidateUsername(username); err != nil {
		return err //nolint:wrapcheck
	}

	query := tx.Rebind(`UPDATE users SET admin = ?, updated_at = CURRENT_TIMESTAMP WHERE username = ?;`)
	_, err := tx.ExecContext(ctx, query, isAdmin, username)
	return err //nolint:wrapcheck
}

// SetUserPassword implements store.UserStore.
func (*userStore) SetUserPassword(ctx context.Context, tx db.Handler, userID int64, password string) error {
	query := tx.Rebind(`UPDATE users SET password = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?;`)
	_, err := tx.ExecContext(ctx, query, password, userID)
	return err //nolint:wrapcheck
}

// SetUserPasswordByUsername implements store.UserStore.
func (*userStore) SetUserPasswordByUsername(ctx context.Context, tx db.Handler, username string, password string) error {
	username = utils.SanitizeUsername(username)
	if err := utils.ValidateUsername(username); err != nil {
		return err //nolint:wrapcheck
	}

	query := tx.Rebind(`UPDATE users SET password = ?, updated_at = CURRENT_TIMESTAMP WHERE username = ?;`)
	_, err := tx.ExecContext(ctx, query, password, username)
	return err //nolint:wrapcheck
}

// SetUserEmail implements store.UserStore.
// An empty email clears the column.
func (*userStore) SetUserEmail(ctx context.Context, tx db.Handler, userID int64, email string) error {
	var value interface{}
	if email != "" {
		value = email
	}
	query := tx.Rebind(`UPDATE users SET email = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?;`)
	_, err := tx.ExecContext(ctx, query, value, userID)
	return err //nolint:wrapcheck
}
