package database

import (
	"context"
	"time"

	"github.com/charmbracelet/soft-mail/pkg/db"
	"github.com/charmbracelet/soft-mail/pkg/db/models"
	"github.com/charmbracelet/soft-mail/pkg/store"
	"github.com/charmbracelet/soft-mail/pkg/utils"
)

type emailAddressStore struct{}

var _ store.EmailAddressStore = (*emailAddressStore)(nil)

// CreateEmailAddress implements store.EmailAddressStore.
// New addresses are neither verified nor primary.
func (s *emailAddressStore) CreateEmailAddress(ctx context.Context, h db.Handler, userID int64, email string) (models.EmailAddress, error) {
	query := h.Rebind(`INSERT INTO email_addresses (user_id, email, normalized_email, verified, "primary", updated_at)
			VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP) RETURNING id;`)

	var id int64
	if err := h.GetContext(ctx, &id, query, userID, utils.SanitizeEmail(email), utils.NormalizeEmail(email), false, false); err != nil {
		return models.EmailAddress{}, err //nolint:wrapcheck
	}

	return s.GetEmailAddressByID(ctx, h, id)
}

// GetEmailAddressByID implements store.EmailAddressStore.
func (*emailAddressStore) GetEmailAddressByID(ctx context.Context, h db.Handler, id int64) (models.EmailAddress, error) {
	var m models.EmailAddress
	query := h.Rebind(`SELECT * FROM email_addresses WHERE id = ?;`)
	err := h.GetContext(ctx, &m, query, id)
	return m, err //nolint:wrapcheck
}

// GetEmailAddressForUser implements store.EmailAddressStore.
func (*emailAddressStore) GetEmailAddressForUser(ctx context.Context, h db.Handler, userID int64, id int64) (models.EmailAddress, error) {
	var m models.EmailAddress
	query := h.Rebind(`SELECT * FROM email_addresses WHERE user_id = ? AND id = ?;`)
	err := h.GetContext(ctx, &m, query, userID, id)
	return m, err //nolint:wrapcheck
}

// FindEmailAddressForUser implements store.EmailAddressStore.
func (*emailAddressStore) FindEmailAddressForUser(ctx context.Context, h db.Handler, userID int64, email string) (models.EmailAddress, error) {
	var m models.EmailAddress
	query := h.Rebind(`SELECT * FROM email_addresses WHERE user_id = ? AND normalized_email = ?;`)
	err := h.GetContext(ctx, &m, query, userID, utils.NormalizeEmail(email))
	return m, err //nolint:wrapcheck
}

// GetPrimaryEmailAddress implements store.EmailAddressStore.
func (*emailAddressStore) GetPrimaryEmailAddress(ctx context.Context, h db.Handler, userID int64) (models.EmailAddress, error) {
	var m models.EmailAddress
	query := h.Rebind(`SELECT * FROM email_addresses WHERE user_id = ? AND "primary" = ?;`)
	err := h.GetContext(ctx, &m, query, userID, true)
	return m, err //nolint:wrapcheck
}

// ListEmailAddressesByUserID implements store.EmailAddressStore.
// The primary address comes first, the rest in creation order.
func (*emailAddressStore) ListEmailAddressesByUserID(ctx context.Context, h db.Handler, userID int64) ([]models.EmailAddress, error) {
	var ms []models.EmailAddress
	query := h.Rebind(`SELECT * FROM email_addresses
			WHERE user_id = ?
			ORDER BY "primary" DESC, id ASC;`)
	err := h.SelectContext(ctx, &ms, query, userID)
	return ms, err //nolint:wrapcheck
}

// CountEmailAddressesByUserID implements store.EmailAddressStore.
func (*emailAddressStore) CountEmailAddressesByUserID(ctx context.Context, h db.Handler, userID int64) (int, error) {
	var n int
	query := h.Rebind(`SELECT COUNT(*) FROM email_addresses WHERE user_id = ?;`)
	err := h.GetContext(ctx, &n, query, userID)
	return n, err //nolint:wrapcheck
}

// CountVerifiedEmailAddressesByUserID implements store.EmailAddressStore.
func (*emailAddressStore) CountVerifiedEmailAddressesByUserID(ctx context.Context, h db.Handler, userID int64) (int, error) {
	var n int
	query := h.Rebind(`SELECT COUNT(*) FROM email_addresses WHERE user_id = ? AND verified = ?;`)
	err := h.GetContext(ctx, &n, query, userID, true)
	return n, err //nolint:wrapcheck
}

// EmailAddressUsedByOthers implements store.EmailAddressStore.
func (*emailAddressStore) EmailAddressUsedByOthers(ctx context.Context, h db.Handler, userID int64, email string) (bool, error) {
	var n int
	query := h.Rebind(`SELECT COUNT(*) FROM email_addresses WHERE user_id <> ? AND normalized_email = ?;`)
	if err := h.GetContext(ctx, &n, query, userID, utils.NormalizeEmail(email)); err != nil {
		return false, err //nolint:wrapcheck
	}
	return n > 0, nil
}

// SetEmailAddressVerified implements store.EmailAddressStore.
func (*emailAddressStore) SetEmailAddressVerified(ctx context.Context, h db.Handler, id int64, verified bool) error {
	query := h.Rebind(`UPDATE email_addresses SET verified = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, verified, id)
	return err //nolint:wrapcheck
}

// SetEmailAddressPrimary implements store.EmailAddressStore.
// Callers must demote the user's current primary address first.
func (*emailAddressStore) SetEmailAddressPrimary(ctx context.Context, h db.Handler, id int64) error {
	query := h.Rebind(`UPDATE email_addresses SET "primary" = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, true, id)
	return err //nolint:wrapcheck
}

// UnsetPrimaryEmailAddresses implements store.EmailAddressStore.
func (*emailAddressStore) UnsetPrimaryEmailAddresses(ctx context.Context, h db.Handler, userID int64) error {
	query := h.Rebind(`UPDATE email_addresses SET "primary" = ?, updated_at = CURRENT_TIMESTAMP
			WHERE user_id = ? AND "primary" = ?;`)
	_, err := h.ExecContext(ctx, query, false, userID, true)
	return err //nolint:wrapcheck
}

// DeleteEmailAddress implements store.EmailAddressStore.
func (*emailAddressStore) DeleteEmailAddress(ctx context.Context, h db.Handler, id int64) error {
	query := h.Rebind(`DELETE FROM email_addresses WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, id)
	return err //nolint:wrapcheck
}

type emailConfirmationStore struct{}

var _ store.EmailConfirmationStore = (*emailConfirmationStore)(nil)

// CreateEmailConfirmation implements store.EmailConfirmationStore.
func (s *emailConfirmationStore) CreateEmailConfirmation(ctx context.Context, h db.Handler, emailAddressID int64, key string, sentAt time.Time) (models.EmailConfirmation, error) {
	query := h.Rebind(`INSERT INTO email_confirmations (email_address_id, key, sent_at, created_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP) RETURNING id;`)

	var id int64
	if err := h.GetContext(ctx, &id, query, emailAddressID, key, sentAt.UTC()); err != nil {
		return models.EmailConfirmation{}, err //nolint:wrapcheck
	}

	var m models.EmailConfirmation
	err := h.GetContext(ctx, &m, h.Rebind(`SELECT * FROM email_confirmations WHERE id = ?;`), id)
	return m, err //nolint:wrapcheck
}

// GetEmailConfirmationByKey implements store.EmailConfirmationStore.
func (*emailConfirmationStore) GetEmailConfirmationByKey(ctx context.Context, h db.Handler, key string) (models.EmailConfirmation, error) {
	var m models.EmailConfirmation
	query := h.Rebind(`SELECT * FROM email_confirmations WHERE key = ?;`)
	err := h.GetContext(ctx, &m, query, key)
	return m, err //nolint:wrapcheck
}

// GetLatestEmailConfirmation implements store.EmailConfirmationStore.
func (*emailConfirmationStore) GetLatestEmailConfirmation(ctx context.Context, h db.Handler, emailAddressID int64) (models.EmailConfirmation, error) {
	var m models.EmailConfirmation
	query := h.Rebind(`SELECT * FROM email_confirmations
			WHERE email_address_id = ?
			ORDER BY id DESC LIMIT 1;`)
	err := h.GetContext(ctx, &m, query, emailAddressID)
	return m, err //nolint:wrapcheck
}

// DeleteEmailConfirmation implements store.EmailConfirmationStore.
func (*emailConfirmationStore) DeleteEmailConfirmation(ctx context.Context, h db.Handler, id int64) error {
	query := h.Rebind(`DELETE FROM email_confirmations WHERE id = ?;`)
	_, err := h.ExecContext(ctx, query, id)
	return err //nolint:wrapcheck
}

// DeleteEmailConfirmationsByAddressID implements store.EmailConfirmationStore.
func (*emailConfirmationStore) DeleteEmailConfirmationsByAddressID(ctx context.Context, h db.Handler, emailAddressID int64) error {
	query := h.Rebind(`DELETE FROM email_confirmations WHERE email_address_id = ?;`)
	_, err := h.ExecContext(ctx, query, emailAddressID)
	return err //nolint:wrapcheck
}

// DeleteEmailConfirmationsSentBefore implements store.EmailConfirmationStore.
func (*emailConfirmationStore) DeleteEmailConfirmationsSentBefore(ctx context.Context, h db.Handler, before time.Time) (int64, error) {
	query := h.Rebind(`DELETE FROM email_confirmations WHERE sent_at < ?;`)
	res, err := h.ExecContext(ctx, query, before.UTC())
	if err != nil {
		return 0, err //nolint:wrapcheck
	}
	return res.RowsAffected() //nolint:wrapcheck
}
