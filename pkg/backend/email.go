package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/soft-mail/pkg/db"
	"github.com/charmbracelet/soft-mail/pkg/db/models"
	"github.com/charmbracelet/soft-mail/pkg/mail"
	"github.com/charmbracelet/soft-mail/pkg/proto"
	"github.com/charmbracelet/soft-mail/pkg/utils"
)

func emailAddress(m models.EmailAddress) proto.EmailAddress {
	return proto.EmailAddress{
		ID:        m.ID,
		UserID:    m.UserID,
		Email:     m.Email,
		Verified:  m.Verified,
		Primary:   m.Primary,
		CreatedAt: m.CreatedAt,
	}
}

func emailNotFound(err error) error {
	err = db.WrapError(err)
	if errors.Is(err, db.ErrRecordNotFound) {
		return proto.ErrEmailNotFound
	}
	return err
}

// EmailAddresses returns the addresses of user, primary first.
func (d *Backend) EmailAddresses(ctx context.Context, user proto.User) ([]proto.EmailAddress, error) {
	ms, err := d.store.ListEmailAddressesByUserID(ctx, d.db, user.ID())
	if err != nil {
		return nil, db.WrapError(err)
	}

	addrs := make([]proto.EmailAddress, 0, len(ms))
	for _, m := range ms {
		addrs = append(addrs, emailAddress(m))
	}

	return addrs, nil
}

// EmailAddress returns one of user's addresses.
func (d *Backend) EmailAddress(ctx context.Context, user proto.User, id int64) (proto.EmailAddress, error) {
	m, err := d.store.GetEmailAddressForUser(ctx, d.db, user.ID(), id)
	if err != nil {
		return proto.EmailAddress{}, emailNotFound(err)
	}

	return emailAddress(m), nil
}

// FindEmailAddress returns user's address matching email, ignoring case.
func (d *Backend) FindEmailAddress(ctx context.Context, user proto.User, email string) (proto.EmailAddress, error) {
	m, err := d.store.FindEmailAddressForUser(ctx, d.db, user.ID(), email)
	if err != nil {
		return proto.EmailAddress{}, emailNotFound(err)
	}

	return emailAddress(m), nil
}

// PrimaryEmailAddress returns user's primary address.
func (d *Backend) PrimaryEmailAddress(ctx context.Context, user proto.User) (proto.EmailAddress, error) {
	m, err := d.store.GetPrimaryEmailAddress(ctx, d.db, user.ID())
	if err != nil {
		return proto.EmailAddress{}, emailNotFound(err)
	}

	return emailAddress(m), nil
}

// CountEmailAddresses returns how many addresses user has.
func (d *Backend) CountEmailAddresses(ctx context.Context, user proto.User) (int, error) {
	n, err := d.store.CountEmailAddressesByUserID(ctx, d.db, user.ID())
	return n, db.WrapError(err)
}

// EmailAddressInUse reports whether another user has the address.
func (d *Backend) EmailAddressInUse(ctx context.Context, user proto.User, email string) (bool, error) {
	used, err := d.store.EmailAddressUsedByOthers(ctx, d.db, user.ID(), email)
	return used, db.WrapError(err)
}

// AddEmailAddress creates a new unverified address for user and sends it a
// confirmation email.
//
// The address is kept when the email can't be sent; the confirmation can be
// sent again with SendConfirmation.
func (d *Backend) AddEmailAddress(ctx context.Context, user proto.User, email string) (proto.EmailAddress, error) {
	email = utils.SanitizeEmail(email)
	if email == "" {
		return proto.EmailAddress{}, proto.ErrEmailRequired
	}

	var addr models.EmailAddress
	var key string
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		addr, err = d.store.CreateEmailAddress(ctx, tx, user.ID(), email)
		if err != nil {
			return db.WrapError(err)
		}

		key, err = d.createConfirmation(ctx, tx, addr.ID)
		return err
	}); err != nil {
		if errors.Is(err, db.ErrDuplicateKey) {
			return proto.EmailAddress{}, proto.ErrEmailAlreadyAdded
		}
		return proto.EmailAddress{}, err
	}

	d.logger.Info("email address added", "user", user.Username(), "email", addr.Email)

	if err := d.sendConfirmation(ctx, user, addr.Email, key); err != nil {
		return emailAddress(addr), err
	}

	return emailAddress(addr), nil
}

// createConfirmation stores a new confirmation key for an address and
// returns the plain text key. Older keys of the address are dropped.
func (d *Backend) createConfirmation(ctx context.Context, h db.Handler, addressID int64) (string, error) {
	if err := d.store.DeleteEmailConfirmationsByAddressID(ctx, h, addressID); err != nil {
		return "", db.WrapError(err)
	}

	key := GenerateConfirmationKey()
	if key == "" {
		return "", errors.New("failed to generate confirmation key")
	}

	if _, err := d.store.CreateEmailConfirmation(ctx, h, addressID, HashToken(key), d.now()); err != nil {
		return "", db.WrapError(err)
	}

	return key, nil
}

// ConfirmationLink returns the URL that confirms key.
func (d *Backend) ConfirmationLink(key string) string {
	return fmt.Sprintf("%s/api/v1/confirm-email/%s", d.issuer(), key)
}

func (d *Backend) sendConfirmation(ctx context.Context, user proto.User, email, key string) error {
	name := "Soft Mail"
	if d.cfg != nil && d.cfg.Name != "" {
		name = d.cfg.Name
	}

	msg, err := mail.Confirmation{
		ServerName: name,
		Username:   user.Username(),
		Email:      email,
		Link:       d.ConfirmationLink(key),
		ExpiresAt:  d.now().Add(d.email.ConfirmationTTL),
	}.Message()
	if err != nil {
		return err //nolint:wrapcheck
	}

	return d.mailer.Send(ctx, msg) //nolint:wrapcheck
}

// SendConfirmation sends a new confirmation email for one of user's
// unverified addresses. It fails with proto.ErrResendTooSoon while the
// previous email is within the resend cooldown.
func (d *Backend) SendConfirmation(ctx context.Context, user proto.User, id int64) error {
	var addr models.EmailAddress
	var key string
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		addr, err = d.store.GetEmailAddressForUser(ctx, tx, user.ID(), id)
		if err != nil {
			return emailNotFound(err)
		}

		if addr.Verified {
			return proto.ErrEmailVerified
		}

		if cooldown := d.email.ResendCooldown; cooldown > 0 {
			last, err := d.store.GetLatestEmailConfirmation(ctx, tx, addr.ID)
			switch err := db.WrapError(err); {
			case errors.Is(err, db.ErrRecordNotFound):
			case err != nil:
				return err
			case last.SentAt.Valid && d.now().Before(last.SentAt.Time.Add(cooldown)):
				return proto.ErrResendTooSoon
			}
		}

		key, err = d.createConfirmation(ctx, tx, addr.ID)
		return err
	}); err != nil {
		return err
	}

	return d.sendConfirmation(ctx, user, addr.Email, key)
}

// EmailConfirmation returns the address a pending confirmation key was sent
// to without verifying it. It fails like ConfirmEmail for unknown and
// expired keys.
func (d *Backend) EmailConfirmation(ctx context.Context, key string) (proto.EmailAddress, error) {
	if key == "" {
		return proto.EmailAddress{}, proto.ErrConfirmationNotFound
	}

	addr, err := d.confirmationAddress(ctx, d.db, key)
	if err != nil {
		return proto.EmailAddress{}, err
	}

	return emailAddress(addr), nil
}

func (d *Backend) confirmationAddress(ctx context.Context, h db.Handler, key string) (models.EmailAddress, error) {
	c, err := d.store.GetEmailConfirmationByKey(ctx, h, HashToken(key))
	if err != nil {
		err = db.WrapError(err)
		if errors.Is(err, db.ErrRecordNotFound) {
			return models.EmailAddress{}, proto.ErrConfirmationNotFound
		}
		return models.EmailAddress{}, err
	}

	if !c.SentAt.Valid || !d.now().Before(c.SentAt.Time.Add(d.email.ConfirmationTTL)) {
		return models.EmailAddress{}, proto.ErrConfirmationExpired
	}

	addr, err := d.store.GetEmailAddressByID(ctx, h, c.EmailAddressID)
	if err != nil {
		return models.EmailAddress{}, emailNotFound(err)
	}

	return addr, nil
}

// ConfirmEmail completes the verification of the address the key was sent
// to. Unknown keys fail with proto.ErrConfirmationNotFound and keys older
// than the confirmation TTL with proto.ErrConfirmationExpired.
func (d *Backend) ConfirmEmail(ctx context.Context, key string) (proto.EmailAddress, error) {
	if key == "" {
		return proto.EmailAddress{}, proto.ErrConfirmationNotFound
	}

	var addr models.EmailAddress
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		addr, err = d.confirmationAddress(ctx, tx, key)
		if err != nil {
			return err
		}

		addr, err = d.verify(ctx, tx, addr)
		if err != nil {
			return err
		}

		return db.WrapError(d.store.DeleteEmailConfirmationsByAddressID(ctx, tx, addr.ID))
	}); err != nil {
		return proto.EmailAddress{}, err
	}

	d.cache.Delete(addr.UserID)
	d.logger.Info("email address confirmed", "email", addr.Email, "primary", addr.Primary)
	return emailAddress(addr), nil
}

// VerifyEmailAddress marks one of user's addresses as verified without a
// confirmation key. It applies the same primary rules as ConfirmEmail.
func (d *Backend) VerifyEmailAddress(ctx context.Context, user proto.User, id int64) (proto.EmailAddress, error) {
	var addr models.EmailAddress
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		addr, err = d.store.GetEmailAddressForUser(ctx, tx, user.ID(), id)
		if err != nil {
			return emailNotFound(err)
		}

		addr, err = d.verify(ctx, tx, addr)
		if err != nil {
			return err
		}

		return db.WrapError(d.store.DeleteEmailConfirmationsByAddressID(ctx, tx, addr.ID))
	}); err != nil {
		return proto.EmailAddress{}, err
	}

	d.cache.Delete(user.ID())
	return emailAddress(addr), nil
}

// verify marks addr verified. It becomes primary when SetPrimaryAtVerified
// is set or when its user has no primary address yet; the previous primary
// is demoted and the user's email is synced.
func (d *Backend) verify(ctx context.Context, tx db.Handler, addr models.EmailAddress) (models.EmailAddress, error) {
	if err := d.store.SetEmailAddressVerified(ctx, tx, addr.ID, true); err != nil {
		return addr, db.WrapError(err)
	}
	addr.Verified = true

	if addr.Primary {
		return addr, nil
	}

	makePrimary := d.email.SetPrimaryAtVerified
	if !makePrimary {
		_, err := d.store.GetPrimaryEmailAddress(ctx, tx, addr.UserID)
		switch err := db.WrapError(err); {
		case errors.Is(err, db.ErrRecordNotFound):
			makePrimary = true
		case err != nil:
			return addr, err
		}
	}

	if !makePrimary {
		return addr, nil
	}

	if err := d.setPrimary(ctx, tx, addr); err != nil {
		return addr, err
	}
	addr.Primary = true

	return addr, nil
}

// setPrimary makes addr its user's only primary address.
func (d *Backend) setPrimary(ctx context.Context, tx db.Handler, addr models.EmailAddress) error {
	if err := d.store.UnsetPrimaryEmailAddresses(ctx, tx, addr.UserID); err != nil {
		return db.WrapError(err)
	}
	if err := d.store.SetEmailAddressPrimary(ctx, tx, addr.ID); err != nil {
		return db.WrapError(err)
	}
	return db.WrapError(d.store.SetUserEmail(ctx, tx, addr.UserID, addr.Email))
}

// SetPrimaryEmailAddress makes one of user's addresses primary. An
// unverified address is refused when user has a verified one.
func (d *Backend) SetPrimaryEmailAddress(ctx context.Context, user proto.User, id int64) (proto.EmailAddress, error) {
	var addr models.EmailAddress
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		addr, err = d.store.GetEmailAddressForUser(ctx, tx, user.ID(), id)
		if err != nil {
			return emailNotFound(err)
		}

		if addr.Primary {
			return nil
		}

		if !addr.Verified {
			n, err := d.store.CountVerifiedEmailAddressesByUserID(ctx, tx, user.ID())
			if err != nil {
				return db.WrapError(err)
			}
			if n > 0 {
				return proto.ErrEmailNotVerified
			}
		}

		if err := d.setPrimary(ctx, tx, addr); err != nil {
			return err
		}
		addr.Primary = true
		return nil
	}); err != nil {
		return proto.EmailAddress{}, err
	}

	d.cache.Delete(user.ID())
	return emailAddress(addr), nil
}

// RemoveEmailAddress deletes one of user's addresses and its pending
// confirmations. The primary address can't be removed.
func (d *Backend) RemoveEmailAddress(ctx context.Context, user proto.User, id int64) error {
	return d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		addr, err := d.store.GetEmailAddressForUser(ctx, tx, user.ID(), id)
		if err != nil {
			return emailNotFound(err)
		}

		if addr.Primary {
			return proto.ErrPrimaryEmail
		}

		if err := d.store.DeleteEmailConfirmationsByAddressID(ctx, tx, addr.ID); err != nil {
			return db.WrapError(err)
		}

		return db.WrapError(d.store.DeleteEmailAddress(ctx, tx, addr.ID))
	})
}

// PurgeExpiredConfirmations deletes the confirmation keys that can no longer
// be used and returns how many were removed.
func (d *Backend) PurgeExpiredConfirmations(ctx context.Context) (int64, error) {
	before := d.now().Add(-d.email.ConfirmationTTL)
	var n int64
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		n, err = d.store.DeleteEmailConfirmationsSentBefore(ctx, tx, before)
		return db.WrapError(err)
	}); err != nil {
		return 0, err
	}

	if n > 0 {
		d.logger.Info("purged expired confirmations", "count", n)
	}

	return n, nil
}

