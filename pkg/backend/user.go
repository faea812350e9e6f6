package backend

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/soft-mail/pkg/db"
	"github.com/charmbracelet/soft-mail/pkg/db/models"
	"github.com/charmbracelet/soft-mail/pkg/proto"
	"github.com/charmbracelet/soft-mail/pkg/serializer"
	"github.com/charmbracelet/soft-mail/pkg/utils"
)

func userNotFound(err error) error {
	err = db.WrapError(err)
	if errors.Is(err, db.ErrRecordNotFound) {
		return proto.ErrUserNotFound
	}
	return err
}

// User finds a user by username.
func (d *Backend) User(ctx context.Context, username string) (proto.User, error) {
	username = utils.SanitizeUsername(username)
	if err := utils.ValidateUsername(username); err != nil {
		return nil, err //nolint:wrapcheck
	}

	m, err := d.store.FindUserByUsername(ctx, d.db, username)
	if err != nil {
		err = userNotFound(err)
		if !errors.Is(err, proto.ErrUserNotFound) {
			d.logger.Error("error finding user", "username", username, "error", err)
		}
		return nil, err
	}

	u := &user{user: m}
	d.cache.Set(u)
	return u, nil
}

// UserByID finds a user by ID.
func (d *Backend) UserByID(ctx context.Context, id int64) (proto.User, error) {
	if u, ok := d.cache.Get(id); ok {
		return u, nil
	}

	m, err := d.store.GetUserByID(ctx, d.db, id)
	if err != nil {
		err = userNotFound(err)
		if !errors.Is(err, proto.ErrUserNotFound) {
			d.logger.Error("error finding user", "id", id, "error", err)
		}
		return nil, err
	}

	u := &user{user: m}
	d.cache.Set(u)
	return u, nil
}

// UserByEmail finds a user by its primary email address.
func (d *Backend) UserByEmail(ctx context.Context, email string) (proto.User, error) {
	m, err := d.store.FindUserByPrimaryEmail(ctx, d.db, email)
	if err != nil {
		return nil, userNotFound(err)
	}

	return &user{user: m}, nil
}

// UserByAccessToken finds a user by access token.
// This also validates the token for expiration and returns proto.ErrTokenExpired.
func (d *Backend) UserByAccessToken(ctx context.Context, token string) (proto.User, error) {
	var m models.User
	token = HashToken(token)

	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		t, err := d.store.GetAccessTokenByToken(ctx, tx, token)
		if err != nil {
			return db.WrapError(err)
		}

		if t.ExpiresAt.Valid && t.ExpiresAt.Time.Before(d.now()) {
			return proto.ErrTokenExpired
		}

		m, err = d.store.FindUserByAccessToken(ctx, tx, token)
		return db.WrapError(err)
	}); err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			return nil, proto.ErrTokenNotFound
		}
		if !errors.Is(err, proto.ErrTokenExpired) {
			d.logger.Error("failed to find user by access token", "err", err)
		}
		return nil, err
	}

	return &user{user: m}, nil
}

// Users returns all users.
func (d *Backend) Users(ctx context.Context) ([]proto.User, error) {
	ms, err := d.store.GetAllUsers(ctx, d.db)
	if err != nil {
		return nil, db.WrapError(err)
	}

	users := make([]proto.User, 0, len(ms))
	for _, m := range ms {
		users = append(users, &user{user: m})
	}

	return users, nil
}

// CreateUser creates a new user. When opts.Email is set, it becomes the
// user's verified primary address. The address goes through the same
// syntax, domain and uniqueness checks as addresses added by users.
func (d *Backend) CreateUser(ctx context.Context, username string, opts proto.UserOptions) (proto.User, error) {
	username = utils.SanitizeUsername(username)
	if err := utils.ValidateUsername(username); err != nil {
		return nil, err //nolint:wrapcheck
	}

	var password string
	if opts.Password != "" {
		var err error
		password, err = HashPassword(opts.Password)
		if err != nil {
			return nil, err
		}
	}

	email := utils.SanitizeEmail(opts.Email)
	policy := serializer.EmailPolicyFromConfig(d.cfg)
	if email != "" {
		if err := serializer.CheckEmail(email, policy); err != nil {
			return nil, err //nolint:wrapcheck
		}
	}

	var m models.User
	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		var err error
		m, err = d.store.CreateUser(ctx, tx, username, opts.Admin)
		if err != nil {
			return db.WrapError(err)
		}

		if password != "" {
			if err := d.store.SetUserPassword(ctx, tx, m.ID, password); err != nil {
				return db.WrapError(err)
			}
		}

		if email != "" {
			if policy.Unique {
				used, err := d.store.EmailAddressUsedByOthers(ctx, tx, m.ID, email)
				if err != nil {
					return db.WrapError(err)
				}
				if used {
					return proto.ErrEmailExist
				}
			}

			addr, err := d.store.CreateEmailAddress(ctx, tx, m.ID, email)
			if err != nil {
				return db.WrapError(err)
			}
			if err := d.store.SetEmailAddressVerified(ctx, tx, addr.ID, true); err != nil {
				return db.WrapError(err)
			}
			if err := d.store.SetEmailAddressPrimary(ctx, tx, addr.ID); err != nil {
				return db.WrapError(err)
			}
			if err := d.store.SetUserEmail(ctx, tx, m.ID, addr.Email); err != nil {
				return db.WrapError(err)
			}
		}

		return nil
	}); err != nil {
		if errors.Is(err, db.ErrDuplicateKey) {
			return nil, proto.ErrUserExist
		}
		return nil, err
	}

	return d.UserByID(ctx, m.ID)
}

// DeleteUser deletes a user along with its addresses and tokens.
func (d *Backend) DeleteUser(ctx context.Context, username string) error {
	u, err := d.User(ctx, username)
	if err != nil {
		return err
	}

	if err := d.db.TransactionContext(ctx, func(tx *db.Tx) error {
		return db.WrapError(d.store.DeleteUserByUsername(ctx, tx, u.Username()))
	}); err != nil {
		return err
	}

	d.cache.Delete(u.ID())
	return nil
}

// SetAdmin sets the admin flag of a user.
func (d *Backend) SetAdmin(ctx context.Context, username string, admin bool) error {
	u, err := d.User(ctx, username)
	if err != nil {
		return err
	}

	defer d.cache.Delete(u.ID())
	return db.WrapError(
		d.db.TransactionContext(ctx, func(tx *db.Tx) error {
			return d.store.SetAdminByUsername(ctx, tx, u.Username(), admin)
		}),
	)
}

// SetPassword sets the password of a user.
func (d *Backend) SetPassword(ctx context.Context, username string, rawPassword string) error {
	u, err := d.User(ctx, username)
	if err != nil {
		return err
	}

	password, err := HashPassword(rawPassword)
	if err != nil {
		return err
	}

	defer d.cache.Delete(u.ID())
	return db.WrapError(
		d.db.TransactionContext(ctx, func(tx *db.Tx) error {
			return d.store.SetUserPasswordByUsername(ctx, tx, u.Username(), password)
		}),
	)
}

// AuthenticateUser checks a username and secret pair. The secret is either
// the user's password or one of its access tokens.
func (d *Backend) AuthenticateUser(ctx context.Context, username, secret string) (proto.User, error) {
	u, err := d.User(ctx, username)
	if err != nil {
		if errors.Is(err, proto.ErrUserNotFound) {
			return nil, proto.ErrUnauthorized
		}
		return nil, err
	}

	if hash := u.Password(); hash != "" && VerifyPassword(secret, hash) {
		return u, nil
	}

	tu, err := d.UserByAccessToken(ctx, secret)
	if err == nil && tu.ID() == u.ID() {
		return u, nil
	}

	return nil, proto.ErrUnauthorized
}

type user struct {
	user models.User
}

var _ proto.User = (*user)(nil)

// IsAdmin implements proto.User
func (u *user) IsAdmin() bool {
	return u.user.Admin
}

// Username implements proto.User
func (u *user) Username() string {
	return u.user.Username
}

// ID implements proto.User.
func (u *user) ID() int64 {
	return u.user.ID
}

// Password implements proto.User.
func (u *user) Password() string {
	if u.user.Password.Valid {
		return u.user.Password.String
	}

	return ""
}

// Email implements proto.User.
func (u *user) Email() string {
	if u.user.Email.Valid {
		return u.user.Email.String
	}

	return ""
}

// CreatedAt returns when the user was created.
func (u *user) CreatedAt() time.Time {
	return u.user.CreatedAt
}
