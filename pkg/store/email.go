package store

import (
	"context"
	"time"

	"github.com/charmbracelet/soft-mail/pkg/db"
	"github.com/charmbracelet/soft-mail/pkg/db/models"
)

// EmailAddressStore is an interface for managing user email addresses.
// Addresses are matched case-insensitively.
type EmailAddressStore interface {
	CreateEmailAddress(ctx context.Context, h db.Handler, userID int64, email string) (models.EmailAddress, error)
	GetEmailAddressByID(ctx context.Context, h db.Handler, id int64) (models.EmailAddress, error)
	GetEmailAddressForUser(ctx context.Context, h db.Handler, userID int64, id int64) (models.EmailAddress, error)
	FindEmailAddressForUser(ctx context.Context, h db.Handler, userID int64, email string) (models.EmailAddress, error)
	GetPrimaryEmailAddress(ctx context.Context, h db.Handler, userID int64) (models.EmailAddress, error)
	ListEmailAddressesByUserID(ctx context.Context, h db.Handler, userID int64) ([]models.EmailAddress, error)
	CountEmailAddressesByUserID(ctx context.Context, h db.Handler, userID int64) (int, error)
	CountVerifiedEmailAddressesByUserID(ctx context.Context, h db.Handler, userID int64) (int, error)
	EmailAddressUsedByOthers(ctx context.Context, h db.Handler, userID int64, email string) (bool, error)
	SetEmailAddressVerified(ctx context.Context, h db.Handler, id int64, verified bool) error
	SetEmailAddressPrimary(ctx context.Context, h db.Handler, id int64) error
	UnsetPrimaryEmailAddresses(ctx context.Context, h db.Handler, userID int64) error
	DeleteEmailAddress(ctx context.Context, h db.Handler, id int64) error
}

// EmailConfirmationStore is an interface for managing email confirmation keys.
// Keys are stored hashed.
type EmailConfirmationStore interface {
	CreateEmailConfirmation(ctx context.Context, h db.Handler, emailAddressID int64, key string, sentAt time.Time) (models.EmailConfirmation, error)
	GetEmailConfirmationByKey(ctx context.Context, h db.Handler, key string) (models.EmailConfirmation, error)
	GetLatestEmailConfirmation(ctx context.Context, h db.Handler, emailAddressID int64) (models.EmailConfirmation, error)
	DeleteEmailConfirmation(ctx context.Context, h db.Handler, id int64) error
	DeleteEmailConfirmationsByAddressID(ctx context.Context, h db.Handler, emailAddressID int64) error
	DeleteEmailConfirmationsSentBefore(ctx context.Context, h db.Handler, before time.Time) (int64, error)
}
