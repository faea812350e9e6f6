package models

import (
	"database/sql"
	"time"
)

// EmailAddress is an email address that belongs to a user.
type EmailAddress struct {
	ID              int64     `db:"id"`
	UserID          int64     `db:"user_id"`
	Email           string    `db:"email"`
	NormalizedEmail string    `db:"normalized_email"`
	Verified        bool      `db:"verified"`
	Primary         bool      `db:"primary"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// EmailConfirmation is a pending confirmation of an email address.
// Key holds the sha256 hash of the key sent to the user.
type EmailConfirmation struct {
	ID             int64        `db:"id"`
	EmailAddressID int64        `db:"email_address_id"`
	Key            string       `db:"key"`
	SentAt         sql.NullTime `db:"sent_at"`
	CreatedAt      time.Time    `db:"created_at"`
}
