package proto

import "time"

// EmailAddress is an email address attached to a user.
type EmailAddress struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Email     string    `json:"email"`
	Verified  bool      `json:"verified"`
	Primary   bool      `json:"primary"`
	CreatedAt time.Time `json:"created_at"`
}

// EmailConfirmation is the result of creating a confirmation. Key is the
// plain text key and is only known at creation time.
type EmailConfirmation struct {
	ID             int64
	EmailAddressID int64
	Key            string
	SentAt         time.Time
	ExpiresAt      time.Time
}
