package proto

import "time"

// AccessToken represents an access token.
type AccessToken struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	UserID    int64     `json:"-"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
