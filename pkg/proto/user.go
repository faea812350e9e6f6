// Package proto holds the types and errors shared between the backend and
// its frontends.
package proto

// User is an interface representing a user.
type User interface {
	// ID returns the user's ID.
	ID() int64
	// Username returns the user's username.
	Username() string
	// IsAdmin returns whether the user is an admin.
	IsAdmin() bool
	// Password returns the user's password hash.
	Password() string
	// Email returns the user's primary email address, or an empty string.
	Email() string
}

// UserOptions are options for creating a user.
type UserOptions struct {
	// Admin is whether the user is an admin.
	Admin bool
	// Password is the plain text password. It is hashed before storing.
	Password string
	// Email is an address attached to the user as its verified primary one.
	Email string
}
