// Package store defines the data access interfaces used by the backend.
package store

// Store is an interface for managing users, access tokens, and email
// addresses.
type Store interface {
	UserStore
	AccessTokenStore
	EmailAddressStore
	EmailConfirmationStore
}
