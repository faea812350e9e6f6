package proto

import (
	"errors"
)

var (
	// ErrUnauthorized is returned when the user is not authorized to perform action.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExist is returned when a username is already taken.
	ErrUserExist = errors.New("user already exists")
	// ErrTokenNotFound is returned when a token is not found.
	ErrTokenNotFound = errors.New("token not found")
	// ErrTokenExpired is returned when a token is expired.
	ErrTokenExpired = errors.New("token expired")

	// ErrEmailRequired is returned when no email address was given.
	ErrEmailRequired = errors.New("email address is required")
	// ErrEmailInvalid is returned when the address is not a valid email address.
	ErrEmailInvalid = errors.New("enter a valid email address")
	// ErrEmailDomainNotAllowed is returned when the address domain is not allowed.
	ErrEmailDomainNotAllowed = errors.New("email domain is not allowed")
	// ErrEmailExist is returned when the address is already in use.
	ErrEmailExist = errors.New("this email address is already associated with an account")
	// ErrEmailAlreadyAdded is returned when the user already has the address.
	ErrEmailAlreadyAdded = errors.New("this email address is already associated with this account")
	// ErrTooManyEmails is returned when the user can't add more addresses.
	ErrTooManyEmails = errors.New("you cannot add more email addresses")
	// ErrEmailNotFound is returned when an email address is not found.
	ErrEmailNotFound = errors.New("email address not found")
	// ErrEmailNotVerified is returned when an action needs a verified address.
	ErrEmailNotVerified = errors.New("email address is not verified")
	// ErrEmailVerified is returned when the address is already verified.
	ErrEmailVerified = errors.New("email address is already verified")
	// ErrPrimaryEmail is returned when trying to remove the primary address.
	ErrPrimaryEmail = errors.New("you cannot remove your primary email address")
	// ErrConfirmationNotFound is returned for an unknown confirmation key.
	ErrConfirmationNotFound = errors.New("confirmation key not found")
	// ErrConfirmationExpired is returned for an expired confirmation key.
	ErrConfirmationExpired = errors.New("confirmation key expired")
	// ErrResendTooSoon is returned when a confirmation was sent too recently.
	ErrResendTooSoon = errors.New("confirmation email was sent recently, try again later")
)
