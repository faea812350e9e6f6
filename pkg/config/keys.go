package config

import (
	"errors"

	"github.com/charmbracelet/keygen"
)

var (
	// ErrNilConfig is returned when a nil config is passed to a function.
	ErrNilConfig = errors.New("nil config")

	// ErrEmptyKeyPath is returned when the signing key path is empty.
	ErrEmptyKeyPath = errors.New("empty signing key path")

	// ErrUnknownTransport is returned when the mail transport is not supported.
	ErrUnknownTransport = errors.New("unknown mail transport")
)

// KeyPair returns the server's token signing key pair. The key is created
// and written to disk when it doesn't exist yet.
func KeyPair(cfg *Config) (*keygen.SSHKeyPair, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Auth.KeyPath == "" {
		return nil, ErrEmptyKeyPath
	}

	return keygen.New(cfg.Auth.KeyPath, keygen.WithKeyType(keygen.Ed25519), keygen.WithWrite())
}
