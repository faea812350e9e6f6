package config

import (
	"path/filepath"
	"testing"

	"github.com/matryer/is"
)

func TestKeyPair(t *testing.T) {
	is := is.New(t)
	_, err := KeyPair(nil)
	is.Equal(err, ErrNilConfig)

	_, err = KeyPair(&Config{})
	is.Equal(err, ErrEmptyKeyPath)

	cfg := &Config{Auth: AuthConfig{KeyPath: filepath.Join(t.TempDir(), "key")}}
	kp1, err := KeyPair(cfg)
	is.NoErr(err)
	kp2, err := KeyPair(cfg)
	is.NoErr(err)
	is.Equal(kp1.AuthorizedKey(), kp2.AuthorizedKey()) // key is persisted
}
