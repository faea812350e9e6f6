package jwk

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/soft-mail/pkg/config"
	"github.com/matryer/is"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Auth.KeyPath = filepath.Join(t.TempDir(), "soft_mail_ed25519")
	return cfg
}

func TestBadNewPair(t *testing.T) {
	_, err := NewPair(nil)
	if !errors.Is(err, config.ErrNilConfig) {
		t.Errorf("NewPair(nil) => %v, want %v", err, config.ErrNilConfig)
	}
}

func TestGoodNewPair(t *testing.T) {
	if _, err := NewPair(testConfig(t)); err != nil {
		t.Errorf("NewPair(cfg) => _, %v, want nil error", err)
	}
}

func TestIssueVerify(t *testing.T) {
	is := is.New(t)
	kp, err := NewPair(testConfig(t))
	is.NoErr(err)

	token, expiresAt, err := kp.Issue("http://localhost:23240", Subject("jane", 1), time.Hour)
	is.NoErr(err)
	is.True(expiresAt.After(time.Now()))

	claims, err := kp.Verify("http://localhost:23240", token)
	is.NoErr(err)
	username, id, err := ParseSubject(claims.Subject)
	is.NoErr(err)
	is.Equal(username, "jane")
	is.Equal(id, int64(1))

	_, err = kp.Verify("https://elsewhere.example.com", token)
	is.True(errors.Is(err, ErrInvalidToken))

	other, err := NewPair(testConfig(t))
	is.NoErr(err)
	_, err = other.Verify("http://localhost:23240", token)
	is.True(errors.Is(err, ErrInvalidToken))
}

func TestExpiredToken(t *testing.T) {
	is := is.New(t)
	kp, err := NewPair(testConfig(t))
	is.NoErr(err)

	token, _, err := kp.Issue("issuer", Subject("jane", 1), -time.Minute)
	is.NoErr(err)
	_, err = kp.Verify("issuer", token)
	is.True(errors.Is(err, ErrInvalidToken))
}

func TestParseSubject(t *testing.T) {
	for _, s := range []string{"", "jane", "#1", "jane#x"} {
		if _, _, err := ParseSubject(s); err == nil {
			t.Errorf("ParseSubject(%q) => nil error, want error", s)
		}
	}
}

func TestJWKS(t *testing.T) {
	is := is.New(t)
	kp, err := NewPair(testConfig(t))
	is.NoErr(err)
	set := kp.JWKS()
	is.Equal(len(set.Keys), 1)
	is.Equal(set.Keys[0].Algorithm, "EdDSA")
}
