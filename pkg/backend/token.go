package backend

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/soft-mail/pkg/jwk"
	"github.com/charmbracelet/soft-mail/pkg/proto"
)

var pairMu sync.Mutex

// KeyPair returns the token signing key pair, creating it on first use.
func (d *Backend) KeyPair() (jwk.Pair, error) {
	pairMu.Lock()
	defer pairMu.Unlock()
	return jwk.NewPair(d.cfg) //nolint:wrapcheck
}

func (d *Backend) issuer() string {
	if d.cfg == nil {
		return ""
	}
	return d.cfg.HTTP.PublicURL
}

// IssueToken returns a signed JSON Web Token for user.
func (d *Backend) IssueToken(_ context.Context, user proto.User) (string, time.Time, error) {
	kp, err := d.KeyPair()
	if err != nil {
		return "", time.Time{}, err
	}

	ttl := time.Hour
	if d.cfg != nil {
		ttl = d.cfg.Auth.TokenTTL()
	}

	return kp.Issue(d.issuer(), jwk.Subject(user.Username(), user.ID()), ttl) //nolint:wrapcheck
}

// UserByToken verifies a JSON Web Token and returns its user.
func (d *Backend) UserByToken(ctx context.Context, bearer string) (proto.User, error) {
	kp, err := d.KeyPair()
	if err != nil {
		return nil, err
	}

	claims, err := kp.Verify(d.issuer(), bearer)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	username, id, err := jwk.ParseSubject(claims.Subject)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	u, err := d.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.Username() != username {
		d.logger.Error("invalid jwt subject", "subject", claims.Subject, "expected", jwk.Subject(u.Username(), u.ID()))
		return nil, jwk.ErrInvalidToken
	}

	return u, nil
}
