// Package jwk issues and verifies the JSON Web Tokens used by the HTTP API.
package jwk

import (
	"crypto"
	"crypto/sha256"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/soft-mail/pkg/config"
	"github.com/go-jose/go-jose/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Audience is the audience of every token issued by Soft Mail.
const Audience = "soft-mail"

// SigningMethod is a JSON Web Token signing method. It uses Ed25519 keys to
// sign and verify tokens.
var SigningMethod = &jwt.SigningMethodEd25519{}

// ErrInvalidToken is returned when a token can't be verified.
var ErrInvalidToken = errors.New("invalid token")

// Pair is a JSON Web Key pair.
type Pair struct {
	privateKey crypto.PrivateKey
	publicKey  crypto.PublicKey
	jwk        jose.JSONWebKey
}

// PrivateKey returns the private key.
func (p Pair) PrivateKey() crypto.PrivateKey {
	return p.privateKey
}

// JWK returns the public JSON Web Key.
func (p Pair) JWK() jose.JSONWebKey {
	return p.jwk
}

// JWKS returns the public key set served to clients.
func (p Pair) JWKS() jose.JSONWebKeySet {
	return jose.JSONWebKeySet{Keys: []jose.JSONWebKey{p.jwk}}
}

// NewPair loads, or creates, the signing key pair.
func NewPair(cfg *config.Config) (Pair, error) {
	kp, err := config.KeyPair(cfg)
	if err != nil {
		return Pair{}, err //nolint:wrapcheck
	}

	sum := sha256.Sum256(kp.RawPrivateKey())
	kid := fmt.Sprintf("%x", sum)
	jwk := jose.JSONWebKey{
		Key:       kp.CryptoPublicKey(),
		KeyID:     kid,
		Algorithm: SigningMethod.Alg(),
		Use:       "sig",
	}

	return Pair{
		privateKey: kp.PrivateKey(),
		publicKey:  kp.CryptoPublicKey(),
		jwk:        jwk,
	}, nil
}

// Subject returns the token subject of a user.
func Subject(username string, id int64) string {
	return fmt.Sprintf("%s#%d", username, id)
}

// ParseSubject splits a token subject into username and id.
func ParseSubject(sub string) (string, int64, error) {
	username, rawID, ok := strings.Cut(sub, "#")
	if !ok || username == "" {
		return "", 0, ErrInvalidToken
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return "", 0, ErrInvalidToken
	}
	return username, id, nil
}

// Issue signs a token for subject valid for ttl.
func (p Pair) Issue(issuer, subject string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{Audience},
	}

	token := jwt.NewWithClaims(SigningMethod, claims)
	token.Header["kid"] = p.jwk.KeyID
	j, err := token.SignedString(p.privateKey)
	if err != nil {
		return "", time.Time{}, err //nolint:wrapcheck
	}

	return j, expiresAt, nil
}

// Verify parses and verifies a token issued by issuer.
func (p Pair) Verify(issuer, bearer string) (*jwt.RegisteredClaims, error) {
	token, err := jwt.ParseWithClaims(bearer, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, errors.New("invalid signing method")
		}

		return p.publicKey, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithIssuedAt(),
		jwt.WithAudience(Audience),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !token.Valid || !ok {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
