package backend

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"
)

const saltySalt = "salty-soft-mail"

// HashPassword hashes the password using bcrypt.
func HashPassword(password string) (string, error) {
	crypt, err := bcrypt.GenerateFromPassword([]byte(password+saltySalt), bcrypt.DefaultCost)
	if err != nil {
		return "", err //nolint:wrapcheck
	}

	return string(crypt), nil
}

// VerifyPassword verifies the password against the hash.
func VerifyPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password+saltySalt))
	return err == nil
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		log.Error("unable to read random bytes", "err", err)
		return ""
	}

	return hex.EncodeToString(buf)
}

// GenerateToken returns a random unique access token.
func GenerateToken() string {
	if s := randomHex(20); s != "" {
		return "sm_" + s
	}
	return ""
}

// GenerateConfirmationKey returns a random email confirmation key.
func GenerateConfirmationKey() string {
	return randomHex(32)
}

// HashToken hashes a token or confirmation key using sha256.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token + saltySalt))
	return hex.EncodeToString(sum[:])
}
