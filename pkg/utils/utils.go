// Package utils holds small input normalisation helpers.
package utils

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// SanitizeUsername returns a sanitized version of the given username.
func SanitizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ValidateUsername returns an error if the given username is invalid.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if !unicode.IsLetter(rune(username[0])) {
		return fmt.Errorf("username must start with a letter")
	}

	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' {
			return fmt.Errorf("username can only contain letters, numbers, and hyphens")
		}
	}

	return nil
}

// SanitizeEmail trims surrounding whitespace. The case of the address is kept
// as submitted; comparisons are done case-insensitively.
func SanitizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// EmailDomain returns the lowercased domain part of an address, or an empty
// string if there is none.
func EmailDomain(email string) string {
	i := strings.LastIndexByte(email, '@')
	if i < 0 || i == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[i+1:])
}

// NormalizeEmail returns the Unicode case folded form of an address. Two
// addresses are the same address when their normalized forms are equal.
func NormalizeEmail(email string) string {
	return cases.Fold().String(SanitizeEmail(email))
}

// EqualEmail reports whether two addresses are the same, ignoring case.
func EqualEmail(a, b string) bool {
	return NormalizeEmail(a) == NormalizeEmail(b)
}
