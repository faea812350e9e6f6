package utils

import (
	"testing"

	"github.com/matryer/is"
)

func TestValidateUsername(t *testing.T) {
	cases := []struct {
		username string
		ok       bool
	}{
		{"", false},
		{"1jane", false},
		{"jane", true},
		{"jane-doe", true},
		{"jane_doe", false},
		{"jane2", true},
	}
	for _, c := range cases {
		t.Run(c.username, func(t *testing.T) {
			is := is.New(t)
			err := ValidateUsername(c.username)
			is.Equal(err == nil, c.ok)
		})
	}
}

func TestSanitizeUsername(t *testing.T) {
	is := is.New(t)
	is.Equal(SanitizeUsername("  Jane "), "jane")
}

func TestEmailHelpers(t *testing.T) {
	is := is.New(t)
	is.Equal(SanitizeEmail("  Jane@Example.com\n"), "Jane@Example.com")
	is.Equal(EmailDomain("jane@Example.COM"), "example.com")
	is.Equal(EmailDomain("jane"), "")
	is.Equal(EmailDomain("jane@"), "")
	is.True(EqualEmail("Jane@example.com", " jane@EXAMPLE.com"))
	is.True(!EqualEmail("jane@example.com", "john@example.com"))
}

func TestNormalizeEmail(t *testing.T) {
	is := is.New(t)
	is.Equal(NormalizeEmail(" Jane@Example.COM "), "jane@example.com")
	is.Equal(NormalizeEmail("ÉLODIE@Example.com"), NormalizeEmail("élodie@example.com"))
	is.True(EqualEmail("JÖRG@beispiel.de", "jörg@beispiel.de"))
}
