package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestParseSetPrimaryAtVerified(t *testing.T) {
	is := is.New(t)
	is.NoErr(os.Setenv("SOFT_MAIL_EMAIL_SET_PRIMARY_AT_VERIFIED", "true"))
	t.Cleanup(func() {
		is.NoErr(os.Unsetenv("SOFT_MAIL_EMAIL_SET_PRIMARY_AT_VERIFIED"))
	})
	cfg := DefaultConfig()
	is.True(!cfg.Email.SetPrimaryAtVerified)
	is.NoErr(cfg.ParseEnv())
	is.True(cfg.Email.SetPrimaryAtVerified)
}

func TestCustomConfigLocation(t *testing.T) {
	is := is.New(t)
	td := t.TempDir()
	t.Cleanup(func() {
		is.NoErr(os.Unsetenv("SOFT_MAIL_CONFIG_LOCATION"))
		is.NoErr(os.Unsetenv("SOFT_MAIL_DATA_PATH"))
	})

	// Test that we get data from the custom file location, and not from the data dir.
	is.NoErr(os.Setenv("SOFT_MAIL_CONFIG_LOCATION", "testdata/config.yaml"))
	is.NoErr(os.Setenv("SOFT_MAIL_DATA_PATH", td))
	cfg := DefaultConfig()
	is.NoErr(cfg.Parse())
	is.Equal(cfg.Name, "Test server name")
	is.True(cfg.Email.SetPrimaryAtVerified)
	// If we unset the custom location, then use the default location.
	is.NoErr(os.Unsetenv("SOFT_MAIL_CONFIG_LOCATION"))
	cfg = DefaultConfig()
	is.Equal(cfg.Name, "Soft Mail")
	is.Equal(cfg.ConfigPath(), filepath.Join(td, "config.yaml"))
	// Test that if the custom config location doesn't exist, default to datapath config.
	is.NoErr(os.Setenv("SOFT_MAIL_CONFIG_LOCATION", "testdata/config_nonexistent.yaml"))
	cfg = DefaultConfig()
	is.Equal(cfg.ConfigPath(), filepath.Join(td, "config.yaml"))
}

func TestWriteAndParseConfig(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	cfg.DataPath = t.TempDir()
	cfg.Email.SetPrimaryAtVerified = true
	cfg.Email.MaxAddresses = 5
	is.NoErr(cfg.WriteConfig())

	parsed := DefaultConfig()
	parsed.DataPath = cfg.DataPath
	is.NoErr(parsed.ParseFile())
	is.True(parsed.Email.SetPrimaryAtVerified)
	is.Equal(parsed.Email.MaxAddresses, 5)
	is.Equal(parsed.HTTP.CORS.AllowedMethods, cfg.HTTP.CORS.AllowedMethods)
	is.Equal(parsed.Auth.KeyPath, filepath.Join(cfg.DataPath, "keys", "soft_mail_ed25519"))
}

func TestParseMultipleDomains(t *testing.T) {
	is := is.New(t)
	is.NoErr(os.Setenv("SOFT_MAIL_EMAIL_ALLOWED_DOMAINS", "example.com,*.example.org"))
	t.Cleanup(func() {
		is.NoErr(os.Unsetenv("SOFT_MAIL_EMAIL_ALLOWED_DOMAINS"))
	})
	cfg := DefaultConfig()
	is.NoErr(cfg.ParseEnv())
	is.Equal(cfg.Email.AllowedDomains, []string{
		"example.com",
		"*.example.org",
	})
}

func TestParseMultipleOrigins(t *testing.T) {
	is := is.New(t)
	is.NoErr(os.Setenv("SOFT_MAIL_HTTP_CORS_ALLOWED_ORIGINS", "http://example.com,https://example.com"))
	t.Cleanup(func() {
		is.NoErr(os.Unsetenv("SOFT_MAIL_HTTP_CORS_ALLOWED_ORIGINS"))
	})
	cfg := DefaultConfig()
	is.NoErr(cfg.ParseEnv())
	is.Equal(cfg.HTTP.CORS.AllowedOrigins, []string{
		"http://localhost:23240",
		"http://example.com",
		"https://example.com",
	})
}

func TestDurations(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	is.Equal(cfg.Email.ConfirmationTTL(), 72*time.Hour)
	is.Equal(cfg.Email.Cooldown(), 3*time.Minute)
	is.Equal(cfg.Auth.TokenTTL(), time.Hour)

	cfg.Email.ConfirmationExpiry = "nope"
	is.Equal(cfg.Email.ConfirmationTTL(), 72*time.Hour)
	is.True(cfg.Validate() != nil)
}

func TestValidateUnknownTransport(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	cfg.DataPath = t.TempDir()
	cfg.Mail.Transport = "pigeon"
	is.True(cfg.Validate() != nil)
}

func TestEnviron(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	envs := cfg.Environ()
	is.True(len(envs) > 1)
	is.True(contains(envs, "SOFT_MAIL_EMAIL_SET_PRIMARY_AT_VERIFIED=false"))
	is.Equal(len((*Config)(nil).Environ()), 1)
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
