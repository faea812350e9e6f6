package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/duration"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

var binPath = "soft-mail"

// HTTPConfig is the HTTP configuration for the server.
type HTTPConfig struct {
	// ListenAddr is the address on which the HTTP server will listen.
	ListenAddr string `env:"LISTEN_ADDR" yaml:"listen_addr"`

	// TLSKeyPath is the path to the TLS private key.
	TLSKeyPath string `env:"TLS_KEY_PATH" yaml:"tls_key_path"`

	// TLSCertPath is the path to the TLS certificate.
	TLSCertPath string `env:"TLS_CERT_PATH" yaml:"tls_cert_path"`

	// PublicURL is the public URL of the HTTP server.
	// Confirmation links are built from it.
	PublicURL string `env:"PUBLIC_URL" yaml:"public_url"`

	// CORS is the CORS configuration.
	CORS CORSConfig `envPrefix:"CORS_" yaml:"cors"`
}

// CORSConfig is the CORS configuration for the HTTP server.
type CORSConfig struct {
	AllowedHeaders []string `env:"ALLOWED_HEADERS" yaml:"allowed_headers"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" yaml:"allowed_origins"`
	AllowedMethods []string `env:"ALLOWED_METHODS" yaml:"allowed_methods"`
}

// StatsConfig is the configuration for the stats server.
type StatsConfig struct {
	// Enabled is whether the stats server is enabled.
	Enabled bool `env:"ENABLED" yaml:"enabled"`

	// ListenAddr is the address on which the stats server will listen.
	ListenAddr string `env:"LISTEN_ADDR" yaml:"listen_addr"`
}

// LogConfig is the logger configuration.
type LogConfig struct {
	// Format is the format of the logs.
	// Valid values are "json", "logfmt", and "text".
	Format string `env:"FORMAT" yaml:"format"`

	// Time format for the log `ts` field.
	// Format must be described in Golang's time format.
	TimeFormat string `env:"TIME_FORMAT" yaml:"time_format"`

	// Path to a file to write logs to.
	// If not set, logs will be written to stderr.
	Path string `env:"PATH" yaml:"path"`
}

// DBConfig is the database connection configuration.
type DBConfig struct {
	// Driver is the driver for the database.
	Driver string `env:"DRIVER" yaml:"driver"`

	// DataSource is the database data source name.
	DataSource string `env:"DATA_SOURCE" yaml:"data_source"`
}

// EmailConfig controls how email addresses are added and verified.
type EmailConfig struct {
	// SetPrimaryAtVerified makes a newly verified address the user's primary
	// address, demoting the previous one.
	SetPrimaryAtVerified bool `env:"SET_PRIMARY_AT_VERIFIED" yaml:"set_primary_at_verified"`

	// Unique rejects addresses already used by another user.
	Unique bool `env:"UNIQUE" yaml:"unique"`

	// MaxAddresses is the maximum number of addresses per user.
	// A value of 0 means no limit.
	MaxAddresses int `env:"MAX_ADDRESSES" yaml:"max_addresses"`

	// AllowedDomains is a list of glob patterns matched against the domain
	// part of new addresses. An empty list allows every domain.
	AllowedDomains []string `env:"ALLOWED_DOMAINS" yaml:"allowed_domains"`

	// ConfirmationExpiry is how long a confirmation link stays valid, e.g. "3d".
	ConfirmationExpiry string `env:"CONFIRMATION_EXPIRY" yaml:"confirmation_expiry"`

	// ResendCooldown is the minimum time between two confirmation emails
	// for the same address, e.g. "3m".
	ResendCooldown string `env:"RESEND_COOLDOWN" yaml:"resend_cooldown"`

	// ConfirmOnGet confirms an address when its confirmation link is
	// fetched. Otherwise a GET only looks the key up and a POST confirms.
	ConfirmOnGet bool `env:"CONFIRM_ON_GET" yaml:"confirm_on_get"`
}

// ConfirmationTTL returns the parsed confirmation expiry.
func (c EmailConfig) ConfirmationTTL() time.Duration {
	d, err := duration.Parse(c.ConfirmationExpiry)
	if err != nil || d <= 0 {
		return 3 * 24 * time.Hour
	}
	return d
}

// Cooldown returns the parsed resend cooldown.
func (c EmailConfig) Cooldown() time.Duration {
	d, err := duration.Parse(c.ResendCooldown)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// SMTPConfig is the SMTP transport configuration.
type SMTPConfig struct {
	Host     string `env:"HOST" yaml:"host"`
	Port     int    `env:"PORT" yaml:"port"`
	Username string `env:"USERNAME" yaml:"username"`
	Password string `env:"PASSWORD" yaml:"password"`

	// TLS is one of "none", "opportunistic", "mandatory" or "ssl".
	TLS string `env:"TLS" yaml:"tls"`
}

// WebhookConfig is the webhook transport configuration.
type WebhookConfig struct {
	URL    string `env:"URL" yaml:"url"`
	Secret string `env:"SECRET" yaml:"secret"`

	// ContentType is either "json" or "form".
	ContentType string `env:"CONTENT_TYPE" yaml:"content_type"`
}

// MailConfig is the outgoing mail configuration.
type MailConfig struct {
	// Transport is one of "log", "smtp" or "webhook".
	Transport string `env:"TRANSPORT" yaml:"transport"`

	// From is the sender address.
	From string `env:"FROM" yaml:"from"`

	SMTP    SMTPConfig    `envPrefix:"SMTP_" yaml:"smtp"`
	Webhook WebhookConfig `envPrefix:"WEBHOOK_" yaml:"webhook"`
}

// AuthConfig is the token configuration.
type AuthConfig struct {
	// KeyPath is the path to the Ed25519 key used to sign JSON Web Tokens.
	KeyPath string `env:"KEY_PATH" yaml:"key_path"`

	// TokenExpiry is how long issued JSON Web Tokens are valid, e.g. "1h".
	TokenExpiry string `env:"TOKEN_EXPIRY" yaml:"token_expiry"`
}

// TokenTTL returns the parsed token expiry.
func (c AuthConfig) TokenTTL() time.Duration {
	d, err := duration.Parse(c.TokenExpiry)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// JobsConfig is the configuration for cron jobs.
type JobsConfig struct {
	PurgeConfirmations string `env:"PURGE_CONFIRMATIONS" yaml:"purge_confirmations"`
}

// Config is the configuration for Soft Mail.
type Config struct {
	// Name is the name of the server.
	Name string `env:"NAME" yaml:"name"`

	// HTTP is the configuration for the HTTP server.
	HTTP HTTPConfig `envPrefix:"HTTP_" yaml:"http"`

	// Stats is the configuration for the stats server.
	Stats StatsConfig `envPrefix:"STATS_" yaml:"stats"`

	// Log is the logger configuration.
	Log LogConfig `envPrefix:"LOG_" yaml:"log"`

	// DB is the database configuration.
	DB DBConfig `envPrefix:"DB_" yaml:"db"`

	// Email is the email address policy.
	Email EmailConfig `envPrefix:"EMAIL_" yaml:"email"`

	// Mail is the outgoing mail configuration.
	Mail MailConfig `envPrefix:"MAIL_" yaml:"mail"`

	// Auth is the token configuration.
	Auth AuthConfig `envPrefix:"AUTH_" yaml:"auth"`

	// Jobs is the configuration for cron jobs
	Jobs JobsConfig `envPrefix:"JOBS_" yaml:"jobs"`

	// DataPath is the path to the directory where Soft Mail will store its data.
	DataPath string `env:"DATA_PATH" yaml:"-"`
}

// Environ returns the config as a list of environment variables.
func (c *Config) Environ() []string {
	envs := []string{
		fmt.Sprintf("SOFT_MAIL_BIN_PATH=%s", binPath),
	}
	if c == nil {
		return envs
	}

	envs = append(envs, []string{
		fmt.Sprintf("SOFT_MAIL_DATA_PATH=%s", c.DataPath),
		fmt.Sprintf("SOFT_MAIL_NAME=%s", c.Name),
		fmt.Sprintf("SOFT_MAIL_HTTP_LISTEN_ADDR=%s", c.HTTP.ListenAddr),
		fmt.Sprintf("SOFT_MAIL_HTTP_TLS_KEY_PATH=%s", c.HTTP.TLSKeyPath),
		fmt.Sprintf("SOFT_MAIL_HTTP_TLS_CERT_PATH=%s", c.HTTP.TLSCertPath),
		fmt.Sprintf("SOFT_MAIL_HTTP_PUBLIC_URL=%s", c.HTTP.PublicURL),
		fmt.Sprintf("SOFT_MAIL_HTTP_CORS_ALLOWED_HEADERS=%s", strings.Join(c.HTTP.CORS.AllowedHeaders, ",")),
		fmt.Sprintf("SOFT_MAIL_HTTP_CORS_ALLOWED_ORIGINS=%s", strings.Join(c.HTTP.CORS.AllowedOrigins, ",")),
		fmt.Sprintf("SOFT_MAIL_HTTP_CORS_ALLOWED_METHODS=%s", strings.Join(c.HTTP.CORS.AllowedMethods, ",")),
		fmt.Sprintf("SOFT_MAIL_STATS_ENABLED=%t", c.Stats.Enabled),
		fmt.Sprintf("SOFT_MAIL_STATS_LISTEN_ADDR=%s", c.Stats.ListenAddr),
		fmt.Sprintf("SOFT_MAIL_LOG_FORMAT=%s", c.Log.Format),
		fmt.Sprintf("SOFT_MAIL_LOG_TIME_FORMAT=%s", c.Log.TimeFormat),
		fmt.Sprintf("SOFT_MAIL_DB_DRIVER=%s", c.DB.Driver),
		fmt.Sprintf("SOFT_MAIL_DB_DATA_SOURCE=%s", c.DB.DataSource),
		fmt.Sprintf("SOFT_MAIL_EMAIL_SET_PRIMARY_AT_VERIFIED=%t", c.Email.SetPrimaryAtVerified),
		fmt.Sprintf("SOFT_MAIL_EMAIL_UNIQUE=%t", c.Email.Unique),
		fmt.Sprintf("SOFT_MAIL_EMAIL_MAX_ADDRESSES=%d", c.Email.MaxAddresses),
		fmt.Sprintf("SOFT_MAIL_EMAIL_ALLOWED_DOMAINS=%s", strings.Join(c.Email.AllowedDomains, ",")),
		fmt.Sprintf("SOFT_MAIL_EMAIL_CONFIRMATION_EXPIRY=%s", c.Email.ConfirmationExpiry),
		fmt.Sprintf("SOFT_MAIL_EMAIL_RESEND_COOLDOWN=%s", c.Email.ResendCooldown),
		fmt.Sprintf("SOFT_MAIL_EMAIL_CONFIRM_ON_GET=%t", c.Email.ConfirmOnGet),
		fmt.Sprintf("SOFT_MAIL_MAIL_TRANSPORT=%s", c.Mail.Transport),
		fmt.Sprintf("SOFT_MAIL_MAIL_FROM=%s", c.Mail.From),
		fmt.Sprintf("SOFT_MAIL_MAIL_SMTP_HOST=%s", c.Mail.SMTP.Host),
		fmt.Sprintf("SOFT_MAIL_MAIL_SMTP_PORT=%d", c.Mail.SMTP.Port),
		fmt.Sprintf("SOFT_MAIL_MAIL_SMTP_USERNAME=%s", c.Mail.SMTP.Username),
		fmt.Sprintf("SOFT_MAIL_MAIL_SMTP_TLS=%s", c.Mail.SMTP.TLS),
		fmt.Sprintf("SOFT_MAIL_MAIL_WEBHOOK_URL=%s", c.Mail.Webhook.URL),
		fmt.Sprintf("SOFT_MAIL_MAIL_WEBHOOK_CONTENT_TYPE=%s", c.Mail.Webhook.ContentType),
		fmt.Sprintf("SOFT_MAIL_AUTH_KEY_PATH=%s", c.Auth.KeyPath),
		fmt.Sprintf("SOFT_MAIL_AUTH_TOKEN_EXPIRY=%s", c.Auth.TokenExpiry),
		fmt.Sprintf("SOFT_MAIL_JOBS_PURGE_CONFIRMATIONS=%s", c.Jobs.PurgeConfirmations),
	}...)

	return envs
}

// IsDebug returns true if the server is running in debug mode.
func IsDebug() bool {
	debug, _ := strconv.ParseBool(os.Getenv("SOFT_MAIL_DEBUG"))
	return debug
}

// IsVerbose returns true if the server is running in verbose mode.
// Verbose mode is only enabled if debug mode is enabled.
func IsVerbose() bool {
	verbose, _ := strconv.ParseBool(os.Getenv("SOFT_MAIL_VERBOSE"))
	return IsDebug() && verbose
}

// parseFile parses the given file as a configuration file.
// The file must be in YAML format.
func parseFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}

	defer f.Close() // nolint: errcheck
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	return cfg.Validate()
}

// ParseFile parses the config from the default file path.
// This also calls Validate() on the config.
func (c *Config) ParseFile() error {
	return parseFile(c, c.ConfigPath())
}

// parseEnv parses the environment variables as a configuration file.
func parseEnv(cfg *Config) error {
	// Merge CORS origins from both config file and environment variables.
	origins := append([]string{}, cfg.HTTP.CORS.AllowedOrigins...)

	// Override with environment variables
	if err := env.ParseWithOptions(cfg, env.Options{
		Prefix: "SOFT_MAIL_",
	}); err != nil {
		return fmt.Errorf("parse environment variables: %w", err)
	}

	if os.Getenv("SOFT_MAIL_HTTP_CORS_ALLOWED_ORIGINS") != "" {
		cfg.HTTP.CORS.AllowedOrigins = mergeUnique(origins, cfg.HTTP.CORS.AllowedOrigins)
	}

	return cfg.Validate()
}

func mergeUnique(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(a, b...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// ParseEnv parses the config from the environment variables.
// This also calls Validate() on the config.
func (c *Config) ParseEnv() error {
	return parseEnv(c)
}

// Parse parses the config from the default file path and environment variables.
// This also calls Validate() on the config.
func (c *Config) Parse() error {
	if err := c.ParseFile(); err != nil {
		return err
	}

	return c.ParseEnv()
}

// writeConfig writes the configuration to the given file.
func writeConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(newConfigFile(cfg)), 0o600) // nolint: errcheck, gosec
}

// WriteConfig writes the configuration to the default file.
func (c *Config) WriteConfig() error {
	return writeConfig(c, c.ConfigPath())
}

// DefaultDataPath returns the path to the data directory.
// It uses the SOFT_MAIL_DATA_PATH environment variable if set, otherwise it
// uses "data".
func DefaultDataPath() string {
	dp := os.Getenv("SOFT_MAIL_DATA_PATH")
	if dp == "" {
		dp = "data"
	}

	return dp
}

// ConfigPath returns the path to the config file.
// SOFT_MAIL_CONFIG_LOCATION takes precedence when it points to an existing file.
func (c *Config) ConfigPath() string { // nolint:revive
	if path := os.Getenv("SOFT_MAIL_CONFIG_LOCATION"); exist(path) {
		return path
	}

	return filepath.Join(c.DataPath, "config.yaml")
}

func exist(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// Exist returns true if the config file exists.
func (c *Config) Exist() bool {
	return exist(c.ConfigPath())
}

// DefaultConfig returns the default Config. All the path values are relative
// to the data directory.
// Use Validate() to validate the config and ensure absolute paths.
func DefaultConfig() *Config {
	cfg := &Config{
		Name:     "Soft Mail",
		DataPath: DefaultDataPath(),
		HTTP: HTTPConfig{
			ListenAddr: ":23240",
			PublicURL:  "http://localhost:23240",
			CORS: CORSConfig{
				AllowedHeaders: []string{"Accept", "Accept-Language", "Content-Language", "Content-Type", "Origin", "Authorization"},
				AllowedOrigins: []string{"http://localhost:23240"},
				AllowedMethods: []string{"GET", "HEAD", "POST", "DELETE", "OPTIONS"},
			},
		},
		Stats: StatsConfig{
			Enabled:    true,
			ListenAddr: "localhost:23243",
		},
		Log: LogConfig{
			Format:     "text",
			TimeFormat: time.DateTime,
		},
		DB: DBConfig{
			Driver: "sqlite",
			DataSource: "soft-mail.db" +
				"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
		},
		Email: EmailConfig{
			SetPrimaryAtVerified: false,
			Unique:               true,
			MaxAddresses:         0,
			ConfirmationExpiry:   "3d",
			ResendCooldown:       "3m",
		},
		Mail: MailConfig{
			Transport: "log",
			From:      "Soft Mail <no-reply@localhost>",
			SMTP: SMTPConfig{
				Host: "localhost",
				Port: 587,
				TLS:  "opportunistic",
			},
			Webhook: WebhookConfig{
				ContentType: "json",
			},
		},
		Auth: AuthConfig{
			KeyPath:     filepath.Join("keys", "soft_mail_ed25519"),
			TokenExpiry: "1h",
		},
		Jobs: JobsConfig{
			PurgeConfirmations: "@every 1h",
		},
	}

	return cfg
}

// Validate validates the configuration.
// It updates the configuration with absolute paths.
func (c *Config) Validate() error {
	// Use absolute paths
	if !filepath.IsAbs(c.DataPath) {
		dp, err := filepath.Abs(c.DataPath)
		if err != nil {
			return err
		}
		c.DataPath = dp
	}

	c.HTTP.PublicURL = strings.TrimSuffix(c.HTTP.PublicURL, "/")

	if c.HTTP.TLSKeyPath != "" && !filepath.IsAbs(c.HTTP.TLSKeyPath) {
		c.HTTP.TLSKeyPath = filepath.Join(c.DataPath, c.HTTP.TLSKeyPath)
	}

	if c.HTTP.TLSCertPath != "" && !filepath.IsAbs(c.HTTP.TLSCertPath) {
		c.HTTP.TLSCertPath = filepath.Join(c.DataPath, c.HTTP.TLSCertPath)
	}

	if c.Auth.KeyPath != "" && !filepath.IsAbs(c.Auth.KeyPath) {
		c.Auth.KeyPath = filepath.Join(c.DataPath, c.Auth.KeyPath)
	}

	if strings.HasPrefix(c.DB.Driver, "sqlite") && !filepath.IsAbs(c.DB.DataSource) {
		c.DB.DataSource = filepath.Join(c.DataPath, c.DB.DataSource)
	}

	for _, d := range []struct {
		name, value string
	}{
		{"email.confirmation_expiry", c.Email.ConfirmationExpiry},
		{"email.resend_cooldown", c.Email.ResendCooldown},
		{"auth.token_expiry", c.Auth.TokenExpiry},
	} {
		if d.value == "" {
			continue
		}
		if _, err := duration.Parse(d.value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.name, d.value, err)
		}
	}

	switch strings.ToLower(c.Mail.Transport) {
	case "", "log", "smtp", "webhook":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTransport, c.Mail.Transport)
	}

	if c.Email.MaxAddresses < 0 {
		return fmt.Errorf("invalid email.max_addresses %d", c.Email.MaxAddresses)
	}

	return nil
}

func init() {
	ex, err := os.Executable()
	if err != nil {
		ex = "soft-mail"
	}
	ex = filepath.ToSlash(ex)
	binPath = ex
}
