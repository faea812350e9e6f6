package config

import (
	"bytes"
	"text/template"
)

var configFileTmpl = template.Must(template.New("config").Parse(`# Soft Mail Server configurations

# The name of the server.
# This is the name used in outgoing emails.
name: "{{ .Name }}"

# Logging configuration.
log:
  # Log format to use. Valid values are "json", "logfmt", and "text".
  format: "{{ .Log.Format }}"
  # Time format for the log "timestamp" field.
  # Should be described in Golang's time format.
  time_format: "{{ .Log.TimeFormat }}"
  # Path to the log file. Leave empty to write to stderr.
  #path: "{{ .Log.Path }}"

# The HTTP server configuration.
http:
  # The address on which the HTTP server will listen.
  listen_addr: "{{ .HTTP.ListenAddr }}"

  # The path to the TLS private key.
  tls_key_path: "{{ .HTTP.TLSKeyPath }}"

  # The path to the TLS certificate.
  tls_cert_path: "{{ .HTTP.TLSCertPath }}"

  # The public URL of the HTTP server.
  # Confirmation links sent by email point to this address.
  # Make sure to use https:// if you are using TLS.
  public_url: "{{ .HTTP.PublicURL }}"

  # The cross-origin request configuration.
  cors:
    allowed_headers:{{ range .HTTP.CORS.AllowedHeaders }}
      - "{{ . }}"{{ end }}
    allowed_origins:{{ range .HTTP.CORS.AllowedOrigins }}
      - "{{ . }}"{{ end }}
    allowed_methods:{{ range .HTTP.CORS.AllowedMethods }}
      - "{{ . }}"{{ end }}

# The stats server configuration.
stats:
  # Enable the stats server.
  enabled: {{ .Stats.Enabled }}
  # The address on which the stats server will listen.
  listen_addr: "{{ .Stats.ListenAddr }}"

# The database configuration.
db:
  # The database driver to use.
  # Valid values are "sqlite" and "postgres".
  driver: "{{ .DB.Driver }}"
  # The database data source name.
  # This is driver specific and can be a file path or connection string.
  data_source: "{{ .DB.DataSource }}"

# Email address policy.
email:
  # Make an address the primary address of its user as soon as it is verified.
  # The previous primary address is demoted.
  set_primary_at_verified: {{ .Email.SetPrimaryAtVerified }}
  # Reject addresses that already belong to another user.
  unique: {{ .Email.Unique }}
  # Maximum number of addresses per user. 0 means no limit.
  max_addresses: {{ .Email.MaxAddresses }}
  # How long a confirmation link stays valid.
  confirmation_expiry: "{{ .Email.ConfirmationExpiry }}"
  # Minimum time between two confirmation emails for the same address.
  resend_cooldown: "{{ .Email.ResendCooldown }}"
  # Confirm addresses when the link is opened. When false, the link must be
  # POSTed to, so link scanners don't confirm addresses on their own.
  confirm_on_get: {{ .Email.ConfirmOnGet }}
  # Glob patterns for the domains users may add. Leave empty to allow all.
  #allowed_domains:
  #  - "*.example.com"

# Outgoing mail configuration.
mail:
  # The transport used to send emails.
  # Valid values are "log", "smtp", and "webhook".
  transport: "{{ .Mail.Transport }}"
  # The sender address.
  from: "{{ .Mail.From }}"
  smtp:
    host: "{{ .Mail.SMTP.Host }}"
    port: {{ .Mail.SMTP.Port }}
    #username: ""
    #password: ""
    # One of "none", "opportunistic", "mandatory", or "ssl".
    tls: "{{ .Mail.SMTP.TLS }}"
  webhook:
    #url: "https://relay.example.com/send"
    #secret: ""
    # Either "json" or "form".
    content_type: "{{ .Mail.Webhook.ContentType }}"

# Token configuration.
auth:
  # The path to the Ed25519 key used to sign JSON Web Tokens.
  key_path: "{{ .Auth.KeyPath }}"
  # How long issued tokens are valid.
  token_expiry: "{{ .Auth.TokenExpiry }}"

# Background jobs.
jobs:
  # Remove expired confirmation links.
  purge_confirmations: "{{ .Jobs.PurgeConfirmations }}"
`))

func newConfigFile(cfg *Config) string {
	var b bytes.Buffer
	configFileTmpl.Execute(&b, cfg) // nolint: errcheck
	return b.String()
}
