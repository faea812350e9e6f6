package backend

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-mail/pkg/config"
	"github.com/charmbracelet/soft-mail/pkg/db"
	"github.com/charmbracelet/soft-mail/pkg/mail"
	"github.com/charmbracelet/soft-mail/pkg/store"
)

// EmailOptions controls how email addresses are verified.
type EmailOptions struct {
	// SetPrimaryAtVerified makes an address the user's primary address as
	// soon as it is verified.
	SetPrimaryAtVerified bool

	// ConfirmationTTL is how long a confirmation key stays valid.
	ConfirmationTTL time.Duration

	// ResendCooldown is the minimum time between two confirmation emails
	// for the same address.
	ResendCooldown time.Duration
}

// EmailOptionsFromConfig returns the EmailOptions described by cfg.
func EmailOptionsFromConfig(cfg *config.Config) EmailOptions {
	if cfg == nil {
		return EmailOptions{ConfirmationTTL: config.DefaultConfig().Email.ConfirmationTTL()}
	}
	return EmailOptions{
		SetPrimaryAtVerified: cfg.Email.SetPrimaryAtVerified,
		ConfirmationTTL:      cfg.Email.ConfirmationTTL(),
		ResendCooldown:       cfg.Email.Cooldown(),
	}
}

// Option configures a Backend.
type Option func(*Backend)

// WithEmailOptions overrides the email options read from the config.
func WithEmailOptions(opts EmailOptions) Option {
	return func(b *Backend) {
		b.email = opts
	}
}

// WithMailer sets the mailer used to send confirmation emails.
func WithMailer(m mail.Mailer) Option {
	return func(b *Backend) {
		b.mailer = m
	}
}

// Backend is the Soft Mail backend that handles users, access tokens, and
// email addresses.
type Backend struct {
	ctx    context.Context
	cfg    *config.Config
	db     *db.DB
	store  store.Store
	logger *log.Logger
	cache  *cache
	mailer mail.Mailer
	email  EmailOptions
	now    func() time.Time
}

// New returns a new Soft Mail backend.
// Without WithMailer, emails are written to the log.
func New(ctx context.Context, cfg *config.Config, db *db.DB, st store.Store, opts ...Option) *Backend {
	logger := log.FromContext(ctx).WithPrefix("backend")
	b := &Backend{
		ctx:    ctx,
		cfg:    cfg,
		db:     db,
		store:  st,
		logger: logger,
		email:  EmailOptionsFromConfig(cfg),
		now:    time.Now,
	}

	for _, o := range opts {
		o(b)
	}

	if b.mailer == nil {
		b.mailer = mail.NewLogMailer(logger)
	}

	b.cache = newCache(b, 1000)

	return b
}

// EmailOptions returns the email options in use.
func (d *Backend) EmailOptions() EmailOptions {
	return d.email
}

// Config returns the backend configuration.
func (d *Backend) Config() *config.Config {
	return d.cfg
}

// WithClock replaces the clock used for confirmation expiry and cooldowns.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) {
		b.now = now
	}
}
