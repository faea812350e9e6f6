package mail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/soft-mail/pkg/config"
	gomail "github.com/wneessen/go-mail"
)

// SMTPMailer delivers emails to an SMTP server.
type SMTPMailer struct {
	client *gomail.Client
}

var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer returns a new SMTPMailer. No connection is made until the
// first message is sent.
func NewSMTPMailer(cfg config.SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp: missing host")
	}

	opts := []gomail.Option{
		gomail.WithTimeout(30 * time.Second),
	}
	if cfg.Port > 0 {
		opts = append(opts, gomail.WithPort(cfg.Port))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}

	switch strings.ToLower(cfg.TLS) {
	case "none":
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	case "mandatory":
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	case "ssl":
		opts = append(opts, gomail.WithSSL())
	case "", "opportunistic":
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	default:
		return nil, fmt.Errorf("smtp: unknown tls mode %q", cfg.TLS)
	}

	c, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp: %w", err)
	}

	return &SMTPMailer{client: c}, nil
}

// newMsg converts a Message to a go-mail message.
func newMsg(msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)
	return m, nil
}

// Send implements Mailer.
func (s *SMTPMailer) Send(ctx context.Context, msg Message) error {
	m, err := newMsg(msg)
	if err != nil {
		return err
	}

	return s.client.DialAndSendWithContext(ctx, m) //nolint:wrapcheck
}
