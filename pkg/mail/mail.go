// Package mail delivers outgoing emails through a configurable transport.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-mail/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var sentCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "soft_mail",
	Subsystem: "mail",
	Name:      "messages_total",
	Help:      "The total number of outgoing emails by transport and status",
}, []string{"transport", "status"})

// ErrNoRecipient is returned when a message has no recipient.
var ErrNoRecipient = errors.New("message has no recipient")

// Message is an outgoing plain text email.
type Message struct {
	From    string `json:"from" url:"from"`
	To      string `json:"to" url:"to"`
	Subject string `json:"subject" url:"subject"`
	Body    string `json:"body" url:"body"`
}

// Mailer sends emails.
type Mailer interface {
	// Send delivers the message.
	Send(ctx context.Context, msg Message) error
}

// New returns the Mailer for the configured transport.
func New(ctx context.Context, cfg *config.Config) (Mailer, error) {
	if cfg == nil {
		return nil, config.ErrNilConfig
	}

	logger := log.FromContext(ctx).WithPrefix("mail")
	var m Mailer
	transport := strings.ToLower(cfg.Mail.Transport)
	switch transport {
	case "", "log":
		transport = "log"
		m = NewLogMailer(logger)
	case "smtp":
		sm, err := NewSMTPMailer(cfg.Mail.SMTP)
		if err != nil {
			return nil, err
		}
		m = sm
	case "webhook":
		wm, err := NewWebhookMailer(cfg.Mail.Webhook)
		if err != nil {
			return nil, err
		}
		m = wm
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownTransport, cfg.Mail.Transport)
	}

	return &instrumented{
		Mailer:    m,
		from:      cfg.Mail.From,
		transport: transport,
		logger:    logger,
	}, nil
}

// instrumented fills in the sender and counts deliveries.
type instrumented struct {
	Mailer
	from      string
	transport string
	logger    *log.Logger
}

// Send implements Mailer.
func (m *instrumented) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}
	if msg.From == "" {
		msg.From = m.from
	}

	if err := m.Mailer.Send(ctx, msg); err != nil {
		sentCounter.WithLabelValues(m.transport, "error").Inc()
		m.logger.Error("failed to send email", "to", msg.To, "transport", m.transport, "err", err)
		return fmt.Errorf("send email: %w", err)
	}

	sentCounter.WithLabelValues(m.transport, "ok").Inc()
	m.logger.Debug("email sent", "to", msg.To, "transport", m.transport)
	return nil
}
