package mail

import (
	"context"

	"github.com/charmbracelet/log"
)

// LogMailer writes emails to the logger instead of delivering them.
// It's the default transport and is meant for development.
type LogMailer struct {
	logger *log.Logger
}

var _ Mailer = (*LogMailer)(nil)

// NewLogMailer returns a new LogMailer.
func NewLogMailer(logger *log.Logger) *LogMailer {
	if logger == nil {
		logger = log.Default()
	}
	return &LogMailer{logger: logger}
}

// Send implements Mailer.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("email", "from", msg.From, "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}
