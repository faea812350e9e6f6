package jobs

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-mail/pkg/backend"
	"github.com/charmbracelet/soft-mail/pkg/config"
)

func init() {
	Register("purge-confirmations", purgeConfirmations{})
}

// purgeConfirmations deletes expired email confirmation keys.
type purgeConfirmations struct{}

var _ Runner = purgeConfirmations{}

// Spec implements Runner.
func (purgeConfirmations) Spec(ctx context.Context) string {
	cfg := config.FromContext(ctx)
	if cfg == nil {
		return ""
	}
	return cfg.Jobs.PurgeConfirmations
}

// Func implements Runner.
func (purgeConfirmations) Func(ctx context.Context) func() {
	be := backend.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("jobs.purge-confirmations")
	return func() {
		n, err := be.PurgeExpiredConfirmations(ctx)
		if err != nil {
			logger.Error("failed to purge expired confirmations", "err", err)
			return
		}
		logger.Debug("purged expired confirmations", "count", n)
	}
}
