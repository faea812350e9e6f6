//go:build unix

package web

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
)

// Watch reloads the certificate on SIGHUP until ctx is done.
func (cr *CertReloader) Watch(ctx context.Context, logger *log.Logger) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP)
	defer signal.Stop(sig)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sig:
			logger.Info("reloading TLS certificate", "cert", cr.certPath, "key", cr.keyPath)
			if err := cr.Reload(); err != nil {
				logger.Error("failed to reload TLS certificate, keeping old one", "err", err)
			}
		}
	}
}
