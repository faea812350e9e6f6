//go:build !unix

package web

import (
	"context"

	"github.com/charmbracelet/log"
)

// Watch is a no-op on platforms without SIGHUP.
func (cr *CertReloader) Watch(context.Context, *log.Logger) {}
