package web

import (
	"crypto/tls"
	"fmt"
	"sync"
)

// CertReloader serves a TLS certificate that can be swapped while the
// server is running.
type CertReloader struct {
	mu       sync.RWMutex
	cert     *tls.Certificate
	certPath string
	keyPath  string
}

// NewCertReloader loads the key pair at certPath and keyPath.
func NewCertReloader(certPath, keyPath string) (*CertReloader, error) {
	cr := &CertReloader{
		certPath: certPath,
		keyPath:  keyPath,
	}
	if err := cr.Reload(); err != nil {
		return nil, err
	}
	return cr, nil
}

// Reload reads the key pair from disk again. The current certificate is
// kept when loading fails.
func (cr *CertReloader) Reload() error {
	cert, err := tls.LoadX509KeyPair(cr.certPath, cr.keyPath)
	if err != nil {
		return fmt.Errorf("load tls key pair: %w", err)
	}

	cr.mu.Lock()
	cr.cert = &cert
	cr.mu.Unlock()
	return nil
}

// GetCertificateFunc returns a function that can be used with tls.Config.GetCertificate.
func (cr *CertReloader) GetCertificateFunc() func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	return func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
		cr.mu.RLock()
		defer cr.mu.RUnlock()
		return cr.cert, nil
	}
}
