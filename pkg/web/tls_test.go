package web

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
)

func writeCert(t *testing.T, certPath, keyPath, cn string) {
	t.Helper()
	is := is.New(t)

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	is.NoErr(err)

	tmpl := x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, pub, priv)
	is.NoErr(err)
	key, err := x509.MarshalPKCS8PrivateKey(priv)
	is.NoErr(err)

	is.NoErr(os.WriteFile(certPath, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	is.NoErr(os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: key}), 0o600))
}

func TestCertReloader(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")

	writeCert(t, certPath, keyPath, "v1")
	cr, err := NewCertReloader(certPath, keyPath)
	is.NoErr(err)

	getCert := cr.GetCertificateFunc()
	first, err := getCert(nil)
	is.NoErr(err)

	writeCert(t, certPath, keyPath, "v2")
	is.NoErr(cr.Reload())
	second, err := getCert(nil)
	is.NoErr(err)
	is.True(first != second)

	// A broken key pair keeps the current certificate.
	is.NoErr(os.WriteFile(keyPath, []byte("garbage"), 0o600))
	is.True(cr.Reload() != nil)
	third, err := getCert(nil)
	is.NoErr(err)
	is.Equal(third, second)
}

func TestCertReloaderMissing(t *testing.T) {
	is := is.New(t)
	_, err := NewCertReloader("nope.pem", "nope.key")
	is.True(err != nil)
}
