package mail

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/soft-mail/pkg/config"
	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
)

const (
	headerDelivery  = "X-SoftMail-Delivery"
	headerSignature = "X-SoftMail-Signature"
)

// WebhookMailer posts emails to an HTTP relay.
//
// The body is the Message encoded as JSON or as a form. When a secret is
// set, the body is signed with HMAC-SHA256 in the X-SoftMail-Signature header.
type WebhookMailer struct {
	url         string
	secret      string
	contentType ContentType
	client      *http.Client
}

var _ Mailer = (*WebhookMailer)(nil)

// NewWebhookMailer returns a new WebhookMailer.
func NewWebhookMailer(cfg config.WebhookConfig) (*WebhookMailer, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("webhook: invalid url %q", cfg.URL)
	}

	ct, err := ParseContentType(cfg.ContentType)
	if err != nil {
		return nil, fmt.Errorf("webhook: %w", err)
	}

	return &WebhookMailer{
		url:         cfg.URL,
		secret:      cfg.Secret,
		contentType: ct,
		client: &http.Client{
			Timeout: 30 * time.Second,
			// Relays answer directly.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

// Sign returns the signature header value of body for secret.
func Sign(secret string, body []byte) string {
	sig := hmac.New(sha256.New, []byte(secret))
	sig.Write(body) // nolint: errcheck
	return "sha256=" + hex.EncodeToString(sig.Sum(nil))
}

func (w *WebhookMailer) encode(msg Message) ([]byte, error) {
	switch w.contentType {
	case ContentTypeJSON:
		return json.Marshal(msg) //nolint:wrapcheck
	case ContentTypeForm:
		v, err := query.Values(msg)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}
		return []byte(v.Encode()), nil
	default:
		return nil, ErrInvalidContentType
	}
}

// Send implements Mailer.
func (w *WebhookMailer) Send(ctx context.Context, msg Message) error {
	body, err := w.encode(msg)
	if err != nil {
		return err
	}

	id, err := uuid.NewUUID()
	if err != nil {
		return err //nolint:wrapcheck
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err //nolint:wrapcheck
	}

	req.Header.Set("Content-Type", w.contentType.String())
	req.Header.Set("User-Agent", "SoftMail")
	req.Header.Set(headerDelivery, id.String())
	if w.secret != "" {
		req.Header.Set(headerSignature, Sign(w.secret, body))
	}

	res, err := w.client.Do(req)
	if err != nil {
		return err //nolint:wrapcheck
	}
	defer res.Body.Close() // nolint: errcheck
	io.Copy(io.Discard, io.LimitReader(res.Body, 1<<16)) // nolint: errcheck

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("webhook: unexpected status %s (delivery %s)", res.Status, id)
	}

	return nil
}
