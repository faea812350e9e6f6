package mail

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-mail/pkg/config"
	"github.com/matryer/is"
)

func TestNewTransports(t *testing.T) {
	ctx := context.TODO()
	for _, c := range []struct {
		name string
		mut  func(*config.Config)
		ok   bool
	}{
		{"log", func(*config.Config) {}, true},
		{"smtp", func(c *config.Config) { c.Mail.Transport = "smtp" }, true},
		{"smtp-bad-tls", func(c *config.Config) {
			c.Mail.Transport = "smtp"
			c.Mail.SMTP.TLS = "sometimes"
		}, false},
		{"webhook", func(c *config.Config) {
			c.Mail.Transport = "webhook"
			c.Mail.Webhook.URL = "https://relay.example.com/send"
		}, true},
		{"webhook-no-url", func(c *config.Config) { c.Mail.Transport = "webhook" }, false},
		{"pigeon", func(c *config.Config) { c.Mail.Transport = "pigeon" }, false},
	} {
		t.Run(c.name, func(t *testing.T) {
			is := is.New(t)
			cfg := config.DefaultConfig()
			c.mut(cfg)
			_, err := New(ctx, cfg)
			is.Equal(err == nil, c.ok)
		})
	}
}

func TestNewNilConfig(t *testing.T) {
	is := is.New(t)
	_, err := New(context.TODO(), nil)
	is.Equal(err, config.ErrNilConfig)
}

func TestInstrumentedFillsSender(t *testing.T) {
	is := is.New(t)
	rec := &Recorder{}
	m := &instrumented{Mailer: rec, from: "Soft Mail <no-reply@example.com>", transport: "test", logger: log.New(&bytes.Buffer{})}

	is.Equal(m.Send(context.TODO(), Message{}), ErrNoRecipient)
	is.NoErr(m.Send(context.TODO(), Message{To: "jane@example.com", Subject: "hi"}))

	msg, ok := rec.Last()
	is.True(ok)
	is.Equal(msg.From, "Soft Mail <no-reply@example.com>")

	rec.Err = errors.New("relay down")
	is.True(m.Send(context.TODO(), Message{To: "jane@example.com"}) != nil)
}

func TestLogMailer(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	m := NewLogMailer(log.New(&buf))
	is.NoErr(m.Send(context.TODO(), Message{To: "jane@example.com", Subject: "Confirm"}))
	is.True(strings.Contains(buf.String(), "jane@example.com"))
}

func TestConfirmationMessage(t *testing.T) {
	is := is.New(t)
	msg, err := Confirmation{
		ServerName: "Soft Mail",
		Username:   "jane",
		Email:      "jane@example.com",
		Link:       "http://localhost:23240/api/v1/confirm-email/abc",
		ExpiresAt:  time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC),
	}.Message()
	is.NoErr(err)
	is.Equal(msg.To, "jane@example.com")
	is.True(strings.Contains(msg.Subject, "Soft Mail"))
	is.True(strings.Contains(msg.Body, "/api/v1/confirm-email/abc"))
	is.True(strings.Contains(msg.Body, "2024-01-02 03:04 UTC"))
}

func TestNewMsg(t *testing.T) {
	is := is.New(t)
	_, err := newMsg(Message{From: "no-reply@example.com", To: "jane@example.com", Subject: "s", Body: "b"})
	is.NoErr(err)
	_, err = newMsg(Message{From: "no-reply@example.com", To: "not an address"})
	is.True(err != nil)
}

func TestParseContentType(t *testing.T) {
	for s, want := range map[string]ContentType{
		"":                                  ContentTypeJSON,
		"json":                              ContentTypeJSON,
		"form":                              ContentTypeForm,
		"application/json; charset=utf-8":   ContentTypeJSON,
		"application/x-www-form-urlencoded": ContentTypeForm,
	} {
		ct, err := ParseContentType(s)
		if err != nil || ct != want {
			t.Errorf("ParseContentType(%q) => %v, %v, want %v", s, ct, err, want)
		}
	}
	if _, err := ParseContentType("text/xml"); !errors.Is(err, ErrInvalidContentType) {
		t.Errorf("ParseContentType(text/xml) => %v, want %v", err, ErrInvalidContentType)
	}
}
