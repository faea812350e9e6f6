package serializer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/soft-mail/pkg/backend"
	"github.com/charmbracelet/soft-mail/pkg/mail"
	"github.com/charmbracelet/soft-mail/pkg/proto"
	"github.com/charmbracelet/soft-mail/pkg/serializer"
	"github.com/charmbracelet/soft-mail/pkg/test"
	"github.com/matryer/is"
)

func setup(t *testing.T) (context.Context, *backend.Backend, proto.User, *mail.Recorder) {
	t.Helper()
	rec := &mail.Recorder{}
	env := test.NewEnv(t, nil, backend.WithMailer(rec), backend.WithEmailOptions(backend.EmailOptions{
		ConfirmationTTL: time.Hour,
	}))
	u, err := env.Backend.CreateUser(env.Ctx, "spam", proto.UserOptions{Email: "spam@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	return env.Ctx, env.Backend, u, rec
}

func TestEmailRequired(t *testing.T) {
	ctx, be, u, _ := setup(t)
	policy := serializer.EmailPolicy{Unique: true}

	for name, data := range map[string]serializer.EmailData{
		"absent": {},
		"empty":  serializer.Email(""),
		"blank":  serializer.Email("   "),
	} {
		t.Run(name, func(t *testing.T) {
			is := is.New(t)
			s := serializer.NewEmailAddressSerializer(be, policy, u, data)
			is.True(!s.IsValid(ctx))
			is.Equal(s.Errors()["email"], []string{proto.ErrEmailRequired.Error()})
		})
	}
}

func TestEmailInvalid(t *testing.T) {
	is := is.New(t)
	ctx, be, u, _ := setup(t)

	s := serializer.NewEmailAddressSerializer(be, serializer.EmailPolicy{}, u, serializer.Email("not-an-email"))
	is.True(!s.IsValid(ctx))
	is.Equal(s.Errors()["email"], []string{proto.ErrEmailInvalid.Error()})
}

func TestEmailDuplicateForSameUser(t *testing.T) {
	is := is.New(t)
	ctx, be, u, _ := setup(t)

	s := serializer.NewEmailAddressSerializer(be, serializer.EmailPolicy{}, u, serializer.Email("Spam@Example.com"))
	is.True(!s.IsValid(ctx))
	is.True(s.Errors().Has("email"))

	_, err := s.Save(ctx)
	is.Equal(err, serializer.ErrNotValidated)
}

func TestEmailUsedByOtherUser(t *testing.T) {
	is := is.New(t)
	ctx, be, _, _ := setup(t)
	eggs, err := be.CreateUser(ctx, "eggs", proto.UserOptions{})
	is.NoErr(err)

	s := serializer.NewEmailAddressSerializer(be, serializer.EmailPolicy{Unique: true}, eggs, serializer.Email("spam@example.com"))
	is.True(!s.IsValid(ctx))
	is.Equal(s.Errors()["email"], []string{proto.ErrEmailExist.Error()})

	s = serializer.NewEmailAddressSerializer(be, serializer.EmailPolicy{Unique: false}, eggs, serializer.Email("spam@example.com"))
	is.True(s.IsValid(ctx))
}

func TestEmailSave(t *testing.T) {
	is := is.New(t)
	ctx, be, u, rec := setup(t)

	s := serializer.NewEmailAddressSerializer(be, serializer.EmailPolicy{Unique: true}, u, serializer.Email("Ham@Example.com"))
	is.True(s.IsValid(ctx))
	is.Equal(len(s.Errors()), 0)

	addr, err := s.Save(ctx)
	is.NoErr(err)
	is.Equal(addr.Email, "Ham@Example.com")
	is.True(!addr.Verified)
	is.True(!addr.Primary)

	msg, ok := rec.Last()
	is.True(ok)
	is.Equal(msg.To, "Ham@Example.com")

	found, err := be.FindEmailAddress(ctx, u, "ham@example.com")
	is.NoErr(err)
	is.Equal(found.Email, "Ham@Example.com")
}

func TestEmailAllowedDomains(t *testing.T) {
	is := is.New(t)
	ctx, be, u, _ := setup(t)
	policy := serializer.EmailPolicy{AllowedDomains: []string{"*.example.com", "example.org"}}

	s := serializer.NewEmailAddressSerializer(be, policy, u, serializer.Email("ham@mail.example.com"))
	is.True(s.IsValid(ctx))

	s = serializer.NewEmailAddressSerializer(be, policy, u, serializer.Email("ham@EXAMPLE.org"))
	is.True(s.IsValid(ctx))

	s = serializer.NewEmailAddressSerializer(be, policy, u, serializer.Email("ham@example.net"))
	is.True(!s.IsValid(ctx))
	is.Equal(s.Errors()["email"], []string{proto.ErrEmailDomainNotAllowed.Error()})
}

func TestEmailMaxAddresses(t *testing.T) {
	is := is.New(t)
	ctx, be, u, _ := setup(t)

	s := serializer.NewEmailAddressSerializer(be, serializer.EmailPolicy{MaxAddresses: 1}, u, serializer.Email("ham@example.com"))
	is.True(!s.IsValid(ctx))
	is.Equal(s.Errors()[serializer.NonFieldErrors], []string{proto.ErrTooManyEmails.Error()})
}

func TestCheckEmail(t *testing.T) {
	is := is.New(t)
	policy := serializer.EmailPolicy{AllowedDomains: []string{"example.com"}}

	is.NoErr(serializer.CheckEmail(" jane@example.com ", policy))
	is.True(errors.Is(serializer.CheckEmail("", policy), proto.ErrEmailRequired))
	is.True(errors.Is(serializer.CheckEmail("jane", policy), proto.ErrEmailInvalid))
	is.True(errors.Is(serializer.CheckEmail("jane@example.net", policy), proto.ErrEmailDomainNotAllowed))
	is.NoErr(serializer.CheckEmail("jane@example.net", serializer.EmailPolicy{}))
}
