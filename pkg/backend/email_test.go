package backend_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/soft-mail/pkg/backend"
	"github.com/charmbracelet/soft-mail/pkg/mail"
	"github.com/charmbracelet/soft-mail/pkg/proto"
	"github.com/charmbracelet/soft-mail/pkg/test"
	"github.com/matryer/is"
)

type clock struct {
	t time.Time
}

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newEnv(t *testing.T, opts backend.EmailOptions) (*test.Env, *mail.Recorder, *clock) {
	t.Helper()
	rec := &mail.Recorder{}
	clk := &clock{t: time.Now().UTC()}
	env := test.NewEnv(t, nil,
		backend.WithMailer(rec),
		backend.WithEmailOptions(opts),
		backend.WithClock(clk.Now),
	)
	return env, rec, clk
}

func defaultOpts() backend.EmailOptions {
	return backend.EmailOptions{
		ConfirmationTTL: 72 * time.Hour,
		ResendCooldown:  3 * time.Minute,
	}
}

// confirmationKey extracts the key from the last confirmation email.
func confirmationKey(t *testing.T, rec *mail.Recorder) string {
	t.Helper()
	msg, ok := rec.Last()
	if !ok {
		t.Fatal("no email sent")
	}
	const marker = "/api/v1/confirm-email/"
	i := strings.Index(msg.Body, marker)
	if i < 0 {
		t.Fatalf("no confirmation link in %q", msg.Body)
	}
	return strings.Fields(msg.Body[i+len(marker):])[0]
}

func TestVerifyKeepsPrimaryWhenFlagDisabled(t *testing.T) {
	is := is.New(t)
	env, rec, _ := newEnv(t, defaultOpts())
	ctx, be := env.Ctx, env.Backend

	u, err := be.CreateUser(ctx, "spam", proto.UserOptions{Email: "spam@example.com"})
	is.NoErr(err)
	is.Equal(u.Email(), "spam@example.com")

	addr, err := be.AddEmailAddress(ctx, u, "ham@example.com")
	is.NoErr(err)
	is.True(!addr.Verified)
	is.True(!addr.Primary)

	confirmed, err := be.ConfirmEmail(ctx, confirmationKey(t, rec))
	is.NoErr(err)
	is.True(confirmed.Verified)
	is.True(!confirmed.Primary)

	primary, err := be.PrimaryEmailAddress(ctx, u)
	is.NoErr(err)
	is.Equal(primary.Email, "spam@example.com")

	u, err = be.UserByID(ctx, u.ID())
	is.NoErr(err)
	is.Equal(u.Email(), "spam@example.com")
}

func TestVerifyMakesPrimaryWhenFlagEnabled(t *testing.T) {
	is := is.New(t)
	opts := defaultOpts()
	opts.SetPrimaryAtVerified = true
	env, rec, _ := newEnv(t, opts)
	ctx, be := env.Ctx, env.Backend

	u, err := be.CreateUser(ctx, "spam", proto.UserOptions{Email: "spam@example.com"})
	is.NoErr(err)
	old, err := be.PrimaryEmailAddress(ctx, u)
	is.NoErr(err)

	_, err = be.AddEmailAddress(ctx, u, "ham@example.com")
	is.NoErr(err)
	confirmed, err := be.ConfirmEmail(ctx, confirmationKey(t, rec))
	is.NoErr(err)
	is.True(confirmed.Verified)
	is.True(confirmed.Primary)

	primary, err := be.PrimaryEmailAddress(ctx, u)
	is.NoErr(err)
	is.Equal(primary.Email, "ham@example.com")

	old, err = be.EmailAddress(ctx, u, old.ID)
	is.NoErr(err)
	is.True(!old.Primary) // previous primary demoted
	is.True(old.Verified)

	u, err = be.UserByID(ctx, u.ID())
	is.NoErr(err)
	is.Equal(u.Email(), "ham@example.com")
}

func TestVerifyFirstAddressBecomesPrimary(t *testing.T) {
	is := is.New(t)
	env, rec, _ := newEnv(t, defaultOpts())
	ctx, be := env.Ctx, env.Backend

	u, err := be.CreateUser(ctx, "eggs", proto.UserOptions{})
	is.NoErr(err)
	is.Equal(u.Email(), "")

	_, err = be.AddEmailAddress(ctx, u, "Eggs@Example.com")
	is.NoErr(err)
	confirmed, err := be.ConfirmEmail(ctx, confirmationKey(t, rec))
	is.NoErr(err)
	is.True(confirmed.Primary)
	is.Equal(confirmed.Email, "Eggs@Example.com") // stored as submitted

	u, err = be.UserByID(ctx, u.ID())
	is.NoErr(err)
	is.Equal(u.Email(), "Eggs@Example.com")
}

func TestConfirmEmailErrors(t *testing.T) {
	is := is.New(t)
	env, rec, clk := newEnv(t, defaultOpts())
	ctx, be := env.Ctx, env.Backend

	_, err := be.ConfirmEmail(ctx, "")
	is.True(errors.Is(err, proto.ErrConfirmationNotFound))
	_, err = be.ConfirmEmail(ctx, "nope")
	is.True(errors.Is(err, proto.ErrConfirmationNotFound))

	u, err := be.CreateUser(ctx, "spam", proto.UserOptions{})
	is.NoErr(err)
	_, err = be.AddEmailAddress(ctx, u, "ham@example.com")
	is.NoErr(err)
	key := confirmationKey(t, rec)

	clk.Advance(73 * time.Hour)
	_, err = be.ConfirmEmail(ctx, key)
	is.True(errors.Is(err, proto.ErrConfirmationExpired))
}

func TestConfirmEmailKeyIsSingleUse(t *testing.T) {
	is := is.New(t)
	env, rec, _ := newEnv(t, defaultOpts())
	ctx, be := env.Ctx, env.Backend

	u, err := be.CreateUser(ctx, "spam", proto.UserOptions{})
	is.NoErr(err)
	_, err = be.AddEmailAddress(ctx, u, "ham@example.com")
	is.NoErr(err)
	key := confirmationKey(t, rec)

	_, err = be.ConfirmEmail(ctx, key)
	is.NoErr(err)
	_, err = be.ConfirmEmail(ctx, key)
	is.True(errors.Is(err, proto.ErrConfirmationNotFound))
}

func TestAddEmailAddressDuplicate(t *testing.T) {
	is := is.New(t)
	env, _, _ := newEnv(t, defaultOpts())
	ctx, be := env.Ctx, env.Backend

	u, err := be.CreateUser(ctx, "spam", proto.UserOptions{Email: "spam@example.com"})
	is.NoErr(err)

	_, err = be.AddEmailAddress(ctx, u, "SPAM@example.com")
	is.True(errors.Is(err, proto.ErrEmailAlreadyAdded))

	_, err = be.AddEmailAddress(ctx, u, "   ")
	is.True(errors.Is(err, proto.ErrEmailRequired))

	addrs, err := be.EmailAddresses(ctx, u)
	is.NoErr(err)
	is.Equal(len(addrs), 1)
}

func TestAddEmailAddressMailFailure(t *testing.T) {
	is := is.New(t)
	env, rec, _ := newEnv(t, defaultOpts())
	ctx, be := env.Ctx, env.Backend
	rec.Err = errors.New("smtp down")

	u, err := be.CreateUser(ctx, "spam", proto.UserOptions{})
	is.NoErr(err)
	addr, err := be.AddEmailAddress(ctx, u, "ham@example.com")
	is.True(err != nil)
	is.Equal(addr.Email, "ham@example.com")

	// The address stays so the confirmation can be sent again.
	rec.Err = nil
	_, err = be.FindEmailAddress(ctx, u, "ham@example.com")
	is.NoErr(err)
}

func TestSendConfirmation(t *testing.T) {
	is := is.New(t)
	env, rec, clk := newEnv(t, defaultOpts())
	ctx, be := env.Ctx, env.Backend

	u, err := be.CreateUser(ctx, "spam", proto.UserOptions{Email: "spam@example.com"})
	is.NoErr(err)
	addr, err := be.AddEmailAddress(ctx, u, "ham@example.com")
	is.NoErr(err)
	first := confirmationKey(t, rec)

	err = be.SendConfirmation(ctx, u, addr.ID)
	is.True(errors.Is(err, proto.ErrResendTooSoon))

	clk.Advance(4 * time.Minute)
	is.NoErr(be.SendConfirmation(ctx, u, addr.ID))
	second := confirmationKey(t, rec)
	is.True(first != second)
	is.Equal(len(rec.Messages()), 2)

	// Only the latest key is valid.
	_, err = be.ConfirmEmail(ctx, first)
	is.True(errors.Is(err, proto.ErrConfirmationNotFound))
	_, err = be.ConfirmEmail(ctx, second)
	is.NoErr(err)

	err = be.SendConfirmation(ctx, u, addr.ID)
	is.True(errors.Is(err, proto.ErrEmailVerified))

	err = be.SendConfirmation(ctx, u, 9999)
	is.True(errors.Is(err, proto.ErrEmailNotFound))
}

func TestSetPrimaryEmailAddress(t *testing.T) {
	is := is.New(t)
	env, rec, _ := newEnv(t, defaultOpts())
	ctx, be := env.Ctx, env.Backend

	u, err := be.CreateUser(ctx, "spam", proto.UserOptions{Email: "spam@example.com"})
	is.NoErr(err)
	ham, err := be.AddEmailAddress(ctx, u, "ham@example.com")
	is.NoErr(err)

	_, err = be.SetPrimaryEmailAddress(ctx, u, ham.ID)
	is.True(errors.Is(err, proto.ErrEmailNotVerified))

	_, err = be.ConfirmEmail(ctx, confirmationKey(t, rec))
	is.NoErr(err)

	ham, err = be.SetPrimaryEmailAddress(ctx, u, ham.ID)
	is.NoErr(err)
	is.True(ham.Primary)

	addrs, err := be.EmailAddresses(ctx, u)
	is.NoErr(err)
	is.Equal(len(addrs), 2)
	is.Equal(addrs[0].Email, "ham@example.com") // primary first
	is.True(!addrs[1].Primary)

	u, err = be.UserByID(ctx, u.ID())
	is.NoErr(err)
	is.Equal(u.Email(), "ham@example.com")
}

func TestSetPrimaryUnverifiedWithoutVerified(t *testing.T) {
	is := is.New(t)
	env, _, _ := newEnv(t, defaultOpts())
	ctx, be := env.Ctx, env.Backend

	u, err := be.CreateUser(ctx, "spam", proto.UserOptions{})
	is.NoErr(err)
	addr, err := be.AddEmailAddress(ctx, u, "ham@example.com")
	is.NoErr(err)

	addr, err = be.SetPrimaryEmailAddress(ctx, u, addr.ID)
	is.NoErr(err)
	is.True(addr.Primary)
	is.True(!addr.Verified)
}

func TestRemoveEmailAddress(t *testing.T) {
	is := is.New(t)
	env, _, _ := newEnv(t, defaultOpts())
	ctx, be := env.Ctx, env.Backend

	u, err := be.CreateUser(ctx, "spam", proto.UserOptions{Email: "spam@example.com"})
	is.NoErr(err)
	primary, err := be.PrimaryEmailAddress(ctx, u)
	is.NoErr(err)

	err = be.RemoveEmailAddress(ctx, u, primary.ID)
	is.True(errors.Is(err, proto.ErrPrimaryEmail))

	ham, err := be.AddEmailAddress(ctx, u, "ham@example.com")
	is.NoErr(err)
	is.NoErr(be.RemoveEmailAddress(ctx, u, ham.ID))

	_, err = be.EmailAddress(ctx, u, ham.ID)
	is.True(errors.Is(err, proto.ErrEmailNotFound))

	// Another user's address is invisible.
	other, err := be.CreateUser(ctx, "eggs", proto.UserOptions{})
	is.NoErr(err)
	err = be.RemoveEmailAddress(ctx, other, primary.ID)
	is.True(errors.Is(err, proto.ErrEmailNotFound))
}

func TestVerifyEmailAddress(t *testing.T) {
	is := is.New(t)
	env, _, _ := newEnv(t, defaultOpts())
	ctx, be := env.Ctx, env.Backend

	u, err := be.CreateUser(ctx, "spam", proto.UserOptions{Email: "spam@example.com"})
	is.NoErr(err)
	ham, err := be.AddEmailAddress(ctx, u, "ham@example.com")
	is.NoErr(err)

	ham, err = be.VerifyEmailAddress(ctx, u, ham.ID)
	is.NoErr(err)
	is.True(ham.Verified)
	is.True(!ham.Primary)
}

func TestPurgeExpiredConfirmations(t *testing.T) {
	is := is.New(t)
	env, rec, clk := newEnv(t, defaultOpts())
	ctx, be := env.Ctx, env.Backend

	u, err := be.CreateUser(ctx, "spam", proto.UserOptions{})
	is.NoErr(err)
	_, err = be.AddEmailAddress(ctx, u, "ham@example.com")
	is.NoErr(err)
	key := confirmationKey(t, rec)

	n, err := be.PurgeExpiredConfirmations(ctx)
	is.NoErr(err)
	is.Equal(n, int64(0))

	clk.Advance(80 * time.Hour)
	n, err = be.PurgeExpiredConfirmations(ctx)
	is.NoErr(err)
	is.Equal(n, int64(1))

	_, err = be.ConfirmEmail(ctx, key)
	is.True(errors.Is(err, proto.ErrConfirmationNotFound))
}

func TestEmailAddressInUse(t *testing.T) {
	is := is.New(t)
	env, _, _ := newEnv(t, defaultOpts())
	ctx, be := env.Ctx, env.Backend

	spam, err := be.CreateUser(ctx, "spam", proto.UserOptions{Email: "spam@example.com"})
	is.NoErr(err)
	eggs, err := be.CreateUser(ctx, "eggs", proto.UserOptions{})
	is.NoErr(err)

	used, err := be.EmailAddressInUse(ctx, eggs, "Spam@Example.com")
	is.NoErr(err)
	is.True(used)

	used, err = be.EmailAddressInUse(ctx, spam, "spam@example.com")
	is.NoErr(err)
	is.True(!used) // own address

	n, err := be.CountEmailAddresses(ctx, spam)
	is.NoErr(err)
	is.Equal(n, 1)
}

func TestEmailAddressUnicodeCase(t *testing.T) {
	is := is.New(t)
	env, _, _ := newEnv(t, defaultOpts())
	ctx, be := env.Ctx, env.Backend

	spam, err := be.CreateUser(ctx, "spam", proto.UserOptions{Email: "jörg@example.com"})
	is.NoErr(err)
	eggs, err := be.CreateUser(ctx, "eggs", proto.UserOptions{})
	is.NoErr(err)

	_, err = be.AddEmailAddress(ctx, spam, "JÖRG@example.com")
	is.True(errors.Is(err, proto.ErrEmailAlreadyAdded))

	used, err := be.EmailAddressInUse(ctx, eggs, "JÖRG@EXAMPLE.COM")
	is.NoErr(err)
	is.True(used)

	u, err := be.UserByEmail(ctx, "Jörg@Example.com")
	is.NoErr(err)
	is.Equal(u.ID(), spam.ID())
}
