// Package serializer validates and saves user submitted data.
package serializer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/soft-mail/pkg/config"
	"github.com/charmbracelet/soft-mail/pkg/proto"
	"github.com/charmbracelet/soft-mail/pkg/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gobwas/glob"
)

// ErrNotValidated is returned by Save when IsValid didn't succeed first.
var ErrNotValidated = errors.New("serializer: IsValid must succeed before Save")

// EmailBackend is the part of the backend the email serializer needs.
type EmailBackend interface {
	FindEmailAddress(ctx context.Context, user proto.User, email string) (proto.EmailAddress, error)
	EmailAddressInUse(ctx context.Context, user proto.User, email string) (bool, error)
	CountEmailAddresses(ctx context.Context, user proto.User) (int, error)
	AddEmailAddress(ctx context.Context, user proto.User, email string) (proto.EmailAddress, error)
}

// EmailData is the request body of an email address creation.
// A nil Email means the field was absent.
type EmailData struct {
	Email *string `json:"email"`
}

// DecodeEmailData reads EmailData from a JSON body.
func DecodeEmailData(r io.Reader) (EmailData, error) {
	var d EmailData
	if err := json.NewDecoder(r).Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		return d, fmt.Errorf("invalid request body: %w", err)
	}
	return d, nil
}

// Email returns EmailData holding email.
func Email(email string) EmailData {
	return EmailData{Email: &email}
}

type emailInput struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// EmailPolicy restricts which addresses users may add.
type EmailPolicy struct {
	Unique         bool
	MaxAddresses   int
	AllowedDomains []string
}

// EmailPolicyFromConfig returns the policy configured in cfg.
func EmailPolicyFromConfig(cfg *config.Config) EmailPolicy {
	if cfg == nil {
		return EmailPolicy{Unique: true}
	}
	return EmailPolicy{
		Unique:         cfg.Email.Unique,
		MaxAddresses:   cfg.Email.MaxAddresses,
		AllowedDomains: cfg.Email.AllowedDomains,
	}
}

// EmailAddressSerializer validates a new email address for a user and
// creates it.
type EmailAddressSerializer struct {
	be     EmailBackend
	policy EmailPolicy
	user   proto.User
	data   EmailData

	email  string
	errors Errors
	valid  bool
}

// NewEmailAddressSerializer returns a serializer for data submitted by user.
func NewEmailAddressSerializer(be EmailBackend, policy EmailPolicy, user proto.User, data EmailData) *EmailAddressSerializer {
	return &EmailAddressSerializer{
		be:     be,
		policy: policy,
		user:   user,
		data:   data,
	}
}

// IsValid runs every check and reports whether the data can be saved.
// Validation messages are available from Errors afterwards.
func (s *EmailAddressSerializer) IsValid(ctx context.Context) bool {
	s.errors = Errors{}
	s.valid = false

	if s.data.Email == nil {
		s.errors.Add("email", proto.ErrEmailRequired.Error())
		return false
	}

	s.email = utils.SanitizeEmail(*s.data.Email)
	if err := Validator().Struct(emailInput{Email: s.email}); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			s.errors.Add(NonFieldErrors, err.Error())
			return false
		}
		for _, fe := range verrs {
			s.errors.Add(fe.Field(), fieldMessage(fe))
		}
		return false
	}

	if !domainAllowed(s.policy, s.email) {
		s.errors.Add("email", proto.ErrEmailDomainNotAllowed.Error())
		return false
	}

	if err := s.validateOwnership(ctx); err != nil {
		return false
	}

	s.valid = true
	return true
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return proto.ErrEmailRequired.Error()
	case "email":
		return proto.ErrEmailInvalid.Error()
	case "max":
		return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed on %q", fe.Tag())
	}
}

// CheckEmail runs the syntax and domain checks of policy on a single
// address. Ownership checks need a user and are left to the caller.
func CheckEmail(email string, policy EmailPolicy) error {
	email = utils.SanitizeEmail(email)
	if err := Validator().Struct(emailInput{Email: email}); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "required" {
			return proto.ErrEmailRequired
		}
		return proto.ErrEmailInvalid
	}

	if !domainAllowed(policy, email) {
		return proto.ErrEmailDomainNotAllowed
	}

	return nil
}

func domainAllowed(policy EmailPolicy, email string) bool {
	if len(policy.AllowedDomains) == 0 {
		return true
	}

	domain := utils.EmailDomain(email)
	for _, pattern := range policy.AllowedDomains {
		g, err := glob.Compile(pattern, '.')
		if err != nil {
			continue
		}
		if g.Match(domain) {
			return true
		}
	}

	return false
}

func (s *EmailAddressSerializer) validateOwnership(ctx context.Context) error {
	_, err := s.be.FindEmailAddress(ctx, s.user, s.email)
	switch {
	case err == nil:
		s.errors.Add("email", proto.ErrEmailAlreadyAdded.Error())
		return proto.ErrEmailAlreadyAdded
	case !errors.Is(err, proto.ErrEmailNotFound):
		s.errors.Add(NonFieldErrors, err.Error())
		return err
	}

	if s.policy.Unique {
		used, err := s.be.EmailAddressInUse(ctx, s.user, s.email)
		if err != nil {
			s.errors.Add(NonFieldErrors, err.Error())
			return err
		}
		if used {
			s.errors.Add("email", proto.ErrEmailExist.Error())
			return proto.ErrEmailExist
		}
	}

	if s.policy.MaxAddresses > 0 {
		n, err := s.be.CountEmailAddresses(ctx, s.user)
		if err != nil {
			s.errors.Add(NonFieldErrors, err.Error())
			return err
		}
		if n >= s.policy.MaxAddresses {
			s.errors.Add(NonFieldErrors, proto.ErrTooManyEmails.Error())
			return proto.ErrTooManyEmails
		}
	}

	return nil
}

// Errors returns the messages collected by the last IsValid call.
func (s *EmailAddressSerializer) Errors() Errors {
	if s.errors == nil {
		return Errors{}
	}
	return s.errors
}

// ValidatedEmail returns the sanitized address once IsValid succeeded.
func (s *EmailAddressSerializer) ValidatedEmail() string {
	if !s.valid {
		return ""
	}
	return s.email
}

// Save creates the address and sends its confirmation email.
// A concurrent insert of the same address is reported as a field error.
func (s *EmailAddressSerializer) Save(ctx context.Context) (proto.EmailAddress, error) {
	if !s.valid {
		return proto.EmailAddress{}, ErrNotValidated
	}

	addr, err := s.be.AddEmailAddress(ctx, s.user, s.email)
	if errors.Is(err, proto.ErrEmailAlreadyAdded) {
		s.valid = false
		s.errors.Add("email", proto.ErrEmailAlreadyAdded.Error())
		return proto.EmailAddress{}, s.errors
	}

	return addr, err //nolint:wrapcheck
}
