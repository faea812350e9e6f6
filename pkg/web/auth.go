package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-mail/pkg/backend"
	"github.com/charmbracelet/soft-mail/pkg/jwk"
	"github.com/charmbracelet/soft-mail/pkg/proto"
)

var (
	// ErrInvalidHeader is returned for a missing or malformed Authorization header.
	ErrInvalidHeader = errors.New("invalid authorization header")
	// ErrInvalidPassword is returned when basic auth credentials don't match.
	ErrInvalidPassword = errors.New("invalid password")
)

// authenticate returns the user of the request's Authorization header.
func authenticate(r *http.Request) (proto.User, error) {
	return parseAuthHdr(r)
}

func parseAuthHdr(r *http.Request) (proto.User, error) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, ErrInvalidHeader
	}

	scheme, value, ok := strings.Cut(header, " ")
	if !ok {
		return nil, ErrInvalidHeader
	}
	value = strings.TrimSpace(value)

	switch strings.ToLower(scheme) {
	case "bearer":
		return be.UserByToken(ctx, value) //nolint:wrapcheck
	case "token":
		return be.UserByAccessToken(ctx, value) //nolint:wrapcheck
	case "basic":
		username, password, ok := r.BasicAuth()
		if !ok {
			return nil, ErrInvalidHeader
		}
		user, err := be.AuthenticateUser(ctx, username, password)
		if errors.Is(err, proto.ErrUnauthorized) {
			return nil, ErrInvalidPassword
		}
		return user, err //nolint:wrapcheck
	default:
		return nil, ErrInvalidHeader
	}
}

// withUser rejects unauthenticated requests and stores the user in the
// request context.
func withUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := log.FromContext(ctx)

		user, err := authenticate(r)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidHeader),
				errors.Is(err, ErrInvalidPassword),
				errors.Is(err, jwk.ErrInvalidToken),
				errors.Is(err, proto.ErrTokenNotFound),
				errors.Is(err, proto.ErrTokenExpired),
				errors.Is(err, proto.ErrUserNotFound):
				logger.Debug("authentication failed", "err", err)
			default:
				logger.Error("failed to authenticate", "err", err)
			}
			renderUnauthorized(w, r)
			return
		}

		logger.Debug("authenticated", "username", user.Username())
		ctx = proto.WithUserContext(ctx, user)
		ctx = log.WithContext(ctx, logger.With("username", user.Username()))
		next(w, r.WithContext(ctx))
	}
}
