package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-mail/pkg/proto"
	"github.com/charmbracelet/soft-mail/pkg/serializer"
)

func renderStatus(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
		io.WriteString(w, fmt.Sprintf("%d %s", code, http.StatusText(code))) //nolint:errcheck,gosec
	}
}

func renderNotFound(w http.ResponseWriter, r *http.Request) {
	renderError(w, r, http.StatusNotFound, errors.New(http.StatusText(http.StatusNotFound)))
}

func renderUnauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", `Basic realm="Soft Mail" charset="UTF-8", Token, Bearer`)
	renderError(w, r, http.StatusUnauthorized, proto.ErrUnauthorized)
}

func renderJSON(w http.ResponseWriter, r *http.Request, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(r.Context()).Error("error encoding json", "err", err)
	}
}

// errorResponse is the body of every failed API call except validation
// failures, which render serializer.Errors.
type errorResponse struct {
	Message string `json:"message"`
}

func renderError(w http.ResponseWriter, r *http.Request, code int, err error) {
	renderJSON(w, r, code, errorResponse{Message: err.Error()})
}

// renderBackendError maps backend errors to HTTP responses.
func renderBackendError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs serializer.Errors
	switch {
	case errors.As(err, &verrs):
		renderJSON(w, r, http.StatusBadRequest, verrs)
	case errors.Is(err, proto.ErrUnauthorized):
		renderUnauthorized(w, r)
	case errors.Is(err, proto.ErrEmailNotFound),
		errors.Is(err, proto.ErrUserNotFound),
		errors.Is(err, proto.ErrConfirmationNotFound):
		renderError(w, r, http.StatusNotFound, err)
	case errors.Is(err, proto.ErrConfirmationExpired):
		renderError(w, r, http.StatusGone, err)
	case errors.Is(err, proto.ErrResendTooSoon):
		renderError(w, r, http.StatusTooManyRequests, err)
	case errors.Is(err, proto.ErrEmailVerified),
		errors.Is(err, proto.ErrEmailNotVerified),
		errors.Is(err, proto.ErrPrimaryEmail):
		renderError(w, r, http.StatusConflict, err)
	default:
		log.FromContext(r.Context()).Error("request failed", "err", err)
		renderError(w, r, http.StatusInternalServerError, errors.New(http.StatusText(http.StatusInternalServerError)))
	}
}
