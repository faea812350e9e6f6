package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-mail/pkg/backend"
	"github.com/charmbracelet/soft-mail/pkg/config"
	"github.com/charmbracelet/soft-mail/pkg/proto"
	"github.com/charmbracelet/soft-mail/pkg/serializer"
	"github.com/gorilla/mux"
)

// APIController registers the API routes for the web server.
func APIController(_ context.Context, r *mux.Router) {
	r.HandleFunc("/.well-known/jwks.json", getJWKS).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/confirm-email/{key}", confirmEmail).Methods(http.MethodGet, http.MethodPost)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/token", withUser(postToken)).Methods(http.MethodPost)
	api.HandleFunc("/user", withUser(getUser)).Methods(http.MethodGet)
	api.HandleFunc("/user/emails", withUser(listEmails)).Methods(http.MethodGet)
	api.HandleFunc("/user/emails", withUser(createEmail)).Methods(http.MethodPost)
	api.HandleFunc("/user/emails/{id:[0-9]+}", withUser(getEmail)).Methods(http.MethodGet)
	api.HandleFunc("/user/emails/{id:[0-9]+}", withUser(deleteEmail)).Methods(http.MethodDelete)
	api.HandleFunc("/user/emails/{id:[0-9]+}/primary", withUser(setPrimaryEmail)).Methods(http.MethodPost)
	api.HandleFunc("/user/emails/{id:[0-9]+}/resend", withUser(resendConfirmation)).Methods(http.MethodPost)
}

type tokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Admin    bool   `json:"admin"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func postToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	user := proto.UserFromContext(ctx)

	token, expiresAt, err := be.IssueToken(ctx, user)
	if err != nil {
		renderBackendError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, tokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
	})
}

func getUser(w http.ResponseWriter, r *http.Request) {
	user := proto.UserFromContext(r.Context())
	renderJSON(w, r, http.StatusOK, userResponse{
		ID:       user.ID(),
		Username: user.Username(),
		Email:    user.Email(),
		Admin:    user.IsAdmin(),
	})
}

func getJWKS(w http.ResponseWriter, r *http.Request) {
	be := backend.FromContext(r.Context())
	kp, err := be.KeyPair()
	if err != nil {
		renderBackendError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, kp.JWKS())
}

func listEmails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	addrs, err := be.EmailAddresses(ctx, proto.UserFromContext(ctx))
	if err != nil {
		renderBackendError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, addrs)
}

func createEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	cfg := config.FromContext(ctx)

	data, err := serializer.DecodeEmailData(r.Body)
	if err != nil {
		errs := serializer.Errors{}
		errs.Add(serializer.NonFieldErrors, err.Error())
		renderJSON(w, r, http.StatusBadRequest, errs)
		return
	}

	s := serializer.NewEmailAddressSerializer(be, serializer.EmailPolicyFromConfig(cfg), proto.UserFromContext(ctx), data)
	if !s.IsValid(ctx) {
		renderJSON(w, r, http.StatusBadRequest, s.Errors())
		return
	}

	addr, err := s.Save(ctx)
	if err != nil && addr.ID == 0 {
		renderBackendError(w, r, err)
		return
	}

	if err != nil {
		// The address exists even if the confirmation couldn't be sent.
		log.FromContext(ctx).Error("failed to send confirmation email", "email", addr.Email, "err", err)
	}

	renderJSON(w, r, http.StatusCreated, addr)
}

// emailID returns the {id} route variable.
func emailID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func getEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	addr, err := be.EmailAddress(ctx, proto.UserFromContext(ctx), emailID(r))
	if err != nil {
		renderBackendError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, addr)
}

func deleteEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	if err := be.RemoveEmailAddress(ctx, proto.UserFromContext(ctx), emailID(r)); err != nil {
		renderBackendError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func setPrimaryEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	addr, err := be.SetPrimaryEmailAddress(ctx, proto.UserFromContext(ctx), emailID(r))
	if err != nil {
		renderBackendError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, addr)
}

func resendConfirmation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)

	if err := be.SendConfirmation(ctx, proto.UserFromContext(ctx), emailID(r)); err != nil {
		renderBackendError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusAccepted, messageResponse{Message: "confirmation email sent"})
}

// confirmEmail confirms the address on POST. A GET only reports which
// address the key belongs to unless email.confirm_on_get is set.
func confirmEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	be := backend.FromContext(ctx)
	key := mux.Vars(r)["key"]

	if r.Method == http.MethodGet && !confirmOnGet(ctx) {
		addr, err := be.EmailConfirmation(ctx, key)
		if err != nil {
			renderBackendError(w, r, err)
			return
		}
		renderJSON(w, r, http.StatusOK, addr)
		return
	}

	addr, err := be.ConfirmEmail(ctx, key)
	if err != nil {
		renderBackendError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, addr)
}

func confirmOnGet(ctx context.Context) bool {
	cfg := config.FromContext(ctx)
	return cfg != nil && cfg.Email.ConfirmOnGet
}
