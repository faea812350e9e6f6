package web

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-mail/pkg/config"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// NewRouter returns a new HTTP router.
func NewRouter(ctx context.Context) http.Handler {
	cfg := config.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("http")
	router := mux.NewRouter()

	// Health routes
	HealthController(ctx, router)

	// API routes
	APIController(ctx, router)

	router.PathPrefix("/").HandlerFunc(renderNotFound)

	// Context handler
	// Adds context to the request
	h := NewLoggingMiddleware(router, logger)
	h = NewContextHandler(ctx)(h)
	h = handlers.CompressHandler(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel})),
	)(h)

	if cfg != nil && len(cfg.HTTP.CORS.AllowedOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedHeaders(cfg.HTTP.CORS.AllowedHeaders),
			handlers.AllowedOrigins(cfg.HTTP.CORS.AllowedOrigins),
			handlers.AllowedMethods(cfg.HTTP.CORS.AllowedMethods),
		)(h)
	}

	return h
}
