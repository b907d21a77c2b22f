// Package api serves the JSON API mounted at /api/v1.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/promptpad/internal/auth"
	"github.com/joestump/promptpad/internal/conversation"
	"github.com/joestump/promptpad/internal/prompt"
	"github.com/joestump/promptpad/internal/render"
	"github.com/joestump/promptpad/internal/store"
)

// Deps holds all dependencies required to build the API router.
type Deps struct {
	// AuthMiddleware guards every route when login is enabled. Nil disables it.
	AuthMiddleware *auth.Middleware
	Renderer       *render.Renderer
	Catalog        *prompt.Catalog
	Conversations  *conversation.Registry
	PromptStore    store.PromptStoreIface
	Logger         *zap.Logger
}

// NewAPIRouter creates a chi sub-router for /api/v1. All routes return
// application/json.
func NewAPIRouter(deps Deps) chi.Router {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(jsonContentType)
	if deps.AuthMiddleware != nil {
		r.Use(deps.AuthMiddleware.RequireAPIAuth)
	}

	registerPlaygroundRoutes(r, deps.Renderer, deps.Catalog)
	registerConversationRoutes(r, deps.Conversations, deps.Renderer, deps.Catalog)
	registerPromptRoutes(r, deps.PromptStore, logger.Named("api"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found", "NOT_FOUND")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "METHOD_NOT_ALLOWED")
	})
	return r
}

// jsonContentType is a middleware that sets Content-Type: application/json on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
