package handler

import (
	"io/fs"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "github.com/joestump/promptpad/docs/swagger"
	"github.com/joestump/promptpad/internal/api"
	"github.com/joestump/promptpad/internal/auth"
	"github.com/joestump/promptpad/internal/conversation"
	"github.com/joestump/promptpad/internal/prompt"
	promptrender "github.com/joestump/promptpad/internal/render"
	"github.com/joestump/promptpad/internal/store"
	"github.com/joestump/promptpad/web"
)

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	SessionManager *scs.SessionManager
	// AuthHandlers is nil when login is not configured.
	AuthHandlers   *auth.Handlers
	AuthMiddleware *auth.Middleware
	Renderer       *promptrender.Renderer
	Catalog        *prompt.Catalog
	Conversations  *conversation.Registry
	PromptStore    store.PromptStoreIface
	Logger         *zap.Logger
}

// NewRouter assembles the full chi router with all middleware and routes.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	authMw := deps.AuthMiddleware
	if authMw == nil {
		authMw = auth.NewMiddleware(deps.SessionManager, false)
	}

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(deps.SessionManager.LoadAndSave)

	// fs.Sub so the file server sees css/app.css rather than static/css/app.css.
	staticSub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("failed to sub static FS: " + err.Error())
	}
	r.Handle("/static/*", http.StripPrefix("/static", http.FileServerFS(staticSub)))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/docs/*", httpSwagger.Handler(httpSwagger.URL("/api/docs/doc.json")))

	r.Post("/theme", NewThemeHandler().Toggle)

	if deps.AuthHandlers != nil {
		r.Get("/auth/login", deps.AuthHandlers.Login)
		r.Get("/auth/callback", deps.AuthHandlers.Callback)
		r.Post("/auth/logout", deps.AuthHandlers.Logout)
	}

	state := &stateStore{sessions: deps.SessionManager, renderer: deps.Renderer}
	playground := &PlaygroundHandler{
		state:        state,
		catalog:      deps.Catalog,
		convs:        deps.Conversations,
		prompts:      deps.PromptStore,
		loginEnabled: authMw.Enabled(),
	}
	convs := &ConversationHandler{state: state, catalog: deps.Catalog, convs: deps.Conversations}
	library := &LibraryHandler{state: state, prompts: deps.PromptStore, logger: logger.Named("library")}

	r.Group(func(r chi.Router) {
		r.Use(authMw.Identify)
		r.Use(authMw.RequireAuth)

		r.Get("/", playground.Index)
		r.Post("/playground/template", playground.UpdateTemplate)
		r.Post("/playground/context", playground.UpdateContext)
		r.Post("/playground/model", playground.SelectModel)
		r.Post("/playground/clear", playground.Clear)

		r.Post("/conversation/messages", convs.Send)
		r.Post("/conversation/reply", convs.Reply)
		r.Post("/conversation/clear", convs.Clear)

		r.Get("/library", library.List)
		r.Post("/library", library.Save)
		r.Post("/library/{id}/load", library.Load)
		r.Post("/library/{id}/rename", library.Rename)
		r.Delete("/library/{id}", library.Delete)
	})

	apiDeps := api.Deps{
		Renderer:      deps.Renderer,
		Catalog:       deps.Catalog,
		Conversations: deps.Conversations,
		PromptStore:   deps.PromptStore,
		Logger:        logger,
	}
	if authMw.Enabled() {
		apiDeps.AuthMiddleware = authMw
	}
	r.Mount("/api/v1", api.NewAPIRouter(apiDeps))

	return r
}
