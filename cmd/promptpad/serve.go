package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/joestump/promptpad/internal/auth"
	"github.com/joestump/promptpad/internal/conversation"
	"github.com/joestump/promptpad/internal/db"
	"github.com/joestump/promptpad/internal/handler"
	"github.com/joestump/promptpad/internal/llm"
	"github.com/joestump/promptpad/internal/metrics"
	"github.com/joestump/promptpad/internal/render"
	"github.com/joestump/promptpad/internal/store"
)

const (
	shutdownTimeout         = 10 * time.Second
	libraryGaugePeriod      = 30 * time.Second
	conversationPrunePeriod = 5 * time.Minute
	serverHeaderTimeout     = 10 * time.Second
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := a.cfg, a.logger

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			database, err := db.New(ctx, cfg.DB.Driver, cfg.DB.DSN)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()

			if err := db.Migrate(database, cfg.DB.Driver); err != nil {
				return err
			}

			prompts := store.NewPromptStore(database)
			if cfg.Library.SeedFile != "" {
				seed, err := store.LoadSeedFile(cfg.Library.SeedFile)
				if err != nil {
					return err
				}
				n, err := prompts.Import(ctx, seed)
				if err != nil {
					return err
				}
				logger.Info("imported library seed", zap.String("file", cfg.Library.SeedFile), zap.Int("prompts", n))
			}

			catalog, err := cfg.ModelCatalog()
			if err != nil {
				return err
			}
			generator, err := llm.New(cfg)
			if err != nil {
				return err
			}

			sessionManager := auth.NewSessionManager(database, cfg.DB.Driver, cfg.SessionLifetime, !cfg.InsecureCookies)
			authMiddleware := auth.NewMiddleware(sessionManager, cfg.OIDCEnabled())

			var authHandlers *auth.Handlers
			if cfg.OIDCEnabled() {
				provider, err := auth.NewProvider(ctx, cfg)
				if err != nil {
					return err
				}
				authHandlers = auth.NewHandlers(provider, sessionManager, logger.Named("auth"))
			}

			conversations := conversation.NewRegistry(generator, logger.Named("conversation"),
				conversation.WithMaxConversations(cfg.Conversation.Max),
				conversation.WithIdleTimeout(cfg.Conversation.IdleTimeout))

			router := handler.NewRouter(handler.Deps{
				SessionManager: sessionManager,
				AuthHandlers:   authHandlers,
				AuthMiddleware: authMiddleware,
				Renderer:       render.New(render.Options{Source: prompts}),
				Catalog:        catalog,
				Conversations:  conversations,
				PromptStore:    prompts,
				Logger:         logger,
			})

			srv := &http.Server{
				Addr:              cfg.HTTP.Addr,
				Handler:           router,
				ReadHeaderTimeout: serverHeaderTimeout,
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("listening",
					zap.String("addr", cfg.HTTP.Addr),
					zap.String("provider", cfg.LLM.Provider),
					zap.String("default_model", catalog.Default().ID),
					zap.Bool("login", cfg.OIDCEnabled()))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				logger.Info("shutting down")
				return srv.Shutdown(shutdownCtx)
			})
			g.Go(func() error {
				watchLibrarySize(gctx, prompts, logger)
				return nil
			})
			if cfg.Conversation.IdleTimeout > 0 {
				g.Go(func() error {
					pruneConversations(gctx, conversations, cfg.Conversation.IdleTimeout)
					return nil
				})
			}
			return g.Wait()
		},
	}
}

// watchLibrarySize keeps the library gauge current until ctx is done.
func watchLibrarySize(ctx context.Context, prompts *store.PromptStore, logger *zap.Logger) {
	update := func() {
		n, err := prompts.Count(ctx)
		if err != nil {
			if ctx.Err() == nil {
				logger.Warn("count library prompts", zap.Error(err))
			}
			return
		}
		metrics.PromptsTotal.Set(float64(n))
	}

	update()
	ticker := time.NewTicker(libraryGaugePeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			update()
		}
	}
}

// pruneConversations drops idle conversations until ctx is done. It checks
// a few times per idle timeout, capped at conversationPrunePeriod.
func pruneConversations(ctx context.Context, convs *conversation.Registry, idle time.Duration) {
	period := min(idle/4, conversationPrunePeriod)
	if period <= 0 {
		period = idle
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			convs.Prune()
		}
	}
}
