// Social media post generator API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/spboyer/social-media-post-ge/internal/api"
	"github.com/spboyer/social-media-post-ge/internal/audit"
	"github.com/spboyer/social-media-post-ge/internal/auth"
	"github.com/spboyer/social-media-post-ge/internal/config"
	"github.com/spboyer/social-media-post-ge/internal/extract"
	"github.com/spboyer/social-media-post-ge/internal/generate"
	"github.com/spboyer/social-media-post-ge/internal/identity"
	"github.com/spboyer/social-media-post-ge/internal/middleware"
	"github.com/spboyer/social-media-post-ge/internal/store"
	"github.com/spboyer/social-media-post-ge/internal/store/postgres"
	"github.com/spboyer/social-media-post-ge/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server", "port", cfg.Port, "store", cfg.Store.Driver, "generator", cfg.Generator.Mode)

	// Initialize dependencies.
	st, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("Failed to close store", "error", closeErr)
		}
	}()

	if err := st.Ping(context.Background()); err != nil {
		slog.Error("Store health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Store connected")

	gen := buildGenerator(cfg)
	svc := generate.NewService(gen)
	extractor := extract.New(cfg.Extract)

	auditLogger, err := audit.NewLogger(cfg.AuditLog, logger)
	if err != nil {
		slog.Error("Failed to initialize audit logger", "error", err)
		os.Exit(1)
	}
	if auditLogger != nil {
		defer func() {
			if closeErr := auditLogger.Close(); closeErr != nil {
				slog.Error("Failed to close audit logger", "error", closeErr)
			}
		}()
	}

	// Initialize handlers.
	baseHandler := api.NewHandler(st, cfg)
	chatHandler := api.NewChatHandler(baseHandler, svc, auditLogger)
	dataHandler := api.NewDataHandler(baseHandler)
	extractHandler := api.NewExtractHandler(baseHandler, extractor)
	healthHandler := api.NewHealthHandler(st, cfg)

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(identity.Middleware())

	r.NotFound(api.NotFound)
	r.MethodNotAllowed(api.MethodNotAllowed)

	healthHandler.RegisterHealth(r)
	chatHandler.RegisterRoutes(r)
	dataHandler.RegisterRoutes(r)
	extractHandler.RegisterRoutes(r)

	// Serve embedded frontend (SPA catch-all).
	r.Handle("/*", web.SPAHandler())

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

// openStore picks the store backend from configuration.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return store.NewMemory(), nil
	case config.DriverPostgres:
		return postgres.New(cfg.Store.DatabaseURL)
	default:
		return store.NewSQLite(cfg.Store.DBPath)
	}
}

// buildGenerator picks the generation backend from configuration. The mode is
// an explicit flag; presence of OpenAI credentials alone never flips it.
func buildGenerator(cfg *config.Config) generate.Generator {
	if cfg.Generator.Mode != config.GeneratorOpenAI {
		slog.Info("Using mock generator")
		return generate.Mock{}
	}

	var tokens auth.TokenProvider
	oa := cfg.Generator.OpenAI
	if oa.TokenURL != "" {
		tokens = auth.NewClientCredentials(oa.TokenURL, oa.ClientID, oa.ClientSecret, oa.Scope)
		slog.Info("Using OpenAI generator with client-credentials auth", "endpoint", oa.Endpoint, "deployment", oa.Deployment)
	} else {
		slog.Info("Using OpenAI generator with API key auth", "endpoint", oa.Endpoint, "deployment", oa.Deployment)
	}
	return generate.NewOpenAI(cfg.Generator, tokens)
}
