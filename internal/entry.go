// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/api"
	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/mcpserver"
	"github.com/starford/raido/internal/metrics"
	"github.com/starford/raido/internal/micropub"
	"github.com/starford/raido/internal/sse"
	"github.com/starford/raido/internal/storage"
)

const (
	feedThrottle    = 2 * time.Second
	shutdownTimeout = 10 * time.Second
)

// components are shared by the HTTP and MCP entry points.
type components struct {
	cfg     *Config
	logger  *slog.Logger
	store   *storage.FS
	db      *index.DB
	metrics *metrics.Metrics
	svc     *micropub.Service
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// bootstrap sets up logging, storage, the index and the publishing service,
// then brings the index in line with the vault.
func bootstrap(app *application) (*components, error) {
	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("base_url", cfg.App.BaseURL),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("default_template", cfg.Micropub.DefaultTemplate),
		slog.Bool("publish_immediately", cfg.Micropub.PublishImmediately),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	if _, err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	m := metrics.New()
	svc := micropub.NewService(store, db, micropub.Config{
		BaseURL:            cfg.App.BaseURL,
		Templates:          cfg.Micropub.TemplateConfig(),
		PublishImmediately: cfg.Micropub.PublishImmediately,
		WrapRoot:           cfg.Micropub.WrapRoot,
		VerboseLogging:     cfg.Micropub.VerboseLogging,
	}, micropub.WithLogger(logger), micropub.WithMetrics(m))

	return &components{cfg: cfg, logger: logger, store: store, db: db, metrics: m, svc: svc}, nil
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// newRootRouter assembles the HTTP surface: health, metrics, the Micropub
// endpoint and the REST API with its event stream.
func newRootRouter(rt *components, broker *sse.Broker) chi.Router {
	cfg := rt.cfg

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health and metrics are unauthenticated.
	r.Get("/health/live", healthHandler)
	r.Get("/health/ready", healthHandler)
	r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())

	r.Mount("/micropub", api.NewMicropubRouter(rt.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, rt.metrics))
	r.Mount("/api", api.NewRouter(rt.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))
	return r
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := bootstrap(app)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	logger := rt.logger
	cfg := rt.cfg

	broker := sse.NewBroker(feedThrottle)
	defer broker.Close()

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newRootRouter(rt, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// File watcher feeds the event stream; it also catches posts written by
	// the service itself.
	g.Go(func() error {
		return index.Watch(gCtx, rt.db, rt.store, cfg.Vault.Path, logger, broker.PublishPostEvent)
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Ends open event streams so Shutdown does not wait on them.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		// Stops the watcher when the shutdown came from a signal.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown requested")

// RunMCP serves the MCP tools over stdio until stdin closes. Logs go to
// stderr unless WithLogOutput says otherwise.
func RunMCP(_ context.Context, opts ...Option) error {
	opts = append([]Option{WithLogOutput(os.Stderr)}, opts...)
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := bootstrap(app)
	if err != nil {
		return err
	}
	defer rt.db.Close()

	rt.logger.Info("MCP server starting on stdio")
	return mcpserver.New(rt.svc, app.version).ServeStdio()
}
