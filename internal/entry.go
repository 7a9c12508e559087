// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/moodlog/internal/api"
	"github.com/starford/moodlog/internal/mcpserver"
	"github.com/starford/moodlog/internal/moodlog"
	"github.com/starford/moodlog/internal/sse"
	"github.com/starford/moodlog/internal/storage"
	"github.com/starford/moodlog/internal/watcher"
)

// Run starts the HTTP application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	cfg := app.config
	logger := app.newLogger()
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("storage_path", cfg.Storage.Path),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, provider, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeProvider(provider, logger)

	// SSE broker.
	broker := sse.NewBroker(cfg.Events.Throttle, sse.WithStreakSource(store.Streak))
	defer broker.Close()

	// Build API handler and router.
	h := api.NewHandler(store, broker, cfg.Dashboard.TrendDays)
	apiRouter := api.NewRouter(h, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Reload the store when its files change outside this process.
	if dir, files, ok := watchTargets(cfg); ok {
		g.Go(func() error {
			err := watcher.Watch(gCtx, store, dir, files, cfg.Events.Debounce, logger, func() {
				broker.PublishReload(store.Streak())
			})
			if err != nil {
				logger.Warn("storage watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tool surface on stdin/stdout. Logs go to the
// configured log output, which must not be stdout.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	cfg := app.config
	logger := app.newLogger()
	slog.SetDefault(logger)

	store, provider, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeProvider(provider, logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	if dir, files, ok := watchTargets(cfg); ok {
		g.Go(func() error {
			if err := watcher.Watch(gCtx, store, dir, files, cfg.Events.Debounce, logger, nil); err != nil {
				logger.Warn("storage watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		defer cancel()
		logger.Info("MCP server listening on stdio")
		err := mcpserver.New(store, cfg.Dashboard.TrendDays).ServeStdio(gCtx)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// OpenStore opens the configured storage provider and loads the mood log from
// it. The caller owns the returned provider and must close it.
func OpenStore(ctx context.Context, cfg *Config, logger *slog.Logger) (*moodlog.Store, storage.Provider, error) {
	provider, err := storage.Open(ctx, cfg.Storage.Options())
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}

	store := moodlog.New(provider, logger)
	entries, streak := store.Load(ctx)
	logger.Info("mood log loaded",
		slog.Int("entries", len(entries)),
		slog.Int("streak", streak))

	return store, provider, nil
}

// NewLogger builds the JSON logger used by every command.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

var errShutdown = errors.New("shutdown")

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func (a *application) newLogger() *slog.Logger {
	return NewLogger(a.config, a.logOutput)
}

// watchTargets reports the directory and file names to watch. Only the file
// driver keeps its keys as plain files.
func watchTargets(cfg *Config) (string, []string, bool) {
	if cfg.Storage.Driver != storage.DriverFile || !cfg.Events.Watch {
		return "", nil, false
	}
	return cfg.Storage.Path, []string{
		storage.KeyFile(moodlog.MoodsKey),
		storage.KeyFile(moodlog.StreakKey),
	}, true
}

func closeProvider(p storage.Provider, logger *slog.Logger) {
	if err := p.Close(); err != nil {
		logger.Warn("close storage", slog.String("error", err.Error()))
	}
}
