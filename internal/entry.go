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
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/starford/pictnote/internal/api"
	"github.com/starford/pictnote/internal/apperr"
	"github.com/starford/pictnote/internal/ledger"
	"github.com/starford/pictnote/internal/mcpserver"
	"github.com/starford/pictnote/internal/metadata"
	"github.com/starford/pictnote/internal/notify"
	"github.com/starford/pictnote/internal/session"
	"github.com/starford/pictnote/internal/sse"
	"github.com/starford/pictnote/internal/storage"
	"github.com/starford/pictnote/internal/uploader"
	"github.com/starford/pictnote/internal/watcher"
)

// ClientName identifies this program to the Evernote service.
const ClientName = "PictNote"

// Version is reported by the MCP server.
var Version = "dev"

// Run uploads the given files and, when a watch directory is configured,
// keeps uploading new images until ctx is cancelled or a signal arrives.
// A fatal error is reported through one failure notification.
func Run(ctx context.Context, opts ...Option) (err error) {
	app, err := newApplication(os.Stdout, opts...)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger

	defer func() {
		if err != nil && !errors.Is(err, context.Canceled) {
			app.alert(err)
		}
	}()

	if len(app.files) == 0 && cfg.Watch.Dir == "" {
		return apperr.ErrNoInput
	}

	logger.Info("Configuration loaded",
		slog.String("service_url", cfg.Evernote.ServiceURL),
		slog.String("notebook", cfg.Store.Notebook),
		slog.String("ledger_path", cfg.Ledger.Path),
		slog.String("watch_dir", cfg.Watch.Dir),
		slog.Int("files", len(app.files)),
		slog.String("log_level", cfg.App.LogLevel.String()))

	rt, err := app.open(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	if len(app.files) > 0 {
		results, err := rt.up.UploadAll(ctx, app.files)
		logger.Info("Upload finished", slog.Int("uploaded", len(results)), slog.Int("requested", len(app.files)))
		if err != nil {
			return err
		}
	}

	if cfg.Watch.Dir == "" {
		return nil
	}
	return app.watch(ctx, rt)
}

// ServeMCP serves the MCP tool server on stdio. Tool paths are resolved
// against watch.dir, or the working directory when it is empty.
func ServeMCP(ctx context.Context, opts ...Option) (err error) {
	app, err := newApplication(os.Stderr, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			app.alert(err)
		}
	}()

	root := app.config.Watch.Dir
	if root == "" {
		root = "."
	}
	inbox, err := storage.NewFS(root)
	if err != nil {
		return fmt.Errorf("init inbox: %w", err)
	}

	rt, err := app.open(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	app.logger.Info("MCP server starting", slog.String("inbox", inbox.Root()))
	return mcpserver.New(rt.up, inbox, rt.ledger, Version).ServeStdio()
}

func newApplication(logOut io.Writer, opts ...Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config
	if app.watchDir != "" {
		cfg.Watch.Dir = app.watchDir
	}

	if app.logger == nil {
		// Initialize structured JSON logger.
		app.logger = slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
		slog.SetDefault(app.logger)
	}

	if app.notifier == nil {
		n, err := notify.New(cfg.Notify.Backend, app.logger)
		if err != nil {
			return nil, fmt.Errorf("init notifier: %w", err)
		}
		app.notifier = n
	}

	client := app.httpClient
	if client == nil {
		client = &http.Client{}
	}
	if cfg.Evernote.Timeout > 0 {
		c := *client
		c.Timeout = cfg.Evernote.Timeout
		client = &c
	}
	app.httpClient = client
	return app, nil
}

func (a *application) alert(err error) {
	if nerr := a.notifier.Alert(notify.FailureTitle, err.Error()); nerr != nil {
		a.logger.Warn("failure notification failed", slog.String("error", nerr.Error()))
	}
}

// runtime holds what one run opened.
type runtime struct {
	ledger  ledger.Store
	session *session.Client
	up      *uploader.Uploader
}

func (rt *runtime) close() {
	if rt.ledger != nil {
		rt.ledger.Close()
	}
}

// open initializes the ledger, connects the session and resolves the
// destination notebook and tags.
func (a *application) open(ctx context.Context) (*runtime, error) {
	cfg := a.config
	rt := &runtime{}

	if cfg.Ledger.Path != "" {
		db, err := ledger.Open(cfg.Ledger.Path)
		if err != nil {
			return nil, fmt.Errorf("init ledger: %w", err)
		}
		rt.ledger = db
	}

	sess, err := session.Dial(ctx, session.Config{
		ServiceURL: cfg.Evernote.ServiceURL,
		ClientName: ClientName,
		Credentials: session.Credentials{
			Username:       cfg.Evernote.Username,
			Password:       cfg.Evernote.Password,
			ConsumerKey:    cfg.Evernote.ConsumerKey,
			ConsumerSecret: cfg.Evernote.ConsumerSecret,
			DeveloperToken: cfg.Evernote.DeveloperToken,
		},
	}, a.httpClient, a.logger)
	if err != nil {
		rt.close()
		return nil, err
	}
	rt.session = sess
	a.logger.Info("Session ready", slog.String("username", sess.User().Username))

	var led uploader.Ledger
	if rt.ledger != nil {
		led = rt.ledger
	}
	rt.up = uploader.New(sess, metadata.NewExtractor(a.logger), led, a.notifier, a.logger, uploader.Policy{
		TitleFormat:     cfg.App.TitleFormat,
		NotifySuccess:   cfg.Policy.NotifySuccess,
		RemoveOnSuccess: cfg.Policy.RemoveOnSuccess,
		ContinueOnError: cfg.Policy.ContinueOnError,
		SkipUploaded:    cfg.Policy.SkipUploaded,
	}, uuid.NewString())

	if err := rt.up.Prepare(ctx, cfg.Store.Notebook, cfg.Store.Tags); err != nil {
		rt.close()
		return nil, err
	}
	return rt, nil
}

// watch runs the directory watcher and, when enabled, the status API until
// ctx is cancelled or a signal arrives.
func (a *application) watch(ctx context.Context, rt *runtime) error {
	cfg := a.config
	logger := a.logger

	// Ensure watch directory exists.
	if err := os.MkdirAll(cfg.Watch.Dir, 0o755); err != nil {
		return fmt.Errorf("create watch dir: %w", err)
	}
	inbox, err := storage.NewFS(cfg.Watch.Dir)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	w := watcher.New(inbox, cfg.Watch.Settle, logger, func(ctx context.Context, path string) {
		if _, err := rt.up.UploadFile(ctx, path); err != nil {
			logger.Error("upload failed", slog.String("path", path), slog.String("error", err.Error()))
			a.alert(err)
		}
	})
	w.ScanExisting = cfg.Watch.ScanExisting

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Watching directory", slog.String("dir", inbox.Root()))
		if err := w.Run(gCtx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("watcher error: %w", err)
		}
		return nil
	})

	var (
		httpServer *http.Server
		broker     *sse.Broker
	)
	if cfg.App.HTTP.Enabled() {
		broker = sse.NewBroker(2 * time.Second)
		defer broker.Close()
		rt.up.SetObserver(broker)

		httpServer = &http.Server{
			Addr:    cfg.App.HTTP.Address(),
			Handler: a.router(rt, inbox, broker),
		}
		g.Go(func() error {
			logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})
	}

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
		cancel()

		if httpServer != nil {
			// Open event streams only end when the broker closes.
			broker.Close()
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancelShutdown()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Watcher stopped successfully")
	return nil
}

func (a *application) router(rt *runtime, inbox storage.Provider, broker *sse.Broker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	api.Health(r, func() bool {
		return rt.session.State() == session.NoteStoreReady
	})

	token := a.config.App.HTTP.Token
	if rt.ledger != nil {
		r.Mount("/api", api.NewRouter(rt.ledger, rt.up, inbox, token))
	}

	// SSE endpoint.
	r.With(api.AuthMiddleware(token != "", token)).Get("/api/events", broker.ServeHTTP)
	return r
}
