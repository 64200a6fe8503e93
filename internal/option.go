package internal

import (
	"log/slog"
	"net/http"

	"github.com/starford/pictnote/internal/notify"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config     *Config
	files      []string
	watchDir   string
	notifier   notify.Notifier
	httpClient *http.Client
	logger     *slog.Logger
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithFiles sets the image files to upload, in order.
func WithFiles(paths ...string) Option {
	return func(a *application) {
		a.files = append(a.files, paths...)
	}
}

// WithWatchDir enables watch mode on dir, overriding watch.dir.
func WithWatchDir(dir string) Option {
	return func(a *application) {
		a.watchDir = dir
	}
}

// WithNotifier replaces the notifier selected by notify.backend.
func WithNotifier(n notify.Notifier) Option {
	return func(a *application) {
		a.notifier = n
	}
}

// WithHTTPClient sets the HTTP client used for Evernote calls.
func WithHTTPClient(c *http.Client) Option {
	return func(a *application) {
		a.httpClient = c
	}
}

// WithLogger replaces the JSON logger built from app.log_level.
func WithLogger(l *slog.Logger) Option {
	return func(a *application) {
		a.logger = l
	}
}
