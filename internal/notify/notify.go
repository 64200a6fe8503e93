// Package notify reports upload outcomes to the user.
package notify

import (
	"fmt"
	"log/slog"

	"github.com/gen2brain/beeep"
)

// FailureTitle is the title of every failure notification.
const FailureTitle = "Error:PictNote"

// Notifier shows one message to the user.
type Notifier interface {
	Notify(title, message string) error
	Alert(title, message string) error
}

// Backend names accepted by New.
const (
	BackendDesktop = "desktop"
	BackendLog     = "log"
)

// New returns the notifier for backend. An empty backend selects the
// desktop notifier.
func New(backend string, logger *slog.Logger) (Notifier, error) {
	switch backend {
	case "", BackendDesktop:
		return &Desktop{}, nil
	case BackendLog:
		return NewLog(logger), nil
	}
	return nil, fmt.Errorf("notify: unknown backend %q", backend)
}

// Desktop shows native desktop notifications.
type Desktop struct {
	// Icon is an optional path to an image shown with the notification.
	Icon string
}

func (d *Desktop) Notify(title, message string) error {
	if err := beeep.Notify(title, message, d.Icon); err != nil {
		return fmt.Errorf("notify: desktop: %w", err)
	}
	return nil
}

// Alert is Notify with a sound, used for failures.
func (d *Desktop) Alert(title, message string) error {
	if err := beeep.Alert(title, message, d.Icon); err != nil {
		return fmt.Errorf("notify: desktop alert: %w", err)
	}
	return nil
}

// Log writes notifications to a structured logger. It suits headless runs.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Notify(title, message string) error {
	l.logger.Info("notification", slog.String("title", title), slog.String("message", message))
	return nil
}

func (l *Log) Alert(title, message string) error {
	l.logger.Error("notification", slog.String("title", title), slog.String("message", message))
	return nil
}

// SuccessMessage is the text shown after displayName was uploaded.
func SuccessMessage(displayName string) string {
	return displayName + " is Added to Evernote."
}
