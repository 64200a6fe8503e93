package internal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/pictnote/internal/apperr"
	"github.com/starford/pictnote/internal/edam"
	"github.com/starford/pictnote/internal/edam/edamtest"
	"github.com/starford/pictnote/internal/notify"
	"github.com/starford/pictnote/internal/testutil"
)

func testConfig(t *testing.T, srv *edamtest.Server) *Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.App.TitleFormat = "2006-01-02 15:04:05"
	cfg.Evernote.ServiceURL = srv.URL
	cfg.Evernote.Username = srv.Username
	cfg.Evernote.Password = srv.Password
	cfg.Evernote.ConsumerKey = srv.ConsumerKey
	cfg.Evernote.ConsumerSecret = srv.ConsumerSecret
	cfg.Ledger.Path = filepath.Join(t.TempDir(), "ledger.db")
	cfg.Watch.Settle = 20 * time.Millisecond
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func writeImage(t *testing.T, dir, name string) string {
	t.Helper()
	return testutil.WriteJPEG(t, dir, name, testutil.ExifFixture{
		DateTimeOriginal: "2024:05:01 10:00:00",
	})
}

func TestRun_UploadsFiles(t *testing.T) {
	srv := edamtest.New(t)
	cfg := testConfig(t, srv)
	n := &testutil.Notifier{}
	dir := t.TempDir()
	a := writeImage(t, dir, "a.jpg")
	b := writeImage(t, dir, "b.jpg")

	err := Run(context.Background(),
		WithConfig(cfg),
		WithFiles(a, b),
		WithNotifier(n),
		WithLogger(discardLogger()),
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	notes := srv.Notes()
	if len(notes) != 2 {
		t.Fatalf("notes = %d, want 2", len(notes))
	}
	if got := edam.Deref(notes[0].Title); got != "2024-05-01 10:00:00" {
		t.Errorf("title = %q", got)
	}

	msgs := n.Messages()
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if msgs[0].Text != "a.jpg is Added to Evernote." || msgs[0].Alert {
		t.Errorf("first message = %+v", msgs[0])
	}
}

func TestRun_DeveloperToken(t *testing.T) {
	srv := edamtest.New(t)
	cfg := testConfig(t, srv)
	cfg.Evernote.Password = ""
	cfg.Evernote.DeveloperToken = srv.DeveloperToken
	path := writeImage(t, t.TempDir(), "a.jpg")

	err := Run(context.Background(),
		WithConfig(cfg),
		WithFiles(path),
		WithNotifier(&testutil.Notifier{}),
		WithLogger(discardLogger()),
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(srv.Notes()) != 1 {
		t.Fatalf("notes = %d, want 1", len(srv.Notes()))
	}
}

func TestRun_BadPasswordAlertsOnce(t *testing.T) {
	srv := edamtest.New(t)
	cfg := testConfig(t, srv)
	cfg.Evernote.Password = "wrong"
	n := &testutil.Notifier{}
	path := writeImage(t, t.TempDir(), "a.jpg")

	err := Run(context.Background(),
		WithConfig(cfg),
		WithFiles(path),
		WithNotifier(n),
		WithLogger(discardLogger()),
	)
	var authErr *apperr.AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want AuthenticationError", err)
	}
	if len(srv.Notes()) != 0 {
		t.Error("note created despite failed authentication")
	}

	msgs := n.Messages()
	if len(msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(msgs))
	}
	if msgs[0].Title != notify.FailureTitle || !msgs[0].Alert {
		t.Errorf("message = %+v", msgs[0])
	}
}

func TestRun_NoInput(t *testing.T) {
	srv := edamtest.New(t)
	n := &testutil.Notifier{}

	err := Run(context.Background(),
		WithConfig(testConfig(t, srv)),
		WithNotifier(n),
		WithLogger(discardLogger()),
	)
	if !errors.Is(err, apperr.ErrNoInput) {
		t.Fatalf("err = %v, want ErrNoInput", err)
	}
	msgs := n.Messages()
	if len(msgs) != 1 || msgs[0].Title != notify.FailureTitle {
		t.Errorf("messages = %+v, want one failure alert", msgs)
	}
	if len(srv.Calls()) != 0 {
		t.Error("service contacted without input")
	}
}

func TestRun_ConfigRequired(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestRun_WatchModeUploadsExisting(t *testing.T) {
	srv := edamtest.New(t)
	cfg := testConfig(t, srv)
	cfg.Watch.ScanExisting = true
	n := &testutil.Notifier{}
	dir := t.TempDir()
	writeImage(t, dir, "existing.jpg")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx,
			WithConfig(cfg),
			WithWatchDir(dir),
			WithNotifier(n),
			WithLogger(discardLogger()),
		)
	}()

	deadline := time.After(5 * time.Second)
	for len(srv.Notes()) == 0 {
		select {
		case err := <-done:
			t.Fatalf("Run returned early: %v", err)
		case <-deadline:
			t.Fatal("timed out waiting for upload")
		case <-time.After(20 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	if len(srv.Notes()) != 1 {
		t.Errorf("notes = %d, want 1", len(srv.Notes()))
	}
}

func TestNewApplication_Timeout(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Evernote.Timeout = 3 * time.Second
	app, err := newApplication(io.Discard, WithConfig(cfg), WithLogger(discardLogger()), WithNotifier(&testutil.Notifier{}))
	if err != nil {
		t.Fatal(err)
	}
	if app.httpClient.Timeout != 3*time.Second {
		t.Errorf("timeout = %v", app.httpClient.Timeout)
	}
}
