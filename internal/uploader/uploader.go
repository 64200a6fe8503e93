// Package uploader turns image files into notes: one note per file, titled
// with the file's creation time and carrying the image as its only
// attachment.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/starford/pictnote/internal/ledger"
	"github.com/starford/pictnote/internal/models"
	"github.com/starford/pictnote/internal/note"
	"github.com/starford/pictnote/internal/notify"
)

// DefaultTitleFormat renders e.g. "2024-05-01(Wed) 10:00:00 JST".
const DefaultTitleFormat = "2006-01-02(Mon) 15:04:05 MST"

// Session is the remote side of an upload.
type Session interface {
	ResolveNotebook(ctx context.Context, name string) (*models.Notebook, error)
	ResolveTag(ctx context.Context, name string) (*models.Tag, error)
	SubmitNote(ctx context.Context, doc *note.Document) (*models.NoteRecord, error)
}

// Extractor reads file attributes.
type Extractor interface {
	Extract(path string) (*models.FileAttributes, error)
}

// Ledger remembers successful uploads.
type Ledger interface {
	Record(e ledger.Entry) error
	Lookup(checksum string) (*ledger.Entry, error)
}

// Observer is told about every processed file.
type Observer interface {
	Uploaded(res *Result)
	Failed(path string, err error)
}

// Policy controls per-file side effects.
type Policy struct {
	TitleFormat     string
	NotifySuccess   bool
	RemoveOnSuccess bool
	// ContinueOnError keeps going after a failed file; failures are
	// returned joined once all files were tried.
	ContinueOnError bool
	// SkipUploaded skips files whose content is already in the ledger.
	SkipUploaded bool
}

// Result describes one processed file.
type Result struct {
	Path    string
	Title   string
	Note    *models.NoteRecord
	Skipped bool
}

// Uploader processes files one at a time. Its methods may be called from
// several goroutines; uploads are serialized.
type Uploader struct {
	session  Session
	extract  Extractor
	ledger   Ledger
	notifier notify.Notifier
	logger   *slog.Logger
	policy   Policy
	runID    string
	observer Observer

	mu           sync.Mutex
	prepared     bool
	notebookGUID string
	tagGUIDs     []string
}

// New creates an Uploader. ledger may be nil.
func New(s Session, ex Extractor, l Ledger, n notify.Notifier, logger *slog.Logger, policy Policy, runID string) *Uploader {
	if logger == nil {
		logger = slog.Default()
	}
	if n == nil {
		n = notify.NewLog(logger)
	}
	if policy.TitleFormat == "" {
		policy.TitleFormat = DefaultTitleFormat
	}
	return &Uploader{
		session:  s,
		extract:  ex,
		ledger:   l,
		notifier: n,
		logger:   logger.With(slog.String("run_id", runID)),
		policy:   policy,
		runID:    runID,
	}
}

// Prepare resolves the destination notebook and tags by name. An unknown
// notebook falls back to the default notebook; unknown tags are dropped.
func (u *Uploader) Prepare(ctx context.Context, notebook string, tags []string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.notebookGUID = ""
	u.tagGUIDs = nil
	if notebook != "" {
		nb, err := u.session.ResolveNotebook(ctx, notebook)
		if err != nil {
			return fmt.Errorf("uploader: prepare: %w", err)
		}
		if nb == nil {
			u.logger.Warn("notebook not found, using default notebook", slog.String("notebook", notebook))
		} else {
			u.notebookGUID = nb.GUID
		}
	}
	for _, name := range tags {
		tg, err := u.session.ResolveTag(ctx, name)
		if err != nil {
			return fmt.Errorf("uploader: prepare: %w", err)
		}
		if tg == nil {
			u.logger.Warn("tag not found, skipping", slog.String("tag", name))
			continue
		}
		u.tagGUIDs = append(u.tagGUIDs, tg.GUID)
	}
	u.prepared = true
	return nil
}

// SetObserver registers o to be told about every processed file.
func (u *Uploader) SetObserver(o Observer) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.observer = o
}

// UploadFile creates one note from the file at path.
func (u *Uploader) UploadFile(ctx context.Context, path string) (*Result, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.process(ctx, path)
}

// UploadAll uploads paths in order. It stops at the first failure unless
// the policy continues on error.
func (u *Uploader) UploadAll(ctx context.Context, paths []string) ([]*Result, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	var (
		results []*Result
		errs    []error
	)
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := u.process(ctx, p)
		if err != nil {
			if !u.policy.ContinueOnError {
				return results, err
			}
			u.logger.Error("upload failed", slog.String("path", p), slog.String("error", err.Error()))
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

func (u *Uploader) process(ctx context.Context, path string) (*Result, error) {
	res, err := u.uploadFile(ctx, path)
	if u.observer != nil {
		if err != nil {
			u.observer.Failed(path, err)
		} else {
			u.observer.Uploaded(res)
		}
	}
	return res, err
}

func (u *Uploader) uploadFile(ctx context.Context, path string) (*Result, error) {
	attrs, err := u.extract.Extract(path)
	if err != nil {
		return nil, fmt.Errorf("uploader: %s: %w", path, err)
	}
	img, err := note.LoadImageResource(path, attrs.MIMEType, attrs.DisplayName)
	if err != nil {
		return nil, fmt.Errorf("uploader: %s: %w", path, err)
	}
	hash := img.Resource().Hash

	if u.policy.SkipUploaded && u.ledger != nil {
		prev, err := u.ledger.Lookup(hash)
		if err != nil {
			return nil, fmt.Errorf("uploader: %s: %w", path, err)
		}
		if prev != nil {
			u.logger.Info("already uploaded, skipping",
				slog.String("path", path),
				slog.String("note_guid", prev.NoteGUID))
			return &Result{Path: path, Title: prev.Title, Skipped: true}, nil
		}
	}

	doc, err := u.build(attrs, img)
	if err != nil {
		return nil, fmt.Errorf("uploader: %s: %w", path, err)
	}
	rec, err := u.session.SubmitNote(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("uploader: %s: %w", path, err)
	}
	u.logger.Info("note created",
		slog.String("path", path),
		slog.String("title", doc.Title),
		slog.String("note_guid", rec.GUID))

	if u.ledger != nil {
		entry := ledger.Entry{
			RunID:        u.runID,
			Path:         path,
			Checksum:     hash,
			NoteGUID:     rec.GUID,
			Title:        doc.Title,
			NotebookGUID: rec.NotebookGUID,
		}
		if err := u.ledger.Record(entry); err != nil {
			u.logger.Warn("ledger record failed", slog.String("path", path), slog.String("error", err.Error()))
		}
	}
	if u.policy.NotifySuccess {
		if err := u.notifier.Notify(attrs.DisplayName, notify.SuccessMessage(attrs.DisplayName)); err != nil {
			u.logger.Warn("notification failed", slog.String("error", err.Error()))
		}
	}
	if u.policy.RemoveOnSuccess {
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("uploader: remove %s: %w", path, err)
		}
	}
	return &Result{Path: path, Title: doc.Title, Note: rec}, nil
}

func (u *Uploader) build(attrs *models.FileAttributes, img note.Encodable) (*note.Document, error) {
	b := note.NewBuilder()
	b.SetTitle(attrs.Created.Format(u.policy.TitleFormat))
	b.SetDates(attrs.Created, attrs.Modified)
	if attrs.Location != nil {
		b.SetLocation(*attrs.Location)
	}
	if !u.prepared {
		u.logger.Debug("destination not prepared, using default notebook")
	}
	b.SetNotebook(u.notebookGUID)
	for _, guid := range u.tagGUIDs {
		b.AddTag(guid)
	}
	if err := b.AddResource(img); err != nil {
		return nil, err
	}
	return b.Finalize(), nil
}
