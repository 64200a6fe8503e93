package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/starford/pictnote/internal/apperr"
	"github.com/starford/pictnote/internal/checksum"
	"github.com/starford/pictnote/internal/edam"
	"github.com/starford/pictnote/internal/models"
	"github.com/starford/pictnote/internal/note"
)

// SubmitNote creates doc in the account. doc must come from
// note.Builder.Finalize; a document without content is rejected with
// apperr.ErrInvalidState. Any service or transport failure is an
// *apperr.NoteSubmissionError.
func (c *Client) SubmitNote(ctx context.Context, doc *note.Document) (*models.NoteRecord, error) {
	if err := c.require("submit note", NoteStoreReady); err != nil {
		return nil, err
	}
	if doc == nil || doc.Content == "" {
		return nil, fmt.Errorf("session: submit note: document not finalized: %w", apperr.ErrInvalidState)
	}
	created, err := c.notes.CreateNote(ctx, c.token, toEDAMNote(doc))
	if err != nil {
		return nil, submissionError(doc.Title, err)
	}

	rec := &models.NoteRecord{
		GUID:         edam.Deref(created.GUID),
		Title:        edam.Deref(created.Title),
		NotebookGUID: edam.Deref(created.NotebookGUID),
	}
	if created.Created != nil {
		rec.Created = time.UnixMilli(*created.Created)
	}
	if rec.Title == "" {
		rec.Title = doc.Title
	}
	return rec, nil
}

func submissionError(title string, err error) error {
	serr := &apperr.NoteSubmissionError{Title: title, Err: err}
	var (
		ue *edam.UserException
		se *edam.SystemException
		ne *edam.NotFoundException
	)
	switch {
	case errors.As(err, &ue):
		serr.Code = ue.ErrorCode.String()
		serr.Detail = edam.Deref(ue.Parameter)
	case errors.As(err, &se):
		serr.Code = se.ErrorCode.String()
		serr.Detail = edam.Deref(se.Message)
	case errors.As(err, &ne):
		serr.Code = "NOT_FOUND"
		serr.Detail = edam.Deref(ne.Identifier)
	default:
		serr.Err = fmt.Errorf("session: create note: %w", err)
	}
	return serr
}

func toEDAMNote(doc *note.Document) *edam.Note {
	n := &edam.Note{
		Title:   edam.Ptr(doc.Title),
		Content: edam.Ptr(doc.Content),
		Created: doc.Created,
		Updated: doc.Updated,
	}
	if doc.NotebookGUID != "" {
		n.NotebookGUID = edam.Ptr(doc.NotebookGUID)
	}
	if len(doc.TagGUIDs) > 0 {
		n.TagGUIDs = append([]string(nil), doc.TagGUIDs...)
	}
	for _, r := range doc.Resources {
		res := &edam.Resource{
			Mime: edam.Ptr(r.MIME),
			Data: &edam.Data{
				BodyHash: checksum.Raw(r.Body),
				Size:     edam.Ptr(int32(r.Size)),
				Body:     r.Body,
			},
		}
		if r.FileName != "" {
			res.Attributes = &edam.ResourceAttributes{FileName: edam.Ptr(r.FileName)}
		}
		n.Resources = append(n.Resources, res)
	}
	if loc := doc.Location; loc != nil {
		n.Attributes = &edam.NoteAttributes{
			Latitude:  edam.Ptr(loc.Latitude),
			Longitude: edam.Ptr(loc.Longitude),
			Altitude:  loc.Altitude,
		}
	}
	return n
}
