package note

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/pictnote/internal/apperr"
	"github.com/starford/pictnote/internal/models"
)

// ENML envelope wrapped around the accumulated fragments.
const (
	xmlHeader   = `<?xml version="1.0" encoding="UTF-8"?>`
	enmlDoctype = `<!DOCTYPE en-note SYSTEM "http://xml.evernote.com/pub/enml2.dtd">`
	enNoteOpen  = `<en-note>`
	enNoteClose = `</en-note>`
)

// Document is a complete note ready for submission.
type Document struct {
	Title string
	// Created and Updated are epoch milliseconds; nil means unset.
	Created *int64
	Updated *int64
	// NotebookGUID is empty for the account's default notebook.
	NotebookGUID string
	TagGUIDs     []string
	Resources    []*Resource
	Content      string
	Location     *models.Geolocation
}

// Builder accumulates note fields and resources. The ENML content is
// assembled once, on the first call to Finalize.
type Builder struct {
	doc       Document
	body      strings.Builder
	finalized bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) SetTitle(title string) {
	b.doc.Title = title
}

// SetDates sets the created and updated timestamps. A zero time leaves the
// corresponding field unset.
func (b *Builder) SetDates(created, updated time.Time) {
	if !created.IsZero() {
		ms := created.UnixMilli()
		b.doc.Created = &ms
	}
	if !updated.IsZero() {
		ms := updated.UnixMilli()
		b.doc.Updated = &ms
	}
}

// SetLocation stores latitude, longitude and altitude together.
func (b *Builder) SetLocation(loc models.Geolocation) {
	b.doc.Location = &loc
}

func (b *Builder) SetNotebook(guid string) {
	b.doc.NotebookGUID = guid
}

// AddTag appends a tag GUID. Duplicates are kept.
func (b *Builder) AddTag(guid string) {
	b.doc.TagGUIDs = append(b.doc.TagGUIDs, guid)
}

// AddResource appends the attachment and its inline fragment. It fails with
// apperr.ErrInvalidState once the content has been assembled.
func (b *Builder) AddResource(e Encodable) error {
	if b.finalized {
		return fmt.Errorf("note: add resource after finalize: %w", apperr.ErrInvalidState)
	}
	b.doc.Resources = append(b.doc.Resources, e.Resource())
	b.body.WriteString(e.Content())
	return nil
}

// Finalize assembles the ENML content on first call and returns the
// document. Later calls return the same document unchanged.
func (b *Builder) Finalize() *Document {
	if !b.finalized {
		b.doc.Content = xmlHeader + enmlDoctype + enNoteOpen + b.body.String() + enNoteClose
		b.finalized = true
	}
	return &b.doc
}

// Finalized reports whether Finalize has been called.
func (b *Builder) Finalized() bool {
	return b.finalized
}
