package api

import (
	"context"

	"github.com/starford/pictnote/internal/ledger"
	"github.com/starford/pictnote/internal/uploader"
)

// Uploader uploads one file on behalf of an API caller.
type Uploader interface {
	UploadFile(ctx context.Context, path string) (*uploader.Result, error)
}

// UploadListResponse wraps recent ledger entries.
type UploadListResponse struct {
	Uploads []ledger.Entry `json:"uploads"`
	Total   int            `json:"total"`
}

// CreateUploadRequest names an inbox file to upload.
type CreateUploadRequest struct {
	Path string `json:"path"`
}

// CreateUploadResponse reports the outcome of POST /uploads.
type CreateUploadResponse struct {
	Path     string `json:"path"`
	Title    string `json:"title"`
	NoteGUID string `json:"note_guid,omitempty"`
	Skipped  bool   `json:"skipped"`
}

// StatsResponse summarizes the ledger.
type StatsResponse struct {
	Uploaded int `json:"uploaded"`
}
