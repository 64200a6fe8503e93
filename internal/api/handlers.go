package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/pictnote/internal/apperr"
	"github.com/starford/pictnote/internal/ledger"
	"github.com/starford/pictnote/internal/storage"
)

// Handler holds API route handlers.
type Handler struct {
	store ledger.Store
	up    Uploader
	inbox storage.Provider
}

// NewHandler creates a new Handler.
func NewHandler(store ledger.Store, up Uploader, inbox storage.Provider) *Handler {
	return &Handler{store: store, up: up, inbox: inbox}
}

// ListUploads handles GET /api/uploads?limit=N.
func (h *Handler) ListUploads(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.store.Recent(limit)
	if err != nil {
		slog.Error("list uploads failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	total, err := h.store.Count()
	if err != nil {
		slog.Error("count uploads failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if entries == nil {
		entries = []ledger.Entry{}
	}
	writeJSON(w, http.StatusOK, UploadListResponse{Uploads: entries, Total: total})
}

// GetUpload handles GET /api/uploads/{checksum}.
func (h *Handler) GetUpload(w http.ResponseWriter, r *http.Request) {
	sum := chi.URLParam(r, "checksum")
	e, err := h.store.Lookup(sum)
	if err != nil {
		slog.Error("lookup upload failed", slog.String("checksum", sum), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if e == nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Stats handles GET /api/stats.
func (h *Handler) Stats(w http.ResponseWriter, _ *http.Request) {
	n, err := h.store.Count()
	if err != nil {
		slog.Error("count uploads failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{Uploaded: n})
}

// CreateUpload handles POST /api/uploads. The path is relative to the
// inbox root.
func (h *Handler) CreateUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	abs, err := h.inbox.Resolve(req.Path)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if !storage.IsImage(abs) {
		writeJSON(w, http.StatusUnsupportedMediaType, errorBody("not an image"))
		return
	}

	res, err := h.up.UploadFile(r.Context(), abs)
	if err != nil {
		var serr *apperr.NoteSubmissionError
		switch {
		case errors.As(err, &serr):
			writeJSON(w, http.StatusBadGateway, errorBody(serr.Error()))
		case errors.Is(err, apperr.ErrInvalidState):
			writeJSON(w, http.StatusServiceUnavailable, errorBody("session not ready"))
		default:
			slog.Error("upload failed", slog.String("path", req.Path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
		}
		return
	}

	resp := CreateUploadResponse{Path: req.Path, Title: res.Title, Skipped: res.Skipped}
	status := http.StatusOK
	if res.Note != nil {
		resp.NoteGUID = res.Note.GUID
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}
