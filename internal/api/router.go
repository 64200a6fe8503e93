package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/pictnote/internal/ledger"
	"github.com/starford/pictnote/internal/storage"
)

// NewRouter creates a chi router with all API routes mounted.
// A non-empty token enables Bearer token auth. up and inbox may be nil, in
// which case POST /uploads is not mounted.
func NewRouter(store ledger.Store, up Uploader, inbox storage.Provider, token string) chi.Router {
	h := NewHandler(store, up, inbox)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(token != "", token))

	r.Get("/uploads", h.ListUploads)
	r.Get("/uploads/{checksum}", h.GetUpload)
	r.Get("/stats", h.Stats)
	if up != nil && inbox != nil {
		r.Post("/uploads", h.CreateUpload)
	}
	return r
}

// Health mounts the unauthenticated liveness and readiness probes on r.
// ready reports whether the session is usable.
func Health(r chi.Router, ready func() bool) {
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if ready != nil && !ready() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
