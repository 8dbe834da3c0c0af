package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/medflow/medsupply-backend/internal/pharmacy/state"
	"github.com/medflow/medsupply-backend/pkg/httputil"
)

// ListPosts returns the activity log, newest first
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, h.service.Snapshot().Posts)
}

// DeletePost removes an activity log entry
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, http.StatusOK, &state.DeletePost{ID: chi.URLParam(r, "id")}, nil)
}
