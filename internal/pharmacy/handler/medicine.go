package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/medflow/medsupply-backend/internal/pharmacy/state"
	"github.com/medflow/medsupply-backend/pkg/httputil"
)

// ListMedicines lists medicines, filtered by ?q= on name, row or slot
func (h *Handler) ListMedicines(w http.ResponseWriter, r *http.Request) {
	list := state.FilterMedicines(h.service.Snapshot().Medicines, r.URL.Query().Get("q"))
	httputil.JSON(w, http.StatusOK, list)
}

// CreateMedicine adds a medicine
func (h *Handler) CreateMedicine(w http.ResponseWriter, r *http.Request) {
	var cmd state.SaveMedicine
	if err := httputil.DecodeJSON(r, &cmd); err != nil {
		httputil.Error(w, err)
		return
	}

	h.run(w, r, http.StatusCreated, &cmd, func() interface{} { return cmd.Saved })
}

// UpdateMedicine edits the medicine in the path
func (h *Handler) UpdateMedicine(w http.ResponseWriter, r *http.Request) {
	var cmd state.SaveMedicine
	if err := httputil.DecodeJSON(r, &cmd); err != nil {
		httputil.Error(w, err)
		return
	}
	cmd.EditID = chi.URLParam(r, "id")

	h.run(w, r, http.StatusOK, &cmd, func() interface{} { return cmd.Saved })
}

// DeleteMedicine removes a medicine
func (h *Handler) DeleteMedicine(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, http.StatusOK, &state.DeleteMedicine{ID: chi.URLParam(r, "id")}, nil)
}

// UseMedicine dispenses units of a medicine
func (h *Handler) UseMedicine(w http.ResponseWriter, r *http.Request) {
	var cmd state.UseMedicine
	if err := httputil.DecodeJSON(r, &cmd); err != nil {
		httputil.Error(w, err)
		return
	}
	cmd.ID = chi.URLParam(r, "id")

	h.run(w, r, http.StatusOK, &cmd, nil)
}
