package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/medflow/medsupply-backend/internal/pharmacy/state"
	"github.com/medflow/medsupply-backend/pkg/httputil"
)

// ListPatients lists patients, filtered by ?q=
func (h *Handler) ListPatients(w http.ResponseWriter, r *http.Request) {
	list := state.FilterPatients(h.service.Snapshot().Patients, r.URL.Query().Get("q"))
	httputil.JSON(w, http.StatusOK, list)
}

// CreatePatient adds a patient
func (h *Handler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var cmd state.SavePatient
	if err := httputil.DecodeJSON(r, &cmd); err != nil {
		httputil.Error(w, err)
		return
	}

	h.run(w, r, http.StatusCreated, &cmd, func() interface{} { return cmd.Saved })
}

// UpdatePatient replaces the patient in the path
func (h *Handler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	var cmd state.SavePatient
	if err := httputil.DecodeJSON(r, &cmd); err != nil {
		httputil.Error(w, err)
		return
	}
	cmd.EditID = chi.URLParam(r, "id")

	h.run(w, r, http.StatusOK, &cmd, func() interface{} { return cmd.Saved })
}

// DeletePatient removes a patient
func (h *Handler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, http.StatusOK, &state.DeletePatient{ID: chi.URLParam(r, "id")}, nil)
}

// MarkContacted records that a patient was reminded
func (h *Handler) MarkContacted(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, http.StatusOK, &state.MarkContacted{ID: chi.URLParam(r, "id")}, nil)
}
