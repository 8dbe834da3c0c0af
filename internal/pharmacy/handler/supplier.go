package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/medflow/medsupply-backend/internal/pharmacy/domain"
	"github.com/medflow/medsupply-backend/internal/pharmacy/state"
	"github.com/medflow/medsupply-backend/pkg/httputil"
)

// ListSuppliers lists suppliers, filtered by ?q= on name, email or phone
func (h *Handler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	list := state.FilterSuppliers(h.service.Snapshot().Suppliers, r.URL.Query().Get("q"))
	httputil.JSON(w, http.StatusOK, list)
}

// CreateSupplier adds a supplier
func (h *Handler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var cmd state.SaveSupplier
	if err := httputil.DecodeJSON(r, &cmd); err != nil {
		httputil.Error(w, err)
		return
	}

	h.run(w, r, http.StatusCreated, &cmd, func() interface{} { return h.supplier(cmd.ID) })
}

// UpdateSupplier replaces the supplier in the path
func (h *Handler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	var cmd state.SaveSupplier
	if err := httputil.DecodeJSON(r, &cmd); err != nil {
		httputil.Error(w, err)
		return
	}
	cmd.EditID = chi.URLParam(r, "id")

	h.run(w, r, http.StatusOK, &cmd, func() interface{} { return h.supplier(cmd.ID) })
}

// DeleteSupplier removes a supplier
func (h *Handler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, http.StatusOK, &state.DeleteSupplier{ID: chi.URLParam(r, "id")}, nil)
}

func (h *Handler) supplier(id string) *domain.Supplier {
	for _, s := range h.service.Snapshot().Suppliers {
		if s.ID == id {
			return &s
		}
	}
	return nil
}
