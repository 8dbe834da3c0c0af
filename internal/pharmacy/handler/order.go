package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/medflow/medsupply-backend/internal/pharmacy/domain"
	"github.com/medflow/medsupply-backend/internal/pharmacy/state"
	"github.com/medflow/medsupply-backend/pkg/httputil"
)

// OrdersResponse splits orders the way the order screen shows them
type OrdersResponse struct {
	Pending   []domain.Order `json:"pending"`
	Completed []domain.Order `json:"completed"`
}

// ListOrders lists pending and completed orders, newest first
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	resp := OrdersResponse{Pending: []domain.Order{}, Completed: []domain.Order{}}
	for _, o := range h.service.Snapshot().Orders {
		if o.Completed {
			resp.Completed = append(resp.Completed, o)
		} else {
			resp.Pending = append(resp.Pending, o)
		}
	}

	httputil.JSON(w, http.StatusOK, resp)
}

// CreateOrder submits a reorder and notifies the supplier in the background
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var cmd state.SubmitReorder
	if err := httputil.DecodeJSON(r, &cmd); err != nil {
		httputil.Error(w, err)
		return
	}

	h.run(w, r, http.StatusCreated, &cmd, func() interface{} { return cmd.Order })
}

// ReceiveOrder marks an order received and restocks its medicines
func (h *Handler) ReceiveOrder(w http.ResponseWriter, r *http.Request) {
	cmd := state.ReceiveOrder{ID: chi.URLParam(r, "id")}
	h.run(w, r, http.StatusOK, &cmd, func() interface{} { return cmd.Restocked })
}

// DeleteOrder removes an order
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, http.StatusOK, &state.DeleteOrder{ID: chi.URLParam(r, "id")}, nil)
}
