// Package handler exposes the pharmacy over HTTP. Every mutating endpoint
// builds a state command and runs it through the service, so validation,
// persistence and the flash message behave the same as any other caller.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/medflow/medsupply-backend/internal/pharmacy/service"
	"github.com/medflow/medsupply-backend/internal/pharmacy/state"
	"github.com/medflow/medsupply-backend/pkg/httputil"
	"github.com/medflow/medsupply-backend/pkg/logger"
)

// Handler serves the pharmacy API
type Handler struct {
	service *service.PharmacyService
	auth    *service.Authenticator
	logger  *logger.Logger
}

// NewHandler creates a new pharmacy handler
func NewHandler(svc *service.PharmacyService, auth *service.Authenticator, log *logger.Logger) *Handler {
	return &Handler{
		service: svc,
		auth:    auth,
		logger:  log,
	}
}

// CommandResult is returned by every mutating endpoint
type CommandResult struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Routes registers the pharmacy API on r. Everything except login needs a
// bearer token.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/auth/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(httputil.Authenticate(h.auth))

		r.Post("/auth/logout", h.Logout)
		r.Get("/auth/session", h.Session)

		r.Get("/dashboard", h.Dashboard)
		r.Get("/alerts", h.Alerts)
		r.Get("/flash", h.Flash)
		r.Delete("/flash", h.ClearFlash)

		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", h.ListSuppliers)
			r.Post("/", h.CreateSupplier)
			r.Put("/{id}", h.UpdateSupplier)
			r.Delete("/{id}", h.DeleteSupplier)
		})

		r.Route("/medicines", func(r chi.Router) {
			r.Get("/", h.ListMedicines)
			r.Post("/", h.CreateMedicine)
			r.Put("/{id}", h.UpdateMedicine)
			r.Delete("/{id}", h.DeleteMedicine)
			r.Post("/{id}/use", h.UseMedicine)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.ListOrders)
			r.Post("/", h.CreateOrder)
			r.Post("/{id}/receive", h.ReceiveOrder)
			r.Delete("/{id}", h.DeleteOrder)
		})

		r.Route("/patients", func(r chi.Router) {
			r.Get("/", h.ListPatients)
			r.Post("/", h.CreatePatient)
			r.Put("/{id}", h.UpdatePatient)
			r.Delete("/{id}", h.DeletePatient)
			r.Post("/{id}/contacted", h.MarkContacted)
		})

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.ListPosts)
			r.Delete("/{id}", h.DeletePost)
		})
	})
}

// run executes cmd and writes the outcome with status on success
func (h *Handler) run(w http.ResponseWriter, r *http.Request, status int, cmd state.Command, data func() interface{}) {
	notice, err := h.service.Execute(r.Context(), cmd)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	result := CommandResult{Message: notice}
	if data != nil {
		result.Data = data()
	}
	httputil.JSON(w, status, result)
}
