package handler

import (
	"net/http"

	"github.com/medflow/medsupply-backend/internal/pharmacy/alerts"
	"github.com/medflow/medsupply-backend/internal/pharmacy/domain"
	"github.com/medflow/medsupply-backend/pkg/httputil"
)

// DashboardResponse is the home screen: counts, the four alert views, the
// banner text and the flash on display.
type DashboardResponse struct {
	Summary                alerts.Summary           `json:"summary"`
	Expired                []domain.Medicine        `json:"expired"`
	ExpiringSoon           []domain.Medicine        `json:"expiringSoon"`
	LowStock               []domain.Medicine        `json:"lowStock"`
	AlreadyOrdered         []alerts.OrderedMedicine `json:"alreadyOrdered"`
	PatientsNeedingContact []domain.Patient         `json:"patientsNeedingContact"`
	Message                string                   `json:"message,omitempty"`
	Flash                  *domain.Flash            `json:"flash,omitempty"`
}

// Dashboard returns the dashboard view
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	report := h.service.Report()

	httputil.JSON(w, http.StatusOK, DashboardResponse{
		Summary:                report.Summary,
		Expired:                report.Expiry.Expired,
		ExpiringSoon:           report.Expiry.ExpiringSoon,
		LowStock:               report.LowStock.LowStock,
		AlreadyOrdered:         report.LowStock.AlreadyOrdered,
		PatientsNeedingContact: report.PatientsNeedingContact,
		Message:                report.Message,
		Flash:                  h.service.Flash(),
	})
}

// Alerts returns the full alert report
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, h.service.Report())
}

// Flash returns the transient message, null when there is none
func (h *Handler) Flash(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, h.service.Flash())
}

// ClearFlash dismisses the transient message
func (h *Handler) ClearFlash(w http.ResponseWriter, r *http.Request) {
	h.service.ClearFlash()
	httputil.NoContent(w)
}
