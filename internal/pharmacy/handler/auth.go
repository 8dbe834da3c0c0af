package handler

import (
	"net/http"

	"github.com/medflow/medsupply-backend/internal/pharmacy/service"
	"github.com/medflow/medsupply-backend/pkg/errors"
	"github.com/medflow/medsupply-backend/pkg/httputil"
)

// Login handles operator login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	resp, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, resp)
}

// Logout ends the session the token belongs to
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	notice, err := h.auth.Logout(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	h.logger.Info().
		Str("username", httputil.GetUsername(r.Context())).
		Str("session_id", httputil.GetSessionID(r.Context())).
		Msg("operator logged out")

	httputil.JSON(w, http.StatusOK, CommandResult{Message: notice})
}

// Session returns the logged-in operator
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	sess := h.service.Session()
	if sess == nil {
		httputil.Error(w, errors.Unauthorized("not logged in"))
		return
	}

	httputil.JSON(w, http.StatusOK, sess)
}
