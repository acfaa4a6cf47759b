package company

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/worklog-management/internal/auth"
	"github.com/frahmantamala/worklog-management/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		Service:     service,
	}
}

func (h *Handler) GetCompany(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	company, err := h.Service.GetCompany(r.Context(), identity)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, company)
}

func (h *Handler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto UpdateCompanyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	company, err := h.Service.UpdateCompany(r.Context(), identity, dto)
	if err != nil {
		h.Logger.Error("UpdateCompany: service error", "error", err, "company_id", identity.CompanyID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, company)
}
