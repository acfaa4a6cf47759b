package team

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

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

type memberRequest struct {
	UserID int64 `json:"user_id"`
}

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateTeamDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	team, err := h.Service.CreateTeam(r.Context(), identity, dto)
	if err != nil {
		h.Logger.Error("CreateTeam: service error", "error", err, "user_id", identity.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, team)
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	teamID, err := h.teamID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid team ID")
		return
	}

	team, err := h.Service.GetTeam(r.Context(), identity, teamID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, team)
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	teams, err := h.Service.ListTeams(r.Context(), identity)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if teams == nil {
		teams = []*Team{}
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"teams": teams})
}

func (h *Handler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	teamID, err := h.teamID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid team ID")
		return
	}

	var dto UpdateTeamDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	team, err := h.Service.UpdateTeam(r.Context(), identity, teamID, dto)
	if err != nil {
		h.Logger.Error("UpdateTeam: service error", "error", err, "team_id", teamID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, team)
}

func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	teamID, err := h.teamID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid team ID")
		return
	}

	if err := h.Service.DeleteTeam(r.Context(), identity, teamID); err != nil {
		h.Logger.Error("DeleteTeam: service error", "error", err, "team_id", teamID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	teamID, err := h.teamID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid team ID")
		return
	}

	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.AddMember(r.Context(), identity, teamID, req.UserID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	teamID, err := h.teamID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid team ID")
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	if err := h.Service.RemoveMember(r.Context(), identity, teamID, userID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) teamID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
