package timeentry

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/worklog-management/internal/auth"
	"github.com/frahmantamala/worklog-management/internal/transport"
)

// ServiceAPI is the surface the HTTP layer needs from the service.
type ServiceAPI interface {
	SaveTimeEntry(ctx context.Context, identity *auth.Identity, dto CreateTimeEntryDTO) (*SaveResult, error)
	UpdateTimeEntry(ctx context.Context, identity *auth.Identity, entryID int64, dto UpdateTimeEntryDTO) (*SaveResult, error)
	DeleteTimeEntry(ctx context.Context, identity *auth.Identity, entryID int64) error
	GetTimeEntry(ctx context.Context, identity *auth.Identity, entryID int64) (*TimeEntry, error)
	ListTimeEntries(ctx context.Context, identity *auth.Identity, userID int64, limit, offset int) ([]*TimeEntry, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(logger *slog.Logger, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger),
		Service:     service,
	}
}

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateTimeEntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateEntry: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.SaveTimeEntry(r.Context(), identity, dto)
	if err != nil {
		h.Logger.Error("CreateEntry: service error", "error", err, "user_id", identity.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entryID, err := h.entryID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid entry ID")
		return
	}

	entry, err := h.Service.GetTimeEntry(r.Context(), identity, entryID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 20
	offset := 0
	var userID int64

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}
	if userStr := r.URL.Query().Get("user_id"); userStr != "" {
		if u, err := strconv.ParseInt(userStr, 10, 64); err == nil && u > 0 {
			userID = u
		}
	}

	entries, err := h.Service.ListTimeEntries(r.Context(), identity, userID, limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []*TimeEntry{}
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"limit":   limit,
		"offset":  offset,
	})
}

func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entryID, err := h.entryID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid entry ID")
		return
	}

	var dto UpdateTimeEntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateEntry: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.UpdateTimeEntry(r.Context(), identity, entryID, dto)
	if err != nil {
		h.Logger.Error("UpdateEntry: service error", "error", err, "entry_id", entryID, "user_id", identity.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entryID, err := h.entryID(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid entry ID")
		return
	}

	if err := h.Service.DeleteTimeEntry(r.Context(), identity, entryID); err != nil {
		h.Logger.Error("DeleteEntry: service error", "error", err, "entry_id", entryID, "user_id", identity.UserID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) entryID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
