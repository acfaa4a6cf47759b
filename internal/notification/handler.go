package notification

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

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

func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateMessageDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.Service.CreateMessage(r.Context(), identity, dto)
	if err != nil {
		h.Logger.Error("CreateMessage: service error", "error", err, "user_id", identity.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, msg)
}

// ListMessages serves the polling endpoint. Clients pass ?since=<id> with
// the highest message ID they have seen; the response carries the next
// cursor to use.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var sinceID int64
	if sinceStr := r.URL.Query().Get("since"); sinceStr != "" {
		if s, err := strconv.ParseInt(sinceStr, 10, 64); err == nil && s >= 0 {
			sinceID = s
		}
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 200 {
			limit = l
		}
	}

	var clientID *int64
	if session, ok := auth.PortalSessionFromContext(r.Context()); ok && session != nil {
		clientID = &session.ClientID
	}

	messages, err := h.Service.ListMessages(r.Context(), identity, clientID, sinceID, limit)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if messages == nil {
		messages = []*Message{}
	}

	next := sinceID
	if len(messages) > 0 {
		next = messages[len(messages)-1].ID
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"messages": messages,
		"cursor":   next,
	})
}
