package holiday

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

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

func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateHolidayDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	holiday, err := h.Service.CreateHoliday(r.Context(), identity, dto)
	if err != nil {
		h.Logger.Error("CreateHoliday: service error", "error", err, "user_id", identity.UserID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, holiday)
}

func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	year := time.Now().Year()
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		if y, err := strconv.Atoi(yearStr); err == nil && y >= 2000 && y <= 2100 {
			year = y
		}
	}

	holidays, err := h.Service.ListHolidays(r.Context(), identity, year)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if holidays == nil {
		holidays = []*Holiday{}
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"holidays": holidays, "year": year})
}

func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	holidayID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid holiday ID")
		return
	}

	if err := h.Service.DeleteHoliday(r.Context(), identity, holidayID); err != nil {
		h.Logger.Error("DeleteHoliday: service error", "error", err, "holiday_id", holidayID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
