package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/worklog-management/internal/transport"
	"github.com/frahmantamala/worklog-management/pkg/logger"
)

// ContactRepository resolves portal contacts for client-portal logins.
type ContactRepository interface {
	GetContactByCredentials(email, accessKey string) (*PortalSession, error)
}

type Handler struct {
	*transport.BaseHandler
	Service      ServiceAPI
	PortalTokens *PortalTokenService
	Contacts     ContactRepository
}

func NewHandler(svc ServiceAPI, portalTokens *PortalTokenService, contacts ContactRepository) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler:  transport.NewBaseHandler(lg),
		Service:      svc,
		PortalTokens: portalTokens,
		Contacts:     contacts,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.Service.Authenticate(dto)
	if err != nil {
		h.Logger.Error("authentication failed", "error", err)

		switch err {
		case ErrInvalidCredentials:
			h.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		case ErrUserInactive:
			h.WriteError(w, http.StatusUnauthorized, "user is inactive")
		default:
			if _, ok := err.(ValidationError); ok {
				h.WriteError(w, http.StatusBadRequest, err.Error())
			} else {
				h.WriteError(w, http.StatusInternalServerError, "internal server error")
			}
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.Service.RefreshTokens(dto.RefreshToken)
	if err != nil {
		h.Logger.Error("token refresh failed", "error", err)

		switch err {
		case ErrInvalidToken, ErrTokenExpired:
			h.WriteError(w, http.StatusUnauthorized, "invalid refresh token")
		case ErrUserInactive:
			h.WriteError(w, http.StatusUnauthorized, "user is inactive")
		default:
			h.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	if _, err := h.Service.ValidateAccessToken(token); err != nil {
		h.WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PortalLogin exchanges portal contact credentials for a 24-hour bearer
// token used by the client portal.
func (h *Handler) PortalLogin(w http.ResponseWriter, r *http.Request) {
	var dto PortalLoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.Contacts.GetContactByCredentials(dto.Email, dto.AccessKey)
	if err != nil {
		h.Logger.Warn("portal login failed", "email", dto.Email, "error", err)
		h.WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.PortalTokens.Issue(*session)
	if err != nil {
		h.Logger.Error("portal token issue failed", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

// AuthMiddleware resolves the staff session and attaches the Identity to
// the request context. Resolution happens on every request; identities are
// never cached across requests.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.Logger.Warn("auth middleware: missing authorization token")
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		identity, err := h.Service.ResolveIdentity(token)
		if err != nil {
			h.Logger.Warn("auth middleware: session resolution failed", "error", err)
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := ContextWithIdentity(r.Context(), identity)
		ctx = logger.With(ctx, "user_id", identity.UserID, "company_id", identity.CompanyID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PortalMiddleware verifies the portal bearer token. An invalid or expired
// token is treated as anonymous: the request proceeds without an identity
// and downstream permission checks reject it.
func (h *Handler) PortalMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		session, ok := h.PortalTokens.Verify(token)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := ContextWithIdentity(r.Context(), session.Identity())
		ctx = ContextWithPortalSession(ctx, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
