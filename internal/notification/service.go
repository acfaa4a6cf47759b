package notification

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/worklog-management/internal"
	"github.com/frahmantamala/worklog-management/internal/auth"
	"github.com/frahmantamala/worklog-management/internal/authz"
)

type Repository interface {
	Create(ctx context.Context, msg *Message) error
	// ListSince returns messages with ID greater than sinceID in ascending
	// ID order, capped at limit.
	ListSince(ctx context.Context, companyID int64, sinceID int64, limit int) ([]*Message, error)
	ListSinceForClient(ctx context.Context, companyID, clientID, sinceID int64, limit int) ([]*Message, error)
}

type PermissionGate interface {
	Check(identity *auth.Identity, resource string, action authz.Action, scope authz.Scope) error
}

// Service exposes the message stream. Clients poll with a last-seen
// cursor; there is no push channel.
type Service struct {
	repo   Repository
	gate   PermissionGate
	logger *slog.Logger
}

func NewService(repo Repository, gate PermissionGate, logger *slog.Logger) *Service {
	return &Service{repo: repo, gate: gate, logger: logger}
}

func (s *Service) CreateMessage(ctx context.Context, identity *auth.Identity, dto CreateMessageDTO) (*Message, error) {
	if err := s.gate.Check(identity, authz.ResourceMessages, authz.ActionCreate, authz.Scope{CompanyID: identity.CompanyID}); err != nil {
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	msg := &Message{
		CompanyID: identity.CompanyID,
		ClientID:  dto.ClientID,
		SenderID:  identity.UserID,
		Subject:   dto.Subject,
		Body:      dto.Body,
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, internal.NewInternalError("failed to create message", err)
	}

	s.logger.Info("message created", "message_id", msg.ID, "company_id", msg.CompanyID)
	return msg, nil
}

// ListMessages returns messages newer than sinceID. Portal clients only
// see messages addressed to their client record.
func (s *Service) ListMessages(ctx context.Context, identity *auth.Identity, clientID *int64, sinceID int64, limit int) ([]*Message, error) {
	if err := s.gate.Check(identity, authz.ResourceMessages, authz.ActionRead, authz.Scope{CompanyID: identity.CompanyID}); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	if identity.Role == auth.RoleClient {
		if clientID == nil {
			return nil, internal.ErrPermissionDenied
		}
		return s.repo.ListSinceForClient(ctx, identity.CompanyID, *clientID, sinceID, limit)
	}

	return s.repo.ListSince(ctx, identity.CompanyID, sinceID, limit)
}
