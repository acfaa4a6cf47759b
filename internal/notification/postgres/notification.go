package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/frahmantamala/worklog-management/internal/notification"
)

// MessageRepository implements notification.Repository and the poller's
// notification.Source using GORM.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, msg *notification.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *MessageRepository) ListSince(ctx context.Context, companyID int64, sinceID int64, limit int) ([]*notification.Message, error) {
	var messages []*notification.Message
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id > ?", companyID, sinceID).
		Order("id ASC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepository) ListSinceForClient(ctx context.Context, companyID, clientID, sinceID int64, limit int) ([]*notification.Message, error) {
	var messages []*notification.Message
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND client_id = ? AND id > ?", companyID, clientID, sinceID).
		Order("id ASC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

// FetchSince feeds the delivery poller: tenant-agnostic, ID-ordered.
func (r *MessageRepository) FetchSince(ctx context.Context, sinceID int64, limit int) ([]*notification.Message, error) {
	var messages []*notification.Message
	err := r.db.WithContext(ctx).
		Where("id > ?", sinceID).
		Order("id ASC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}
