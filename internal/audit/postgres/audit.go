package postgres

import (
	"context"

	"github.com/frahmantamala/worklog-management/internal/audit"
	"gorm.io/gorm"
)

// AuditRepository implements audit.Repository using GORM. Inserts only;
// the table has no update or delete path in the application.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.Repository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, record *audit.Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}
