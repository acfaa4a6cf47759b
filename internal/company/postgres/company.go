package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/worklog-management/internal"
	"github.com/frahmantamala/worklog-management/internal/company"
)

// CompanyRepository implements the company.Repository interface using GORM
type CompanyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *gorm.DB) company.Repository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*company.Company, error) {
	var c company.Company
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrCompanyNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) Update(ctx context.Context, c *company.Company) error {
	c.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(c).Error
}
