package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/worklog-management/internal"
	"github.com/frahmantamala/worklog-management/internal/project"
)

// ProjectRepository implements the project.Repository interface using GORM
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *gorm.DB) project.Repository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	return r.db.WithContext(ctx).Create(proj).Error
}

func (r *ProjectRepository) GetByID(ctx context.Context, companyID, id int64) (*project.Project, error) {
	var proj project.Project
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&proj).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrProjectNotFound
		}
		return nil, err
	}
	return &proj, nil
}

func (r *ProjectRepository) List(ctx context.Context, companyID int64, activeOnly bool) ([]*project.Project, error) {
	var projects []*project.Project
	query := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("code ASC").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) Update(ctx context.Context, proj *project.Project) error {
	proj.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(proj).Error
}
