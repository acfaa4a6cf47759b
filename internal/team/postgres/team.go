package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/worklog-management/internal"
	"github.com/frahmantamala/worklog-management/internal/team"
)

// TeamRepository implements the team.Repository interface using GORM
type TeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *gorm.DB) team.Repository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) Create(ctx context.Context, t *team.Team) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TeamRepository) GetByID(ctx context.Context, companyID, id int64) (*team.Team, error) {
	var t team.Team
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&t).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrTeamNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TeamRepository) List(ctx context.Context, companyID int64) ([]*team.Team, error) {
	var teams []*team.Team
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("name ASC").
		Find(&teams).Error
	return teams, err
}

func (r *TeamRepository) Update(ctx context.Context, t *team.Team) error {
	t.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(t).Error
}

// Delete removes the team and its membership rows in one transaction.
func (r *TeamRepository) Delete(ctx context.Context, companyID, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", id).Delete(&team.Member{}).Error; err != nil {
			return err
		}
		result := tx.Where("company_id = ? AND id = ?", companyID, id).Delete(&team.Team{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return internal.ErrTeamNotFound
		}
		return nil
	})
}

func (r *TeamRepository) AddMember(ctx context.Context, member *team.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, userID int64) error {
	return r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&team.Member{}).Error
}

func (r *TeamRepository) ListMembers(ctx context.Context, teamID int64) ([]team.Member, error) {
	var members []team.Member
	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("added_at ASC").
		Find(&members).Error
	return members, err
}
