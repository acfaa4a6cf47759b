package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/worklog-management/internal"
	"github.com/frahmantamala/worklog-management/internal/holiday"
)

// HolidayRepository implements the holiday.Repository interface using GORM
type HolidayRepository struct {
	db *gorm.DB
}

// NewHolidayRepository creates a new holiday repository
func NewHolidayRepository(db *gorm.DB) holiday.Repository {
	return &HolidayRepository{db: db}
}

func (r *HolidayRepository) Create(ctx context.Context, h *holiday.Holiday) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *HolidayRepository) GetByID(ctx context.Context, companyID, id int64) (*holiday.Holiday, error) {
	var h holiday.Holiday
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&h).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrHolidayNotFound
		}
		return nil, err
	}
	return &h, nil
}

func (r *HolidayRepository) ListForYear(ctx context.Context, companyID int64, year int) ([]*holiday.Holiday, error) {
	var holidays []*holiday.Holiday
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND holiday_date >= ? AND holiday_date < ?",
			companyID,
			// half-open year range keeps the date index usable
			yearStart(year), yearStart(year+1)).
		Order("holiday_date ASC").
		Find(&holidays).Error
	return holidays, err
}

func (r *HolidayRepository) Delete(ctx context.Context, companyID, id int64) error {
	result := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		Delete(&holiday.Holiday{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrHolidayNotFound
	}
	return nil
}

func yearStart(year int) string {
	return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}
